// Package markup parses XML into an ordered tree and renders it back with
// one element per line and a configurable indentation width.
//
// The renderer is a direct tree-to-text rewrite: element order, attribute
// order and text content are preserved, but whitespace between tags is
// replaced, CDATA sections are re-emitted as escaped text and namespace
// prefixes are kept as written. It is meant for human-readable reformatting
// and is not an XML canonicalizer.
package markup

import (
	"strings"
)

// Node is a member of an element's child list or of the document prolog and
// epilog: *Element, Text, Comment, ProcInst or Directive.
type Node interface {
	node()
}

// Attr is a single attribute with its qualified name as written.
type Attr struct {
	Name  string
	Value string
}

// Element is an XML element.
type Element struct {
	// Name is the qualified tag name, including any namespace prefix.
	Name     string
	Attrs    []Attr
	Children []Node
}

// Text is character data, already unescaped.
type Text string

// Comment is the content of a <!-- --> comment.
type Comment string

// ProcInst is a processing instruction such as the XML declaration.
type ProcInst struct {
	Target string
	Inst   string
}

// Directive is the content of a <!...> declaration such as DOCTYPE.
type Directive string

func (*Element) node()  {}
func (Text) node()      {}
func (Comment) node()   {}
func (ProcInst) node()  {}
func (Directive) node() {}

// Document is a parsed XML document.
type Document struct {
	// Prolog holds declarations, comments and processing instructions that
	// precede the root element.
	Prolog []Node
	Root   *Element
	// Epilog holds comments and processing instructions after the root.
	Epilog []Node
}

// Attr returns the value of the attribute called name.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}

	return "", false
}

// Elements returns the child elements of e in order.
func (e *Element) Elements() []*Element {
	var out []*Element

	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}

	return out
}

// TextContent returns the concatenated text of e and its descendants.
func (e *Element) TextContent() string {
	var sb strings.Builder

	e.collectText(&sb)

	return sb.String()
}

func (e *Element) collectText(sb *strings.Builder) {
	for _, c := range e.Children {
		switch n := c.(type) {
		case Text:
			sb.WriteString(string(n))
		case *Element:
			n.collectText(sb)
		}
	}
}

// String serializes e compactly, without added whitespace.
func (e *Element) String() string {
	var sb strings.Builder

	writeCompact(&sb, e)

	return sb.String()
}

func writeCompact(sb *strings.Builder, e *Element) {
	writeStartTag(sb, e)

	if len(e.Children) == 0 {
		sb.WriteString("/>")
		return
	}

	sb.WriteString(">")

	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			writeCompact(sb, el)
			continue
		}

		writeNode(sb, c)
	}

	sb.WriteString("</" + e.Name + ">")
}

// isTextOnly reports whether every child of e is character data.
func (e *Element) isTextOnly() bool {
	for _, c := range e.Children {
		if _, ok := c.(Text); !ok {
			return false
		}
	}

	return true
}
