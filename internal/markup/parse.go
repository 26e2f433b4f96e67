package markup

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
)

// SyntaxError describes input that is not well-formed XML.
type SyntaxError struct {
	Msg  string
	Line int
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}

	return e.Msg
}

// Parse builds a Document from data. Input declaring a non-UTF-8 encoding
// is transcoded to UTF-8 while it is read.
func Parse(data []byte) (*Document, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = true
	decoder.CharsetReader = charsetReader

	doc := &Document{}

	var stack []*Element

	for {
		// RawToken keeps namespace prefixes as written; tag matching is
		// checked here instead.
		token, err := decoder.RawToken()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, wrapSyntaxError(err, decoder)
		}

		switch tok := token.(type) {
		case xml.StartElement:
			el := &Element{Name: qualifiedName(tok.Name)}
			for _, a := range tok.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: qualifiedName(a.Name), Value: a.Value})
			}

			switch {
			case len(stack) > 0:
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			case doc.Root != nil:
				return nil, syntaxErrorf(decoder, "multiple root elements: <%s> after <%s>", el.Name, doc.Root.Name)
			default:
				doc.Root = el
			}

			stack = append(stack, el)

		case xml.EndElement:
			name := qualifiedName(tok.Name)
			if len(stack) == 0 {
				return nil, syntaxErrorf(decoder, "unexpected end element </%s>", name)
			}

			if open := stack[len(stack)-1]; open.Name != name {
				return nil, syntaxErrorf(decoder, "element <%s> closed by </%s>", open.Name, name)
			}

			dropLayoutWhitespace(stack[len(stack)-1])
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(tok)) != 0 {
					return nil, syntaxErrorf(decoder, "character data outside the root element")
				}

				continue
			}

			appendText(stack[len(stack)-1], string(tok))

		case xml.Comment:
			appendNode(doc, stack, Comment(string(tok)))

		case xml.ProcInst:
			appendNode(doc, stack, ProcInst{Target: tok.Target, Inst: string(tok.Inst)})

		case xml.Directive:
			if doc.Root == nil {
				declareEntities(decoder, tok)
			}

			appendNode(doc, stack, Directive(string(tok)))
		}
	}

	if len(stack) > 0 {
		return nil, syntaxErrorf(decoder, "unexpected EOF: element <%s> not closed", stack[len(stack)-1].Name)
	}

	if doc.Root == nil {
		return nil, syntaxErrorf(decoder, "no root element")
	}

	return doc, nil
}

// charsetReader transcodes a declared encoding to UTF-8. UTF-16 input has
// already been converted by the byte order mark, so it passes through.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-16", "utf-16le", "utf-16be":
		return input, nil
	}

	return charset.NewReaderLabel(label, input)
}

var entityDecl = regexp.MustCompile(`<!ENTITY\s+([^\s%"'<>]+)\s+(?:"([^"]*)"|'([^']*)')\s*>`)

// declareEntities registers the general entities of a DOCTYPE internal
// subset so references to them resolve in content.
func declareEntities(decoder *xml.Decoder, dir xml.Directive) {
	if !bytes.HasPrefix(dir, []byte("DOCTYPE")) {
		return
	}

	for _, m := range entityDecl.FindAllSubmatch(dir, -1) {
		if decoder.Entity == nil {
			decoder.Entity = make(map[string]string)
		}

		value := m[2]
		if value == nil {
			value = m[3]
		}

		decoder.Entity[string(m[1])] = string(value)
	}
}

// appendText adds character data to el, merging it with a preceding text
// node so CDATA sections and entity runs stay a single node.
func appendText(el *Element, s string) {
	if n := len(el.Children); n > 0 {
		if prev, ok := el.Children[n-1].(Text); ok {
			el.Children[n-1] = prev + Text(s)
			return
		}
	}

	el.Children = append(el.Children, Text(s))
}

// dropLayoutWhitespace removes whitespace-only text from an element that
// also has non-text children; such text is indentation, not content.
func dropLayoutWhitespace(el *Element) {
	if el.isTextOnly() {
		return
	}

	kept := el.Children[:0]

	for _, c := range el.Children {
		if t, ok := c.(Text); ok && strings.TrimSpace(string(t)) == "" {
			continue
		}

		kept = append(kept, c)
	}

	el.Children = kept
}

func appendNode(doc *Document, stack []*Element, n Node) {
	switch {
	case len(stack) > 0:
		parent := stack[len(stack)-1]
		parent.Children = append(parent.Children, n)
	case doc.Root == nil:
		doc.Prolog = append(doc.Prolog, n)
	default:
		doc.Epilog = append(doc.Epilog, n)
	}
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}

	return n.Space + ":" + n.Local
}

func syntaxErrorf(decoder *xml.Decoder, format string, args ...any) error {
	line, _ := decoder.InputPos()

	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Line: line}
}

func wrapSyntaxError(err error, decoder *xml.Decoder) error {
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return &SyntaxError{Msg: strings.TrimPrefix(se.Msg, "xml: "), Line: se.Line}
	}

	line, _ := decoder.InputPos()

	return &SyntaxError{Msg: strings.TrimPrefix(err.Error(), "xml: "), Line: line}
}
