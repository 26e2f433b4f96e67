package markup

import (
	"bytes"
	"io"
	"regexp"
	"strings"
)

// DefaultIndent is the number of spaces per nesting level.
const DefaultIndent = 2

// Marshal renders doc with indent spaces per nesting level. The output ends
// with a newline.
func Marshal(doc *Document, indent int) []byte {
	var buf bytes.Buffer

	// bytes.Buffer writes cannot fail.
	_ = Render(&buf, doc, indent)

	return buf.Bytes()
}

// Render writes doc to w. Prolog and epilog nodes are written on their own
// lines. Elements whose children are all character data are written inline
// with their text untouched; other elements put every child on its own line,
// dropping whitespace-only text and trimming the rest.
func Render(w io.Writer, doc *Document, indent int) error {
	if indent < 0 {
		indent = 0
	}

	r := &renderer{indent: strings.Repeat(" ", indent)}

	for _, n := range doc.Prolog {
		r.line(0, n)
	}

	if doc.Root != nil {
		r.element(doc.Root, 0)
	}

	for _, n := range doc.Epilog {
		r.line(0, n)
	}

	_, err := w.Write([]byte(r.sb.String()))

	return err
}

type renderer struct {
	sb     strings.Builder
	indent string
}

func (r *renderer) pad(level int) {
	for range level {
		r.sb.WriteString(r.indent)
	}
}

func (r *renderer) line(level int, n Node) {
	r.pad(level)
	writeNode(&r.sb, n)
	r.sb.WriteByte('\n')
}

func (r *renderer) element(e *Element, level int) {
	r.pad(level)
	writeStartTag(&r.sb, e)

	if len(e.Children) == 0 {
		r.sb.WriteString("/>\n")
		return
	}

	r.sb.WriteByte('>')

	if e.isTextOnly() {
		for _, c := range e.Children {
			writeNode(&r.sb, c)
		}

		r.sb.WriteString("</" + e.Name + ">\n")

		return
	}

	r.sb.WriteByte('\n')

	for _, c := range e.Children {
		switch n := c.(type) {
		case *Element:
			r.element(n, level+1)
		case Text:
			trimmed := strings.TrimSpace(string(n))
			if trimmed != "" {
				r.line(level+1, Text(trimmed))
			}
		default:
			r.line(level+1, n)
		}
	}

	r.pad(level)
	r.sb.WriteString("</" + e.Name + ">\n")
}

func writeStartTag(sb *strings.Builder, e *Element) {
	sb.WriteString("<" + e.Name)

	for _, a := range e.Attrs {
		sb.WriteString(" " + a.Name + `="`)
		sb.WriteString(attrEscaper.Replace(a.Value))
		sb.WriteString(`"`)
	}
}

func writeNode(sb *strings.Builder, n Node) {
	switch v := n.(type) {
	case Text:
		sb.WriteString(textEscaper.Replace(string(v)))
	case Comment:
		sb.WriteString("<!--" + string(v) + "-->")
	case ProcInst:
		sb.WriteString("<?" + v.Target)

		if inst := procInstContent(v); inst != "" {
			sb.WriteString(" " + inst)
		}

		sb.WriteString("?>")
	case Directive:
		sb.WriteString("<!" + string(v) + ">")
	case *Element:
		writeCompact(sb, v)
	}
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "&#13;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", `"`, "&quot;",
		"\t", "&#9;", "\n", "&#10;", "\r", "&#13;",
	)
)

var encodingDecl = regexp.MustCompile(`encoding\s*=\s*(["'])[^"']*["']`)

// procInstContent returns the instruction body. The encoding pseudo-attribute
// of the XML declaration is rewritten to UTF-8 because output is always
// UTF-8.
func procInstContent(p ProcInst) string {
	inst := strings.TrimSpace(p.Inst)
	if p.Target != "xml" {
		return inst
	}

	return encodingDecl.ReplaceAllString(inst, `encoding=${1}UTF-8${1}`)
}
