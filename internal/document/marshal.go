package document

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Default indentation widths.
const (
	DefaultIndent      = 4
	DefaultSplitIndent = 2
)

// Marshal renders v as indented JSON using indent spaces per level. Empty
// arrays and objects render as [] and {}; every other collection puts one
// element per line, like Python's json.dumps with an indent. Non-ASCII
// characters are written verbatim. The result has no trailing newline.
func Marshal(v Value, indent int) []byte {
	if indent < 0 {
		indent = 0
	}

	var buf bytes.Buffer

	writeValue(&buf, v, strings.Repeat(" ", indent), 0)

	return buf.Bytes()
}

func writeValue(buf *bytes.Buffer, v Value, indent string, level int) {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.boolean {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		buf.WriteString(v.text)
	case KindString:
		writeString(buf, v.text)
	case KindObject:
		if len(v.members) == 0 {
			buf.WriteString("{}")
			return
		}

		buf.WriteString("{\n")

		for i, m := range v.members {
			writeIndent(buf, indent, level+1)
			writeString(buf, m.Key)
			buf.WriteString(": ")
			writeValue(buf, m.Value, indent, level+1)

			if i < len(v.members)-1 {
				buf.WriteByte(',')
			}

			buf.WriteByte('\n')
		}

		writeIndent(buf, indent, level)
		buf.WriteByte('}')
	case KindArray:
		if len(v.elems) == 0 {
			buf.WriteString("[]")
			return
		}

		buf.WriteString("[\n")

		for i, item := range v.elems {
			writeIndent(buf, indent, level+1)
			writeValue(buf, item, indent, level+1)

			if i < len(v.elems)-1 {
				buf.WriteByte(',')
			}

			buf.WriteByte('\n')
		}

		writeIndent(buf, indent, level)
		buf.WriteByte(']')
	}
}

func writeIndent(buf *bytes.Buffer, indent string, level int) {
	for range level {
		buf.WriteString(indent)
	}
}

const hex = "0123456789abcdef"

// writeString writes s as a quoted JSON string. Only the quote, the
// backslash and control characters are escaped; invalid UTF-8 bytes become
// U+FFFD.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')

	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch c {
			case '"', '\\':
				buf.WriteByte('\\')
				buf.WriteByte(c)
			case '\n':
				buf.WriteString(`\n`)
			case '\r':
				buf.WriteString(`\r`)
			case '\t':
				buf.WriteString(`\t`)
			case '\b':
				buf.WriteString(`\b`)
			case '\f':
				buf.WriteString(`\f`)
			default:
				if c < 0x20 {
					buf.WriteString(`\u00`)
					buf.WriteByte(hex[c>>4])
					buf.WriteByte(hex[c&0xf])
				} else {
					buf.WriteByte(c)
				}
			}

			i++

			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf.WriteString("\ufffd")
		} else {
			buf.WriteString(s[i : i+size])
		}

		i += size
	}

	buf.WriteByte('"')
}
