package output

import (
	"bytes"
	"regexp"

	"github.com/fatih/color"
	"github.com/tidwall/pretty"
)

// Highlighter rewrites rendered output for display, typically by adding
// ANSI colour sequences. It must not change the text otherwise.
type Highlighter func([]byte) []byte

// JSONHighlighter colorizes indented JSON, leaving its layout untouched.
func JSONHighlighter() Highlighter {
	return func(data []byte) []byte {
		return pretty.Color(data, nil)
	}
}

var (
	// markupToken matches comments and tags, allowing '>' inside quoted
	// attribute values.
	markupToken  = regexp.MustCompile(`<!--[\s\S]*?-->|<(?:"[^"]*"|'[^']*'|[^'">])*>`)
	markupName   = regexp.MustCompile(`^(<[/?!]?)([^\s/>?]*)`)
	markupAttr   = regexp.MustCompile(`([^\s="'<>/?]+)=("[^"]*"|'[^']*')`)
	commentStart = "<!--"
)

// XMLHighlighter colorizes tag names, attribute names and values, and
// comments. Character data is left as is.
func XMLHighlighter() Highlighter {
	tagColor := color.New(color.FgBlue, color.Bold)
	attrColor := color.New(color.FgCyan)
	valueColor := color.New(color.FgGreen)
	commentColor := color.New(color.FgHiBlack)

	// Whether to colour at all is decided by the caller.
	for _, c := range []*color.Color{tagColor, attrColor, valueColor, commentColor} {
		c.EnableColor()
	}

	return func(data []byte) []byte {
		return markupToken.ReplaceAllFunc(data, func(tok []byte) []byte {
			if len(tok) >= len(commentStart) && string(tok[:len(commentStart)]) == commentStart {
				return []byte(commentColor.Sprint(string(tok)))
			}

			s := markupName.ReplaceAllStringFunc(string(tok), func(m string) string {
				parts := markupName.FindStringSubmatch(m)
				return parts[1] + tagColor.Sprint(parts[2])
			})

			s = markupAttr.ReplaceAllStringFunc(s, func(m string) string {
				parts := markupAttr.FindStringSubmatch(m)
				return attrColor.Sprint(parts[1]) + "=" + valueColor.Sprint(parts[2])
			})

			return []byte(s)
		})
	}
}

// AutoHighlighter picks the XML or JSON highlighter per document by its
// first non-blank byte.
func AutoHighlighter() Highlighter {
	jsonHL, xmlHL := JSONHighlighter(), XMLHighlighter()

	return func(data []byte) []byte {
		if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '<' {
			return xmlHL(data)
		}

		return jsonHL(data)
	}
}
