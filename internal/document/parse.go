package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// maxDepth bounds array/object nesting to keep recursion finite on hostile
// input.
const maxDepth = 10000

// SyntaxError describes malformed JSON input.
type SyntaxError struct {
	Msg    string
	Offset int64
	Line   int
	Column int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// Parse decodes exactly one JSON document from data. Content after the
// document other than whitespace is an error.
func Parse(data []byte) (Value, error) {
	// Decoder.Token tolerates trailing commas, so the input is first checked
	// by the strict scanner, which also yields absolute error offsets.
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var se *json.SyntaxError
		if errors.As(err, &se) {
			// Offset counts the offending byte itself.
			line, col := position(data, max(se.Offset-1, 0))
			return Value{}, &SyntaxError{Msg: se.Error(), Offset: se.Offset, Line: line, Column: col}
		}

		return Value{}, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	p := &parser{dec: dec, data: data}

	v, err := p.value(0)
	if err != nil {
		return Value{}, err
	}

	tok, err := dec.Token()
	switch {
	case errors.Is(err, io.EOF):
		return v, nil
	case err != nil:
		return Value{}, p.wrap(err)
	default:
		return Value{}, p.syntaxError(fmt.Sprintf("unexpected %v after top-level value", describe(tok)))
	}
}

type parser struct {
	dec  *json.Decoder
	data []byte
}

func (p *parser) value(depth int) (Value, error) {
	tok, err := p.dec.Token()
	if err != nil {
		return Value{}, p.wrap(err)
	}

	switch t := tok.(type) {
	case json.Delim:
		if depth >= maxDepth {
			return Value{}, p.syntaxError("exceeded maximum nesting depth")
		}

		switch t {
		case '{':
			return p.object(depth + 1)
		case '[':
			return p.array(depth + 1)
		}

		return Value{}, p.syntaxError(fmt.Sprintf("unexpected %q", rune(t)))
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t.String()), nil
	case string:
		return String(t), nil
	}

	return Value{}, p.syntaxError(fmt.Sprintf("unexpected token %v", tok))
}

func (p *parser) object(depth int) (Value, error) {
	obj := Value{kind: KindObject, members: []Member{}}
	index := make(map[string]int)

	for p.dec.More() {
		tok, err := p.dec.Token()
		if err != nil {
			return Value{}, p.wrap(err)
		}

		key, ok := tok.(string)
		if !ok {
			return Value{}, p.syntaxError(fmt.Sprintf("object key must be a string, got %v", describe(tok)))
		}

		val, err := p.value(depth)
		if err != nil {
			return Value{}, err
		}

		obj.set(index, key, val)
	}

	if err := p.closing('}'); err != nil {
		return Value{}, err
	}

	return obj, nil
}

func (p *parser) array(depth int) (Value, error) {
	arr := Value{kind: KindArray, elems: []Value{}}

	for p.dec.More() {
		val, err := p.value(depth)
		if err != nil {
			return Value{}, err
		}

		arr.elems = append(arr.elems, val)
	}

	if err := p.closing(']'); err != nil {
		return Value{}, err
	}

	return arr, nil
}

func (p *parser) closing(want json.Delim) error {
	tok, err := p.dec.Token()
	if err != nil {
		return p.wrap(err)
	}

	if d, ok := tok.(json.Delim); !ok || d != want {
		return p.syntaxError(fmt.Sprintf("expected %q, got %v", rune(want), describe(tok)))
	}

	return nil
}

// wrap converts decoder errors into a *SyntaxError positioned in the input.
func (p *parser) wrap(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return p.syntaxErrorAt("unexpected end of JSON input", int64(len(p.data)))
	}

	return p.syntaxError(err.Error())
}

func (p *parser) syntaxError(msg string) error {
	return p.syntaxErrorAt(msg, p.dec.InputOffset())
}

func (p *parser) syntaxErrorAt(msg string, offset int64) error {
	line, col := position(p.data, offset)

	return &SyntaxError{Msg: msg, Offset: offset, Line: line, Column: col}
}

// position returns the 1-based line and column of the byte at offset.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}

	prefix := data[:offset]
	line = bytes.Count(prefix, []byte{'\n'}) + 1
	col = int(offset) - bytes.LastIndexByte(prefix, '\n')

	return line, col
}

func describe(tok json.Token) string {
	switch t := tok.(type) {
	case json.Delim:
		return fmt.Sprintf("%q", rune(t))
	case string:
		return fmt.Sprintf("string %q", t)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", t)
	}
}
