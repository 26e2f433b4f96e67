// Package document implements the in-memory representation of a JSON
// document as an explicit tagged variant, together with an order-preserving
// parser and a deterministic indented serializer.
//
// Unlike decoding into interface{}, a [Value] keeps object members in their
// source order and number literals exactly as written, so that
// Parse(Marshal(v)) reproduces v.
package document

import (
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the lower-case JSON name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single JSON value. The zero Value is null.
//
// Arrays and objects exclusively own their children; a Value obtained from
// Elements or Members shares storage with its parent and must not be mutated.
type Value struct {
	kind    Kind
	boolean bool
	// text holds the number literal for KindNumber and the decoded string for
	// KindString.
	text    string
	elems   []Value
	members []Member
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Number returns a number value carrying literal verbatim. The literal is
// not validated; use Parse for untrusted input.
func Number(literal string) Value { return Value{kind: KindNumber, text: literal} }

// Int returns a number value for n.
func Int(n int64) Value { return Number(strconv.FormatInt(n, 10)) }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Array returns an array value holding elems in order.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}

	return Value{kind: KindArray, elems: elems}
}

// Object returns an object value holding members in order. When a key
// repeats, the later value replaces the earlier one at the earlier position.
func Object(members ...Member) Value {
	obj := Value{kind: KindObject, members: make([]Member, 0, len(members))}
	index := make(map[string]int, len(members))

	for _, m := range members {
		obj.set(index, m.Key, m.Value)
	}

	return obj
}

// set inserts or replaces key. index maps keys to positions in v.members.
func (v *Value) set(index map[string]int, key string, val Value) {
	if i, ok := index[key]; ok {
		v.members[i].Value = val
		return
	}

	index[key] = len(v.members)
	v.members = append(v.members, Member{Key: key, Value: val})
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsCollection reports whether v is an array or an object.
func (v Value) IsCollection() bool {
	return v.kind == KindArray || v.kind == KindObject
}

// AsBool returns the boolean payload. It is false for non-boolean values.
func (v Value) AsBool() bool { return v.boolean }

// Text returns the number literal or the string payload. It is empty for
// every other kind.
func (v Value) Text() string { return v.text }

// Elements returns the elements of an array, or nil.
func (v Value) Elements() []Value { return v.elems }

// Members returns the members of an object in document order, or nil.
func (v Value) Members() []Member { return v.members }

// Len returns the number of elements or members of a collection, and 0 for
// scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.elems)
	case KindObject:
		return len(v.members)
	default:
		return 0
	}
}

// Get looks up key in an object.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}

	return Value{}, false
}

// Equal reports whether a and b are structurally equal. Objects compare as
// mappings, so member order is ignored; arrays compare element-wise. Numbers
// compare by literal, which is exact for values produced by Parse.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolean == b.boolean
	case KindNumber, KindString:
		return a.text == b.text
	case KindArray:
		if len(a.elems) != len(b.elems) {
			return false
		}

		for i := range a.elems {
			if !Equal(a.elems[i], b.elems[i]) {
				return false
			}
		}

		return true
	case KindObject:
		if len(a.members) != len(b.members) {
			return false
		}

		for _, m := range a.members {
			other, ok := b.Get(m.Key)
			if !ok || !Equal(m.Value, other) {
				return false
			}
		}

		return true
	}

	return false
}
