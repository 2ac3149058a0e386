package record

import (
	"strconv"
	"strings"
)

// Kind discriminates the Record union.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Record is rokt's universal value: a scalar, an ordered sequence, or an
// insertion-ordered mapping.
type Record struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Record
	obj  *Object
}

// Null returns the null Record.
func Null() Record { return Record{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Record { return Record{kind: KindBool, b: b} }

// Number wraps a numeric value.
func Number(n float64) Record { return Record{kind: KindNumber, n: n} }

// String wraps a string.
func String(s string) Record { return Record{kind: KindString, s: s} }

// Array wraps a sequence of Records.
func Array(items []Record) Record { return Record{kind: KindArray, arr: items} }

// FromObject wraps an Object.
func FromObject(o *Object) Record { return Record{kind: KindObject, obj: o} }

func (r Record) Kind() Kind    { return r.kind }
func (r Record) IsNull() bool  { return r.kind == KindNull }
func (r Record) IsArray() bool { return r.kind == KindArray }

func (r Record) AsBool() (bool, bool) {
	if r.kind != KindBool {
		return false, false
	}
	return r.b, true
}

func (r Record) AsNumber() (float64, bool) {
	if r.kind != KindNumber {
		return 0, false
	}
	return r.n, true
}

func (r Record) AsString() (string, bool) {
	if r.kind != KindString {
		return "", false
	}
	return r.s, true
}

func (r Record) AsArray() ([]Record, bool) {
	if r.kind != KindArray {
		return nil, false
	}
	return r.arr, true
}

func (r Record) AsObject() (*Object, bool) {
	if r.kind != KindObject {
		return nil, false
	}
	return r.obj, true
}

// Text returns the canonical textual representation of a Record, used
// wherever the predicate engine or projection needs to compare or print
// a non-string value as a string (§4.2). An object's text is its JSON
// encoding.
func (r Record) Text() string {
	switch r.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(r.b)
	case KindNumber:
		return strconv.FormatFloat(r.n, 'f', -1, 64)
	case KindString:
		return r.s
	case KindArray:
		parts := make([]string, len(r.arr))
		for i, e := range r.arr {
			parts[i] = e.Text()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindObject:
		b, err := r.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return ""
	}
}

// Resolve walks a possibly dotted path ("a.b.c") left to right over
// nested objects. A missing segment, or a segment accessed on a
// non-object, resolves to (Null(), false) — "absent" per §4.2.
func (r Record) Resolve(path string) (Record, bool) {
	cur := r
	for _, seg := range strings.Split(path, ".") {
		obj, ok := cur.AsObject()
		if !ok {
			return Null(), false
		}
		v, ok := obj.Get(seg)
		if !ok {
			return Null(), false
		}
		cur = v
	}
	return cur, true
}

// Set assigns value at a (possibly dotted) field name on an object
// Record, creating intermediate objects as needed. Used by CHANGE, which
// passes the field name from the command as written, so a dotted name
// assigns into nested objects.
func (r Record) Set(path string, value Record) Record {
	obj, ok := r.AsObject()
	if !ok {
		obj = NewObject()
	} else {
		obj = obj.Clone()
	}

	segs := strings.SplitN(path, ".", 2)
	if len(segs) == 1 {
		obj.Set(segs[0], value)
		return FromObject(obj)
	}

	child, ok := obj.Get(segs[0])
	if !ok {
		child = FromObject(NewObject())
	}
	obj.Set(segs[0], child.Set(segs[1], value))
	return FromObject(obj)
}
