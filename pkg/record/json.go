package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MarshalJSON renders the canonical textual form that pkg/cryptox
// encrypts: standard JSON, with object keys in insertion order.
func (r Record) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(r.b)
	case KindNumber:
		return json.Marshal(r.n)
	case KindString:
		return json.Marshal(r.s)
	case KindArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range r.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := e.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindObject:
		var buf bytes.Buffer
		buf.WriteByte('{')
		if r.obj != nil {
			for i, k := range r.obj.Keys() {
				if i > 0 {
					buf.WriteByte(',')
				}
				kb, err := json.Marshal(k)
				if err != nil {
					return nil, err
				}
				buf.Write(kb)
				buf.WriteByte(':')
				v, _ := r.obj.Get(k)
				vb, err := v.MarshalJSON()
				if err != nil {
					return nil, err
				}
				buf.Write(vb)
			}
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("record: unknown kind %d", r.kind)
	}
}

// UnmarshalJSON parses JSON into a Record, preserving object key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Parse decodes a single JSON value (object, array, or scalar) into a
// Record. Used for the dataset-file canonical form and for the ADD
// command's embedded JSON object.
func Parse(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Record{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Record{}, fmt.Errorf("record: trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Record, error) {
	tok, err := dec.Token()
	if err != nil {
		return Record{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Record, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Record{}, fmt.Errorf("record: bad number %q: %w", t, err)
		}
		return Number(f), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			var items []Record
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return Record{}, err
				}
				items = append(items, v)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Record{}, err
			}
			return Array(items), nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Record{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Record{}, fmt.Errorf("record: non-string object key %v", keyTok)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return Record{}, err
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Record{}, err
			}
			return FromObject(obj), nil
		}
	}
	return Record{}, fmt.Errorf("record: unexpected token %v", tok)
}
