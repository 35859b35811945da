package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ParseJSON decodes a JSON document into a Value. Object key order is
// preserved, numbers keep their lexical form, and repeated keys resolve
// last-value-wins. A bare `null` document decodes to Null, which
// Validate treats as a deferred query.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after JSON document")
	}
	return v, nil
}

func parseValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return parseToken(dec, tok)
}

func parseToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, want string", keyTok)
				}
				val, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // closing '}'
				return nil, err
			}
			return obj, nil
		case '[':
			arr := Array{}
			for dec.More() {
				elem, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, elem)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t.String())
		}
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(t), nil
	default:
		return nil, fmt.Errorf("unexpected token %v (%T)", tok, tok)
	}
}

// MarshalOrdered renders a Value as single-line JSON in insertion order.
// Strings are NFC-normalized and escaped exactly as in the canonical
// form, so the only difference from MarshalCanonical is key order. This
// is the serialization golden files use.
func MarshalOrdered(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := appendValue(&buf, v, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// appendValue writes v to buf. With sorted set, object keys are emitted
// in RFC 8785 UTF-16 order; otherwise insertion order is kept.
func appendValue(buf *bytes.Buffer, v Value, sorted bool) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("cannot encode nil Value")
	case Null:
		buf.WriteString("null")
		return nil
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case Number:
		if _, err := val.Float64(); err != nil {
			return fmt.Errorf("invalid number lexeme %q", string(val))
		}
		buf.WriteString(string(val))
		return nil
	case String:
		enc, err := encodeString(string(val))
		if err != nil {
			return err
		}
		buf.Write(enc)
		return nil
	case Array:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendValue(buf, elem, sorted); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	case *Object:
		keys := val.Keys()
		if sorted {
			keys = val.SortedKeys()
		}
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			enc, err := encodeString(k)
			if err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			buf.Write(enc)
			buf.WriteByte(':')
			fv, _ := val.Get(k)
			if err := appendValue(buf, fv, sorted); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("unsupported Value type %T", v)
	}
}
