package query

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"unicode/utf16"
)

// Value is a sealed interface over raw document nodes. Only Null, Bool,
// Number, String, Array, and *Object implement it. There is no float
// variant: numbers keep their lexical form (see Number) so serialization
// never re-derives digits.
type Value interface {
	value() // Sealed - only types in this package implement it
}

// Scalar is the subset of Value allowed in literal condition positions:
// Null, Bool, Number, and String. Arrays and objects are not scalars.
type Scalar interface {
	Value
	scalar()
}

// Null represents an explicit null node.
// A null query document (as opposed to a null inside one) means the
// query is deferred; see Validate.
type Null struct{}

func (Null) value()  {}
func (Null) scalar() {}

// Bool represents a boolean node.
type Bool bool

func (Bool) value()  {}
func (Bool) scalar() {}

// Number represents a numeric node by its lexical JSON form ("42",
// "-1.5", "2e10"). Keeping the lexeme instead of a float64 makes
// encoding byte-stable: the digits that came in are the digits that go
// out.
type Number string

func (Number) value()  {}
func (Number) scalar() {}

// String represents a string node.
type String string

func (String) value()  {}
func (String) scalar() {}

// Array represents an ordered list node.
type Array []Value

func (Array) value() {}

// Object represents a mapping node with preserved key insertion order.
// Duplicate keys overwrite in place (last value wins, first position
// kept), matching how JSON decoders resolve repeated keys.
type Object struct {
	fields []Field
	index  map[string]int
}

func (*Object) value() {}

// Field is one key/value entry of an Object.
type Field struct {
	Key string
	Val Value
}

// F is a shorthand Field constructor for inline Object construction.
// Example: NewObject(F("limit", NumberFromInt(5)))
func F(key string, val Value) Field {
	return Field{Key: key, Val: val}
}

// NewObject builds an Object from fields in order. A repeated key keeps
// its first position and takes the last value.
func NewObject(fields ...Field) *Object {
	obj := &Object{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		obj.Set(f.Key, f.Val)
	}
	return obj
}

// Set inserts or replaces a key. Replacing keeps the key's original
// position.
func (o *Object) Set(key string, val Value) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.fields[i].Val = val
		return
	}
	o.index[key] = len(o.fields)
	o.fields = append(o.fields, Field{Key: key, Val: val})
}

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.fields[i].Val, true
}

// Len returns the number of fields.
func (o *Object) Len() int {
	return len(o.fields)
}

// Fields returns the entries in insertion order. The returned slice is
// the Object's backing storage; callers must not modify it.
func (o *Object) Fields() []Field {
	return o.fields
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.fields))
	for i, f := range o.fields {
		keys[i] = f.Key
	}
	return keys
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code
// units). Go's sort.Strings compares UTF-8 bytes, which orders some
// non-BMP keys differently; canonical hashing requires the UTF-16 order.
func (o *Object) SortedKeys() []string {
	keys := o.Keys()
	slices.SortFunc(keys, compareUTF16)
	return keys
}

// compareUTF16 compares strings by UTF-16 code units as RFC 8785
// requires. utf16.Encode handles surrogate pairs; comparing the encoded
// units directly is what makes U+1D306 sort after U+FB01, unlike UTF-8
// byte order.
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	for i := 0; i < min(len(a16), len(b16)); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}

// NumberFromInt returns the Number for an int64.
func NumberFromInt(n int64) Number {
	return Number(strconv.FormatInt(n, 10))
}

// NumberFromFloat returns the Number for a float64 in shortest
// round-trip form. NaN and infinities have no JSON form and are
// rejected.
func NumberFromFloat(f float64) (Number, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("number %v has no JSON representation", f)
	}
	return Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

// Int64 reports the value as an int64 when the lexeme is a plain
// integer. Lexemes with a fraction or exponent ("5.0", "1e3") are not
// integers here even when their value is whole.
func (n Number) Int64() (int64, bool) {
	i, err := strconv.ParseInt(string(n), 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// Float64 reports the numeric value as a float64.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// FromGo converts a plain Go value (the shape produced by
// encoding/json.Unmarshal into any) to a Value. Map keys are sorted in
// canonical order because Go maps carry no insertion order; callers that
// need to control key order should build Objects directly or use
// ParseJSON. Supported inputs: nil, bool, string, json.Number, int,
// int64, float64, []any, map[string]any, and Value itself.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case json.Number:
		return Number(val), nil
	case int:
		return NumberFromInt(int64(val)), nil
	case int64:
		return NumberFromInt(val), nil
	case float64:
		return NumberFromFloat(val)
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			conv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = conv
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return compareUTF16(keys[i], keys[j]) < 0 })
		obj := NewObject()
		for _, k := range keys {
			conv, err := FromGo(val[k])
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj.Set(k, conv)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}
