package snapshot

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/roach88/facet/query"
)

// encodePayload serializes a result value to msgpack. The value goes
// through query.FromGo first, which sorts map keys canonically: plain
// msgpack map encoding follows Go map iteration order, and the
// idempotency check compares payload bytes, so encoding equal results
// must produce equal bytes.
func encodePayload(result any) ([]byte, error) {
	v, err := query.FromGo(result)
	if err != nil {
		return nil, fmt.Errorf("convert result payload: %w", err)
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encodeValue(enc, v); err != nil {
		return nil, fmt.Errorf("encode result payload: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeValue(enc *msgpack.Encoder, v query.Value) error {
	switch val := v.(type) {
	case query.Null:
		return enc.EncodeNil()
	case query.Bool:
		return enc.EncodeBool(bool(val))
	case query.Number:
		if i, ok := val.Int64(); ok {
			return enc.EncodeInt64(i)
		}
		f, err := val.Float64()
		if err != nil {
			return fmt.Errorf("number lexeme %q: %w", string(val), err)
		}
		return enc.EncodeFloat64(f)
	case query.String:
		return enc.EncodeString(string(val))
	case query.Array:
		if err := enc.EncodeArrayLen(len(val)); err != nil {
			return err
		}
		for _, elem := range val {
			if err := encodeValue(enc, elem); err != nil {
				return err
			}
		}
		return nil
	case *query.Object:
		if err := enc.EncodeMapLen(val.Len()); err != nil {
			return err
		}
		for _, f := range val.Fields() {
			if err := enc.EncodeString(f.Key); err != nil {
				return err
			}
			if err := encodeValue(enc, f.Val); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
}

// decodePayload deserializes a stored payload into plain Go values
// (map[string]any, []any, scalars).
func decodePayload(payload []byte) (any, error) {
	var v any
	if err := msgpack.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("decode result payload: %w", err)
	}
	return v, nil
}

// payloadHash content-addresses a payload for the idempotency check.
func payloadHash(payload []byte) string {
	return query.HashDomain("facet/snapshot/v1", payload)
}
