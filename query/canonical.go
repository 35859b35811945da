package query

import (
	"bytes"
	"encoding/json"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces the RFC 8785-style canonical JSON form of a
// Value. This is the only serialization that may feed content hashing.
//
// Differences from encoding/json.Marshal:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes, not
//     insertion order)
//  2. No HTML escaping (<, >, & stay literal)
//  3. Strings NFC-normalized at the boundary
//  4. Numbers emitted as their lexical form, untouched
//
// Number lexemes passing through verbatim means "5" and "5.0" canonicalize
// differently even though they compare equal numerically. Two clients that
// want identical hashes for the same query must emit numbers the same way;
// in practice both sides serialize from the same document.
func MarshalCanonical(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := appendValue(&buf, v, true); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeString produces a canonical JSON string token: NFC-normalized,
// no HTML escaping, and U+2028/U+2029 left literal. Only control
// characters (U+0000..U+001F), backslash, and the quote are escaped.
func encodeString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder appends a trailing newline.
	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}

	// encoding/json always escapes U+2028 and U+2029 for JavaScript
	// embedding; RFC 8785 forbids that. Restore the literal characters,
	// but leave \\u2028 (a backslash that happens to precede the text
	// "u2028") alone.
	return restoreLineSeparators(out), nil
}

// restoreLineSeparators rewrites   and   escapes back to the
// literal characters. An escape is real only when preceded by an even
// number of backslashes; an odd count means the backslash itself is
// escaped and "u2028" is ordinary text.
func restoreLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	run := 0 // consecutive backslashes emitted so far
	for i := 0; i < len(b); {
		if b[i] == '\\' && run%2 == 0 && i+6 <= len(b) &&
			bytes.HasPrefix(b[i:], []byte(`\u202`)) &&
			(b[i+5] == '8' || b[i+5] == '9') {
			if b[i+5] == '8' {
				out = append(out, " "...)
			} else {
				out = append(out, " "...)
			}
			i += 6
			run = 0
			continue
		}
		if b[i] == '\\' {
			run++
		} else {
			run = 0
		}
		out = append(out, b[i])
		i++
	}
	return out
}
