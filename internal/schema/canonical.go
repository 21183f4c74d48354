package schema

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON for a decoded value, used for
// golden-file comparison and content hashing. The rules follow RFC 8785
// where it applies:
//
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. No floats (returns error; float layouts are excluded from golden
//     fixtures because their text rendering is not canonical)
//
// Domain renderings: bytes as lowercase hex strings, 128-bit integers as
// decimal strings, absent options as null, dataless variants as their
// name, payload variants as a single-key object.
func MarshalCanonical(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("nil value")
	case Bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case Uint:
		return []byte(strconv.FormatUint(uint64(val), 10)), nil
	case Int:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case Float:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON: %v", float64(val))
	case Uint128:
		return marshalCanonicalString(val.String())
	case Int128:
		return marshalCanonicalString(val.String())
	case Bytes:
		return marshalCanonicalString(hex.EncodeToString(val))
	case String:
		return marshalCanonicalString(string(val))
	case Array:
		return marshalCanonicalArray(val)
	case Struct:
		return marshalCanonicalObject(val)
	case Option:
		if !val.Present {
			return []byte("null"), nil
		}
		return MarshalCanonical(val.Elem)
	case Variant:
		if val.Fields == nil {
			return marshalCanonicalString(val.Name)
		}
		name, err := marshalCanonicalString(val.Name)
		if err != nil {
			return nil, err
		}
		fields, err := marshalCanonicalObject(val.Fields)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		buf.WriteByte('{')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(fields)
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported value type for canonical JSON: %T", v)
	}
}

func marshalCanonicalArray(arr Array) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := MarshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCanonicalObject(obj Struct) ([]byte, error) {
	keys := sortedKeysUTF16(obj)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalCanonicalString(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		data, err := MarshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("%q: %w", k, err)
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// sortedKeysUTF16 sorts map keys by UTF-16 code units per RFC 8785.
// This differs from byte order for characters outside the BMP.
func sortedKeysUTF16(obj Struct) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a := utf16.Encode([]rune(keys[i]))
		b := utf16.Encode([]rune(keys[j]))
		for x := 0; x < len(a) && x < len(b); x++ {
			if a[x] != b[x] {
				return a[x] < b[x]
			}
		}
		return len(a) < len(b)
	})
	return keys
}

// marshalCanonicalString produces a canonical JSON string with NFC
// normalization, no HTML escaping, and literal U+2028/U+2029 (Go's
// encoder escapes them for JavaScript embedding; RFC 8785 does not).
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}
	result := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return unescapeSeparators(result), nil
}

// unescapeSeparators rewrites \u2028 and \u2029 escape sequences to the
// literal characters. It walks escape sequences left to right, so a
// literal backslash followed by the text "u2028" (encoded as \\u2028)
// is left untouched.
func unescapeSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			i++
			continue
		}
		if i+6 <= len(data) && data[i+1] == 'u' && bytes.Equal(data[i+2:i+5], []byte("202")) &&
			(data[i+5] == '8' || data[i+5] == '9') {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 6
			continue
		}
		// Any other escape sequence: copy the backslash and the escaped
		// character so a following "u202x" is treated as plain text.
		out = append(out, data[i], data[i+1])
		i += 2
	}
	return out
}
