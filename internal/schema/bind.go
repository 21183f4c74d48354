package schema

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
)

// BindValue converts a generic decoded document value (the shapes
// produced by encoding/json with UseNumber, or by yaml.v3) into the
// canonical Value for the given type descriptor. The descriptor guides
// the conversion; bare numbers are ambiguous without it.
//
// Conventions for non-scalar input:
//   - bytes and u8 arrays/vectors: hex string, or a list of numbers
//   - options: null for absent, the inner value for present
//   - 128-bit integers: decimal string or number
//   - enum variants: the variant name for dataless variants, or a
//     single-key map {"Name": {field: value, ...}} for payloads
func BindValue(s *Schema, t TypeDesc, raw any) (Value, error) {
	switch d := t.(type) {
	case ScalarType:
		return bindScalar(d.Kind, raw)
	case BytesType:
		b, err := bindBytes(raw)
		if err != nil {
			return nil, err
		}
		return b, nil
	case StringType:
		str, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
		return String(str), nil
	case ArrayType:
		return bindList(s, d.Elem, raw)
	case VectorType:
		return bindList(s, d.Elem, raw)
	case OptionType:
		if raw == nil {
			return None(), nil
		}
		inner, err := BindValue(s, d.Elem, raw)
		if err != nil {
			return nil, err
		}
		return Some(inner), nil
	case DefinedType:
		def, ok := s.Def(d.Name)
		if !ok {
			return nil, &SchemaError{Type: d.Name, Message: "unresolved type reference"}
		}
		return bindDefined(s, def, raw)
	default:
		return nil, fmt.Errorf("unrecognized type descriptor %T", t)
	}
}

func bindDefined(s *Schema, def *TypeDef, raw any) (Value, error) {
	switch sh := def.Shape.(type) {
	case AliasShape:
		return BindValue(s, sh.Of, raw)
	case StructShape:
		obj, ok := toMap(raw)
		if !ok {
			return nil, fmt.Errorf("type %s: expected object, got %T", def.Name, raw)
		}
		out := make(Struct, len(sh.Fields))
		for _, f := range sh.Fields {
			fv, err := BindValue(s, f.Type, obj[f.Name])
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", def.Name, f.Name, err)
			}
			out[f.Name] = fv
		}
		return out, nil
	case EnumShape:
		return bindVariant(s, def.Name, sh, raw)
	default:
		return nil, fmt.Errorf("type %s: unrecognized shape", def.Name)
	}
}

func bindVariant(s *Schema, enumName string, sh EnumShape, raw any) (Value, error) {
	// Dataless variant as a bare name.
	if name, ok := raw.(string); ok {
		for _, v := range sh.Variants {
			if v.Name == name {
				if len(v.Fields) > 0 {
					return nil, fmt.Errorf("enum %s: variant %s requires fields", enumName, name)
				}
				return Variant{Name: name}, nil
			}
		}
		return nil, fmt.Errorf("enum %s: unknown variant %q", enumName, name)
	}

	obj, ok := toMap(raw)
	if !ok || len(obj) != 1 {
		return nil, fmt.Errorf("enum %s: expected variant name or single-key object, got %T", enumName, raw)
	}
	for name, payload := range obj {
		for _, v := range sh.Variants {
			if v.Name != name {
				continue
			}
			fieldsRaw, ok := toMap(payload)
			if !ok {
				return nil, fmt.Errorf("enum %s: variant %s: expected object payload, got %T", enumName, name, payload)
			}
			fields := make(Struct, len(v.Fields))
			for _, f := range v.Fields {
				fv, err := BindValue(s, f.Type, fieldsRaw[f.Name])
				if err != nil {
					return nil, fmt.Errorf("%s.%s.%s: %w", enumName, name, f.Name, err)
				}
				fields[f.Name] = fv
			}
			return Variant{Name: name, Fields: fields}, nil
		}
		return nil, fmt.Errorf("enum %s: unknown variant %q", enumName, name)
	}
	return nil, fmt.Errorf("enum %s: empty variant object", enumName)
}

func bindScalar(kind ScalarKind, raw any) (Value, error) {
	switch {
	case kind == KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", raw)
		}
		return Bool(b), nil
	case kind == KindU128:
		str, err := toNumericString(raw)
		if err != nil {
			return nil, err
		}
		return ParseUint128(str)
	case kind == KindI128:
		str, err := toNumericString(raw)
		if err != nil {
			return nil, err
		}
		return ParseInt128(str)
	case kind.Float():
		f, err := toFloat(raw)
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	case kind.Signed():
		n, err := toInt64(raw)
		if err != nil {
			return nil, err
		}
		return Int(n), nil
	default:
		n, err := toUint64(raw)
		if err != nil {
			return nil, err
		}
		return Uint(n), nil
	}
}

func bindBytes(raw any) (Bytes, error) {
	switch v := raw.(type) {
	case string:
		b, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid hex bytes: %w", err)
		}
		return Bytes(b), nil
	case []byte:
		return Bytes(v), nil
	case []any:
		out := make(Bytes, len(v))
		for i, e := range v {
			n, err := toUint64(e)
			if err != nil || n > 0xff {
				return nil, fmt.Errorf("byte %d out of range", i)
			}
			out[i] = byte(n)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected hex string or byte list, got %T", raw)
	}
}

func bindList(s *Schema, elem TypeDesc, raw any) (Value, error) {
	// u8 element type binds to Bytes, the canonical form for byte arrays.
	if sc, ok := elem.(ScalarType); ok && sc.Kind == KindU8 {
		return bindBytes(raw)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", raw)
	}
	out := make(Array, len(list))
	for i, e := range list {
		ev, err := BindValue(s, elem, e)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = ev
	}
	return out, nil
}

// Unbind converts a Value back into generic document form suitable for
// encoding/json or yaml.v3 output. It is the inverse of BindValue up to
// the input conventions (bytes render as hex, 128-bit ints as decimal
// strings).
func Unbind(v Value) any {
	switch val := v.(type) {
	case Bool:
		return bool(val)
	case Uint:
		return uint64(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Uint128:
		return val.String()
	case Int128:
		return val.String()
	case Bytes:
		return hex.EncodeToString(val)
	case String:
		return string(val)
	case Array:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = Unbind(e)
		}
		return out
	case Struct:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = Unbind(e)
		}
		return out
	case Option:
		if !val.Present {
			return nil
		}
		return Unbind(val.Elem)
	case Variant:
		if val.Fields == nil {
			return val.Name
		}
		return map[string]any{val.Name: Unbind(val.Fields)}
	default:
		return nil
	}
}

func toMap(raw any) (map[string]any, bool) {
	m, ok := raw.(map[string]any)
	return m, ok
}

func toNumericString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	default:
		return "", fmt.Errorf("expected number or decimal string, got %T", raw)
	}
}

func toUint64(raw any) (uint64, error) {
	switch v := raw.(type) {
	case json.Number:
		return strconv.ParseUint(v.String(), 10, 64)
	case int:
		if v < 0 {
			return 0, fmt.Errorf("negative value %d for unsigned field", v)
		}
		return uint64(v), nil
	case int64:
		if v < 0 {
			return 0, fmt.Errorf("negative value %d for unsigned field", v)
		}
		return uint64(v), nil
	case uint64:
		return v, nil
	case float64:
		if v < 0 || v != float64(uint64(v)) {
			return 0, fmt.Errorf("value %v is not an unsigned integer", v)
		}
		return uint64(v), nil
	default:
		return 0, fmt.Errorf("expected unsigned integer, got %T", raw)
	}
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case json.Number:
		return strconv.ParseInt(v.String(), 10, 64)
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		if v > 1<<63-1 {
			return 0, fmt.Errorf("value %d overflows signed field", v)
		}
		return int64(v), nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("value %v is not an integer", v)
		}
		return int64(v), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", raw)
	}
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case json.Number:
		return v.Float64()
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", raw)
	}
}
