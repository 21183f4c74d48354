package layout

import (
	"encoding/binary"
	"math"

	"github.com/roach88/sigil/internal/schema"
)

// scalarLayout encodes a fixed-width primitive little-endian.
type scalarLayout struct {
	path string
	kind schema.ScalarKind
}

func (l *scalarLayout) FixedSize() (int, bool) { return l.kind.Width(), true }
func (l *scalarLayout) MinSize() int           { return l.kind.Width() }

func (l *scalarLayout) SizeOf(v schema.Value) (int, error) {
	return l.kind.Width(), nil
}

func (l *scalarLayout) Put(v schema.Value, buf []byte, off int) (int, error) {
	w := l.kind.Width()
	if off+w > len(buf) {
		return 0, valueErr(l.path, "destination buffer too small")
	}
	dst := buf[off : off+w]

	switch {
	case l.kind == schema.KindBool:
		b, ok := v.(schema.Bool)
		if !ok {
			return 0, valueErr(l.path, "expected bool, got %T", v)
		}
		if b {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
	case l.kind == schema.KindU128:
		u, ok := v.(schema.Uint128)
		if !ok {
			return 0, valueErr(l.path, "expected u128, got %T", v)
		}
		binary.LittleEndian.PutUint64(dst[0:8], u.Lo)
		binary.LittleEndian.PutUint64(dst[8:16], u.Hi)
	case l.kind == schema.KindI128:
		u, ok := v.(schema.Int128)
		if !ok {
			return 0, valueErr(l.path, "expected i128, got %T", v)
		}
		binary.LittleEndian.PutUint64(dst[0:8], u.Lo)
		binary.LittleEndian.PutUint64(dst[8:16], u.Hi)
	case l.kind == schema.KindF32:
		f, ok := v.(schema.Float)
		if !ok {
			return 0, valueErr(l.path, "expected float, got %T", v)
		}
		binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(f)))
	case l.kind == schema.KindF64:
		f, ok := v.(schema.Float)
		if !ok {
			return 0, valueErr(l.path, "expected float, got %T", v)
		}
		binary.LittleEndian.PutUint64(dst, math.Float64bits(float64(f)))
	case l.kind.Signed():
		n, ok := v.(schema.Int)
		if !ok {
			return 0, valueErr(l.path, "expected %s, got %T", l.kind, v)
		}
		if w < 8 {
			limit := int64(1) << (8*w - 1)
			if int64(n) >= limit || int64(n) < -limit {
				return 0, valueErr(l.path, "%d out of range for %s", int64(n), l.kind)
			}
		}
		putUintLE(dst, uint64(n), w)
	default:
		n, ok := v.(schema.Uint)
		if !ok {
			return 0, valueErr(l.path, "expected %s, got %T", l.kind, v)
		}
		if w < 8 && uint64(n) >= 1<<(8*w) {
			return 0, valueErr(l.path, "%d out of range for %s", uint64(n), l.kind)
		}
		putUintLE(dst, uint64(n), w)
	}
	return w, nil
}

func (l *scalarLayout) Get(buf []byte, off int) (schema.Value, int, error) {
	w := l.kind.Width()
	if off+w > len(buf) {
		return nil, 0, shortBuffer(l.path, off, w, len(buf)-off)
	}
	src := buf[off : off+w]

	switch {
	case l.kind == schema.KindBool:
		return schema.Bool(src[0] != 0), w, nil
	case l.kind == schema.KindU128:
		return schema.Uint128{
			Lo: binary.LittleEndian.Uint64(src[0:8]),
			Hi: binary.LittleEndian.Uint64(src[8:16]),
		}, w, nil
	case l.kind == schema.KindI128:
		return schema.Int128{
			Lo: binary.LittleEndian.Uint64(src[0:8]),
			Hi: binary.LittleEndian.Uint64(src[8:16]),
		}, w, nil
	case l.kind == schema.KindF32:
		return schema.Float(math.Float32frombits(binary.LittleEndian.Uint32(src))), w, nil
	case l.kind == schema.KindF64:
		return schema.Float(math.Float64frombits(binary.LittleEndian.Uint64(src))), w, nil
	case l.kind.Signed():
		return schema.Int(signExtend(getUintLE(src, w), w)), w, nil
	default:
		return schema.Uint(getUintLE(src, w)), w, nil
	}
}

// bytesLayout encodes a u32 length prefix followed by raw bytes. It also
// serves strings, u8 vectors and u8 fixed arrays (fixed arrays skip the
// prefix).
type bytesLayout struct {
	path     string
	asString bool
}

func (l *bytesLayout) FixedSize() (int, bool) { return 0, false }
func (l *bytesLayout) MinSize() int           { return 4 }

func (l *bytesLayout) SizeOf(v schema.Value) (int, error) {
	b, err := l.raw(v)
	if err != nil {
		return 0, err
	}
	return 4 + len(b), nil
}

func (l *bytesLayout) raw(v schema.Value) ([]byte, error) {
	if l.asString {
		s, ok := v.(schema.String)
		if !ok {
			return nil, valueErr(l.path, "expected string, got %T", v)
		}
		return []byte(s), nil
	}
	b, ok := v.(schema.Bytes)
	if !ok {
		return nil, valueErr(l.path, "expected bytes, got %T", v)
	}
	return b, nil
}

func (l *bytesLayout) Put(v schema.Value, buf []byte, off int) (int, error) {
	b, err := l.raw(v)
	if err != nil {
		return 0, err
	}
	if off+4+len(b) > len(buf) {
		return 0, valueErr(l.path, "destination buffer too small")
	}
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(b)))
	copy(buf[off+4:], b)
	return 4 + len(b), nil
}

func (l *bytesLayout) Get(buf []byte, off int) (schema.Value, int, error) {
	if off+4 > len(buf) {
		return nil, 0, shortBuffer(l.path, off, 4, len(buf)-off)
	}
	n := int(binary.LittleEndian.Uint32(buf[off:]))
	if off+4+n > len(buf) {
		return nil, 0, &DecodeError{
			Path:    l.path,
			Offset:  off,
			Message: "length prefix exceeds remaining buffer",
		}
	}
	raw := make([]byte, n)
	copy(raw, buf[off+4:off+4+n])
	if l.asString {
		return schema.String(raw), 4 + n, nil
	}
	return schema.Bytes(raw), 4 + n, nil
}

func putUintLE(dst []byte, v uint64, w int) {
	for i := 0; i < w; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}

func getUintLE(src []byte, w int) uint64 {
	var v uint64
	for i := 0; i < w; i++ {
		v |= uint64(src[i]) << (8 * i)
	}
	return v
}

func signExtend(v uint64, w int) int64 {
	shift := 64 - 8*w
	return int64(v<<shift) >> shift
}
