package layout

import (
	"encoding/binary"

	"github.com/roach88/sigil/internal/schema"
)

// byteArrayLayout encodes a fixed-size u8 array: raw bytes, no prefix.
// The canonical value form is Bytes; Array of Uint is accepted on encode
// for convenience.
type byteArrayLayout struct {
	path string
	n    int
}

func (l *byteArrayLayout) FixedSize() (int, bool) { return l.n, true }
func (l *byteArrayLayout) MinSize() int           { return l.n }

func (l *byteArrayLayout) SizeOf(v schema.Value) (int, error) {
	if _, err := l.raw(v); err != nil {
		return 0, err
	}
	return l.n, nil
}

func (l *byteArrayLayout) raw(v schema.Value) ([]byte, error) {
	switch val := v.(type) {
	case schema.Bytes:
		if len(val) != l.n {
			return nil, valueErr(l.path, "expected %d bytes, got %d", l.n, len(val))
		}
		return val, nil
	case schema.Array:
		if len(val) != l.n {
			return nil, valueErr(l.path, "expected %d elements, got %d", l.n, len(val))
		}
		out := make([]byte, l.n)
		for i, e := range val {
			u, ok := e.(schema.Uint)
			if !ok || u > 0xff {
				return nil, valueErr(l.path, "element %d is not a byte", i)
			}
			out[i] = byte(u)
		}
		return out, nil
	default:
		return nil, valueErr(l.path, "expected bytes, got %T", v)
	}
}

func (l *byteArrayLayout) Put(v schema.Value, buf []byte, off int) (int, error) {
	b, err := l.raw(v)
	if err != nil {
		return 0, err
	}
	if off+l.n > len(buf) {
		return 0, valueErr(l.path, "destination buffer too small")
	}
	copy(buf[off:], b)
	return l.n, nil
}

func (l *byteArrayLayout) Get(buf []byte, off int) (schema.Value, int, error) {
	if off+l.n > len(buf) {
		return nil, 0, shortBuffer(l.path, off, l.n, len(buf)-off)
	}
	out := make(schema.Bytes, l.n)
	copy(out, buf[off:off+l.n])
	return out, l.n, nil
}

// arrayLayout encodes a fixed-size array: n elements in order, no prefix.
type arrayLayout struct {
	path string
	elem Layout
	n    int
}

func (l *arrayLayout) FixedSize() (int, bool) {
	w, ok := l.elem.FixedSize()
	if !ok {
		return 0, false
	}
	return w * l.n, true
}

func (l *arrayLayout) MinSize() int { return l.elem.MinSize() * l.n }

func (l *arrayLayout) SizeOf(v schema.Value) (int, error) {
	arr, ok := v.(schema.Array)
	if !ok {
		return 0, valueErr(l.path, "expected array, got %T", v)
	}
	if len(arr) != l.n {
		return 0, valueErr(l.path, "expected %d elements, got %d", l.n, len(arr))
	}
	total := 0
	for _, e := range arr {
		n, err := l.elem.SizeOf(e)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (l *arrayLayout) Put(v schema.Value, buf []byte, off int) (int, error) {
	arr, ok := v.(schema.Array)
	if !ok {
		return 0, valueErr(l.path, "expected array, got %T", v)
	}
	if len(arr) != l.n {
		return 0, valueErr(l.path, "expected %d elements, got %d", l.n, len(arr))
	}
	written := 0
	for _, e := range arr {
		n, err := l.elem.Put(e, buf, off+written)
		if err != nil {
			return 0, err
		}
		written += n
	}
	return written, nil
}

func (l *arrayLayout) Get(buf []byte, off int) (schema.Value, int, error) {
	out := make(schema.Array, l.n)
	read := 0
	for i := 0; i < l.n; i++ {
		e, n, err := l.elem.Get(buf, off+read)
		if err != nil {
			return nil, 0, err
		}
		out[i] = e
		read += n
	}
	return out, read, nil
}

// vectorLayout encodes a u32 length prefix followed by that many
// elements. Element count is unbounded by the schema; the length prefix
// is validated against the remaining buffer on decode.
type vectorLayout struct {
	path string
	elem Layout
}

func (l *vectorLayout) FixedSize() (int, bool) { return 0, false }
func (l *vectorLayout) MinSize() int           { return 4 }

func (l *vectorLayout) SizeOf(v schema.Value) (int, error) {
	arr, ok := v.(schema.Array)
	if !ok {
		return 0, valueErr(l.path, "expected array, got %T", v)
	}
	total := 4
	for _, e := range arr {
		n, err := l.elem.SizeOf(e)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (l *vectorLayout) Put(v schema.Value, buf []byte, off int) (int, error) {
	arr, ok := v.(schema.Array)
	if !ok {
		return 0, valueErr(l.path, "expected array, got %T", v)
	}
	if off+4 > len(buf) {
		return 0, valueErr(l.path, "destination buffer too small")
	}
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(arr)))
	written := 4
	for _, e := range arr {
		n, err := l.elem.Put(e, buf, off+written)
		if err != nil {
			return 0, err
		}
		written += n
	}
	return written, nil
}

func (l *vectorLayout) Get(buf []byte, off int) (schema.Value, int, error) {
	if off+4 > len(buf) {
		return nil, 0, shortBuffer(l.path, off, 4, len(buf)-off)
	}
	count := int(binary.LittleEndian.Uint32(buf[off:]))
	// Each element consumes at least MinSize bytes, so a prefix claiming
	// more elements than the remaining buffer can hold fails up front
	// instead of after a huge allocation.
	if min := l.elem.MinSize(); min > 0 && count > (len(buf)-off-4)/min {
		return nil, 0, &DecodeError{
			Path:    l.path,
			Offset:  off,
			Message: "length prefix exceeds remaining buffer",
		}
	}
	out := make(schema.Array, 0, count)
	read := 4
	for i := 0; i < count; i++ {
		e, n, err := l.elem.Get(buf, off+read)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
		read += n
	}
	return out, read, nil
}

// optionLayout encodes a one-byte presence flag followed by the inner
// encoding only when present.
type optionLayout struct {
	path string
	elem Layout
}

func (l *optionLayout) FixedSize() (int, bool) { return 0, false }
func (l *optionLayout) MinSize() int           { return 1 }

func (l *optionLayout) SizeOf(v schema.Value) (int, error) {
	opt, ok := v.(schema.Option)
	if !ok {
		return 0, valueErr(l.path, "expected option, got %T", v)
	}
	if !opt.Present {
		return 1, nil
	}
	n, err := l.elem.SizeOf(opt.Elem)
	if err != nil {
		return 0, err
	}
	return 1 + n, nil
}

func (l *optionLayout) Put(v schema.Value, buf []byte, off int) (int, error) {
	opt, ok := v.(schema.Option)
	if !ok {
		return 0, valueErr(l.path, "expected option, got %T", v)
	}
	if off+1 > len(buf) {
		return 0, valueErr(l.path, "destination buffer too small")
	}
	if !opt.Present {
		buf[off] = 0
		return 1, nil
	}
	buf[off] = 1
	n, err := l.elem.Put(opt.Elem, buf, off+1)
	if err != nil {
		return 0, err
	}
	return 1 + n, nil
}

func (l *optionLayout) Get(buf []byte, off int) (schema.Value, int, error) {
	if off+1 > len(buf) {
		return nil, 0, shortBuffer(l.path, off, 1, len(buf)-off)
	}
	switch buf[off] {
	case 0:
		return schema.None(), 1, nil
	case 1:
		e, n, err := l.elem.Get(buf, off+1)
		if err != nil {
			return nil, 0, err
		}
		return schema.Some(e), 1 + n, nil
	default:
		return nil, 0, &DecodeError{
			Path:    l.path,
			Offset:  off,
			Message: "invalid presence flag",
		}
	}
}

// fieldLayout pairs a field name with its compiled layout.
type fieldLayout struct {
	name string
	lay  Layout
}

// structLayout encodes fields strictly in declaration order, no padding.
type structLayout struct {
	path   string
	fields []fieldLayout
}

func (l *structLayout) FixedSize() (int, bool) {
	total := 0
	for _, f := range l.fields {
		w, ok := f.lay.FixedSize()
		if !ok {
			return 0, false
		}
		total += w
	}
	return total, true
}

func (l *structLayout) MinSize() int {
	total := 0
	for _, f := range l.fields {
		total += f.lay.MinSize()
	}
	return total
}

func (l *structLayout) SizeOf(v schema.Value) (int, error) {
	obj, ok := v.(schema.Struct)
	if !ok {
		return 0, valueErr(l.path, "expected struct, got %T", v)
	}
	total := 0
	for _, f := range l.fields {
		fv, ok := obj[f.name]
		if !ok {
			return 0, valueErr(l.path, "missing field %s", f.name)
		}
		n, err := f.lay.SizeOf(fv)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (l *structLayout) Put(v schema.Value, buf []byte, off int) (int, error) {
	obj, ok := v.(schema.Struct)
	if !ok {
		return 0, valueErr(l.path, "expected struct, got %T", v)
	}
	written := 0
	for _, f := range l.fields {
		fv, ok := obj[f.name]
		if !ok {
			return 0, valueErr(l.path, "missing field %s", f.name)
		}
		n, err := f.lay.Put(fv, buf, off+written)
		if err != nil {
			return 0, err
		}
		written += n
	}
	return written, nil
}

func (l *structLayout) Get(buf []byte, off int) (schema.Value, int, error) {
	out := make(schema.Struct, len(l.fields))
	read := 0
	for _, f := range l.fields {
		fv, n, err := f.lay.Get(buf, off+read)
		if err != nil {
			return nil, 0, err
		}
		out[f.name] = fv
		read += n
	}
	return out, read, nil
}

// variantLayout is one enum variant: its name and payload field layouts.
// fields is nil for dataless variants.
type variantLayout struct {
	name   string
	fields []fieldLayout
}

// enumLayout encodes a one-byte variant-index tag followed by the
// variant's payload fields in order.
type enumLayout struct {
	path     string
	variants []variantLayout
	byName   map[string]int
}

func (l *enumLayout) FixedSize() (int, bool) {
	// Fixed only when every variant carries no payload: the encoding is
	// then always the single tag byte.
	for _, v := range l.variants {
		if len(v.fields) > 0 {
			return 0, false
		}
	}
	return 1, true
}

func (l *enumLayout) MinSize() int { return 1 }

func (l *enumLayout) variant(v schema.Value) (int, schema.Variant, error) {
	va, ok := v.(schema.Variant)
	if !ok {
		return 0, schema.Variant{}, valueErr(l.path, "expected enum variant, got %T", v)
	}
	idx, ok := l.byName[va.Name]
	if !ok {
		return 0, schema.Variant{}, valueErr(l.path, "unknown variant %q", va.Name)
	}
	return idx, va, nil
}

func (l *enumLayout) SizeOf(v schema.Value) (int, error) {
	idx, va, err := l.variant(v)
	if err != nil {
		return 0, err
	}
	total := 1
	for _, f := range l.variants[idx].fields {
		fv, ok := va.Fields[f.name]
		if !ok {
			return 0, valueErr(l.path, "variant %s: missing field %s", va.Name, f.name)
		}
		n, err := f.lay.SizeOf(fv)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (l *enumLayout) Put(v schema.Value, buf []byte, off int) (int, error) {
	idx, va, err := l.variant(v)
	if err != nil {
		return 0, err
	}
	if off+1 > len(buf) {
		return 0, valueErr(l.path, "destination buffer too small")
	}
	buf[off] = byte(idx)
	written := 1
	for _, f := range l.variants[idx].fields {
		fv, ok := va.Fields[f.name]
		if !ok {
			return 0, valueErr(l.path, "variant %s: missing field %s", va.Name, f.name)
		}
		n, err := f.lay.Put(fv, buf, off+written)
		if err != nil {
			return 0, err
		}
		written += n
	}
	return written, nil
}

func (l *enumLayout) Get(buf []byte, off int) (schema.Value, int, error) {
	if off+1 > len(buf) {
		return nil, 0, shortBuffer(l.path, off, 1, len(buf)-off)
	}
	idx := int(buf[off])
	if idx >= len(l.variants) {
		return nil, 0, &DecodeError{
			Path:    l.path,
			Offset:  off,
			Message: "variant tag out of range",
		}
	}
	variant := l.variants[idx]
	if len(variant.fields) == 0 {
		return schema.Variant{Name: variant.name}, 1, nil
	}
	fields := make(schema.Struct, len(variant.fields))
	read := 1
	for _, f := range variant.fields {
		fv, n, err := f.lay.Get(buf, off+read)
		if err != nil {
			return nil, 0, err
		}
		fields[f.name] = fv
		read += n
	}
	return schema.Variant{Name: variant.name, Fields: fields}, read, nil
}

// refLayout delegates to a named type's compiled layout through the
// compiler cache entry. The entry's body is nil only while that type is
// itself being compiled, which can only happen on a recursive path; such
// paths are never fixed-width.
type refLayout struct {
	entry *namedEntry
}

func (l *refLayout) FixedSize() (int, bool) {
	if l.entry.body == nil {
		return 0, false
	}
	return l.entry.body.FixedSize()
}

func (l *refLayout) MinSize() int {
	if l.entry.body == nil {
		// In-progress cycle; cycles pass through an option or vector,
		// whose MinSize does not include the referenced type.
		return 0
	}
	return l.entry.body.MinSize()
}

func (l *refLayout) SizeOf(v schema.Value) (int, error) {
	return l.entry.body.SizeOf(v)
}

func (l *refLayout) Put(v schema.Value, buf []byte, off int) (int, error) {
	return l.entry.body.Put(v, buf, off)
}

func (l *refLayout) Get(buf []byte, off int) (schema.Value, int, error) {
	return l.entry.body.Get(buf, off)
}
