package shapec

import (
	"fmt"
	"math"
	"os"
	"reflect"
	"sort"

	"github.com/shapec/shapec/internal/wire"
)

// cursor is a monotonically advancing view over a byte sequence. Bytes
// handed out by take are never revisited.
type cursor struct {
	data []byte
	off  int
}

func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || len(c.data)-c.off < n {
		return nil, fmt.Errorf("%w: need %d bytes, %d remain", ErrTruncatedInput, n, len(c.data)-c.off)
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) remaining() int {
	return len(c.data) - c.off
}

// Length returns the exact number of bytes Dump will produce for v.
func Length(v any) (int, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return 0, fmt.Errorf("%w: untyped nil", ErrUnsupported)
	}
	return length(rv)
}

// Dump encodes v into its binary form: length is computed first, a buffer
// of exactly that capacity is allocated, and the value is written in one
// left-to-right pass. Dump only fails when v contains an unserializable
// type.
func Dump(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, fmt.Errorf("%w: untyped nil", ErrUnsupported)
	}
	n, err := length(rv)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := write(rv, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Load decodes a value of type T from data. The stream carries no type
// tags, so T must be the exact type that was dumped. Trailing bytes after
// the value are ignored.
func Load[T any](data []byte) (T, error) {
	var zero T
	cur := &cursor{data: data}
	rv, err := read(reflect.TypeOf((*T)(nil)).Elem(), cur)
	if err != nil {
		return zero, err
	}
	return rv.Interface().(T), nil
}

// DumpFile writes the binary form of v to path. The file holds the raw
// stream, no header or framing.
func DumpFile(v any, path string) error {
	data, err := Dump(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadFile reads path and decodes a value of type T from its contents.
func LoadFile[T any](path string) (T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		var zero T
		return zero, err
	}
	return Load[T](data)
}

func length(v reflect.Value) (int, error) {
	shape, err := ShapeOf(v.Type())
	if err != nil {
		return 0, err
	}
	switch shape {
	case ShapePrimitive:
		return wire.Size(v.Type()), nil

	case ShapeNullable:
		if !v.Field(0).Bool() {
			return wire.FlagSize, nil
		}
		n, err := length(v.Field(1))
		if err != nil {
			return 0, err
		}
		return wire.FlagSize + n, nil

	case ShapeOwnedRef:
		if v.IsNil() {
			return wire.FlagSize, nil
		}
		n, err := length(v.Elem())
		if err != nil {
			return 0, err
		}
		return wire.FlagSize + n, nil

	case ShapeProduct:
		total := 0
		for i := 0; i < productLen(v); i++ {
			n, err := length(productElem(v, i))
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil

	case ShapeRecord:
		total := 0
		for _, idx := range planFor(v.Type()).fields {
			n, err := length(v.Field(idx))
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil

	default: // ShapeSequence
		switch v.Kind() {
		case reflect.String:
			return wire.CountSize + v.Len(), nil
		case reflect.Slice:
			total := wire.CountSize
			for i := 0; i < v.Len(); i++ {
				n, err := length(v.Index(i))
				if err != nil {
					return 0, err
				}
				total += n
			}
			return total, nil
		default: // map
			total := wire.CountSize
			iter := v.MapRange()
			for iter.Next() {
				kn, err := length(iter.Key())
				if err != nil {
					return 0, err
				}
				vn, err := length(iter.Value())
				if err != nil {
					return 0, err
				}
				total += kn + vn
			}
			return total, nil
		}
	}
}

// write encodes v into buf and returns the number of bytes written, which
// always equals length(v).
func write(v reflect.Value, buf []byte) (int, error) {
	shape, err := ShapeOf(v.Type())
	if err != nil {
		return 0, err
	}
	switch shape {
	case ShapePrimitive:
		return wire.PutPrimitive(buf, v), nil

	case ShapeNullable:
		return writePresent(v.Field(0).Bool(), v.Field(1), buf)

	case ShapeOwnedRef:
		if v.IsNil() {
			return writePresent(false, reflect.Value{}, buf)
		}
		return writePresent(true, v.Elem(), buf)

	case ShapeProduct:
		off := 0
		for i := 0; i < productLen(v); i++ {
			n, err := write(productElem(v, i), buf[off:])
			if err != nil {
				return 0, err
			}
			off += n
		}
		return off, nil

	case ShapeRecord:
		off := 0
		for _, idx := range planFor(v.Type()).fields {
			n, err := write(v.Field(idx), buf[off:])
			if err != nil {
				return 0, err
			}
			off += n
		}
		return off, nil

	default: // ShapeSequence
		switch v.Kind() {
		case reflect.String:
			wire.PutCount(buf, uint64(v.Len()))
			return wire.CountSize + copy(buf[wire.CountSize:], v.String()), nil
		case reflect.Slice:
			wire.PutCount(buf, uint64(v.Len()))
			off := wire.CountSize
			for i := 0; i < v.Len(); i++ {
				n, err := write(v.Index(i), buf[off:])
				if err != nil {
					return 0, err
				}
				off += n
			}
			return off, nil
		default: // map, entries in sorted key order
			wire.PutCount(buf, uint64(v.Len()))
			off := wire.CountSize
			for _, key := range sortedMapKeys(v) {
				n, err := write(key, buf[off:])
				if err != nil {
					return 0, err
				}
				off += n
				n, err = write(v.MapIndex(key), buf[off:])
				if err != nil {
					return 0, err
				}
				off += n
			}
			return off, nil
		}
	}
}

func writePresent(present bool, inner reflect.Value, buf []byte) (int, error) {
	if !present {
		buf[0] = 0
		return wire.FlagSize, nil
	}
	buf[0] = 1
	n, err := write(inner, buf[wire.FlagSize:])
	if err != nil {
		return 0, err
	}
	return wire.FlagSize + n, nil
}

// read decodes a value of type t from cur, advancing it by exactly the
// value's encoded length.
func read(t reflect.Type, cur *cursor) (reflect.Value, error) {
	shape, err := ShapeOf(t)
	if err != nil {
		return reflect.Value{}, err
	}
	switch shape {
	case ShapePrimitive:
		b, err := cur.take(wire.Size(t))
		if err != nil {
			return reflect.Value{}, err
		}
		nv := reflect.New(t).Elem()
		wire.SetPrimitive(nv, b)
		return nv, nil

	case ShapeNullable:
		nv := reflect.New(t).Elem()
		present, err := readFlag(cur)
		if err != nil {
			return reflect.Value{}, err
		}
		if present {
			inner, err := read(t.Field(1).Type, cur)
			if err != nil {
				return reflect.Value{}, err
			}
			nv.Field(0).SetBool(true)
			nv.Field(1).Set(inner)
		}
		return nv, nil

	case ShapeOwnedRef:
		nv := reflect.New(t).Elem()
		present, err := readFlag(cur)
		if err != nil {
			return reflect.Value{}, err
		}
		if present {
			inner, err := read(t.Elem(), cur)
			if err != nil {
				return reflect.Value{}, err
			}
			ptr := reflect.New(t.Elem())
			ptr.Elem().Set(inner)
			nv.Set(ptr.Convert(t))
		}
		return nv, nil

	case ShapeProduct:
		nv := reflect.New(t).Elem()
		for i := 0; i < productLen(nv); i++ {
			elem := productElem(nv, i)
			ev, err := read(elem.Type(), cur)
			if err != nil {
				return reflect.Value{}, err
			}
			elem.Set(ev)
		}
		return nv, nil

	case ShapeRecord:
		nv := reflect.New(t).Elem()
		for _, idx := range planFor(t).fields {
			fv, err := read(t.Field(idx).Type, cur)
			if err != nil {
				return reflect.Value{}, err
			}
			nv.Field(idx).Set(fv)
		}
		return nv, nil

	default: // ShapeSequence
		count, err := readCount(cur)
		if err != nil {
			return reflect.Value{}, err
		}
		switch t.Kind() {
		case reflect.String:
			b, err := cur.take(count)
			if err != nil {
				return reflect.Value{}, err
			}
			nv := reflect.New(t).Elem()
			nv.SetString(string(b))
			return nv, nil
		case reflect.Slice:
			s := reflect.MakeSlice(t, 0, 0)
			for i := 0; i < count; i++ {
				ev, err := read(t.Elem(), cur)
				if err != nil {
					return reflect.Value{}, err
				}
				s = reflect.Append(s, ev)
			}
			return s, nil
		default: // map
			m := reflect.MakeMap(t)
			for i := 0; i < count; i++ {
				key, err := read(t.Key(), cur)
				if err != nil {
					return reflect.Value{}, err
				}
				val, err := read(t.Elem(), cur)
				if err != nil {
					return reflect.Value{}, err
				}
				m.SetMapIndex(key, val)
			}
			return m, nil
		}
	}
}

func readFlag(cur *cursor) (bool, error) {
	b, err := cur.take(wire.FlagSize)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func readCount(cur *cursor) (int, error) {
	b, err := cur.take(wire.CountSize)
	if err != nil {
		return 0, err
	}
	count := wire.Count(b)
	if count > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: element count %d", ErrTruncatedInput, count)
	}
	return int(count), nil
}

// sortedMapKeys returns the map keys of v, sorted when the key type has a
// natural order so that encoding is deterministic. Keys of other
// comparable types keep the map's own iteration order.
func sortedMapKeys(v reflect.Value) []reflect.Value {
	keys := v.MapKeys()
	switch v.Type().Key().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Int() < keys[j].Int() })
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Uint() < keys[j].Uint() })
	case reflect.Float32, reflect.Float64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Float() < keys[j].Float() })
	case reflect.String:
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	case reflect.Bool:
		sort.Slice(keys, func(i, j int) bool { return !keys[i].Bool() && keys[j].Bool() })
	}
	return keys
}
