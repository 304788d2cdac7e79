// Package wire holds the fixed-width primitive layer of the binary format:
// little-endian integers, IEEE 754 bit patterns, and the 8-byte element
// counts used by variable-length shapes.
package wire

import (
	"encoding/binary"
	"math"
	"reflect"
)

// CountSize is the width of a sequence element count on the wire.
const CountSize = 8

// FlagSize is the width of a presence flag on the wire.
const FlagSize = 1

// IsFixedKind reports whether k is a fixed-size scalar kind.
func IsFixedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// Size returns the encoded width of a fixed-size scalar type. This is the
// type's in-memory size, so int and uint are 8 bytes on 64-bit targets.
func Size(t reflect.Type) int {
	return int(t.Size())
}

// PutPrimitive writes v little-endian into dst and returns the width.
// dst must have at least Size(v.Type()) bytes.
func PutPrimitive(dst []byte, v reflect.Value) int {
	w := Size(v.Type())
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		putUintLE(dst, uint64(v.Int()), w)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		putUintLE(dst, v.Uint(), w)
	case reflect.Float32:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(v.Float())))
	case reflect.Float64:
		binary.LittleEndian.PutUint64(dst, math.Float64bits(v.Float()))
	default:
		panic("wire: not a fixed kind")
	}
	return w
}

// SetPrimitive decodes a little-endian scalar from b into dst.
// b must have at least Size(dst.Type()) bytes.
func SetPrimitive(dst reflect.Value, b []byte) {
	w := Size(dst.Type())
	switch dst.Kind() {
	case reflect.Bool:
		dst.SetBool(b[0] != 0)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		x := uintLE(b, w)
		shift := uint(64 - 8*w)
		dst.SetInt(int64(x<<shift) >> shift)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		dst.SetUint(uintLE(b, w))
	case reflect.Float32:
		dst.SetFloat(float64(math.Float32frombits(binary.LittleEndian.Uint32(b))))
	case reflect.Float64:
		dst.SetFloat(math.Float64frombits(binary.LittleEndian.Uint64(b)))
	default:
		panic("wire: not a fixed kind")
	}
}

// PutCount writes an element count.
func PutCount(dst []byte, n uint64) {
	binary.LittleEndian.PutUint64(dst, n)
}

// Count reads an element count.
func Count(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

func putUintLE(dst []byte, x uint64, w int) {
	for i := 0; i < w; i++ {
		dst[i] = byte(x >> (8 * uint(i)))
	}
}

func uintLE(b []byte, w int) uint64 {
	var x uint64
	for i := 0; i < w; i++ {
		x |= uint64(b[i]) << (8 * uint(i))
	}
	return x
}
