package shapec

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShapeOf(t *testing.T) {
	type record struct {
		A int32
		B string
	}
	cases := []struct {
		name string
		typ  reflect.Type
		want Shape
	}{
		{"bool", reflect.TypeOf(false), ShapePrimitive},
		{"int", reflect.TypeOf(int(0)), ShapePrimitive},
		{"int32", reflect.TypeOf(int32(0)), ShapePrimitive},
		{"uint64", reflect.TypeOf(uint64(0)), ShapePrimitive},
		{"float64", reflect.TypeOf(float64(0)), ShapePrimitive},
		{"option", reflect.TypeOf(Option[int32]{}), ShapeNullable},
		{"option of record", reflect.TypeOf(Option[record]{}), ShapeNullable},
		{"pointer", reflect.TypeOf(&record{}), ShapeOwnedRef},
		{"pointer to primitive", reflect.TypeOf(new(int64)), ShapeOwnedRef},
		{"pair", reflect.TypeOf(Pair[int32, string]{}), ShapeProduct},
		{"triple", reflect.TypeOf(Triple[bool, bool, bool]{}), ShapeProduct},
		{"array", reflect.TypeOf([4]float32{}), ShapeProduct},
		{"record", reflect.TypeOf(record{}), ShapeRecord},
		{"slice", reflect.TypeOf([]record{}), ShapeSequence},
		{"string", reflect.TypeOf(""), ShapeSequence},
		{"map", reflect.TypeOf(map[string]int32{}), ShapeSequence},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ShapeOf(tc.typ)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

// The carrier types are plain structs; classification must still pick the
// more specific shape ahead of the record case.
func TestShapePrecedence(t *testing.T) {
	got, err := ShapeOf(reflect.TypeOf(Option[Pair[int32, string]]{}))
	require.NoError(t, err)
	require.Equal(t, ShapeNullable, got)

	got, err = ShapeOf(reflect.TypeOf(Pair[Option[int32], [2]bool]{}))
	require.NoError(t, err)
	require.Equal(t, ShapeProduct, got)

	// A user struct whose name resembles a carrier stays a record.
	type OptionLike struct{ Valid bool }
	got, err = ShapeOf(reflect.TypeOf(OptionLike{}))
	require.NoError(t, err)
	require.Equal(t, ShapeRecord, got)
}

func TestShapeOfUnsupported(t *testing.T) {
	for _, typ := range []reflect.Type{
		reflect.TypeOf(make(chan int)),
		reflect.TypeOf(func() {}),
		reflect.TypeOf((*error)(nil)).Elem(),
		reflect.TypeOf(uintptr(0)),
		reflect.TypeOf(complex128(0)),
	} {
		_, err := ShapeOf(typ)
		require.ErrorIs(t, err, ErrUnsupported, "type %s", typ)
	}
}

func TestShapeString(t *testing.T) {
	names := map[Shape]string{
		ShapePrimitive: "primitive",
		ShapeNullable:  "nullable",
		ShapeOwnedRef:  "owned reference",
		ShapeProduct:   "product",
		ShapeRecord:    "record",
		ShapeSequence:  "sequence",
		Shape(99):      "invalid",
	}
	for shape, want := range names {
		require.Equal(t, want, shape.String())
	}
}

func TestPlanCaching(t *testing.T) {
	type record struct {
		A int32
		b int32
		C int32
	}
	first := planFor(reflect.TypeOf(record{}))
	second := planFor(reflect.TypeOf(record{}))
	require.Same(t, first, second)
	require.Equal(t, []int{0, 2}, first.fields)
}

// Embedded unexported fields are not settable through reflection, so the
// plan must leave them out just like named unexported fields.
func TestPlanSkipsUnexportedEmbedded(t *testing.T) {
	type inner struct{ V int32 }
	type outer struct {
		inner
		Y bool
	}
	pl := planFor(reflect.TypeOf(outer{}))
	require.Equal(t, []int{1}, pl.fields)
}
