package shapec

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/shapec/shapec/internal/wire"
)

// Shape is the structural category a type is classified into. Every
// serializable type has exactly one shape; the codec for a composite shape
// is defined purely in terms of its constituents' codecs.
type Shape int

const (
	ShapePrimitive Shape = iota
	ShapeNullable
	ShapeOwnedRef
	ShapeProduct
	ShapeRecord
	ShapeSequence
)

func (s Shape) String() string {
	switch s {
	case ShapePrimitive:
		return "primitive"
	case ShapeNullable:
		return "nullable"
	case ShapeOwnedRef:
		return "owned reference"
	case ShapeProduct:
		return "product"
	case ShapeRecord:
		return "record"
	case ShapeSequence:
		return "sequence"
	default:
		return "invalid"
	}
}

const pkgPath = "github.com/shapec/shapec"

// ShapeOf classifies t. The case order realizes the shape precedence:
// primitive, nullable, owned reference, product, record, sequence. The
// carrier types Option, Pair and Triple are structs, so matching them
// ahead of the generic struct case is what keeps classification
// deterministic for types that structurally fit more than one category.
func ShapeOf(t reflect.Type) (Shape, error) {
	switch {
	case wire.IsFixedKind(t.Kind()):
		return ShapePrimitive, nil
	case isCarrier(t, "Option["):
		return ShapeNullable, nil
	case t.Kind() == reflect.Pointer:
		return ShapeOwnedRef, nil
	case isCarrier(t, "Pair[") || isCarrier(t, "Triple[") || t.Kind() == reflect.Array:
		return ShapeProduct, nil
	case t.Kind() == reflect.Struct:
		return ShapeRecord, nil
	case t.Kind() == reflect.Slice || t.Kind() == reflect.Map || t.Kind() == reflect.String:
		return ShapeSequence, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupported, t)
	}
}

func isCarrier(t reflect.Type, prefix string) bool {
	return t.Kind() == reflect.Struct &&
		t.PkgPath() == pkgPath &&
		strings.HasPrefix(t.Name(), prefix)
}

// fieldPlan lists the exported field indices of a record type in
// declaration order. Unexported fields, embedded ones included, take no
// part in serialization: decode rebuilds fields through reflect.Value.Set,
// which refuses values reached through an unexported field.
type fieldPlan struct {
	fields []int
}

var plans = struct {
	sync.RWMutex
	m map[reflect.Type]*fieldPlan
}{m: make(map[reflect.Type]*fieldPlan)}

func planFor(t reflect.Type) *fieldPlan {
	plans.RLock()
	pl, ok := plans.m[t]
	plans.RUnlock()
	if ok {
		return pl
	}

	plans.Lock()
	defer plans.Unlock()
	if pl, ok := plans.m[t]; ok {
		return pl
	}

	pl = &fieldPlan{}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue
		}
		pl.fields = append(pl.fields, i)
	}
	plans.m[t] = pl
	return pl
}

// productLen returns the arity of a product value.
func productLen(v reflect.Value) int {
	if v.Kind() == reflect.Array {
		return v.Len()
	}
	return len(planFor(v.Type()).fields)
}

// productElem returns the i-th positional element of a product value.
// For Pair and Triple that is the i-th exported field; for arrays the
// i-th index.
func productElem(v reflect.Value, i int) reflect.Value {
	if v.Kind() == reflect.Array {
		return v.Index(i)
	}
	return v.Field(planFor(v.Type()).fields[i])
}
