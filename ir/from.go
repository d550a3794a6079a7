package ir

import (
	"encoding"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"
)

// FromAny normalizes an arbitrary Go value into a Node.  Opaque
// identifier types are rendered to their canonical string form: anything
// implementing encoding.TextMarshaler or fmt.Stringer becomes a string
// node, so two representations of the same logical id compare equal.
// Map keys are emitted in sorted order since Go maps carry none.
func FromAny(v any) *Node {
	switch x := v.(type) {
	case nil:
		return Null()
	case *Node:
		return x.Clone()
	case bool:
		return FromBool(x)
	case string:
		return FromString(x)
	case json.Number:
		return FromNumber(x)
	case int:
		return FromInt(int64(x))
	case int32:
		return FromInt(int64(x))
	case int64:
		return FromInt(x)
	case uint64:
		return FromNumber(json.Number(fmt.Sprintf("%d", x)))
	case float32:
		return FromFloat(float64(x))
	case float64:
		return FromFloat(x)
	case time.Time:
		return FromString(x.UTC().Format(time.RFC3339Nano))
	case []byte:
		return FromString(string(x))
	case map[string]any:
		res := Object()
		for _, k := range slices.Sorted(maps.Keys(x)) {
			res.Set(k, FromAny(x[k]))
		}
		return res
	case []any:
		res := Array()
		for _, e := range x {
			res.Values = append(res.Values, FromAny(e))
		}
		return res
	case encoding.TextMarshaler:
		d, err := x.MarshalText()
		if err == nil {
			return FromString(string(d))
		}
		return FromString(fmt.Sprintf("%v", x))
	case fmt.Stringer:
		return FromString(x.String())
	default:
		// last resort: round-trip through JSON
		d, err := json.Marshal(v)
		if err != nil {
			return FromString(fmt.Sprintf("%v", v))
		}
		n, err := FromJSON(d)
		if err != nil {
			return FromString(string(d))
		}
		return n
	}
}

// ToAny converts a Node to plain Go values, objects becoming
// map[string]any.  Field order is lost; use this only where order does
// not matter, such as expression environments.
func (y *Node) ToAny() any {
	if y == nil {
		return nil
	}
	switch y.Type {
	case NullType:
		return nil
	case BoolType:
		return y.Bool
	case StringType:
		return y.String
	case NumberType:
		if i, err := y.Number.Int64(); err == nil {
			return i
		}
		f, _ := y.Number.Float64()
		return f
	case ArrayType:
		res := make([]any, len(y.Values))
		for i, v := range y.Values {
			res[i] = v.ToAny()
		}
		return res
	case ObjectType:
		res := make(map[string]any, len(y.Fields))
		for i, f := range y.Fields {
			res[f] = y.Values[i].ToAny()
		}
		return res
	default:
		panic("type")
	}
}
