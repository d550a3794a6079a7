// Package ir holds the normalized value tree used for snapshots, patch
// values and diffing.  Objects keep field insertion order so that diffs
// are deterministic and follow the shape of the document they describe.
package ir

import (
	"encoding/json"
	"slices"
	"strconv"
)

type Node struct {
	Type   Type
	Bool   bool
	Number json.Number
	String string

	// Fields holds object field names, parallel to Values.  For arrays
	// Values holds the elements and Fields is nil.
	Fields []string
	Values []*Node
}

func Null() *Node { return &Node{Type: NullType} }

func FromBool(b bool) *Node { return &Node{Type: BoolType, Bool: b} }

func FromString(s string) *Node { return &Node{Type: StringType, String: s} }

func FromNumber(n json.Number) *Node { return &Node{Type: NumberType, Number: n} }

func FromInt(i int64) *Node {
	return &Node{Type: NumberType, Number: json.Number(strconv.FormatInt(i, 10))}
}

func FromFloat(f float64) *Node {
	return &Node{Type: NumberType, Number: json.Number(strconv.FormatFloat(f, 'f', -1, 64))}
}

func Object() *Node { return &Node{Type: ObjectType} }

func Array(vals ...*Node) *Node { return &Node{Type: ArrayType, Values: vals} }

func (y *Node) Clone() *Node {
	if y == nil {
		return nil
	}
	res := &Node{
		Type:   y.Type,
		Bool:   y.Bool,
		Number: y.Number,
		String: y.String,
	}
	if y.Fields != nil {
		res.Fields = slices.Clone(y.Fields)
	}
	if y.Values != nil {
		res.Values = make([]*Node, len(y.Values))
		for i, v := range y.Values {
			res.Values[i] = v.Clone()
		}
	}
	return res
}

// Get returns the value of field f, or nil if y is not an object or has
// no such field.
func (y *Node) Get(f string) *Node {
	if y == nil || y.Type != ObjectType {
		return nil
	}
	for i, yf := range y.Fields {
		if yf == f {
			return y.Values[i]
		}
	}
	return nil
}

// Set assigns field f, appending it if absent.  The receiver is mutated;
// use Clone first where aliasing matters.
func (y *Node) Set(f string, v *Node) {
	for i, yf := range y.Fields {
		if yf == f {
			y.Values[i] = v
			return
		}
	}
	y.Fields = append(y.Fields, f)
	y.Values = append(y.Values, v)
}

// Delete removes field f, preserving the order of the remaining fields.
func (y *Node) Delete(f string) bool {
	for i, yf := range y.Fields {
		if yf == f {
			y.Fields = append(y.Fields[:i], y.Fields[i+1:]...)
			y.Values = append(y.Values[:i], y.Values[i+1:]...)
			return true
		}
	}
	return false
}

// At returns the i-th array element, or nil when out of bounds.
func (y *Node) At(i int) *Node {
	if y == nil || y.Type != ArrayType || i < 0 || i >= len(y.Values) {
		return nil
	}
	return y.Values[i]
}

func (y *Node) Len() int {
	if y == nil {
		return 0
	}
	return len(y.Values)
}

// IsEmpty reports whether y is an object with no fields or an array with
// no elements.  Scalars are never empty.
func (y *Node) IsEmpty() bool {
	if y == nil {
		return true
	}
	switch y.Type {
	case ObjectType:
		return len(y.Fields) == 0
	case ArrayType:
		return len(y.Values) == 0
	}
	return false
}

// Equal compares two trees structurally.  Object field order is ignored;
// numbers compare by value so 1 and 1.0 are equal.
func (y *Node) Equal(o *Node) bool {
	if y == nil || o == nil {
		return y == nil && o == nil
	}
	if y.Type != o.Type {
		return false
	}
	switch y.Type {
	case NullType:
		return true
	case BoolType:
		return y.Bool == o.Bool
	case StringType:
		return y.String == o.String
	case NumberType:
		return numberEqual(y.Number, o.Number)
	case ArrayType:
		if len(y.Values) != len(o.Values) {
			return false
		}
		for i := range y.Values {
			if !y.Values[i].Equal(o.Values[i]) {
				return false
			}
		}
		return true
	case ObjectType:
		if len(y.Fields) != len(o.Fields) {
			return false
		}
		for i, f := range y.Fields {
			ov := o.Get(f)
			if ov == nil || !y.Values[i].Equal(ov) {
				return false
			}
		}
		return true
	default:
		panic("type")
	}
}

func numberEqual(a, b json.Number) bool {
	if a == b {
		return true
	}
	ai, aerr := a.Int64()
	bi, berr := b.Int64()
	if aerr == nil && berr == nil {
		return ai == bi
	}
	af, aerr := a.Float64()
	bf, berr := b.Float64()
	if aerr != nil || berr != nil {
		return false
	}
	return af == bf
}
