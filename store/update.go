package store

import (
	"maps"
	"slices"
	"strings"

	"github.com/scribe-data/scribe/ir"
)

// ApplyUpdate evaluates an update expression against a data tree and
// returns the resulting tree; the input is not mutated.  Direct field
// assignments and $set create intermediate objects as needed; $unset
// deletes; $inc adds to a numeric field, treating an absent field as
// zero.  Unknown operator keys are ignored.
func ApplyUpdate(data *ir.Node, u Update) *ir.Node {
	out := data.Clone()
	if out == nil || out.Type != ir.ObjectType {
		out = ir.Object()
	}
	assigned := AssignedFields(u)
	for _, k := range sortedKeys(assigned) {
		setDotted(out, k, ir.FromAny(assigned[k]))
	}
	if unset, ok := u["$unset"].(map[string]any); ok {
		for _, k := range sortedKeys(unset) {
			deleteDotted(out, k)
		}
	}
	if inc, ok := u["$inc"].(map[string]any); ok {
		for _, k := range sortedKeys(inc) {
			cur := lookupDotted(out, k)
			delta := ir.FromAny(inc[k])
			if cur == nil || cur.Type != ir.NumberType || delta.Type != ir.NumberType {
				setDotted(out, k, delta)
				continue
			}
			cf, _ := cur.Number.Float64()
			df, _ := delta.Number.Float64()
			setDotted(out, k, ir.FromFloat(cf+df))
		}
	}
	return out
}

// AssignedFields returns the update's direct field assignments: plain
// keys merged with the $set map.  Operator keys other than $set carry no
// direct assignments and are ignored.
func AssignedFields(u Update) map[string]any {
	res := map[string]any{}
	for k, v := range u {
		if strings.HasPrefix(k, "$") {
			continue
		}
		res[k] = v
	}
	if set, ok := u["$set"].(map[string]any); ok {
		for k, v := range set {
			res[k] = v
		}
	}
	return res
}

// SeedFromConditions builds the starting data for an upsert-created
// document: the equality fields of the match conditions, less the
// identity.
func SeedFromConditions(conds Conditions) *ir.Node {
	out := ir.Object()
	eq := EqualityFields(conds)
	delete(eq, "_id")
	for _, k := range sortedKeys(eq) {
		setDotted(out, k, ir.FromAny(eq[k]))
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}

func setDotted(n *ir.Node, path string, v *ir.Node) {
	segs := strings.Split(path, ".")
	for _, seg := range segs[:len(segs)-1] {
		child := n.Get(seg)
		if child == nil || child.Type != ir.ObjectType {
			child = ir.Object()
			n.Set(seg, child)
		}
		n = child
	}
	n.Set(segs[len(segs)-1], v)
}

func deleteDotted(n *ir.Node, path string) {
	segs := strings.Split(path, ".")
	for _, seg := range segs[:len(segs)-1] {
		n = n.Get(seg)
		if n == nil {
			return
		}
	}
	if n.Type == ir.ObjectType {
		n.Delete(segs[len(segs)-1])
	}
}
