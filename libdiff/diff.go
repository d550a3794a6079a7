// Package libdiff computes the ordered patch operation list transforming
// one normalized snapshot into another.
package libdiff

import (
	"strconv"

	"github.com/scribe-data/scribe/ir"
	"github.com/scribe-data/scribe/patch"
)

// Diff produces the operations turning prior into current, deterministic
// for a given pair of normalized snapshots.  New and changed paths are
// emitted in the traversal order of current; removals of stale fields
// follow, in prior order.  Array elements diff index-wise with trailing
// removals emitted highest index first, so applying the result never
// shifts an index out from under a later operation.  No move or copy
// detection is attempted.  A nil snapshot on either side is an empty
// object.
func Diff(prior, current *ir.Node) []patch.Operation {
	if prior == nil {
		prior = ir.Object()
	}
	if current == nil {
		current = ir.Object()
	}
	return diffNode(nil, prior, current, nil)
}

func diffNode(path patch.Path, from, to *ir.Node, ops []patch.Operation) []patch.Operation {
	if from.Equal(to) {
		return ops
	}
	switch {
	case from.Type == ir.ObjectType && to.Type == ir.ObjectType:
		return diffObject(path, from, to, ops)
	case from.Type == ir.ArrayType && to.Type == ir.ArrayType:
		return diffArray(path, from, to, ops)
	default:
		return append(ops, patch.Operation{Op: patch.Replace, Path: path, Value: to.Clone()})
	}
}

func diffObject(path patch.Path, from, to *ir.Node, ops []patch.Operation) []patch.Operation {
	for i, f := range to.Fields {
		child := childPath(path, f)
		prev := from.Get(f)
		if prev == nil {
			ops = append(ops, patch.Operation{Op: patch.Add, Path: child, Value: to.Values[i].Clone()})
			continue
		}
		ops = diffNode(child, prev, to.Values[i], ops)
	}
	for _, f := range from.Fields {
		if to.Get(f) != nil {
			continue
		}
		ops = append(ops, patch.Operation{Op: patch.Remove, Path: childPath(path, f)})
	}
	return ops
}

func diffArray(path patch.Path, from, to *ir.Node, ops []patch.Operation) []patch.Operation {
	n := min(len(from.Values), len(to.Values))
	for i := range n {
		ops = diffNode(childPath(path, strconv.Itoa(i)), from.Values[i], to.Values[i], ops)
	}
	for i := n; i < len(to.Values); i++ {
		ops = append(ops, patch.Operation{
			Op:    patch.Add,
			Path:  childPath(path, strconv.Itoa(i)),
			Value: to.Values[i].Clone(),
		})
	}
	for i := len(from.Values) - 1; i >= n; i-- {
		ops = append(ops, patch.Operation{Op: patch.Remove, Path: childPath(path, strconv.Itoa(i))})
	}
	return ops
}

func childPath(path patch.Path, seg string) patch.Path {
	res := make(patch.Path, len(path)+1)
	copy(res, path)
	res[len(path)] = seg
	return res
}
