package patch

import (
	"strconv"

	"github.com/scribe-data/scribe/ir"
)

// Filter applies exclude patterns to an operation list.  An operation is
// dropped outright when a pattern covers its path.  A pattern reaching
// below an operation's path prunes the addressed sub-value out of the
// operation's value tree; a wildcard met inside an array fans out across
// every element, preserving element order and count.  Operations whose
// value is emptied by pruning are dropped.  Pruned values are rebuilt
// rather than mutated so sub-values shared across elements stay intact.
func Filter(ops []Operation, patterns []Path) []Operation {
	if len(patterns) == 0 {
		return ops
	}
	res := make([]Operation, 0, len(ops))
ops:
	for _, op := range ops {
		pruned := false
		for _, pat := range patterns {
			if pat.Contains(op.Path) {
				continue ops
			}
			if !op.hasValue() {
				continue
			}
			rest, ok := pat.Under(op.Path)
			if !ok {
				continue
			}
			next, changed := prune(op.Value, rest)
			if changed {
				op.Value = next
				pruned = true
			}
		}
		if pruned && op.Value.IsEmpty() {
			continue
		}
		res = append(res, op)
	}
	return res
}

func prune(n *ir.Node, rest Path) (*ir.Node, bool) {
	if n == nil || len(rest) == 0 {
		return n, false
	}
	seg := rest[0]
	switch n.Type {
	case ir.ObjectType:
		if seg == Wildcard {
			return n, false
		}
		child := n.Get(seg)
		if child == nil {
			return n, false
		}
		out := n.Clone()
		if len(rest) == 1 {
			out.Delete(seg)
			return out, true
		}
		next, changed := prune(child, rest[1:])
		if !changed {
			return n, false
		}
		out.Set(seg, next)
		return out, true

	case ir.ArrayType:
		if seg == Wildcard {
			if len(rest) == 1 {
				// a trailing wildcard addresses no key within the
				// elements; nothing to remove
				return n, false
			}
			out := ir.Array(make([]*ir.Node, len(n.Values))...)
			changedAny := false
			for i, e := range n.Values {
				next, changed := prune(e, rest[1:])
				out.Values[i] = next
				changedAny = changedAny || changed
			}
			if !changedAny {
				return n, false
			}
			return out, true
		}
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= len(n.Values) {
			return n, false
		}
		out := n.Clone()
		if len(rest) == 1 {
			// removing an element outright would shift its siblings;
			// a null placeholder keeps order and count
			out.Values[idx] = ir.Null()
			return out, true
		}
		next, changed := prune(n.Values[idx], rest[1:])
		if !changed {
			return n, false
		}
		out.Values[idx] = next
		return out, true

	default:
		return n, false
	}
}
