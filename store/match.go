package store

import (
	"fmt"
	"strings"

	"github.com/scribe-data/scribe/ir"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Matcher evaluates Conditions against documents.  Compile once per
// query; Match may then run over many candidates.
type Matcher struct {
	conds Conditions
	where *vm.Program
}

// NewMatcher compiles conds, including any "$where" expression.  The
// expression sees the document's fields as variables plus "_id".
func NewMatcher(conds Conditions) (*Matcher, error) {
	m := &Matcher{conds: conds}
	src, ok := conds["$where"].(string)
	if !ok {
		return m, nil
	}
	prog, err := expr.Compile(src,
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compiling $where %q: %w", src, err)
	}
	m.where = prog
	return m, nil
}

func (m *Matcher) Match(doc *Document) (bool, error) {
	for k, want := range m.conds {
		if strings.HasPrefix(k, "$") {
			continue
		}
		var got *ir.Node
		if k == "_id" {
			got = ir.FromString(doc.ID)
		} else {
			got = lookupDotted(doc.Data, k)
		}
		if in, ok := want.(In); ok {
			if !matchIn(got, in) {
				return false, nil
			}
			continue
		}
		if got == nil || !got.Equal(ir.FromAny(want)) {
			return false, nil
		}
	}
	if m.where == nil {
		return true, nil
	}
	env, _ := doc.Data.ToAny().(map[string]any)
	if env == nil {
		env = map[string]any{}
	}
	env["_id"] = doc.ID
	out, err := expr.Run(m.where, env)
	if err != nil {
		return false, fmt.Errorf("running $where: %w", err)
	}
	res, _ := out.(bool)
	return res, nil
}

func matchIn(got *ir.Node, in In) bool {
	if got == nil {
		return false
	}
	for _, w := range in {
		if got.Equal(ir.FromAny(w)) {
			return true
		}
	}
	return false
}

func lookupDotted(n *ir.Node, path string) *ir.Node {
	for _, seg := range strings.Split(path, ".") {
		n = n.Get(seg)
		if n == nil {
			return nil
		}
	}
	return n
}

// EqualityFields extracts the plain equality assignments from conds,
// dropping operator keys and set-membership values.  Used to derive
// lookup conditions for upsert-created documents.
func EqualityFields(conds Conditions) map[string]any {
	res := map[string]any{}
	for k, v := range conds {
		if strings.HasPrefix(k, "$") {
			continue
		}
		if _, ok := v.(In); ok {
			continue
		}
		res[k] = v
	}
	return res
}
