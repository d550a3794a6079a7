package patch

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/scribe-data/scribe/ir"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ErrApply wraps any replay failure: a failed test operation or a
// structurally invalid operation.  The input document is never partially
// modified; callers either get the fully patched tree or an error.
var ErrApply = errors.New("patch apply")

// Apply replays ops onto doc and returns the resulting tree.  A nil doc
// is treated as an empty object.  All six RFC 6902 operations are
// supported even though generated diffs only ever contain add, remove
// and replace.
func Apply(doc *ir.Node, ops []Operation) (*ir.Node, error) {
	if doc == nil {
		doc = ir.Object()
	}
	if len(ops) == 0 {
		return doc.Clone(), nil
	}
	d, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	pd, err := json.Marshal(ops)
	if err != nil {
		return nil, err
	}
	p, err := jsonpatch.DecodePatch(pd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrApply, err)
	}
	out, err := p.Apply(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrApply, err)
	}
	return ir.FromJSON(out)
}
