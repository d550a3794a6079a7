package patch

import "github.com/scribe-data/scribe/ir"

// AnnotateOriginal attaches to each operation the pre-change value at
// its path, looked up in the prior snapshot.  A nil prior is treated as
// an empty structure, so every lookup comes back absent.
func AnnotateOriginal(ops []Operation, prior *ir.Node) []Operation {
	for i := range ops {
		ops[i].Original = Lookup(prior, ops[i].Path)
	}
	return ops
}
