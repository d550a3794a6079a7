package scribe

import (
	"context"
	"time"

	"github.com/scribe-data/scribe/debug"
	"github.com/scribe-data/scribe/encode"
	"github.com/scribe-data/scribe/ir"
	"github.com/scribe-data/scribe/libdiff"
	"github.com/scribe-data/scribe/patch"
	"github.com/scribe-data/scribe/store"
)

// ComputeChangeRecord diffs prior against current, applies the exclude
// patterns and, when enabled, annotates surviving operations with their
// pre-change values.  It returns nil when no operations survive; no
// record should be written for such a transition.
func (t *Tracker) ComputeChangeRecord(prior, current *ir.Node, ref string, meta map[string]any) *Record {
	ops := libdiff.Diff(prior, current)
	if debug.Diff() {
		debug.Logf("diff %s: %d ops\n%s", ref, len(ops), encode.Ops(ops))
	}
	ops = patch.Filter(ops, t.excludes)
	if debug.Filter() && len(t.excludes) > 0 {
		debug.Logf("filtered %s: %d ops\n%s", ref, len(ops), encode.Ops(ops))
	}
	if len(ops) == 0 {
		return nil
	}
	if t.trackOriginal {
		ops = patch.AnnotateOriginal(ops, prior)
	}
	return &Record{
		ID:   store.NewID(),
		Date: time.Now().UTC(),
		Ref:  ref,
		Ops:  ops,
		Meta: meta,
	}
}

func (t *Tracker) insertRecord(ctx context.Context, rec *Record, sess store.Session) error {
	doc, err := rec.Document()
	if err != nil {
		return err
	}
	return t.recs.Insert(ctx, doc, sess)
}
