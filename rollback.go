package scribe

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/scribe-data/scribe/debug"
	"github.com/scribe-data/scribe/ir"
	"github.com/scribe-data/scribe/patch"
	"github.com/scribe-data/scribe/store"
)

// History returns every record for the given document identity, sorted
// by id, which is creation order.
func (t *Tracker) History(ctx context.Context, ref string, opts ...CallOpt) ([]*Record, error) {
	cfg := newCallConfig(opts)
	docs, err := t.recs.FindMany(ctx, store.Conditions{"ref": ref}, cfg.Session)
	if err != nil {
		return nil, err
	}
	recs := make([]*Record, 0, len(docs))
	for _, d := range docs {
		rec, err := recordFromDocument(d)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	slices.SortFunc(recs, func(a, b *Record) int {
		return strings.Compare(a.ID, b.ID)
	})
	return recs, nil
}

// Rollback reconstructs the document state as of the target record by
// replaying its history prefix onto an empty base, merges overrides on
// top and sets the result as the document's live state.  With persist
// the document is saved, re-entering the save protocol so the rollback
// itself becomes a new forward record.
//
// Rolling back to the latest record fails with ErrNoOpRollback; a
// target absent from the history fails with ErrUnknownPatch.
func (t *Tracker) Rollback(ctx context.Context, ref, targetID string, overrides *ir.Node, persist bool, opts ...CallOpt) (*Doc, error) {
	history, err := t.History(ctx, ref, opts...)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, rec := range history {
		if rec.ID == targetID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPatch, targetID)
	}
	if idx == len(history)-1 {
		return nil, fmt.Errorf("%w: %s", ErrNoOpRollback, targetID)
	}
	base := ir.Object()
	for _, rec := range history[:idx+1] {
		base, err = patch.Apply(base, rec.Ops)
		if err != nil {
			return nil, fmt.Errorf("replaying %s: %w", rec.ID, err)
		}
	}
	if overrides != nil && overrides.Type == ir.ObjectType {
		for i, f := range overrides.Fields {
			base.Set(f, overrides.Values[i].Clone())
		}
	}
	if debug.Rollback() {
		debug.Logf("rollback %s to %s: %d of %d records replayed\n",
			ref, targetID, idx+1, len(history))
	}
	doc, err := t.Load(ctx, ref, opts...)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = NewDoc(ref, base)
	} else {
		doc.Data = base
	}
	if !persist {
		return doc, nil
	}
	if _, err := t.Save(ctx, doc, opts...); err != nil {
		return nil, err
	}
	return doc, nil
}
