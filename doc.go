package scribe

import (
	"context"

	"github.com/scribe-data/scribe/ir"
	"github.com/scribe-data/scribe/store"
)

// Doc is an in-memory document participating in the save protocol.  It
// holds the prior snapshot captured at load or last save, which the next
// Save diffs against.
type Doc struct {
	ID   string
	Data *ir.Node

	prior *ir.Node
}

// NewDoc starts tracking a document that does not yet exist in the
// store; its prior snapshot is empty, so the first save records every
// field as an add.
func NewDoc(id string, data *ir.Node) *Doc {
	if data == nil {
		data = ir.Object()
	}
	return &Doc{ID: id, Data: data, prior: ir.Object()}
}

func (d *Doc) snapshot() {
	if d.Data == nil {
		d.prior = ir.Object()
		return
	}
	d.prior = d.Data.Clone()
}

// Load fetches a document by identity and snapshots it.  It returns
// nil when the document does not exist.
func (t *Tracker) Load(ctx context.Context, id string, opts ...CallOpt) (*Doc, error) {
	cfg := newCallConfig(opts)
	found, err := t.docs.FindOne(ctx, store.Conditions{"_id": id}, cfg.Session)
	if err != nil || found == nil {
		return nil, err
	}
	d := &Doc{ID: found.ID, Data: found.Data}
	d.snapshot()
	return d, nil
}
