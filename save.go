package scribe

import (
	"context"

	"github.com/scribe-data/scribe/debug"
	"github.com/scribe-data/scribe/store"
)

// Save persists the document and records the transition from its prior
// snapshot.  When nothing survives exclusion the document is still
// saved but no record is produced.  On success the document is
// re-snapshotted, so the next save diffs from the state written here.
func (t *Tracker) Save(ctx context.Context, d *Doc, opts ...CallOpt) (*Record, error) {
	cfg := newCallConfig(opts)
	rec := t.ComputeChangeRecord(d.prior, d.Data, d.ID, cfg.Meta)
	if err := t.docs.Save(ctx, &store.Document{ID: d.ID, Data: d.Data}, cfg.Session); err != nil {
		return nil, err
	}
	if rec == nil {
		if debug.Capture() {
			debug.Logf("save %s: no net change\n", d.ID)
		}
		d.snapshot()
		return nil, nil
	}
	if err := t.insertRecord(ctx, rec, cfg.Session); err != nil {
		return nil, err
	}
	if debug.Capture() {
		debug.Logf("save %s: recorded %s (%d ops)\n", d.ID, rec.ID, len(rec.Ops))
	}
	d.snapshot()
	return rec, nil
}
