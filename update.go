package scribe

import (
	"context"

	"github.com/scribe-data/scribe/debug"
	"github.com/scribe-data/scribe/ir"
	"github.com/scribe-data/scribe/store"
)

// captureContext is the transient before-side state of one mutation: the
// captured identities, each paired with its prior snapshot.  It lives
// for exactly one protocol invocation.
type captureContext struct {
	ids    []string
	priors map[string]*ir.Node
}

func captureBefore(docs []*store.Document) *captureContext {
	cc := &captureContext{priors: map[string]*ir.Node{}}
	for _, d := range docs {
		cc.ids = append(cc.ids, d.ID)
		cc.priors[d.ID] = d.Data
	}
	return cc
}

// resolveKind tags the strategy for locating the affected documents
// after a conditional update.
type resolveKind int

const (
	// byIdentitySet looks up the identities captured before the
	// mutation.  This re-finds a document even when the update altered
	// fields used in the original match conditions.
	byIdentitySet resolveKind = iota

	// byMergedConditions covers upsert-created documents, for which no
	// prior identity exists: the original match conditions merged with
	// the update's direct field assignments locate the new document.
	byMergedConditions
)

type resolution struct {
	kind  resolveKind
	ids   []string
	conds store.Conditions
}

// resolveAffected picks the resolution strategy deterministically: by
// identity when any prior identity was captured, by merged conditions
// otherwise.
func resolveAffected(cc *captureContext, conds store.Conditions, u store.Update) resolution {
	if len(cc.ids) > 0 {
		return resolution{kind: byIdentitySet, ids: cc.ids}
	}
	merged := store.Conditions{}
	for k, v := range store.EqualityFields(conds) {
		merged[k] = v
	}
	for k, v := range store.AssignedFields(u) {
		merged[k] = v
	}
	return resolution{kind: byMergedConditions, conds: merged}
}

func (r resolution) findOne(ctx context.Context, c store.Collection, sess store.Session) (*store.Document, error) {
	switch r.kind {
	case byIdentitySet:
		return c.FindOne(ctx, store.Conditions{"_id": r.ids[0]}, sess)
	default:
		return c.FindOne(ctx, r.conds, sess)
	}
}

func (r resolution) findMany(ctx context.Context, c store.Collection, sess store.Session) ([]*store.Document, error) {
	switch r.kind {
	case byIdentitySet:
		in := make(store.In, len(r.ids))
		for i, id := range r.ids {
			in[i] = id
		}
		return c.FindMany(ctx, store.Conditions{"_id": in}, sess)
	default:
		return c.FindMany(ctx, r.conds, sess)
	}
}

// touchedNothing reports a mutation that matched no document and
// inserted none.  A store that cannot distinguish reports Matched < 0,
// in which case resolution is always attempted.
func touchedNothing(res store.UpdateResult) bool {
	return res.Matched == 0 && res.Upserted == 0
}

// UpdateOne performs a single conditional update through the store,
// capturing the target before and resolving it after, and records the
// transition.  The returned record is nil when the update touched
// nothing or produced no net change.
func (t *Tracker) UpdateOne(ctx context.Context, conds store.Conditions, u store.Update, opts ...CallOpt) (*Record, store.UpdateResult, error) {
	cfg := newCallConfig(opts)
	before, err := t.docs.FindOne(ctx, conds, cfg.Session)
	if err != nil {
		return nil, store.UpdateResult{}, err
	}
	var caps []*store.Document
	if before != nil {
		caps = append(caps, before)
	}
	cc := captureBefore(caps)

	res, err := t.docs.UpdateOne(ctx, conds, u, cfg.Upsert, cfg.Session)
	if err != nil {
		return nil, res, err
	}
	if touchedNothing(res) {
		if debug.Capture() {
			debug.Logf("update: nothing matched, nothing inserted\n")
		}
		return nil, res, nil
	}

	after, err := resolveAffected(cc, conds, u).findOne(ctx, t.docs, cfg.Session)
	if err != nil {
		return nil, res, err
	}
	if after == nil {
		return nil, res, nil
	}
	rec := t.ComputeChangeRecord(cc.priors[after.ID], after.Data, after.ID, cfg.Meta)
	if rec == nil {
		return nil, res, nil
	}
	if err := t.insertRecord(ctx, rec, cfg.Session); err != nil {
		return nil, res, err
	}
	return rec, res, nil
}

// UpdateMany performs a batch conditional update, capturing every
// matching document before and pairing each resolved document with its
// prior snapshot by identity after.  One record is produced per document
// with a net change.  Resolved documents without a captured prior are
// diffed against an empty snapshot; captured documents that can no
// longer be resolved are dropped.
func (t *Tracker) UpdateMany(ctx context.Context, conds store.Conditions, u store.Update, opts ...CallOpt) ([]*Record, store.UpdateResult, error) {
	cfg := newCallConfig(opts)
	before, err := t.docs.FindMany(ctx, conds, cfg.Session)
	if err != nil {
		return nil, store.UpdateResult{}, err
	}
	cc := captureBefore(before)

	res, err := t.docs.UpdateMany(ctx, conds, u, cfg.Upsert, cfg.Session)
	if err != nil {
		return nil, res, err
	}
	if touchedNothing(res) {
		if debug.Capture() {
			debug.Logf("batch update: nothing matched, nothing inserted\n")
		}
		return nil, res, nil
	}

	after, err := resolveAffected(cc, conds, u).findMany(ctx, t.docs, cfg.Session)
	if err != nil {
		return nil, res, err
	}
	var recs []*Record
	for _, doc := range after {
		rec := t.ComputeChangeRecord(cc.priors[doc.ID], doc.Data, doc.ID, cfg.Meta)
		if rec == nil {
			continue
		}
		if err := t.insertRecord(ctx, rec, cfg.Session); err != nil {
			return recs, res, err
		}
		recs = append(recs, rec)
	}
	if debug.Capture() {
		debug.Logf("batch update: %d resolved, %d recorded\n", len(after), len(recs))
	}
	return recs, res, nil
}
