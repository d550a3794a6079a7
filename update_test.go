package scribe

import (
	"context"
	"testing"

	"github.com/scribe-data/scribe/store"
)

func seedDoc(t *testing.T, tr *Tracker, id, src string) {
	t.Helper()
	if _, err := tr.Save(context.Background(), NewDoc(id, mustTree(t, src))); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateOne(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(&Options{TrackOriginal: true})
	seedDoc(t, tr, "d1", `{"grp":"a","n":1}`)

	rec, res, err := tr.UpdateOne(ctx,
		store.Conditions{"grp": "a"},
		store.Update{"$set": map[string]any{"n": 9}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Matched != 1 {
		t.Fatalf("result: %+v", res)
	}
	if rec == nil {
		t.Fatal("no record")
	}
	if rec.Ref != "d1" {
		t.Errorf("ref: %s", rec.Ref)
	}
	if got := opsString(rec.Ops); got != `replace /n 9 was 1; ` {
		t.Errorf("ops: %q", got)
	}
}

// Resolution goes by captured identity, so a document stays resolvable
// even when the update rewrites the very field the conditions matched.
func TestUpdateOneChangesMatchedField(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(nil)
	seedDoc(t, tr, "d1", `{"grp":"a"}`)

	rec, _, err := tr.UpdateOne(ctx,
		store.Conditions{"grp": "a"},
		store.Update{"$set": map[string]any{"grp": "b"}})
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil {
		t.Fatal("no record")
	}
	if got := opsString(rec.Ops); got != `replace /grp "b"; ` {
		t.Errorf("ops: %q", got)
	}
}

func TestUpdateOneUpsertCreates(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(nil)

	rec, res, err := tr.UpdateOne(ctx,
		store.Conditions{"name": "fresh"},
		store.Update{"$set": map[string]any{"n": 1}},
		WithUpsert(true))
	if err != nil {
		t.Fatal(err)
	}
	if res.Upserted != 1 {
		t.Fatalf("result: %+v", res)
	}
	if rec == nil {
		t.Fatal("no record")
	}
	// a created document has no prior, so everything is an add
	if got := opsString(rec.Ops); got != `add /name "fresh"; add /n 1; ` {
		t.Errorf("ops: %q", got)
	}
	hist, err := tr.History(ctx, rec.Ref)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 {
		t.Errorf("history: %d records", len(hist))
	}
}

func TestUpdateOneNothingMatched(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(nil)

	rec, res, err := tr.UpdateOne(ctx,
		store.Conditions{"name": "absent"},
		store.Update{"$set": map[string]any{"n": 1}})
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil || res.Matched != 0 || res.Upserted != 0 {
		t.Errorf("got rec %v, result %+v", rec, res)
	}
}

func TestUpdateManyRecordsOnlyNetChanges(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(nil)
	seedDoc(t, tr, "d1", `{"grp":"a","n":1}`)
	seedDoc(t, tr, "d2", `{"grp":"a","n":5}`)
	seedDoc(t, tr, "d3", `{"grp":"b","n":1}`)

	recs, res, err := tr.UpdateMany(ctx,
		store.Conditions{"grp": "a"},
		store.Update{"$set": map[string]any{"n": 5}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Matched != 2 {
		t.Fatalf("result: %+v", res)
	}
	// d2 already held the value, so only d1 gets a record
	if len(recs) != 1 || recs[0].Ref != "d1" {
		t.Fatalf("records: %v", recs)
	}
	if got := opsString(recs[0].Ops); got != `replace /n 5; ` {
		t.Errorf("ops: %q", got)
	}
}

func TestUpdateManyUpsert(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(nil)

	recs, res, err := tr.UpdateMany(ctx,
		store.Conditions{"name": "fresh"},
		store.Update{"n": 2},
		WithUpsert(true))
	if err != nil {
		t.Fatal(err)
	}
	if res.Upserted != 1 {
		t.Fatalf("result: %+v", res)
	}
	if len(recs) != 1 {
		t.Fatalf("records: %v", recs)
	}
	if got := opsString(recs[0].Ops); got != `add /name "fresh"; add /n 2; ` {
		t.Errorf("ops: %q", got)
	}
}
