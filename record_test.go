package scribe

import (
	"strings"
	"testing"
	"time"

	"github.com/scribe-data/scribe/ir"
	"github.com/scribe-data/scribe/patch"
	"github.com/scribe-data/scribe/store"
)

func TestRecordDocumentRoundTrip(t *testing.T) {
	rec := &Record{
		ID:   store.NewID(),
		Date: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		Ref:  "d1",
		Ops: []patch.Operation{
			{Op: patch.Replace, Path: patch.ParsePath("/name"),
				Value:    ir.FromString("B"),
				Original: ir.FromString("A")},
			{Op: patch.Remove, Path: patch.ParsePath("/tags/2")},
		},
		Meta: map[string]any{"user": "u7", "reason": "cleanup"},
	}
	doc, err := rec.Document()
	if err != nil {
		t.Fatal(err)
	}
	if doc.ID != rec.ID {
		t.Errorf("doc id %s", doc.ID)
	}
	got, err := recordFromDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != rec.ID || got.Ref != "d1" || !got.Date.Equal(rec.Date) {
		t.Errorf("header: %+v", got)
	}
	if s := opsString(got.Ops); s != `replace /name "B" was "A"; remove /tags/2; ` {
		t.Errorf("ops: %q", s)
	}
	if got.Meta["user"] != "u7" || got.Meta["reason"] != "cleanup" {
		t.Errorf("meta: %v", got.Meta)
	}
}

// Meta keys colliding with the record's own fields are dropped rather
// than corrupting the envelope.
func TestRecordMetaReservedKeys(t *testing.T) {
	rec := &Record{
		ID:   store.NewID(),
		Date: time.Now().UTC(),
		Ref:  "d1",
		Ops:  []patch.Operation{{Op: patch.Add, Path: patch.ParsePath("/a"), Value: ir.FromInt(1)}},
		Meta: map[string]any{"ref": "evil", "ok": true},
	}
	d, err := rec.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(d), "evil") {
		t.Errorf("reserved meta key leaked: %s", d)
	}
	if !strings.Contains(string(d), `"ok":true`) {
		t.Errorf("meta missing: %s", d)
	}
}

func TestRecordOperationJSONShape(t *testing.T) {
	rec := &Record{
		ID:   "r1",
		Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Ref:  "d1",
		Ops: []patch.Operation{
			{Op: patch.Add, Path: patch.ParsePath("/n"), Value: ir.FromInt(1)},
		},
	}
	d, err := rec.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"date":"2024-03-01T00:00:00Z","ref":"d1","ops":[{"op":"add","path":"/n","value":1}]}`
	if string(d) != want {
		t.Errorf("got %s\nwant %s", d, want)
	}
}
