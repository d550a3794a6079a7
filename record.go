package scribe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/scribe-data/scribe/ir"
	"github.com/scribe-data/scribe/patch"
	"github.com/scribe-data/scribe/store"
)

// Record is one change record: the ordered patch operations of a single
// transition of the document identified by Ref.  Records are immutable
// once created and sort by their monotonic ID.  Meta carries
// caller-declared extra fields, marshaled inline.
type Record struct {
	ID   string
	Date time.Time
	Ref  string
	Ops  []patch.Operation
	Meta map[string]any
}

func (r *Record) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	fmt.Fprintf(buf, `{"date":%q,"ref":%q,"ops":`,
		r.Date.UTC().Format(time.RFC3339Nano), r.Ref)
	d, err := json.Marshal(r.Ops)
	if err != nil {
		return nil, err
	}
	buf.Write(d)
	for _, k := range slices.Sorted(maps.Keys(r.Meta)) {
		switch k {
		case "date", "ref", "ops":
			continue
		}
		kd, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vd, err := json.Marshal(ir.FromAny(r.Meta[k]))
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(kd)
		buf.WriteByte(':')
		buf.Write(vd)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Document renders the record as a store document keyed by its ID.
func (r *Record) Document() (*store.Document, error) {
	d, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	tree, err := ir.FromJSON(d)
	if err != nil {
		return nil, err
	}
	return &store.Document{ID: r.ID, Data: tree}, nil
}

func recordFromDocument(doc *store.Document) (*Record, error) {
	d, err := doc.Data.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(d, &raw); err != nil {
		return nil, fmt.Errorf("record %s: %w", doc.ID, err)
	}
	rec := &Record{ID: doc.ID}
	for k, v := range raw {
		switch k {
		case "date":
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return nil, fmt.Errorf("record %s date: %w", doc.ID, err)
			}
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, fmt.Errorf("record %s date: %w", doc.ID, err)
			}
			rec.Date = t
		case "ref":
			if err := json.Unmarshal(v, &rec.Ref); err != nil {
				return nil, fmt.Errorf("record %s ref: %w", doc.ID, err)
			}
		case "ops":
			if err := json.Unmarshal(v, &rec.Ops); err != nil {
				return nil, fmt.Errorf("record %s ops: %w", doc.ID, err)
			}
		default:
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return nil, fmt.Errorf("record %s %s: %w", doc.ID, k, err)
			}
			if rec.Meta == nil {
				rec.Meta = map[string]any{}
			}
			rec.Meta[k] = val
		}
	}
	return rec, nil
}
