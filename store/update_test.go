package store

import (
	"testing"

	"github.com/scribe-data/scribe/ir"
)

type applyUpdateTest struct {
	name string
	doc  string
	u    Update
	want string
}

var applyUpdateTests = []applyUpdateTest{
	{
		name: "direct assignment",
		doc:  `{"a":1}`,
		u:    Update{"b": 2},
		want: `{"a":1,"b":2}`,
	},
	{
		name: "set with dotted path creates intermediates",
		doc:  `{"a":1}`,
		u:    Update{"$set": map[string]any{"o.x": true}},
		want: `{"a":1,"o":{"x":true}}`,
	},
	{
		name: "set overwrites",
		doc:  `{"a":1}`,
		u:    Update{"$set": map[string]any{"a": 9}},
		want: `{"a":9}`,
	},
	{
		name: "unset",
		doc:  `{"a":1,"b":2}`,
		u:    Update{"$unset": map[string]any{"b": ""}},
		want: `{"a":1}`,
	},
	{
		name: "inc existing",
		doc:  `{"n":3}`,
		u:    Update{"$inc": map[string]any{"n": 2}},
		want: `{"n":5}`,
	},
	{
		name: "inc absent treats as zero",
		doc:  `{}`,
		u:    Update{"$inc": map[string]any{"n": 2}},
		want: `{"n":2}`,
	},
	{
		name: "unknown operator ignored",
		doc:  `{"a":1}`,
		u:    Update{"$push": map[string]any{"l": 1}},
		want: `{"a":1}`,
	},
}

func TestApplyUpdate(t *testing.T) {
	for i := range applyUpdateTests {
		at := &applyUpdateTests[i]
		in, err := ir.FromJSON([]byte(at.doc))
		if err != nil {
			t.Fatal(err)
		}
		got := ApplyUpdate(in, at.u)
		if js := got.MustJSON(); js != at.want {
			t.Errorf("%s: got %s want %s", at.name, js, at.want)
		}
		// the input tree is never mutated
		if js := in.MustJSON(); js != at.doc {
			t.Errorf("%s: input mutated to %s", at.name, js)
		}
	}
}

func TestAssignedFields(t *testing.T) {
	got := AssignedFields(Update{
		"direct": 1,
		"$set":   map[string]any{"s": 2},
		"$inc":   map[string]any{"n": 3},
	})
	if len(got) != 2 || got["direct"] != 1 || got["s"] != 2 {
		t.Errorf("got %v", got)
	}
}

func TestSeedFromConditions(t *testing.T) {
	seed := SeedFromConditions(Conditions{
		"name":   "a",
		"o.x":    1,
		"_id":    "ignored",
		"$where": "true",
	})
	if js := seed.MustJSON(); js != `{"name":"a","o":{"x":1}}` {
		t.Errorf("got %s", js)
	}
}

func TestNewIDMonotonic(t *testing.T) {
	prev := NewID()
	for range 100 {
		next := NewID()
		if next <= prev {
			t.Fatalf("ids not monotonic: %s then %s", prev, next)
		}
		prev = next
	}
}
