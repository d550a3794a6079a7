package patch

import (
	"errors"
	"testing"

	"github.com/scribe-data/scribe/ir"
)

type applyTest struct {
	name string
	doc  string
	ops  []Operation
	want string
	err  bool
}

var applyTests = []applyTest{
	{
		name: "add and replace",
		doc:  `{"a":1}`,
		ops: []Operation{
			{Op: Add, Path: ParsePath("/b"), Value: ir.FromString("x")},
			{Op: Replace, Path: ParsePath("/a"), Value: ir.FromInt(2)},
		},
		want: `{"a":2,"b":"x"}`,
	},
	{
		name: "remove",
		doc:  `{"a":1,"b":2}`,
		ops:  []Operation{{Op: Remove, Path: ParsePath("/a")}},
		want: `{"b":2}`,
	},
	{
		name: "move relocates",
		doc:  `{"a":{"k":1},"b":{}}`,
		ops:  []Operation{{Op: Move, Path: ParsePath("/b/k"), From: ParsePath("/a/k")}},
		want: `{"a":{},"b":{"k":1}}`,
	},
	{
		name: "copy duplicates",
		doc:  `{"a":1}`,
		ops:  []Operation{{Op: Copy, Path: ParsePath("/b"), From: ParsePath("/a")}},
		want: `{"a":1,"b":1}`,
	},
	{
		name: "test passes as no-op",
		doc:  `{"a":1}`,
		ops:  []Operation{{Op: Test, Path: ParsePath("/a"), Value: ir.FromInt(1)}},
		want: `{"a":1}`,
	},
	{
		name: "failed test fails the whole apply",
		doc:  `{"a":1}`,
		ops:  []Operation{{Op: Test, Path: ParsePath("/a"), Value: ir.FromInt(2)}},
		err:  true,
	},
	{
		name: "structurally invalid op",
		doc:  `{"a":1}`,
		ops:  []Operation{{Op: Replace, Path: ParsePath("/missing/deep"), Value: ir.FromInt(1)}},
		err:  true,
	},
	{
		name: "array element ops",
		doc:  `{"l":[1,2,3]}`,
		ops: []Operation{
			{Op: Replace, Path: ParsePath("/l/1"), Value: ir.FromInt(20)},
			{Op: Remove, Path: ParsePath("/l/2")},
		},
		want: `{"l":[1,20]}`,
	},
}

func TestApply(t *testing.T) {
	for i := range applyTests {
		at := &applyTests[i]
		doc := mustTree(t, at.doc)
		got, err := Apply(doc, at.ops)
		if at.err {
			if err == nil {
				t.Errorf("%s: expected error", at.name)
			} else if !errors.Is(err, ErrApply) {
				t.Errorf("%s: error %v not ErrApply", at.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", at.name, err)
			continue
		}
		if js := got.MustJSON(); js != at.want {
			t.Errorf("%s: got %s want %s", at.name, js, at.want)
		}
		// input never partially modified
		if js := doc.MustJSON(); js != at.doc {
			t.Errorf("%s: input mutated to %s", at.name, js)
		}
	}
}

func TestApplyNilDoc(t *testing.T) {
	got, err := Apply(nil, []Operation{{Op: Add, Path: ParsePath("/a"), Value: ir.FromInt(1)}})
	if err != nil {
		t.Fatal(err)
	}
	if js := got.MustJSON(); js != `{"a":1}` {
		t.Errorf("got %s", js)
	}
}

func TestAnnotateOriginal(t *testing.T) {
	prior := mustTree(t, `{"name":"A","n":{"d":[1,2]}}`)
	ops := []Operation{
		{Op: Replace, Path: ParsePath("/name"), Value: ir.FromString("B")},
		{Op: Replace, Path: ParsePath("/n/d/1"), Value: ir.FromInt(9)},
		{Op: Add, Path: ParsePath("/fresh"), Value: ir.FromInt(1)},
	}
	ops = AnnotateOriginal(ops, prior)
	if ops[0].Original == nil || ops[0].Original.String != "A" {
		t.Errorf("name original: %v", ops[0].Original)
	}
	if ops[1].Original == nil || ops[1].Original.MustJSON() != "2" {
		t.Errorf("nested original: %v", ops[1].Original)
	}
	if ops[2].Original != nil {
		t.Errorf("fresh path has no original, got %v", ops[2].Original)
	}
	// nil prior behaves as an empty structure
	ops = AnnotateOriginal(ops, nil)
	if ops[0].Original != nil {
		t.Error("nil prior should annotate nothing")
	}
}
