package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type oid [2]byte

func (o oid) String() string { return "oid-test" }

type fromAnyTest struct {
	in   any
	json string
}

var fromAnyTests = []fromAnyTest{
	{in: nil, json: `null`},
	{in: true, json: `true`},
	{in: "hello", json: `"hello"`},
	{in: int(42), json: `42`},
	{in: int64(-7), json: `-7`},
	{in: 1.5, json: `1.5`},
	{in: float64(2), json: `2`},
	{in: []any{1, "a", nil}, json: `[1,"a",null]`},
	// map keys come out sorted
	{in: map[string]any{"b": 2, "a": 1}, json: `{"a":1,"b":2}`},
	{in: map[string]any{"x": map[string]any{"z": true, "y": false}}, json: `{"x":{"y":false,"z":true}}`},
	// opaque identifiers render to their canonical string form
	{in: oid{1, 2}, json: `"oid-test"`},
	{in: []any{oid{1, 2}, oid{1, 2}}, json: `["oid-test","oid-test"]`},
}

func TestFromAny(t *testing.T) {
	for i := range fromAnyTests {
		ft := &fromAnyTests[i]
		got := FromAny(ft.in).MustJSON()
		if got != ft.json {
			t.Errorf("FromAny(%v): got %s want %s", ft.in, got, ft.json)
		}
	}
}

func TestJSONRoundTripKeepsOrder(t *testing.T) {
	in := `{"title":"foo","active":false,"nested":{"z":1,"a":[1,2,{"k":null}]}}`
	n, err := FromJSON([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	if got := n.MustJSON(); got != in {
		t.Errorf("round trip\n got %s\nwant %s", got, in)
	}
	if diff := cmp.Diff([]string{"title", "active", "nested"}, n.Fields); diff != "" {
		t.Errorf("field order (-want +got):\n%s", diff)
	}
}

type equalTest struct {
	a, b string
	res  bool
}

var equalTests = []equalTest{
	{`1`, `1`, true},
	{`1`, `1.0`, true},
	{`1`, `2`, false},
	{`"a"`, `"a"`, true},
	{`"1"`, `1`, false},
	{`null`, `null`, true},
	{`null`, `false`, false},
	{`[1,2]`, `[1,2]`, true},
	{`[1,2]`, `[2,1]`, false},
	// object field order does not matter
	{`{"a":1,"b":2}`, `{"b":2,"a":1}`, true},
	{`{"a":1}`, `{"a":1,"b":2}`, false},
	{`{"a":{"b":[true]}}`, `{"a":{"b":[true]}}`, true},
}

func TestEqual(t *testing.T) {
	for i := range equalTests {
		et := &equalTests[i]
		a, err := FromJSON([]byte(et.a))
		if err != nil {
			t.Fatal(err)
		}
		b, err := FromJSON([]byte(et.b))
		if err != nil {
			t.Fatal(err)
		}
		if got := a.Equal(b); got != et.res {
			t.Errorf("Equal(%s, %s): got %t want %t", et.a, et.b, got, et.res)
		}
		if got := b.Equal(a); got != et.res {
			t.Errorf("Equal(%s, %s): got %t want %t", et.b, et.a, got, et.res)
		}
	}
}

func TestSetDeleteOrder(t *testing.T) {
	n := Object()
	n.Set("a", FromInt(1))
	n.Set("b", FromInt(2))
	n.Set("c", FromInt(3))
	n.Set("b", FromInt(20))
	if got := n.MustJSON(); got != `{"a":1,"b":20,"c":3}` {
		t.Errorf("set: got %s", got)
	}
	if !n.Delete("b") {
		t.Error("delete b")
	}
	if n.Delete("b") {
		t.Error("delete b twice")
	}
	if got := n.MustJSON(); got != `{"a":1,"c":3}` {
		t.Errorf("delete: got %s", got)
	}
}

func TestIsEmpty(t *testing.T) {
	if !Object().IsEmpty() || !Array().IsEmpty() {
		t.Error("empty containers")
	}
	if FromString("").IsEmpty() || Null().IsEmpty() {
		t.Error("scalars are never empty")
	}
	var n *Node
	if !n.IsEmpty() {
		t.Error("nil node")
	}
}

func TestCloneIsDeep(t *testing.T) {
	n, err := FromJSON([]byte(`{"a":{"b":[1,2]}}`))
	if err != nil {
		t.Fatal(err)
	}
	c := n.Clone()
	c.Get("a").Get("b").Values[0] = FromInt(9)
	if got := n.MustJSON(); got != `{"a":{"b":[1,2]}}` {
		t.Errorf("clone aliased: %s", got)
	}
}
