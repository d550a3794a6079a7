package patch

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/scribe-data/scribe/ir"
)

type Op string

const (
	Add     Op = "add"
	Remove  Op = "remove"
	Replace Op = "replace"
	Move    Op = "move"
	Copy    Op = "copy"
	Test    Op = "test"
)

// Operation is one RFC 6902 patch operation.  Value is present iff Op is
// add, replace or test; From is present iff Op is move or copy.
// Original optionally carries the pre-change value at Path.
type Operation struct {
	Op       Op
	Path     Path
	From     Path
	Value    *ir.Node
	Original *ir.Node
}

func (o *Operation) hasValue() bool {
	switch o.Op {
	case Add, Replace, Test:
		return true
	}
	return false
}

// MarshalJSON emits the wire form understood by RFC 6902 appliers, with
// originalValue as an extra annotation field.
func (o Operation) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	fmt.Fprintf(buf, `{"op":%q,"path":%q`, o.Op, o.Path.String())
	if o.From != nil {
		fmt.Fprintf(buf, `,"from":%q`, o.From.String())
	}
	if o.hasValue() {
		d, err := json.Marshal(o.Value)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"value":`)
		buf.Write(d)
	}
	if o.Original != nil {
		d, err := json.Marshal(o.Original)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"originalValue":`)
		buf.Write(d)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *Operation) UnmarshalJSON(d []byte) error {
	var raw struct {
		Op       string           `json:"op"`
		Path     string           `json:"path"`
		From     *string          `json:"from"`
		Value    *json.RawMessage `json:"value"`
		Original *json.RawMessage `json:"originalValue"`
	}
	if err := json.Unmarshal(d, &raw); err != nil {
		return err
	}
	o.Op = Op(raw.Op)
	o.Path = ParsePath(raw.Path)
	if raw.From != nil {
		o.From = ParsePath(*raw.From)
	}
	if raw.Value != nil {
		v, err := ir.FromJSON(*raw.Value)
		if err != nil {
			return err
		}
		o.Value = v
	}
	if raw.Original != nil {
		v, err := ir.FromJSON(*raw.Original)
		if err != nil {
			return err
		}
		o.Original = v
	}
	return nil
}
