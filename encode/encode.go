// Package encode renders operation lists and records compactly for
// debug output and test diagnostics.
package encode

import (
	"os"
	"strings"

	"github.com/scribe-data/scribe/patch"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var opColor = func(s string, _ ...any) string { return s }

func init() {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		opColor = color.CyanString
	}
}

// Ops renders one operation per line: the op name, its path(s) and a
// compact JSON value.
func Ops(ops []patch.Operation) string {
	buf := strings.Builder{}
	for i := range ops {
		op := &ops[i]
		buf.WriteString(opColor(string(op.Op)))
		buf.WriteByte(' ')
		buf.WriteString(pathString(op.Path))
		if op.From != nil {
			buf.WriteString(" from ")
			buf.WriteString(pathString(op.From))
		}
		if op.Value != nil {
			buf.WriteByte(' ')
			buf.WriteString(op.Value.MustJSON())
		}
		if op.Original != nil {
			buf.WriteString(" (was ")
			buf.WriteString(op.Original.MustJSON())
			buf.WriteByte(')')
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}

func pathString(p patch.Path) string {
	if len(p) == 0 {
		return "/"
	}
	return p.String()
}
