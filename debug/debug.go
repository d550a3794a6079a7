// Package debug provides env-flag gated debug logging.  Set
// SCRIBE_DEBUG_<AREA>=1 to enable an area.
package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type debug struct {
	Diff     bool
	Filter   bool
	Capture  bool
	Rollback bool
	Store    bool
}

var (
	d      *debug
	prefix = "scribe| "
)

func init() {
	d = &debug{}
	d.Diff = boolEnv("SCRIBE_DEBUG_DIFF")
	d.Filter = boolEnv("SCRIBE_DEBUG_FILTER")
	d.Capture = boolEnv("SCRIBE_DEBUG_CAPTURE")
	d.Rollback = boolEnv("SCRIBE_DEBUG_ROLLBACK")
	d.Store = boolEnv("SCRIBE_DEBUG_STORE")
	if isatty.IsTerminal(os.Stderr.Fd()) {
		prefix = color.YellowString(prefix)
	}
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Diff() bool     { return d.Diff }
func Filter() bool   { return d.Filter }
func Capture() bool  { return d.Capture }
func Rollback() bool { return d.Rollback }
func Store() bool    { return d.Store }

// Logf writes to stderr, rendering structured args as JSON.
func Logf(msg string, args ...any) {
	for i := range args {
		switch a := args[i].(type) {
		case map[string]any, []any, json.Number:
			d, err := json.Marshal(a)
			if err != nil {
				args[i] = fmt.Sprintf("%v", a)
				continue
			}
			args[i] = string(d)
		case json.Marshaler:
			d, err := a.MarshalJSON()
			if err != nil {
				args[i] = fmt.Sprintf("%v", a)
				continue
			}
			args[i] = string(d)
		case bool, string, float64, int:
		default:
		}
	}
	fmt.Fprintf(os.Stderr, prefix+msg, args...)
}
