// Package patch defines the patch operation model shared by the diff
// engine, the exclusion filter and the rollback replayer.
package patch

import (
	"strconv"
	"strings"

	"github.com/scribe-data/scribe/ir"
)

// Path is an ordered segment sequence addressing a location in a value
// tree.  The root path is the empty sequence.  In a pattern path a
// segment may be the Wildcard, matching any array index at that
// position.
type Path []string

// Wildcard matches any non-negative integer segment.
const Wildcard = "*"

// ParsePath splits a pointer-style path string on '/'.  Empty segments
// are normalized away rather than rejected, so "", "/" and "//" all
// parse to the root path.  The '~1' and '~0' escapes of RFC 6901 are
// decoded.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "/")
	res := make(Path, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		res = append(res, unescape(p))
	}
	return res
}

func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	buf := strings.Builder{}
	for _, seg := range p {
		buf.WriteByte('/')
		buf.WriteString(escape(seg))
	}
	return buf.String()
}

// Dotted renders the path in dotted form, as used for prior-snapshot
// lookups.
func (p Path) Dotted() string {
	return strings.Join(p, ".")
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

func unescape(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

func segMatch(pat, seg string) bool {
	if pat == Wildcard {
		return isIndex(seg)
	}
	return pat == seg
}

// Contains reports whether p, treated as a pattern, covers the concrete
// path q: p matches q segment-wise and is no longer than q.
func (p Path) Contains(q Path) bool {
	if len(p) > len(q) {
		return false
	}
	for i, seg := range p {
		if !segMatch(seg, q[i]) {
			return false
		}
	}
	return true
}

// Under reports whether the pattern p extends strictly past the concrete
// path q while agreeing with it on every overlapping segment.  The
// returned remainder is the part of p below q.
func (p Path) Under(q Path) (Path, bool) {
	if len(p) <= len(q) {
		return nil, false
	}
	for i, seg := range q {
		if !segMatch(p[i], seg) {
			return nil, false
		}
	}
	return p[len(q):], true
}

// Lookup walks a concrete path into a value tree, returning nil when any
// segment is absent or mismatched.
func Lookup(n *ir.Node, p Path) *ir.Node {
	for _, seg := range p {
		if n == nil {
			return nil
		}
		switch n.Type {
		case ir.ObjectType:
			n = n.Get(seg)
		case ir.ArrayType:
			i, err := strconv.Atoi(seg)
			if err != nil {
				return nil
			}
			n = n.At(i)
		default:
			return nil
		}
	}
	return n
}
