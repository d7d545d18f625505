// Package phase defines the ordered set of pipeline phases and the order keys
// used to rank layers registered against them.
//
// Every phase owns three consecutive slots: "name:before", "name" and
// "name:after". For the phase at index i these map to keys 3i, 3i+1 and 3i+2.
package phase

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnknownPhase is returned when a tag names a phase the table does not know.
var ErrUnknownPhase = errors.New("unknown middleware phase")

// Routing is the phase unassigned layers are ranked with.
const Routing = "routing"

// DefaultPhases is the stock pipeline. Copy it before changing it.
var DefaultPhases = []string{"initial", "session", "auth", "parse", Routing, "static", "final"}

// Anchor narrows a tag to one of the three slots of its phase.
type Anchor int

const (
	AnchorNone Anchor = iota
	AnchorBefore
	AnchorAfter
)

func (a Anchor) String() string {
	switch a {
	case AnchorBefore:
		return "before"
	case AnchorAfter:
		return "after"
	default:
		return ""
	}
}

// Tag is a parsed phase tag.
type Tag struct {
	Name   string
	Anchor Anchor
}

func (t Tag) String() string {
	if t.Anchor == AnchorNone {
		return t.Name
	}
	return t.Name + ":" + t.Anchor.String()
}

var anchored = regexp.MustCompile(`^(.+):(before|after)$`)

// ParseTag splits an optional ":before"/":after" suffix off tag.
func ParseTag(tag string) Tag {
	m := anchored.FindStringSubmatch(tag)
	if m == nil {
		return Tag{Name: tag}
	}
	if m[2] == "before" {
		return Tag{Name: m[1], Anchor: AnchorBefore}
	}
	return Tag{Name: m[1], Anchor: AnchorAfter}
}

// Table is an immutable ordered list of phase names.
type Table struct {
	names []string
	index map[string]int
}

// NewTable builds a table from names in precedence order.
func NewTable(names ...string) (*Table, error) {
	if len(names) == 0 {
		return nil, errors.New("phase table: at least one phase required")
	}
	t := &Table{
		names: make([]string, 0, len(names)),
		index: make(map[string]int, len(names)),
	}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, errors.New("phase table: empty phase name")
		}
		if strings.Contains(n, ":") {
			return nil, fmt.Errorf("phase table: phase name %q must not contain ':'", n)
		}
		if _, dup := t.index[n]; dup {
			return nil, fmt.Errorf("phase table: duplicate phase %q", n)
		}
		t.index[n] = len(t.names)
		t.names = append(t.names, n)
	}
	return t, nil
}

// Default returns a table holding DefaultPhases.
func Default() *Table {
	t, err := NewTable(DefaultPhases...)
	if err != nil {
		panic(err)
	}
	return t
}

// With returns a new table with extra phases appended after the existing ones.
func (t *Table) With(names ...string) (*Table, error) {
	all := make([]string, 0, len(t.names)+len(names))
	all = append(all, t.names...)
	all = append(all, names...)
	return NewTable(all...)
}

// Names returns a copy of the phase names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

func (t *Table) Len() int { return len(t.names) }

// Has reports whether name is a configured phase (no anchor allowed).
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Validate checks that the base name of tag is configured.
func (t *Table) Validate(tag string) error {
	_, err := t.OrderKey(tag)
	return err
}

// OrderKey ranks tag. Keys are unique per tag and grow with phase index,
// then with anchor position.
func (t *Table) OrderKey(tag string) (int, error) {
	p := ParseTag(tag)
	i, ok := t.index[p.Name]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownPhase, p.Name)
	}
	switch p.Anchor {
	case AnchorBefore:
		return 3 * i, nil
	case AnchorAfter:
		return 3*i + 2, nil
	default:
		return 3*i + 1, nil
	}
}
