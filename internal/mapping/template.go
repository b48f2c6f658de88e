// Package mapping projects a flat field store onto nested statement
// templates.
//
// A Template is an immutable tree. Leaves name one store path (flat
// templates) or a (current, previous) pair of paths (period templates);
// internal nodes hold labelled children in declaration order. Resolve walks
// a template read-only and returns a Result of the same shape with every
// leaf replaced by the stored value, or null when the path is absent.
//
//	tmpl := mapping.Group(
//	    mapping.Field("Share capital", mapping.Pair("Row1.ShareCap", "Row1.ShareCapP")),
//	)
//	res, err := mapping.Resolve(tmpl, mapping.PeriodPair, mapping.MapStore(fields))
package mapping

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStrategyMismatch means a template leaf does not have the shape its
	// strategy requires. It is a configuration error of the template.
	ErrStrategyMismatch = errors.New("template leaf does not match strategy")

	// ErrUnknownStrategy is returned for a zero or out-of-range Strategy.
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// Template is one node of a statement template. The zero value is an empty
// group.
type Template struct {
	paths   []string
	entries []Entry
}

// Entry is a labelled child of a group node.
type Entry struct {
	Label    string
	Template Template
}

// Path returns a single-path leaf.
func Path(path string) Template {
	return Template{paths: []string{path}}
}

// Pair returns a period leaf: element 0 resolves the current period,
// element 1 the previous one.
func Pair(current, previous string) Template {
	return Template{paths: []string{current, previous}}
}

// Group returns an internal node. Labels keep the given order.
func Group(entries ...Entry) Template {
	return Template{entries: append([]Entry(nil), entries...)}
}

// Field is shorthand for an Entry literal.
func Field(label string, t Template) Entry {
	return Entry{Label: label, Template: t}
}

// IsLeaf reports whether t names store paths rather than children.
func (t Template) IsLeaf() bool { return len(t.paths) > 0 }

// IsPair reports whether t is a (current, previous) leaf.
func (t Template) IsPair() bool { return len(t.paths) == 2 }

// Paths returns a copy of the leaf paths; nil for a group.
func (t Template) Paths() []string {
	if len(t.paths) == 0 {
		return nil
	}
	return append([]string(nil), t.paths...)
}

// Entries returns a copy of the group's children.
func (t Template) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Labels returns the group's labels in order.
func (t Template) Labels() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Label
	}
	return out
}

// Depth is 0 for a leaf and 1 + the deepest child for a group.
func (t Template) Depth() int {
	if t.IsLeaf() {
		return 0
	}
	d := 0
	for _, e := range t.entries {
		if cd := e.Template.Depth(); cd > d {
			d = cd
		}
	}
	return d + 1
}

// LeafPaths lists every store path the template reads, depth first.
func (t Template) LeafPaths() []string {
	var out []string
	t.walk(nil, func(_ []string, leaf Template) error {
		out = append(out, leaf.paths...)
		return nil
	})
	return out
}

// Validate checks that every leaf has the shape s requires.
func (t Template) Validate(s Strategy) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownStrategy, s)
	}
	return t.walk(nil, func(at []string, leaf Template) error {
		switch {
		case s == PeriodPair && !leaf.IsPair(),
			s == FlatRecursive && len(leaf.paths) != 1:
			return fmt.Errorf("%w: %s template has %d path(s) at %q",
				ErrStrategyMismatch, s, len(leaf.paths), strings.Join(at, " > "))
		}
		return nil
	})
}

// walk calls fn for each leaf with the label path leading to it.
func (t Template) walk(at []string, fn func(at []string, leaf Template) error) error {
	if t.IsLeaf() {
		return fn(at, t)
	}
	for _, e := range t.entries {
		if err := e.Template.walk(append(at[:len(at):len(at)], e.Label), fn); err != nil {
			return err
		}
	}
	return nil
}
