package mapping

import "fmt"

// PeriodLabels names the two top-level branches of a period-pair result.
type PeriodLabels struct {
	Current  string `yaml:"current" json:"current"`
	Previous string `yaml:"previous" json:"previous"`
}

// DefaultPeriodLabels is used when a table does not name its periods.
var DefaultPeriodLabels = PeriodLabels{Current: "current", Previous: "previous"}

func (l PeriodLabels) orDefault() PeriodLabels {
	if l.Current == "" {
		l.Current = DefaultPeriodLabels.Current
	}
	if l.Previous == "" {
		l.Previous = DefaultPeriodLabels.Previous
	}
	return l
}

// Option configures Resolve.
type Option func(*options)

type options struct {
	labels PeriodLabels
}

// WithPeriodLabels overrides the branch labels of period-pair results.
// Empty fields keep their default.
func WithPeriodLabels(l PeriodLabels) Option {
	return func(o *options) { o.labels = l.orDefault() }
}

// Resolve projects store onto t. It never mutates t or store, and the
// returned Result shares no storage with earlier results. Absent paths
// resolve to null. The only error is a template whose leaves do not match
// s; a nil store behaves as an empty one.
func Resolve(t Template, s Strategy, store Store, opts ...Option) (Result, error) {
	if err := t.Validate(s); err != nil {
		return Result{}, err
	}
	if store == nil {
		store = emptyStore{}
	}

	o := options{labels: DefaultPeriodLabels}
	for _, opt := range opts {
		opt(&o)
	}

	switch s {
	case PeriodPair:
		// Two independent read-only passes, one per pair element.
		return Result{fields: []ResultField{
			{Label: o.labels.Current, Result: project(t, store, 0)},
			{Label: o.labels.Previous, Result: project(t, store, 1)},
		}}, nil
	case FlatRecursive:
		return project(t, store, 0), nil
	}
	return Result{}, fmt.Errorf("%w: %s", ErrUnknownStrategy, s)
}

// project resolves element idx of every leaf.
func project(t Template, store Store, idx int) Result {
	if t.IsLeaf() {
		return leafResult(store.Get(t.paths[idx]))
	}
	fields := make([]ResultField, len(t.entries))
	for i, e := range t.entries {
		fields[i] = ResultField{Label: e.Label, Result: project(e.Template, store, idx)}
	}
	return Result{fields: fields}
}
