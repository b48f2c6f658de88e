package xbrl

import (
	"sort"
	"strings"
)

// FactStore projects a fact list onto flat lookup keys so that templates can
// address XBRL facts the same way they address form fields.
//
// Keys, for a fact named Equity in prefix ind-as:
//
//	Equity                  first fact in document order
//	ind-as:Equity           same, namespace qualified
//	Equity@current          fact dated on the latest reporting date
//	Equity@previous         fact dated on the reporting date before that
//
// Facts whose context carries scenario members are keyed with their member
// values in brackets, e.g. Borrowings[SecuredBorrowingsMember]@current, so
// they never shadow the undimensioned total. For every key the first fact
// in document order wins.
type FactStore struct {
	values   map[string]string
	current  string
	previous string
}

// NewFactStore indexes facts. The facts slice is not retained.
func NewFactStore(facts []Fact) *FactStore {
	s := &FactStore{values: make(map[string]string, len(facts)*3)}
	s.current, s.previous = reportingDates(facts)

	for _, f := range facts {
		names := []string{f.ElementName}
		if f.NamespacePrefix != "" {
			names = append(names, f.NamespacePrefix+":"+f.ElementName)
		}

		var qualifier, date string
		if c := f.ContextDetails; c != nil {
			date = c.Period.Date()
			if c.Dimensional() {
				vals := make([]string, len(c.Scenario))
				for i, m := range c.Scenario {
					vals[i] = m.Value
				}
				qualifier = "[" + strings.Join(vals, ",") + "]"
			}
		}

		for _, name := range names {
			key := name + qualifier
			s.setOnce(key, f.Value)
			switch {
			case date == "":
			case date == s.current:
				s.setOnce(key+"@current", f.Value)
			case date == s.previous:
				s.setOnce(key+"@previous", f.Value)
			}
		}
	}
	return s
}

func (s *FactStore) setOnce(key, value string) {
	if _, ok := s.values[key]; !ok {
		s.values[key] = value
	}
}

// Get returns the value stored under key.
func (s *FactStore) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Len returns the number of distinct keys.
func (s *FactStore) Len() int { return len(s.values) }

// ReportingDates returns the two latest distinct period dates of the
// non-dimensional facts. Either may be "".
func (s *FactStore) ReportingDates() (current, previous string) {
	return s.current, s.previous
}

// reportingDates relies on ISO-8601 dates sorting lexically. Dates that
// only appear on dimensional contexts never become an anchor.
func reportingDates(facts []Fact) (string, string) {
	seen := make(map[string]struct{})
	var dates []string
	for _, f := range facts {
		if f.ContextDetails == nil || f.ContextDetails.Dimensional() {
			continue
		}
		d := f.ContextDetails.Period.Date()
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	var current, previous string
	if len(dates) > 0 {
		current = dates[0]
	}
	if len(dates) > 1 {
		previous = dates[1]
	}
	return current, previous
}
