package mapping

import (
	"fmt"
	"strings"
)

// Strategy selects how a template's leaves are resolved. It is pinned to a
// template when the table is registered.
type Strategy uint8

const (
	// PeriodPair templates have (current, previous) path pairs at every
	// leaf and resolve into a current and a previous subtree.
	PeriodPair Strategy = iota + 1

	// FlatRecursive templates have a single path at every leaf and resolve
	// in one traversal.
	FlatRecursive
)

func (s Strategy) String() string {
	switch s {
	case PeriodPair:
		return "period-pair"
	case FlatRecursive:
		return "flat-recursive"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// Valid reports whether s is one of the declared strategies.
func (s Strategy) Valid() bool {
	return s == PeriodPair || s == FlatRecursive
}

// ParseStrategy accepts the String form and a few common spellings.
func ParseStrategy(v string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "period-pair", "period_pair", "periodpair", "pair":
		return PeriodPair, nil
	case "flat-recursive", "flat_recursive", "flatrecursive", "flat":
		return FlatRecursive, nil
	}
	return 0, fmt.Errorf("unknown strategy %q", v)
}

func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown strategy %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(b []byte) error {
	parsed, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
