package forms

import (
	"regexp"
	"sort"

	"github.com/JonMunkholm/filingmap/internal/mapping"
)

const (
	fieldCIN      = "data[0].FormAOC4_Dtls[0].Segment1_PartA[0].CIN_C[0]"
	fieldFromDate = "data[0].FormAOC4_Dtls[0].Segment1_PartA[0].FromDate[0]"
	fieldToDate   = "data[0].FormAOC4_Dtls[0].Segment1_PartA[0].ToDate[0]"
)

// cinPattern matches a listed company's Corporate Identity Number.
var cinPattern = regexp.MustCompile(`L[0-9]{5}[A-Z]{2}[0-9]{4}[A-Z]{3}[0-9]{6}`)

// Identity names the company and period a filing belongs to.
type Identity struct {
	CIN           string `json:"cin,omitempty"`
	FinancialYear string `json:"financial_year,omitempty"`
}

// Identify reads the CIN and financial year from the form header. When the
// CIN field is empty, the first CIN found in any field value is used.
func Identify(store mapping.Store) Identity {
	var id Identity

	if v, ok := store.Get(fieldCIN); ok && v != "" {
		id.CIN = v
	}
	from, _ := store.Get(fieldFromDate)
	to, _ := store.Get(fieldToDate)
	if from != "" && to != "" {
		id.FinancialYear = from + " to " + to
	}

	if id.CIN == "" {
		if fields, ok := store.(mapping.MapStore); ok {
			id.CIN = scanCIN(fields)
		}
	}
	return id
}

func scanCIN(fields mapping.MapStore) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if m := cinPattern.FindString(fields[name]); m != "" {
			return m
		}
	}
	return ""
}
