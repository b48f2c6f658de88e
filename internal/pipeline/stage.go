package pipeline

import (
	"fmt"
	"strings"
)

// Stage names one step of a run.
type Stage string

const (
	StageSort        Stage = "sort"
	StageAttachments Stage = "attachments"
	StageFormTables  Stage = "form-tables"
	StageFacts       Stage = "facts"
	StageFactTables  Stage = "fact-tables"
	StageXBRLTables  Stage = "xbrl-tables"
)

// AllStages lists every stage in execution order.
var AllStages = []Stage{
	StageSort,
	StageAttachments,
	StageFormTables,
	StageFacts,
	StageFactTables,
	StageXBRLTables,
}

// ParseStages reads a comma-separated stage list. The result is in
// execution order regardless of the input order; "all" or "" selects
// every stage.
func ParseStages(s string) ([]Stage, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return AllStages, nil
	}

	want := make(map[Stage]bool)
	for _, part := range strings.Split(s, ",") {
		st := Stage(strings.TrimSpace(strings.ToLower(part)))
		if !st.valid() {
			return nil, fmt.Errorf("unknown stage %q (valid: %s)", part, stageList())
		}
		want[st] = true
	}

	var out []Stage
	for _, st := range AllStages {
		if want[st] {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s Stage) valid() bool {
	for _, st := range AllStages {
		if s == st {
			return true
		}
	}
	return false
}

func stageList() string {
	names := make([]string, len(AllStages))
	for i, st := range AllStages {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}
