package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/filingmap/internal/xbrl"
)

func strPtr(s string) *string { return &s }

func sampleFacts() []xbrl.Fact {
	return []xbrl.Fact{
		{
			ElementName: "Equity",
			Value:       "1500000",
			ContextRef:  "I2023",
			UnitRef:     strPtr("INR"),
			Decimals:    strPtr("-5"),
			ContextDetails: &xbrl.Context{
				ID:       "I2023",
				Period:   xbrl.Period{Type: xbrl.PeriodInstant, Instant: "2023-03-31"},
				Scenario: []xbrl.Member{},
			},
		},
		{
			ElementName: "Borrowings",
			Value:       "300000",
			ContextRef:  "D2023_Secured",
			ContextDetails: &xbrl.Context{
				ID:     "D2023_Secured",
				Period: xbrl.Period{Type: xbrl.PeriodDuration, StartDate: "2022-04-01", EndDate: "2023-03-31"},
				Scenario: []xbrl.Member{
					{Type: xbrl.TypedMember, Dimension: "in-gaap:NameOfLenderAxis", Value: "StateBank"},
					{Type: xbrl.ExplicitMember, Dimension: "in-gaap:SubclassOfBorrowingsAxis", Value: "SecuredBorrowingsMember"},
				},
			},
		},
		{
			ElementName: "Orphan",
			Value:       "x",
			ContextRef:  "Missing",
		},
	}
}

func TestRow(t *testing.T) {
	facts := sampleFacts()
	tests := []struct {
		name string
		fact xbrl.Fact
		want []string
	}{
		{
			name: "instant",
			fact: facts[0],
			want: []string{"Equity", "1500000", "INR", "-5", "instant", "2023-03-31", "", "I2023", "", "", ""},
		},
		{
			name: "duration keeps first scenario member",
			fact: facts[1],
			want: []string{"Borrowings", "300000", "", "", "duration", "2022-04-01", "2023-03-31", "D2023_Secured",
				"typedMember", "in-gaap:NameOfLenderAxis", "StateBank"},
		},
		{
			name: "unresolved context",
			fact: facts[2],
			want: []string{"Orphan", "x", "", "", "", "", "", "Missing", "", "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Row(tt.fact)); diff != "" {
				t.Errorf("Row() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteCSV_Filtered(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleFacts(), IsKeyElement))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus Equity and Borrowings")
	assert.Equal(t, Header, records[0])
	assert.Equal(t, "Equity", records[1][0])
	assert.Equal(t, "Borrowings", records[2][0])
}

func TestWriteTables(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "XBRL_XML_JSON_TABLE")

	full, filtered, err := WriteTables(dir, "instance", sampleFacts())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "instance.csv"), full)
	assert.Equal(t, filepath.Join(dir, "instance_filtered.csv"), filtered)

	countRows := func(p string) int {
		f, err := os.Open(p)
		require.NoError(t, err)
		defer f.Close()
		recs, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)
		return len(recs)
	}
	assert.Equal(t, 4, countRows(full))
	assert.Equal(t, 3, countRows(filtered))
}

func TestWriteJSON_ReadFacts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts", "instance.json")
	require.NoError(t, WriteJSON(path, sampleFacts()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n    {\n        \"elementName\": \"Equity\"")

	got, err := ReadFacts(path)
	require.NoError(t, err)
	if diff := cmp.Diff(sampleFacts(), got); diff != "" {
		t.Errorf("ReadFacts() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFacts_ErrorDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, WriteJSON(path, map[string]string{"error": "Failed to parse XML"}))

	_, err := ReadFacts(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid json")
}
