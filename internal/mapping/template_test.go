package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroup_CopiesEntries(t *testing.T) {
	entries := []Entry{Field("A", Path("a")), Field("B", Path("b"))}
	tmpl := Group(entries...)

	entries[0].Label = "mutated"
	assert.Equal(t, []string{"A", "B"}, tmpl.Labels())

	got := tmpl.Entries()
	got[1] = Field("C", Path("c"))
	assert.Equal(t, []string{"A", "B"}, tmpl.Labels())
}

func TestTemplate_Shape(t *testing.T) {
	tmpl := Group(
		Field("A", Pair("a", "aP")),
		Field("B", Group(Field("C", Pair("c", "cP")))),
	)

	assert.False(t, tmpl.IsLeaf())
	assert.Equal(t, 2, tmpl.Depth())
	assert.Equal(t, []string{"a", "aP", "c", "cP"}, tmpl.LeafPaths())
	assert.Nil(t, tmpl.Paths())

	leaf := Pair("x", "y")
	assert.True(t, leaf.IsLeaf())
	assert.True(t, leaf.IsPair())
	assert.Equal(t, 0, leaf.Depth())
	assert.Equal(t, []string{"x", "y"}, leaf.Paths())

	assert.False(t, Path("x").IsPair())
	assert.Equal(t, 1, Group().Depth())
}

func TestTemplate_ValidateNamesLocation(t *testing.T) {
	tmpl := Group(Field("Outer", Group(Field("Inner", Path("x")))))

	err := tmpl.Validate(PeriodPair)
	assert.ErrorIs(t, err, ErrStrategyMismatch)
	assert.Contains(t, err.Error(), `"Outer > Inner"`)

	assert.NoError(t, tmpl.Validate(FlatRecursive))
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"period-pair", PeriodPair, false},
		{"Period_Pair", PeriodPair, false},
		{" flat ", FlatRecursive, false},
		{"flat-recursive", FlatRecursive, false},
		{"deep-copy", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStrategy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStrategy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStrategy_String(t *testing.T) {
	assert.Equal(t, "period-pair", PeriodPair.String())
	assert.Equal(t, "flat-recursive", FlatRecursive.String())
	assert.Equal(t, "Strategy(9)", Strategy(9).String())
	assert.False(t, Strategy(0).Valid())
}
