package xbrl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTestdata(t *testing.T) *Document {
	t.Helper()
	doc, err := ParseFile("testdata/instance.xml")
	require.NoError(t, err)
	return doc
}

func TestContexts_Periods(t *testing.T) {
	contexts := parseTestdata(t).Contexts()
	require.Len(t, contexts, 5)

	assert.Equal(t, Period{Type: PeriodInstant, Instant: "2023-03-31"}, contexts["I2023"].Period)
	assert.Equal(t, Period{Type: PeriodDuration, StartDate: "2022-04-01", EndDate: "2023-03-31"}, contexts["D2023"].Period)
	assert.Equal(t, Period{}, contexts["NoPeriod"].Period)
}

func TestContexts_Entity(t *testing.T) {
	ctx := parseTestdata(t).Contexts()["I2023"]

	assert.Equal(t, "I2023", ctx.ID)
	assert.Equal(t, "http://www.mca.gov.in/CIN", ctx.Entity.Scheme)
	assert.Equal(t, "U12345MH2000PLC000001", ctx.Entity.Value)
	assert.NotNil(t, ctx.Scenario)
	assert.Empty(t, ctx.Scenario)
}

func TestContexts_ScenarioTypedBeforeExplicit(t *testing.T) {
	ctx := parseTestdata(t).Contexts()["I2023_Secured"]

	want := []Member{
		{Type: TypedMember, Dimension: "in-gaap:NameOfLenderAxis", Value: "StateBank"},
		{Type: ExplicitMember, Dimension: "in-gaap:SubclassOfBorrowingsAxis", Value: "SecuredBorrowingsMember"},
	}
	assert.Equal(t, want, ctx.Scenario)
	assert.True(t, ctx.Dimensional())
}

func TestContexts_UnderPopulated(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want Context
	}{
		{
			name: "no entity",
			xml: `<xbrli:context id="c1"><xbrli:period><xbrli:instant>2023-03-31</xbrli:instant></xbrli:period></xbrli:context>`,
			want: Context{ID: "c1", Period: Period{Type: PeriodInstant, Instant: "2023-03-31"}, Scenario: []Member{}},
		},
		{
			name: "start date without end date",
			xml: `<xbrli:context id="c2"><xbrli:period><xbrli:startDate>2022-04-01</xbrli:startDate></xbrli:period></xbrli:context>`,
			want: Context{ID: "c2", Scenario: []Member{}},
		},
		{
			name: "typed member without child",
			xml: `<xbrli:context id="c3"><xbrli:scenario><xbrldi:typedMember dimension="a:Axis"/></xbrli:scenario></xbrli:context>`,
			want: Context{ID: "c3", Scenario: []Member{}},
		},
		{
			name: "unprefixed explicit member",
			xml: `<xbrli:context id="c4"><xbrli:scenario><xbrldi:explicitMember dimension="a:Axis"> Plain </xbrldi:explicitMember></xbrli:scenario></xbrli:context>`,
			want: Context{ID: "c4", Scenario: []Member{{Type: ExplicitMember, Dimension: "a:Axis", Value: "Plain"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance" xmlns:xbrldi="http://xbrl.org/2006/xbrldi">` +
				tt.xml + `</xbrli:xbrl>`
			doc, err := Parse(strings.NewReader(src))
			require.NoError(t, err)

			contexts := doc.Contexts()
			require.Contains(t, contexts, tt.want.ID)
			assert.Equal(t, tt.want, *contexts[tt.want.ID])
		})
	}
}

func TestContexts_IgnoresNestedAndForeignElements(t *testing.T) {
	src := `<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance" xmlns:x="urn:other">
		<x:context id="foreign"/>
		<x:wrapper><xbrli:context id="nested"/></x:wrapper>
		<xbrli:context id="top"/>
	</xbrli:xbrl>`

	doc, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	contexts := doc.Contexts()
	assert.Len(t, contexts, 1)
	assert.Contains(t, contexts, "top")
}

func TestPeriod_Date(t *testing.T) {
	tests := []struct {
		period Period
		want   string
	}{
		{Period{Type: PeriodInstant, Instant: "2023-03-31"}, "2023-03-31"},
		{Period{Type: PeriodDuration, StartDate: "2022-04-01", EndDate: "2023-03-31"}, "2023-03-31"},
		{Period{}, ""},
	}
	for _, tt := range tests {
		if got := tt.period.Date(); got != tt.want {
			t.Errorf("Period%+v.Date() = %q, want %q", tt.period, got, tt.want)
		}
	}
}
