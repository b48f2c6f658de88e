package tables

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/filingmap/internal/mapping"
)

func TestForms_Registered(t *testing.T) {
	want := []struct {
		id       int
		name     string
		strategy mapping.Strategy
	}{
		{1, "Balance Sheet", mapping.PeriodPair},
		{2, "Long Term Borrowings", mapping.PeriodPair},
		{3, "Short Term Borrowings", mapping.PeriodPair},
		{4, "Long Term Loans Unsecured", mapping.PeriodPair},
		{5, "Long Term Loans Doubtful", mapping.PeriodPair},
		{6, "Trade Receivables", mapping.PeriodPair},
		{7, "Financial Parameters", mapping.FlatRecursive},
		{8, "Share Capital Raised", mapping.FlatRecursive},
		{9, "Profit and Loss", mapping.FlatRecursive},
		{10, "Earnings in Foreign Exchange", mapping.FlatRecursive},
		{11, "Expenditure in Foreign Exchange", mapping.FlatRecursive},
		{12, "Financial Parameters Profit and Loss", mapping.FlatRecursive},
	}

	require.Equal(t, len(want), Forms.TableCount())
	for _, w := range want {
		def, ok := Forms.Get(w.id)
		if !assert.True(t, ok, "table %d missing", w.id) {
			continue
		}
		assert.Equal(t, w.name, def.Info.Name)
		assert.Equal(t, w.strategy, def.Info.Strategy)
		assert.Equal(t, "AOC-4", def.Info.Group)
	}
}

func TestForms_BalanceSheet(t *testing.T) {
	store := mapping.MapStore{
		"data[0].FormAOC4_Dtls[0].BalanceSheet1_PartB[0].Table6[0].Row1[0].ShareCap[0]":  "500000",
		"data[0].FormAOC4_Dtls[0].BalanceSheet1_PartB[0].Table6[0].Row1[0].ShareCapP[0]": "400000",
	}

	res, err := Forms.ResolveTable(1, store)
	require.NoError(t, err)
	assert.Equal(t, "Balance Sheet", res.TableName)

	assert.Equal(t, []string{"Current balance sheet", "Previous balance sheet"}, res.Data.Labels())

	cur, ok := res.Data.Lookup("Current balance sheet", "EQUITY AND LIABILITIES", "Shareholder's Fund", "Share capital")
	require.True(t, ok)
	v, _ := cur.Value()
	assert.Equal(t, "500000", v)

	prev, ok := res.Data.Lookup("Previous balance sheet", "EQUITY AND LIABILITIES", "Shareholder's Fund", "Share capital")
	require.True(t, ok)
	v, _ = prev.Value()
	assert.Equal(t, "400000", v)

	reserves, ok := res.Data.Lookup("Current balance sheet", "EQUITY AND LIABILITIES", "Shareholder's Fund", "Reserves and surplus")
	require.True(t, ok)
	_, present := reserves.Value()
	assert.False(t, present)
}

func TestForms_ReportingPeriodLabels(t *testing.T) {
	for id := 2; id <= 6; id++ {
		res, err := Forms.ResolveTable(id, mapping.MapStore{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Current reporting period", "Previous reporting period"}, res.Data.Labels(), "table %d", id)
	}
}

func TestForms_FlatTablesResolveEmptyStore(t *testing.T) {
	for id := 7; id <= 12; id++ {
		res, err := Forms.ResolveTable(id, mapping.MapStore{})
		require.NoError(t, err, "table %d", id)

		b, err := json.Marshal(res.Data)
		require.NoError(t, err)
		assert.NotContains(t, string(b), `"current"`, "table %d", id)
	}
}

func TestXBRL_Registered(t *testing.T) {
	assert.Equal(t, []int{1, 2}, XBRL.IDs())

	def, ok := XBRL.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Key Financials", def.Info.Name)
	assert.Equal(t, mapping.PeriodPair, def.Info.Strategy)

	res, err := XBRL.ResolveTable(1, mapping.MapStore{
		"Equity@current":  "1500000",
		"Equity@previous": "1200000",
	})
	require.NoError(t, err)

	eq, ok := res.Data.Lookup("Current reporting period", "Balance sheet", "Equity", "Equity")
	require.True(t, ok)
	v, _ := eq.Value()
	assert.Equal(t, "1500000", v)
}
