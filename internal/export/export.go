// Package export writes linked XBRL facts as JSON documents and flattened
// CSV tables.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/filingmap/internal/xbrl"
)

// Header is the column row of a fact table.
var Header = []string{
	"ElementName",
	"Value",
	"unitref",
	"decimals",
	"period_type",
	"startDate/instant",
	"endDate",
	"contextRef",
	"scenario_type",
	"scenario_dimension",
	"scenario_value",
}

// keyElements are the line items kept in the filtered fact table.
var keyElements = map[string]bool{
	"RevenueFromOperations":                       true,
	"ProfitBeforeExceptionalItemsAndTax":          true,
	"FinanceCosts":                                true,
	"DepreciationDepletionAndAmortizationExpense": true,
	"ProfitBeforeTax":                             true,
	"ProfitLossForPeriodFromContinuingOperations": true,
	"BasicEarningsLossPerShare":                   true,
	"DilutedEarningsLossPerShare":                 true,
	"Equity":                                      true,
	"CashFlowsFromUsedInOperations":               true,
	"CostOfMaterialsConsumed":                     true,
	"PurchasesOfStockInTrade":                     true,
	"ChangesInInventoriesOfFinishedGoodsWorkInProgressAndStockInTrade": true,
	"EmployeeBenefitExpense":                     true,
	"TaxExpense":                                 true,
	"BorrowingsCurrent":                          true,
	"BorrowingsNonCurrent":                       true,
	"Borrowings":                                 true,
	"SubclassOfBorrowingsAxis":                   true,
	"EquityShareCapital":                         true,
	"OtherEquity":                                true,
	"TradeReceivablesCurrent":                    true,
	"PropertyPlantAndEquipment":                  true,
	"GrossCarryingAmountMember":                  true,
	"CarryingAmountAccumulatedDepreciationAndGrossCarryingAmountAxis": true,
	"CapitalWorkInProgress":                      true,
	"CurrentInvestments":                         true,
	"NoncurrentInvestments":                      true,
	"CurrentAssets":                              true,
	"CurrentLiabilities":                         true,
	"Inventories":                                true,
	"BankBalanceOtherThanCashAndCashEquivalents": true,
	"CashAndCashEquivalents":                     true,
	"Assets":                                     true,
}

// IsKeyElement reports whether a fact belongs in the filtered table.
func IsKeyElement(f xbrl.Fact) bool {
	return keyElements[f.ElementName]
}

// Row flattens a fact. Only the first scenario member is kept; instant
// periods put their date in the startDate/instant column.
func Row(f xbrl.Fact) []string {
	row := make([]string, len(Header))
	row[0] = f.ElementName
	row[1] = f.Value
	row[2] = deref(f.UnitRef)
	row[3] = deref(f.Decimals)
	row[7] = f.ContextRef

	if c := f.ContextDetails; c != nil {
		row[4] = string(c.Period.Type)
		if c.Period.Type == xbrl.PeriodInstant {
			row[5] = c.Period.Instant
		} else {
			row[5] = c.Period.StartDate
		}
		row[6] = c.Period.EndDate

		if len(c.Scenario) > 0 {
			m := c.Scenario[0]
			row[8] = string(m.Type)
			row[9] = m.Dimension
			row[10] = m.Value
		}
	}
	return row
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// WriteCSV writes the header and one row per fact accepted by keep (all
// facts when keep is nil).
func WriteCSV(w io.Writer, facts []xbrl.Fact, keep func(xbrl.Fact) bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, f := range facts {
		if keep != nil && !keep(f) {
			continue
		}
		if err := cw.Write(Row(f)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTables writes <base>.csv with every fact and <base>_filtered.csv
// with the key elements into dir, returning both paths.
func WriteTables(dir, base string, facts []xbrl.Fact) (full, filtered string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create table dir: %w", err)
	}

	full = filepath.Join(dir, base+".csv")
	if err := writeFile(full, func(w io.Writer) error { return WriteCSV(w, facts, nil) }); err != nil {
		return "", "", fmt.Errorf("write %s: %w", filepath.Base(full), err)
	}
	filtered = filepath.Join(dir, base+"_filtered.csv")
	if err := writeFile(filtered, func(w io.Writer) error { return WriteCSV(w, facts, IsKeyElement) }); err != nil {
		return "", "", fmt.Errorf("write %s: %w", filepath.Base(filtered), err)
	}
	return full, filtered, nil
}

// WriteJSON writes v as indented JSON to path, creating parent
// directories.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	})
}

// ReadFacts reads a fact document written by WriteJSON.
func ReadFacts(path string) ([]xbrl.Fact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var facts []xbrl.Fact
	if err := json.NewDecoder(f).Decode(&facts); err != nil {
		return nil, fmt.Errorf("invalid json fact document %s: %w", filepath.Base(path), err)
	}
	return facts, nil
}

func writeFile(path string, fill func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
