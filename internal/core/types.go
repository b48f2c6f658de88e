package core

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/filingmap/internal/mapping"
)

// TableInfo contains display information about a table.
type TableInfo struct {
	ID       int              `json:"id"`       // Table number, unique within a registry: 1
	Name     string           `json:"name"`     // Display name: "Balance Sheet"
	Group    string           `json:"group"`    // Source family: "AOC-4", "XBRL"
	Strategy mapping.Strategy `json:"strategy"` // Pinned at registration
}

// TableDefinition binds a template to its resolution strategy.
type TableDefinition struct {
	Info     TableInfo
	Labels   mapping.PeriodLabels // Branch labels; period-pair tables only
	Template mapping.Template
}

// Key is the batch output key for a successfully resolved table,
// e.g. "Table_1_Balance_Sheet".
func (d TableDefinition) Key() string {
	return fmt.Sprintf("Table_%d_%s", d.Info.ID, strings.ReplaceAll(d.Info.Name, " ", "_"))
}

// ErrorKey is the batch output key recorded when the table fails.
func (d TableDefinition) ErrorKey() string {
	return fmt.Sprintf("Table_%d_error", d.Info.ID)
}

// TableResult is the resolved form of one table.
type TableResult struct {
	TableName   string         `json:"table_name"`
	TableNumber int            `json:"table_number"`
	Data        mapping.Result `json:"data"`
}
