// Package views holds the templ components of the web server. Run
// `templ generate` after editing a .templ file.
package views

import "github.com/JonMunkholm/filingmap/internal/core"

// TableGroup is one registry as shown on the dashboard.
type TableGroup struct {
	Name   string
	Tables []core.TableInfo
}

// DashboardData is everything the dashboard page shows.
type DashboardData struct {
	Groups []TableGroup
	Status core.LimiterStatus
}
