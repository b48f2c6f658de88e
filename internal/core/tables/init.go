// Package tables registers the built-in statement templates. Importing it
// populates Forms with the AOC-4 form tables and XBRL with the tables that
// resolve against projected XBRL facts.
package tables

import (
	"embed"

	"github.com/JonMunkholm/filingmap/internal/core"
)

//go:embed templates
var templates embed.FS

var (
	// Forms resolves flat AOC-4 form field stores.
	Forms = core.NewRegistry("AOC-4")

	// XBRL resolves fact stores built by xbrl.NewFactStore.
	XBRL = core.NewRegistry("XBRL")
)

func init() {
	mustRegisterDir(Forms, "templates/aoc4")
	mustRegisterDir(XBRL, "templates/xbrl")
}

func mustRegisterDir(r *core.Registry, dir string) {
	if _, err := r.RegisterFS(templates, dir); err != nil {
		panic("tables: " + err.Error())
	}
}
