// Package core turns flat field stores into named financial tables.
//
// It holds the table registries, resolves single tables and whole batches,
// and maps technical errors to coded user messages. It has no knowledge of
// HTTP or the command line; both front ends call into [Service].
//
// # Table Registry
//
// A [Registry] holds [TableDefinition] values keyed by table number. Each
// definition pairs a mapping template with the strategy that resolves it:
//
//	forms.MustRegister(core.TableDefinition{
//	    Info: core.TableInfo{ID: 7, Name: "Financial Parameters", Strategy: mapping.FlatRecursive},
//	    Template: mapping.Group(
//	        mapping.Field("Proposed dividend", mapping.Path("data[0].Dividend[0]")),
//	    ),
//	})
//
// Registration validates the template against the strategy, so a period-pair
// table with a single-path leaf never reaches resolution. Definitions can
// also be loaded from YAML files with [Registry.RegisterFS].
//
// # Batch Resolution
//
// [Registry.ResolveAll] resolves every table against one store on a bounded
// worker pool. A table that fails (including one that panics) is recorded
// under its "Table_<n>_error" key; the others are unaffected. The output
// order always follows table numbers.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - XBRL001-XBRL002: XBRL document errors
//   - FORM001-FORM002: PDF form errors
//   - TBL001-TBL003: Table lookup and registration errors
//   - TPL001-TPL002: Template errors
//   - FILE001-FILE005: File and request body errors
//   - RUN001-RUN002: Stored pipeline run lookups
//   - DB004-DB006: Results store connectivity
//   - REQ001-REQ003: Cancellation, timeout and load shedding
package core
