// Command filingmap turns AOC-4 filings into statement tables.
//
//	filingmap                      resolve every table for each No_XBRL document
//	filingmap <table> [document]   print one table of one document
//	filingmap tables               list the registered tables
//	filingmap facts <xml>          print the linked facts of an XBRL instance
//	filingmap xbrl-tables <xml>    print the XBRL tables of an instance
//	filingmap identify <document>  print the CIN and financial year of a form
//	filingmap pipeline             run the staged batch conversion
//	filingmap serve                start the HTTP API
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/filingmap/internal/core"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}

// describe prefers the coded user message and keeps the technical detail.
func describe(err error) string {
	if core.IsUserFacing(err) {
		return fmt.Sprintf("%s\n  %v", core.FormatUserError(err), err)
	}
	return err.Error()
}
