package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Codes are printed by the CLI and returned by the HTTP API.
//
// # Document Errors (XBRL001-XBRL099)
//
//	XBRL001 - Malformed instance: The XBRL document is not well-formed XML
//	          Action: Re-extract the attachment from the filing and try again
//	          Patterns: "xbrl parse"
//
//	XBRL002 - No facts: The XBRL document contains no tagged facts
//	          Action: Check that the file is an instance document, not a schema or linkbase
//	          Patterns: "no facts"
//
// # Form Errors (FORM001-FORM099)
//
//	FORM001 - No form fields: The PDF has no interactive form fields
//	          Action: Check that the file is an AOC-4 form and not a scanned copy
//	          Patterns: "no form fields"
//
//	FORM002 - Unreadable PDF: The PDF could not be read
//	          Action: Check that the file is a complete, unencrypted PDF
//	          Patterns: "read pdf"
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - Table not found: The specified table does not exist
//	         Action: Verify the table number is correct
//	         Patterns: "table not found"
//
//	TBL002 - Unknown table: Table number is not registered
//	         Action: Choose one of the listed table numbers
//	         Patterns: "unknown table"
//
//	TBL003 - Duplicate table: A table with this number is already registered
//	         Action: Give the custom template a different id
//	         Patterns: "duplicate table"
//
// # Template Errors (TPL001-TPL099)
//
//	TPL001 - Strategy mismatch: Template leaves do not match the table's strategy
//	         Action: Use [current, previous] pairs for period-pair tables and single paths otherwise
//	         Patterns: "does not match strategy"
//
//	TPL002 - Invalid template: Template definition could not be read
//	         Action: Check the YAML syntax of the template file
//	         Patterns: "invalid template"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: Request body exceeds the size limit
//	          Action: Upload the document with the CLI instead
//	          Patterns: "request body too large"
//
//	FILE002 - Unsupported document: Document type is not supported
//	          Action: Use a .pdf form, a .json field dump or an .xml instance
//	          Patterns: "unsupported document"
//
//	FILE003 - File not found: The document does not exist
//	          Action: Check the document path
//	          Patterns: "no such file"
//
//	FILE004 - Invalid JSON: The request body is not valid JSON
//	          Action: Send a JSON object of field paths to values
//	          Patterns: "invalid json"
//
//	FILE005 - Invalid archive: The archive is not a valid zip file
//	          Action: Re-download the archive
//	          Patterns: "not a valid zip file"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Run not found: No pipeline run has this id
//	         Action: Check the run id printed by the pipeline command
//	         Patterns: "run not found"
//
//	RUN002 - Invalid run id: The run id is not a UUID
//	         Action: Use the run id printed by the pipeline command
//	         Patterns: "invalid uuid"
//
// # Database Errors (DB001-DB099)
//
//	DB004 - Connection refused: Unable to connect to database
//	DB005 - Connection reset: Database connection was interrupted
//	DB006 - Timeout: Operation timed out
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled: Patterns: "context canceled"
//	REQ002 - Request timeout: Patterns: "context deadline exceeded"
//	REQ003 - Server busy: Patterns: "too many documents"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check application logs for the
// original technical error.
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. The first matching pattern wins.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Document Errors (XBRL001-XBRL002)
	// =========================================================================
	{
		pattern: "xbrl parse",
		msg: UserMessage{
			Message: "The XBRL document is not well-formed XML",
			Action:  "Re-extract the attachment from the filing and try again",
			Code:    "XBRL001",
		},
	},
	{
		pattern: "no facts",
		msg: UserMessage{
			Message: "The XBRL document contains no tagged facts",
			Action:  "Check that the file is an instance document, not a schema or linkbase",
			Code:    "XBRL002",
		},
	},

	// =========================================================================
	// Form Errors (FORM001-FORM002)
	// =========================================================================
	{
		pattern: "no form fields",
		msg: UserMessage{
			Message: "The PDF has no interactive form fields",
			Action:  "Check that the file is an AOC-4 form and not a scanned copy",
			Code:    "FORM001",
		},
	},
	{
		pattern: "read pdf",
		msg: UserMessage{
			Message: "The PDF could not be read",
			Action:  "Check that the file is a complete, unencrypted PDF",
			Code:    "FORM002",
		},
	},

	// =========================================================================
	// Table Errors (TBL001-TBL003)
	// =========================================================================
	{
		pattern: "table not found",
		msg: UserMessage{
			Message: "Table not found",
			Action:  "Verify the table number is correct",
			Code:    "TBL001",
		},
	},
	{
		pattern: "unknown table",
		msg: UserMessage{
			Message: "Unknown table number",
			Action:  "Choose one of the listed table numbers",
			Code:    "TBL002",
		},
	},
	{
		pattern: "duplicate table",
		msg: UserMessage{
			Message: "A table with this number is already registered",
			Action:  "Give the custom template a different id",
			Code:    "TBL003",
		},
	},

	// =========================================================================
	// Template Errors (TPL001-TPL002)
	// =========================================================================
	{
		pattern: "does not match strategy",
		msg: UserMessage{
			Message: "Template leaves do not match the table's strategy",
			Action:  "Use [current, previous] pairs for period-pair tables and single paths otherwise",
			Code:    "TPL001",
		},
	},
	{
		pattern: "invalid template",
		msg: UserMessage{
			Message: "Template definition could not be read",
			Action:  "Check the YAML syntax of the template file",
			Code:    "TPL002",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "Request body exceeds the size limit",
			Action:  "Upload the document with the CLI instead",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported document",
		msg: UserMessage{
			Message: "Document type is not supported",
			Action:  "Use a .pdf form, a .json field dump or an .xml instance",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "The document does not exist",
			Action:  "Check the document path",
			Code:    "FILE003",
		},
	},
	{
		pattern: "invalid json",
		msg: UserMessage{
			Message: "The request body is not valid JSON",
			Action:  "Send a JSON object of field paths to values",
			Code:    "FILE004",
		},
	},
	{
		pattern: "not a valid zip file",
		msg: UserMessage{
			Message: "The archive is not a valid zip file",
			Action:  "Re-download the archive",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Run Errors (RUN001-RUN002)
	// =========================================================================
	{
		pattern: "run not found",
		msg: UserMessage{
			Message: "No pipeline run has this id",
			Action:  "Check the run id printed by the pipeline command",
			Code:    "RUN001",
		},
	},
	{
		pattern: "invalid uuid",
		msg: UserMessage{
			Message: "The run id is not a UUID",
			Action:  "Use the run id printed by the pipeline command",
			Code:    "RUN002",
		},
	},

	// =========================================================================
	// Database Connection Errors (DB004-DB006)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try again later",
			Code:    "DB006",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ003)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller document or check your connection",
			Code:    "REQ002",
		},
	},
	{
		pattern: "too many documents",
		msg: UserMessage{
			Message: "The server is busy with other documents",
			Action:  "Please try again in a few moments",
			Code:    "REQ003",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
//
// Example:
//
//	_, err := registry.ResolveTable(99, store)
//	msg := MapError(err)
//	// msg.Code == "TBL002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
