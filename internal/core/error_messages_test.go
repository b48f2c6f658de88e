package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/filingmap/internal/mapping"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "xbrl parse error maps correctly",
			err:         errors.New("xbrl parse filing.xml: XML syntax error on line 3"),
			wantCode:    "XBRL001",
			wantMessage: "The XBRL document is not well-formed XML",
		},
		{
			name:        "unknown table maps correctly",
			err:         &UnknownTableError{Requested: "42", Available: []int{1, 2}},
			wantCode:    "TBL002",
			wantMessage: "Unknown table number",
		},
		{
			name:        "strategy mismatch maps correctly",
			err:         fmt.Errorf("register table 3: %w", mapping.ErrStrategyMismatch),
			wantCode:    "TPL001",
			wantMessage: "Template leaves do not match the table's strategy",
		},
		{
			name:        "form without fields maps correctly",
			err:         errors.New("forms: no form fields in report.pdf"),
			wantCode:    "FORM001",
			wantMessage: "The PDF has no interactive form fields",
		},
		{
			name:        "missing file maps correctly",
			err:         errors.New("open x.pdf: no such file or directory"),
			wantCode:    "FILE003",
			wantMessage: "The document does not exist",
		},
		{
			name:        "unknown run maps correctly",
			err:         errors.New("run 4f1c: run not found"),
			wantCode:    "RUN001",
			wantMessage: "No pipeline run has this id",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "canceled context maps correctly",
			err:         context.Canceled,
			wantCode:    "REQ001",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "case insensitive match",
			err:         errors.New("UNSUPPORTED DOCUMENT type .docx"),
			wantCode:    "FILE002",
			wantMessage: "Document type is not supported",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("something completely unexpected"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() Message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := &UnknownTableError{Requested: "0", Available: []int{1}}
	want := "Unknown table number (Code: TBL002). Choose one of the listed table numbers"

	if got := FormatUserError(err); got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("xbrl parse: unexpected EOF"), true},
		{errors.New("random failure"), false},
	}
	for _, tt := range tests {
		if got := IsUserFacing(tt.err); got != tt.want {
			t.Errorf("IsUserFacing(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestNewUserError(t *testing.T) {
	if NewUserError(nil) != nil {
		t.Error("NewUserError(nil) should return nil")
	}

	tech := errors.New("xbrl parse: mismatched tag")
	ue := NewUserError(tech)

	if ue.User.Code != "XBRL001" {
		t.Errorf("User.Code = %q, want %q", ue.User.Code, "XBRL001")
	}
	if !errors.Is(ue, tech) {
		t.Error("UserError should unwrap to the technical error")
	}
}
