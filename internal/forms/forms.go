// Package forms reads filled AOC-4 forms into a flat field store keyed by
// fully qualified field name, e.g.
// "data[0].FormAOC4_Dtls[0].Segment1_PartA[0].CIN_C[0]".
//
// Two sources are accepted: the PDF itself, read with pdfcpu, and a JSON
// dump of the fields. A dump is either a flat {"name": "value"} object or
// the form export pdfcpu writes.
package forms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/JonMunkholm/filingmap/internal/mapping"
)

var (
	// ErrNoFields is returned for documents without any form field.
	ErrNoFields = errors.New("no form fields")

	// ErrUnsupported is returned by Load for file types it cannot read.
	ErrUnsupported = errors.New("unsupported document")
)

// Load reads the fields of the document at path, choosing the reader by
// file extension.
func Load(path string) (mapping.MapStore, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".pdf" && ext != ".json" {
		return nil, fmt.Errorf("%w %q: want .pdf or .json", ErrUnsupported, filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open form: %w", err)
	}
	defer f.Close()

	if ext == ".pdf" {
		return ReadPDF(f, filepath.Base(path))
	}
	return ReadJSON(f)
}

// ReadPDF exports the AcroForm fields of a PDF. A PDF without an AcroForm
// dictionary yields ErrNoFields.
func ReadPDF(rs io.ReadSeeker, source string) (mapping.MapStore, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf %s: %w", source, err)
	}
	if ctx.Form == nil {
		return nil, fmt.Errorf("%w in %s", ErrNoFields, source)
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("read pdf %s: %w", source, err)
	}
	var buf bytes.Buffer
	if err := api.ExportFormJSON(rs, &buf, source, conf); err != nil {
		return nil, fmt.Errorf("read pdf %s: %w", source, err)
	}

	var export any
	if err := decode(&buf, &export); err != nil {
		return nil, fmt.Errorf("read pdf %s: decode form export: %w", source, err)
	}
	fields := mapping.MapStore{}
	collect(export, fields)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFields, source)
	}
	return fields, nil
}

// ReadJSON reads a field dump.
func ReadJSON(r io.Reader) (mapping.MapStore, error) {
	var doc map[string]any
	if err := decode(r, &doc); err != nil {
		return nil, fmt.Errorf("invalid json field dump: %w", err)
	}

	fields := mapping.MapStore{}
	if _, ok := doc["forms"]; ok {
		collect(doc, fields)
	} else {
		// Sorted so a bad entry is always reported the same way.
		names := make([]string, 0, len(doc))
		for name := range doc {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			v, ok := scalar(doc[name])
			if !ok {
				return nil, fmt.Errorf("invalid json field dump: field %q is not a scalar", name)
			}
			fields[name] = v
		}
	}

	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	return fields, nil
}

func decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec.Decode(v)
}

// collect walks a form export and records every object that looks like a
// field: a string "name" plus a "value" or "values" member. The first
// occurrence of a name wins.
func collect(node any, fields mapping.MapStore) {
	switch n := node.(type) {
	case map[string]any:
		if name, ok := n["name"].(string); ok && name != "" {
			if v, ok := fieldValue(n); ok {
				if _, seen := fields[name]; !seen {
					fields[name] = v
				}
				return
			}
		}
		for _, child := range n {
			collect(child, fields)
		}
	case []any:
		for _, child := range n {
			collect(child, fields)
		}
	}
}

func fieldValue(field map[string]any) (string, bool) {
	if raw, ok := field["value"]; ok {
		return scalar(raw)
	}
	raw, ok := field["values"].([]any)
	if !ok {
		return "", false
	}
	parts := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := scalar(item); ok && s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", "), true
}

func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}
