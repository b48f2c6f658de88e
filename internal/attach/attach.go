// Package attach extracts the files embedded in XBRL filings. The XBRL
// instance of an AOC-4 XBRL filing travels as a PDF attachment.
package attach

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/JonMunkholm/filingmap/internal/logging"
)

// Result reports what one PDF yielded.
type Result struct {
	Source  string   `json:"source"`
	Written []string `json:"written"`
	Skipped []string `json:"skipped,omitempty"`
}

// ExtractFile writes every attachment of the PDF at path into outDir.
func ExtractFile(ctx context.Context, path, outDir string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{Source: path}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	return Extract(ctx, f, filepath.Base(path), outDir)
}

// Extract writes every attachment of the PDF read from rs into outDir.
func Extract(ctx context.Context, rs io.ReadSeeker, source, outDir string) (Result, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	atts, err := api.ExtractAttachmentsRaw(rs, outDir, nil, conf)
	if err != nil {
		return Result{Source: source}, fmt.Errorf("read pdf %s: %w", source, err)
	}
	return write(ctx, source, atts, outDir)
}

// write stores attachments under sanitised names. Attachments with a
// numeric id are skipped; they are page-level duplicates of named ones.
func write(ctx context.Context, source string, atts []model.Attachment, outDir string) (Result, error) {
	res := Result{Source: source, Written: []string{}}
	logger := logging.WithFields(ctx, "pdf", source)

	if len(atts) == 0 {
		logger.Info("no attachments found")
		return res, nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return res, fmt.Errorf("create output dir: %w", err)
	}

	for _, a := range atts {
		if isNumeric(a.ID) {
			logger.Debug("skipping numeric attachment id", "id", a.ID)
			res.Skipped = append(res.Skipped, a.ID)
			continue
		}
		if a.Reader == nil {
			logger.Warn("attachment has no data", "id", a.ID, "file", a.FileName)
			res.Skipped = append(res.Skipped, a.ID)
			continue
		}

		name := SanitizeFileName(a.FileName, a.ID)
		dst := filepath.Join(outDir, name)
		if err := writeFile(dst, a.Reader); err != nil {
			logger.Error("attachment write failed", "id", a.ID, "error", err)
			res.Skipped = append(res.Skipped, a.ID)
			continue
		}
		logger.Info("extracted attachment", "file", name)
		res.Written = append(res.Written, dst)
	}
	return res, nil
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ExtractDir processes every *.pdf in inDir, in name order. A failing PDF
// is logged and recorded in errs without stopping the others.
func ExtractDir(ctx context.Context, inDir, outDir string) (results []Result, errs []error) {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return nil, []error{fmt.Errorf("read %s: %w", inDir, err)}
	}

	var pdfs []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			pdfs = append(pdfs, e.Name())
		}
	}
	sort.Strings(pdfs)

	for _, name := range pdfs {
		if err := ctx.Err(); err != nil {
			return results, append(errs, err)
		}
		res, err := ExtractFile(ctx, filepath.Join(inDir, name), outDir)
		if err != nil {
			slog.Error("attachment extraction failed", "pdf", name, "error", err)
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errs
}

// SanitizeFileName keeps letters, digits, '.', '_' and '-'. An empty
// result falls back to "attachment_<id>".
func SanitizeFileName(name, id string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	// Names made only of dots are not usable.
	if s := b.String(); s != "" && strings.Trim(s, ".") != "" {
		return s
	}
	return "attachment_" + id
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
