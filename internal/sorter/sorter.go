// Package sorter unpacks downloaded filing archives and files each PDF
// into the XBRL or No-XBRL bucket by name. Filings whose file name
// contains "XBRL" carry an XBRL instance as an attachment; the others are
// plain AOC-4 forms.
package sorter

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Bucket is where a PDF was filed.
type Bucket string

const (
	BucketXBRL   Bucket = "xbrl"
	BucketNoXBRL Bucket = "no-xbrl"
)

// Classify files a PDF by its base name. The match is case-sensitive.
func Classify(name string) Bucket {
	if strings.Contains(path.Base(name), "XBRL") {
		return BucketXBRL
	}
	return BucketNoXBRL
}

// Placement records one PDF written out of an archive.
type Placement struct {
	Archive string `json:"archive"`
	Entry   string `json:"entry"`
	Bucket  Bucket `json:"bucket"`
	Path    string `json:"path"`
}

// Sorter writes PDFs into XBRLDir and NoXBRLDir.
type Sorter struct {
	XBRLDir   string
	NoXBRLDir string
}

// SortDir sorts every *.zip in dir, in name order. A broken archive is
// logged and recorded in errs; the remaining archives are still sorted.
func (s *Sorter) SortDir(ctx context.Context, dir string) (placed []Placement, errs []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("read %s: %w", dir, err)}
	}

	var zips []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".zip") {
			zips = append(zips, e.Name())
		}
	}
	sort.Strings(zips)
	if len(zips) == 0 {
		slog.Warn("no zip files found", "dir", dir)
	}

	for _, name := range zips {
		if err := ctx.Err(); err != nil {
			return placed, append(errs, err)
		}
		got, err := s.SortArchive(filepath.Join(dir, name))
		placed = append(placed, got...)
		if err != nil {
			slog.Error("archive sort failed", "archive", name, "error", err)
			errs = append(errs, err)
		}
	}
	return placed, errs
}

// SortArchive copies every PDF entry of the archive at zipPath into its
// bucket. Directory structure inside the archive is ignored, and a name
// already taken in the bucket gets a "_1", "_2", ... suffix.
func (s *Sorter) SortArchive(zipPath string) ([]Placement, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", filepath.Base(zipPath), err)
	}
	defer zr.Close()

	archive := filepath.Base(zipPath)
	var placed []Placement
	found := 0

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(path.Ext(f.Name), ".pdf") {
			continue
		}
		found++

		bucket := Classify(f.Name)
		dst, err := s.place(f, bucket)
		if err != nil {
			return placed, fmt.Errorf("archive %s: %s: %w", archive, f.Name, err)
		}
		slog.Info("sorted pdf", "archive", archive, "file", path.Base(f.Name), "bucket", bucket)
		placed = append(placed, Placement{Archive: archive, Entry: f.Name, Bucket: bucket, Path: dst})
	}

	if found == 0 {
		slog.Warn("no pdf files in archive", "archive", archive)
	}
	return placed, nil
}

func (s *Sorter) place(f *zip.File, bucket Bucket) (string, error) {
	dir := s.NoXBRLDir
	if bucket == BucketXBRL {
		dir = s.XBRLDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	src, err := f.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, dst, err := createUnique(dir, path.Base(f.Name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return "", err
	}
	return dst, out.Close()
}

// createUnique creates name in dir, or base_N.ext for the first free N.
func createUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := name
	for n := 1; ; n++ {
		dst := filepath.Join(dir, candidate)
		f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, dst, nil
		}
		if !os.IsExist(err) {
			return nil, "", err
		}
		candidate = base + "_" + strconv.Itoa(n) + ext
	}
}
