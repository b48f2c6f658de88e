// Package pipeline runs the batch conversion of downloaded filings:
//
//	sort         Input_data/*.zip      -> XBRL/*.pdf, No_XBRL/*.pdf
//	attachments  XBRL/*.pdf            -> XBRL_XML/*
//	form-tables  No_XBRL/*.{pdf,json}  -> No_XBRL_JSON/<name>.json
//	facts        XBRL_XML/*.xml        -> XBRL_XML_JSON/<name>.json
//	fact-tables  XBRL_XML_JSON/*.json  -> XBRL_XML_JSON_TABLE/<name>.csv, <name>_filtered.csv
//	xbrl-tables  XBRL_XML_JSON/*.json  -> XBRL_JSON_TABLES/<name>.json
//
// Stages run in that order. A stage whose input directory does not exist
// is skipped, and a failing document never stops the rest of the run.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/filingmap/internal/attach"
	"github.com/JonMunkholm/filingmap/internal/config"
	"github.com/JonMunkholm/filingmap/internal/core"
	"github.com/JonMunkholm/filingmap/internal/export"
	"github.com/JonMunkholm/filingmap/internal/logging"
	"github.com/JonMunkholm/filingmap/internal/sorter"
	"github.com/JonMunkholm/filingmap/internal/store"
	"github.com/JonMunkholm/filingmap/internal/xbrl"
)

// Recorder persists a run. *store.Store implements it.
type Recorder interface {
	StartRun(ctx context.Context, runID uuid.UUID, startedAt time.Time) error
	FinishRun(ctx context.Context, runID uuid.UUID, status string, summary any) error
	SaveArtifact(ctx context.Context, runID uuid.UUID, kind store.Kind, source string, payload any, stepErr error) (uuid.UUID, error)
}

// StageSummary counts what one stage did.
type StageSummary struct {
	Stage      Stage `json:"stage"`
	Skipped    bool  `json:"skipped,omitempty"`
	Processed  int   `json:"processed"`
	Failed     int   `json:"failed"`
	DurationMS int64 `json:"duration_ms"`
}

// Summary describes a finished run.
type Summary struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Stages     []StageSummary `json:"stages"`
}

// Failed returns the number of failed documents across all stages.
func (s *Summary) Failed() int {
	n := 0
	for _, st := range s.Stages {
		n += st.Failed
	}
	return n
}

// Status classifies the run for the results store.
func (s *Summary) Status() string {
	processed := 0
	for _, st := range s.Stages {
		processed += st.Processed
	}
	switch failed := s.Failed(); {
	case failed == 0:
		return store.StatusSucceeded
	case failed < processed:
		return store.StatusPartial
	default:
		return store.StatusFailed
	}
}

// Pipeline runs stages over the directories of config.PathsConfig.
type Pipeline struct {
	svc     *core.Service
	paths   config.PathsConfig
	workers int
	rec     Recorder
}

// New builds a pipeline. rec may be nil to skip persistence.
func New(svc *core.Service, cfg *config.Config, rec Recorder) *Pipeline {
	workers := cfg.Batch.DocumentWorkers
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{svc: svc, paths: cfg.Paths, workers: workers, rec: rec}
}

// Run executes the given stages (every stage when none are given) and
// returns the summary. The error is non-nil only when ctx ends the run
// early; document failures are reported in the summary.
func (p *Pipeline) Run(ctx context.Context, stages ...Stage) (*Summary, error) {
	if len(stages) == 0 {
		stages = AllStages
	}

	runID := uuid.New()
	ctx = logging.WithRunID(ctx, runID.String())
	logger := logging.FromContext(ctx)

	sum := &Summary{RunID: runID.String(), StartedAt: time.Now().UTC()}
	if p.rec != nil {
		if err := p.rec.StartRun(ctx, runID, sum.StartedAt); err != nil {
			logger.Error("run not recorded, continuing without persistence", "error", err)
			p = p.withoutRecorder()
		}
	}
	logger.Info("pipeline started", "stages", len(stages))

	r := &run{p: p, id: runID}
	var runErr error
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		started := time.Now()
		ss := r.stage(ctx, st)
		ss.DurationMS = time.Since(started).Milliseconds()
		sum.Stages = append(sum.Stages, ss)

		if ss.Skipped {
			logger.Info("stage skipped", "stage", st)
		} else {
			logger.Info("stage completed", "stage", st,
				"processed", ss.Processed, "failed", ss.Failed, "duration_ms", ss.DurationMS)
		}
	}

	sum.FinishedAt = time.Now().UTC()
	if p.rec != nil {
		status := sum.Status()
		if runErr != nil {
			status = store.StatusFailed
		}
		// The run context may already be canceled; the final status still
		// has to be written.
		if err := p.rec.FinishRun(context.WithoutCancel(ctx), runID, status, sum); err != nil {
			logger.Error("run status not recorded", "error", err)
		}
	}
	logger.Info("pipeline finished", "failed", sum.Failed(), "status", sum.Status())
	return sum, runErr
}

func (p *Pipeline) withoutRecorder() *Pipeline {
	cp := *p
	cp.rec = nil
	return &cp
}

// run carries the state of one Run call.
type run struct {
	p  *Pipeline
	id uuid.UUID
}

func (r *run) dir(name string) string {
	return r.p.paths.Resolve(name)
}

func (r *run) stage(ctx context.Context, st Stage) StageSummary {
	switch st {
	case StageSort:
		return r.sortArchives(ctx)
	case StageAttachments:
		return r.extractAttachments(ctx)
	case StageFormTables:
		return r.formTables(ctx)
	case StageFacts:
		return r.facts(ctx)
	case StageFactTables:
		return r.factTables(ctx)
	case StageXBRLTables:
		return r.xbrlTables(ctx)
	}
	return StageSummary{Stage: st, Skipped: true}
}

// record stores an artifact when a recorder is configured. Failures are
// logged only.
func (r *run) record(ctx context.Context, kind store.Kind, source string, payload any, stepErr error) {
	if r.p.rec == nil {
		return
	}
	if _, err := r.p.rec.SaveArtifact(ctx, r.id, kind, source, payload, stepErr); err != nil {
		logging.FromContext(ctx).Error("artifact not recorded", "kind", kind, "source", source, "error", err)
	}
}

func (r *run) sortArchives(ctx context.Context) StageSummary {
	ss := StageSummary{Stage: StageSort}
	in := r.dir(r.p.paths.InputDir)
	if !isDir(in) {
		ss.Skipped = true
		return ss
	}

	s := sorter.Sorter{XBRLDir: r.dir(r.p.paths.XBRLDir), NoXBRLDir: r.dir(r.p.paths.NoXBRLDir)}
	placed, errs := s.SortDir(ctx, in)
	ss.Processed = len(placed)
	ss.Failed = len(errs)

	r.record(ctx, store.KindPlacements, r.p.paths.InputDir, placed, joinErrs(errs))
	return ss
}

func (r *run) extractAttachments(ctx context.Context) StageSummary {
	ss := StageSummary{Stage: StageAttachments}
	in := r.dir(r.p.paths.XBRLDir)
	if !isDir(in) {
		ss.Skipped = true
		return ss
	}

	results, errs := attach.ExtractDir(ctx, in, r.dir(r.p.paths.XMLDir))
	ss.Processed = len(results)
	ss.Failed = len(errs)
	for _, res := range results {
		r.record(ctx, store.KindAttachments, res.Source, res, nil)
	}
	for _, err := range errs {
		r.record(ctx, store.KindAttachments, r.p.paths.XBRLDir, nil, err)
	}
	return ss
}

func (r *run) formTables(ctx context.Context) StageSummary {
	ss := StageSummary{Stage: StageFormTables}
	in := r.dir(r.p.paths.NoXBRLDir)
	files, ok := listFiles(in, ".pdf", ".json")
	if !ok {
		ss.Skipped = true
		return ss
	}
	out := r.dir(r.p.paths.FormTablesDir)

	ss.Processed, ss.Failed = r.each(ctx, files, func(ctx context.Context, path string) error {
		batch := r.p.svc.BatchForm(ctx, path)
		dst := filepath.Join(out, baseName(path)+".json")
		if err := export.WriteJSON(dst, batch); err != nil {
			r.record(ctx, store.KindFormTables, filepath.Base(path), nil, err)
			return err
		}

		var stepErr error
		if n := batch.Failed(); n > 0 {
			stepErr = fmt.Errorf("%d of %d tables failed", n, len(batch.Entries))
		}
		r.record(ctx, store.KindFormTables, filepath.Base(path), batch, stepErr)
		if n := batch.Failed(); n == len(batch.Entries) && n > 0 {
			return batch.Entries[0].Err
		}
		return nil
	})
	return ss
}

func (r *run) facts(ctx context.Context) StageSummary {
	ss := StageSummary{Stage: StageFacts}
	files, ok := listFiles(r.dir(r.p.paths.XMLDir), ".xml")
	if !ok {
		ss.Skipped = true
		return ss
	}
	out := r.dir(r.p.paths.FactsDir)

	ss.Processed, ss.Failed = r.each(ctx, files, func(ctx context.Context, path string) error {
		dst := filepath.Join(out, baseName(path)+".json")

		facts, err := xbrl.ExtractFile(path)
		if err != nil {
			// The failure is kept next to the successful documents so a
			// rerun of later stages sees it.
			if werr := export.WriteJSON(dst, map[string]string{"error": "Failed to parse XML: " + err.Error()}); werr != nil {
				logging.FromContext(ctx).Error("error document not written", "path", dst, "error", werr)
			}
			r.record(ctx, store.KindFacts, filepath.Base(path), nil, err)
			return err
		}

		if err := export.WriteJSON(dst, facts); err != nil {
			r.record(ctx, store.KindFacts, filepath.Base(path), nil, err)
			return err
		}
		r.record(ctx, store.KindFacts, filepath.Base(path), facts, nil)
		return nil
	})
	return ss
}

func (r *run) factTables(ctx context.Context) StageSummary {
	ss := StageSummary{Stage: StageFactTables}
	files, ok := listFiles(r.dir(r.p.paths.FactsDir), ".json")
	if !ok {
		ss.Skipped = true
		return ss
	}
	out := r.dir(r.p.paths.FactTablesDir)

	ss.Processed, ss.Failed = r.each(ctx, files, func(ctx context.Context, path string) error {
		facts, err := export.ReadFacts(path)
		if err == nil {
			var full, filtered string
			full, filtered, err = export.WriteTables(out, baseName(path), facts)
			if err == nil {
				r.record(ctx, store.KindFactTables, filepath.Base(path), []string{full, filtered}, nil)
				return nil
			}
		}
		r.record(ctx, store.KindFactTables, filepath.Base(path), nil, err)
		return err
	})
	return ss
}

func (r *run) xbrlTables(ctx context.Context) StageSummary {
	ss := StageSummary{Stage: StageXBRLTables}
	files, ok := listFiles(r.dir(r.p.paths.FactsDir), ".json")
	if !ok {
		ss.Skipped = true
		return ss
	}
	out := r.dir(r.p.paths.XBRLTablesDir)

	ss.Processed, ss.Failed = r.each(ctx, files, func(ctx context.Context, path string) error {
		var batch *core.BatchResult
		facts, readErr := export.ReadFacts(path)
		if readErr != nil {
			batch = r.p.svc.XBRL().FailAll(readErr)
		} else {
			batch = r.p.svc.BatchXBRL(ctx, facts)
		}

		if err := export.WriteJSON(filepath.Join(out, baseName(path)+".json"), batch); err != nil {
			r.record(ctx, store.KindXBRLTables, filepath.Base(path), nil, err)
			return err
		}
		r.record(ctx, store.KindXBRLTables, filepath.Base(path), batch, readErr)
		if readErr != nil {
			return readErr
		}
		if n := batch.Failed(); n == len(batch.Entries) && n > 0 {
			return batch.Entries[0].Err
		}
		return nil
	})
	return ss
}

// each applies fn to every file on up to workers goroutines and counts
// the processed and failed files.
func (r *run) each(ctx context.Context, files []string, fn func(context.Context, string) error) (processed, failed int) {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.p.workers)

	for _, path := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			err := fn(ctx, path)

			mu.Lock()
			defer mu.Unlock()
			processed++
			if err != nil {
				failed++
				logging.WithFields(ctx, "document", filepath.Base(path)).Error("document failed", "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return processed, failed
}

// listFiles returns the regular files in dir with one of exts, sorted by
// name. ok is false when dir does not exist.
func listFiles(dir string, exts ...string) (files []string, ok bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range exts {
			if ext == want {
				files = append(files, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	sort.Strings(files)
	return files, true
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func joinErrs(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Errorf("%d error(s): %s", len(errs), strings.Join(msgs, "; "))
}
