package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JonMunkholm/filingmap/internal/config"
	"github.com/JonMunkholm/filingmap/internal/forms"
	"github.com/JonMunkholm/filingmap/internal/logging"
	"github.com/JonMunkholm/filingmap/internal/mapping"
	"github.com/JonMunkholm/filingmap/internal/xbrl"
)

// ErrNoFacts is returned for XBRL documents without a single fact.
var ErrNoFacts = errors.New("no facts in document")

// Service resolves documents against the form and XBRL table registries.
// It is safe for concurrent use.
type Service struct {
	forms   *Registry
	xbrl    *Registry
	workers int
	limiter *DocumentLimiter
}

// NewService wires the registries with the batch settings of cfg.
func NewService(formTables, xbrlTables *Registry, cfg *config.Config) *Service {
	return &Service{
		forms:   formTables,
		xbrl:    xbrlTables,
		workers: cfg.Batch.TableWorkers,
		limiter: NewDocumentLimiter(cfg.Batch.DocumentWorkers, cfg.Server.RequestTimeout),
	}
}

// Forms returns the AOC-4 form table registry.
func (s *Service) Forms() *Registry { return s.forms }

// XBRL returns the XBRL table registry.
func (s *Service) XBRL() *Registry { return s.xbrl }

// LimiterStatus reports document slot usage.
func (s *Service) LimiterStatus() LimiterStatus { return s.limiter.Status() }

// WaitForDocuments blocks until in-flight documents finish or ctx ends.
func (s *Service) WaitForDocuments(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// WithDocument runs fn while holding one of the document slots shared with
// ResolveForm and the batch methods.
func (s *Service) WithDocument(ctx context.Context, fn func() error) error {
	if err := s.limiter.Acquire(ctx); err != nil {
		return err
	}
	defer s.limiter.Release()
	return fn()
}

// LoadCustomTemplates registers every definition in dir into the form
// registry. An empty dir is a no-op.
func (s *Service) LoadCustomTemplates(dir string) (int, error) {
	if dir == "" {
		return 0, nil
	}
	n, err := s.forms.RegisterFS(os.DirFS(dir), ".")
	if err != nil {
		return n, fmt.Errorf("custom templates %s: %w", dir, err)
	}
	slog.Info("custom templates registered", "dir", dir, "count", n)
	return n, nil
}

// ResolveForm resolves one form table against the document at path.
func (s *Service) ResolveForm(ctx context.Context, id int, path string) (TableResult, error) {
	if _, ok := s.forms.Get(id); !ok {
		return TableResult{}, s.forms.unknown(id)
	}
	if err := s.limiter.Acquire(ctx); err != nil {
		return TableResult{}, err
	}
	defer s.limiter.Release()

	store, err := forms.Load(path)
	if err != nil {
		return TableResult{}, err
	}
	return s.forms.ResolveTable(id, store)
}

// ResolveFormStore resolves one form table against an already built store.
func (s *Service) ResolveFormStore(id int, store mapping.Store) (TableResult, error) {
	return s.forms.ResolveTable(id, store)
}

// BatchForm resolves every form table against the document at path. When
// the document cannot be read, every table carries that error.
func (s *Service) BatchForm(ctx context.Context, path string) *BatchResult {
	logger := logging.WithFields(ctx, "document", path)

	if err := s.limiter.Acquire(ctx); err != nil {
		return s.forms.FailAll(err)
	}
	defer s.limiter.Release()

	store, err := forms.Load(path)
	if err != nil {
		logger.Error("form document unreadable", "error", err)
		return s.forms.FailAll(err)
	}

	res := s.forms.ResolveAll(ctx, store, s.workers)
	logger.Info("form tables resolved", "tables", len(res.Entries), "failed", res.Failed())
	return res
}

// BatchFormStore resolves every form table against store.
func (s *Service) BatchFormStore(ctx context.Context, store mapping.Store) *BatchResult {
	return s.forms.ResolveAll(ctx, store, s.workers)
}

// ExtractFacts parses an XBRL instance and links its facts.
func (s *Service) ExtractFacts(r io.Reader) ([]xbrl.Fact, error) {
	return xbrl.Extract(r)
}

// BatchXBRL resolves every XBRL table against a fact list.
func (s *Service) BatchXBRL(ctx context.Context, facts []xbrl.Fact) *BatchResult {
	if len(facts) == 0 {
		return s.xbrl.FailAll(ErrNoFacts)
	}
	return s.xbrl.ResolveAll(ctx, xbrl.NewFactStore(facts), s.workers)
}

// BatchXBRLDocument parses an instance and resolves every XBRL table. A
// document that fails to parse marks every table with the parse error.
func (s *Service) BatchXBRLDocument(ctx context.Context, r io.Reader) *BatchResult {
	if err := s.limiter.Acquire(ctx); err != nil {
		return s.xbrl.FailAll(err)
	}
	defer s.limiter.Release()

	facts, err := xbrl.Extract(r)
	if err != nil {
		logging.FromContext(ctx).Error("xbrl document unreadable", "error", err)
		return s.xbrl.FailAll(err)
	}
	return s.BatchXBRL(ctx, facts)
}
