package web

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/filingmap/internal/store"
)

type fakeRuns struct {
	runs      map[uuid.UUID]*store.Run
	artifacts map[uuid.UUID][]store.Artifact
}

func (f *fakeRuns) GetRun(_ context.Context, id uuid.UUID) (*store.Run, error) {
	run, ok := f.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, store.ErrRunNotFound)
	}
	return run, nil
}

func (f *fakeRuns) ListArtifacts(_ context.Context, id uuid.UUID) ([]store.Artifact, error) {
	return f.artifacts[id], nil
}

func TestRuns(t *testing.T) {
	id := uuid.New()
	started := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	runs := &fakeRuns{
		runs: map[uuid.UUID]*store.Run{
			id: {ID: id.String(), Status: store.StatusPartial, StartedAt: started},
		},
		artifacts: map[uuid.UUID][]store.Artifact{
			id: {{ID: uuid.NewString(), RunID: id.String(), Kind: store.KindFacts, Source: "a.xml", CreatedAt: started}},
		},
	}

	cfg := testConfig()
	base := newTestServer(t, cfg)
	s := NewServer(base.service, cfg, WithRuns(runs))

	rec := do(s, http.MethodGet, "/api/runs/"+id.String(), "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"partial"`)

	rec = do(s, http.MethodGet, "/api/runs/"+id.String()+"/artifacts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"xbrl_facts"`)

	rec = do(s, http.MethodGet, "/api/runs/"+uuid.NewString(), "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "RUN001", decodeError(t, rec).Code)

	rec = do(s, http.MethodGet, "/api/runs/abc/artifacts", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "RUN002", decodeError(t, rec).Code)

	assert.Equal(t, http.StatusNotFound, do(base, http.MethodGet, "/api/runs/"+id.String(), "", "").Code,
		"routes absent without a run store")
}
