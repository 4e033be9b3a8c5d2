package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/diagramsmith/internal/config"
	"github.com/matzehuels/diagramsmith/pkg/diagram"
	"github.com/matzehuels/diagramsmith/pkg/errors"
	"github.com/matzehuels/diagramsmith/pkg/history"
	"github.com/matzehuels/diagramsmith/pkg/pipeline"
)

// stubGenerator returns a fixed result or error.
type stubGenerator struct {
	result *diagram.Result
	err    error
	opts   pipeline.Options
}

func (g *stubGenerator) Generate(ctx context.Context, content string, opts pipeline.Options) (*diagram.Result, error) {
	g.opts = opts
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

// memStore records saved history entries in memory.
type memStore struct {
	mu      sync.Mutex
	records []history.Record
}

func (s *memStore) Save(ctx context.Context, rec history.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *memStore) Recent(ctx context.Context, limit int) ([]history.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]history.Record, limit)
	copy(out, s.records)
	return out, nil
}

func (s *memStore) Close(ctx context.Context) error { return nil }

func newTestServer(g Generator, store history.Store) *Server {
	return New(g, store, log.New(io.Discard), config.Server{RequestTimeoutSeconds: 5}, diagram.DefaultConfig())
}

func successResult() *diagram.Result {
	score := 4.2
	return &diagram.Result{
		SVG:                []byte("<svg/>"),
		Analysis:           &diagram.Analysis{Title: "Test Diagram", DiagramType: diagram.TypeFlowchart},
		GenerationAttempts: 3,
		SelectedCandidate:  2,
		Success:            true,
		FinalQualityScore:  &score,
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&stubGenerator{result: successResult()}, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGenerateSuccess(t *testing.T) {
	store := &memStore{}
	gen := &stubGenerator{result: successResult()}
	srv := newTestServer(gen, store)

	body := `{"content": "the water cycle", "force_type": "flowchart"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/diagrams", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	var result diagram.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if !result.Success || result.SelectedCandidate != 2 {
		t.Errorf("result = %+v", result)
	}
	if gen.opts.ForceType != diagram.TypeFlowchart {
		t.Errorf("force type not forwarded, got %q", gen.opts.ForceType)
	}

	if len(store.records) != 1 {
		t.Fatalf("history records = %d, want 1", len(store.records))
	}
	rec0 := store.records[0]
	if rec0.Title != "Test Diagram" || !rec0.Success || rec0.QualityScore != 4.2 {
		t.Errorf("record = %+v", rec0)
	}
}

func TestGenerateEmptyContent(t *testing.T) {
	srv := newTestServer(&stubGenerator{result: successResult()}, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/diagrams", strings.NewReader(`{"content": "  "}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != string(errors.ErrCodeInvalidContent) {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestGenerateMalformedBody(t *testing.T) {
	srv := newTestServer(&stubGenerator{result: successResult()}, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/diagrams", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateErrorMapsStatus(t *testing.T) {
	gen := &stubGenerator{err: errors.New(errors.ErrCodeModelUnavailable, "model offline")}
	srv := newTestServer(gen, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/diagrams", strings.NewReader(`{"content": "x"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestGenerateCustomConfigForwarded(t *testing.T) {
	gen := &stubGenerator{result: successResult()}
	srv := newTestServer(gen, nil)
	body := `{"content": "x", "config": {"num_candidates": 1, "width": 1024}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/diagrams", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gen.opts.Config.NumCandidates != 1 || gen.opts.Config.Width != 1024 {
		t.Errorf("config not forwarded: %+v", gen.opts.Config)
	}
}

func TestRecent(t *testing.T) {
	store := &memStore{records: []history.Record{{ID: "a"}, {ID: "b"}}}
	srv := newTestServer(&stubGenerator{result: successResult()}, store)

	req := httptest.NewRequest(http.MethodGet, "/v1/diagrams/recent?limit=1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var records []history.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("records = %d, want 1", len(records))
	}
}

func TestRecentInvalidLimit(t *testing.T) {
	srv := newTestServer(&stubGenerator{result: successResult()}, &memStore{})
	req := httptest.NewRequest(http.MethodGet, "/v1/diagrams/recent?limit=0", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	srv := newTestServer(&stubGenerator{result: successResult()}, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "client-supplied-id" {
		t.Errorf("request id = %q", got)
	}
}
