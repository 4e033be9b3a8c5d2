package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/diagramsmith/pkg/diagram"
	"github.com/matzehuels/diagramsmith/pkg/errors"
	"github.com/matzehuels/diagramsmith/pkg/history"
	"github.com/matzehuels/diagramsmith/pkg/pipeline"
)

// maxContentBytes bounds the request body.
const maxContentBytes = 1 << 20

// generateRequest is the POST /v1/diagrams body.
type generateRequest struct {
	Content            string          `json:"content"`
	Config             *diagram.Config `json:"config,omitempty"`
	ForceType          string          `json:"force_type,omitempty"`
	CustomInstructions string          `json:"custom_instructions,omitempty"`
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	var req generateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContentBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decoding request body"))
		return
	}
	if strings.TrimSpace(req.Content) == "" && req.CustomInstructions == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidContent, "content is required"))
		return
	}

	opts := pipeline.Options{Config: s.defaults, CustomInstructions: req.CustomInstructions}
	if req.Config != nil {
		opts.Config = *req.Config
	}
	if req.ForceType != "" {
		opts.ForceType = diagram.ParseType(req.ForceType)
	}

	start := time.Now()
	result, err := s.generator.Generate(ctx, req.Content, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r.Context(), result, time.Since(start))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat, "limit must be an integer in [1,200]"))
			return
		}
		limit = n
	}

	records, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// record persists a history entry. History failures are logged, never
// surfaced to the client.
func (s *Server) record(ctx context.Context, result *diagram.Result, took time.Duration) {
	rec := history.Record{
		ID:                   requestIDFrom(ctx),
		CreatedAt:            time.Now().UTC(),
		Success:              result.Success,
		Error:                result.Error,
		RefinementIterations: result.RefinementIterations,
		Candidates:           result.GenerationAttempts,
		SVGBytes:             len(result.SVG),
		Duration:             took,
	}
	if result.Analysis != nil {
		rec.Title = result.Analysis.Title
		rec.DiagramType = string(result.Analysis.DiagramType)
	}
	if result.FinalQualityScore != nil {
		rec.QualityScore = *result.FinalQualityScore
	}
	if err := s.store.Save(ctx, rec); err != nil {
		s.logger.Warn("saving history record", "error", err, "request_id", rec.ID)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", "error", err, "request_id", requestIDFrom(r.Context()))
	}
	writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		Code:      string(errors.GetCode(err)),
		RequestID: requestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
