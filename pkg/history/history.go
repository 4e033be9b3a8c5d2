// Package history records completed generation requests.
//
// The pipeline core never persists anything; history is an opt-in concern
// of the HTTP server, which saves a small summary per request so operators
// can inspect recent activity. A Mongo-backed store and a no-op store are
// provided.
package history

import (
	"context"
	"time"
)

// Record summarizes one completed generation request. The diagram bytes
// themselves are not stored, only their sizes.
type Record struct {
	// ID is the request id assigned by the server.
	ID string `bson:"_id" json:"id"`

	// CreatedAt is when the request completed.
	CreatedAt time.Time `bson:"created_at" json:"created_at"`

	// Title is the analyzer's diagram title, empty on failure.
	Title string `bson:"title,omitempty" json:"title,omitempty"`

	// DiagramType is the generated diagram kind.
	DiagramType string `bson:"diagram_type,omitempty" json:"diagram_type,omitempty"`

	// Success mirrors the result's success flag.
	Success bool `bson:"success" json:"success"`

	// Error carries the failure description for unsuccessful requests.
	Error string `bson:"error,omitempty" json:"error,omitempty"`

	// QualityScore is the final overall score, when assessed.
	QualityScore float64 `bson:"quality_score,omitempty" json:"quality_score,omitempty"`

	// RefinementIterations counts completed refinement assessments.
	RefinementIterations int `bson:"refinement_iterations,omitempty" json:"refinement_iterations,omitempty"`

	// Candidates counts candidates that survived generation.
	Candidates int `bson:"candidates" json:"candidates"`

	// SVGBytes is the size of the final SVG document.
	SVGBytes int `bson:"svg_bytes,omitempty" json:"svg_bytes,omitempty"`

	// Duration is the wall-clock pipeline time.
	Duration time.Duration `bson:"duration" json:"duration"`
}

// Store persists generation records.
type Store interface {
	// Save stores one record.
	Save(ctx context.Context, rec Record) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// NullStore discards all records. Used when history is not configured.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() Store { return &NullStore{} }

// Save discards the record.
func (NullStore) Save(ctx context.Context, rec Record) error { return nil }

// Recent returns no records.
func (NullStore) Recent(ctx context.Context, limit int) ([]Record, error) { return nil, nil }

// Close does nothing.
func (NullStore) Close(ctx context.Context) error { return nil }

var _ Store = (*NullStore)(nil)
