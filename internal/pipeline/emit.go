package pipeline

import (
	"context"

	"github.com/jageocoder/abr-geocoder/internal/addr"
)

// Formatter is the sink collaborator for step 8 (§4.3, §6). Implementations
// live in internal/format; EmitStage only needs the Write contract, so
// there is no import dependency between the two packages.
type Formatter interface {
	Write(q *addr.Query) error
}

// EmitStage is step 8 (§4.3): hands the finished Query to a Formatter sink.
// It is a terminal stage — its output channel carries the same Query
// through unchanged so the driver's caller can still observe/count results
// after they've been written.
type EmitStage struct {
	sink Formatter
}

// NewEmitStage builds the stage around a Formatter.
func NewEmitStage(sink Formatter) *EmitStage {
	return &EmitStage{sink: sink}
}

func (s *EmitStage) Name() string { return "emit" }

func (s *EmitStage) Process(ctx context.Context, q *addr.Query) ([]*addr.Query, error) {
	if err := s.sink.Write(q); err != nil {
		return nil, err
	}
	return []*addr.Query{q}, nil
}
