package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/jageocoder/abr-geocoder/internal/addr"
)

// JSONFormatter accumulates every Write into a single JSON array (§6). It
// is not safe to reuse after Close.
type JSONFormatter struct {
	mu      sync.Mutex
	w       io.Writer
	records []Record
}

// NewJSONFormatter builds a JSONFormatter writing the finished array to w
// when Close is called.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{w: w}
}

func (f *JSONFormatter) Write(q *addr.Query) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, NewRecord(q))
	return nil
}

// Close marshals every accumulated record as one JSON array and writes it.
// Formatter (internal/pipeline) only requires Write; callers that need the
// array closed out call Close once the driver's output channel has
// drained.
func (f *JSONFormatter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := json.Marshal(f.records)
	if err != nil {
		return fmt.Errorf("format: marshal json array: %w", err)
	}
	_, err = f.w.Write(data)
	return err
}

// NDJSONFormatter writes one compact JSON object per Write call, flushed
// immediately, to any io.Writer.
type NDJSONFormatter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewNDJSONFormatter builds an NDJSONFormatter writing to w.
func NewNDJSONFormatter(w io.Writer) *NDJSONFormatter {
	return &NDJSONFormatter{enc: json.NewEncoder(w)}
}

func (f *NDJSONFormatter) Write(q *addr.Query) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enc.Encode(NewRecord(q))
}
