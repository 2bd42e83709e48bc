package bandengine

import (
	"bufio"
	"io"
	"sync"

	"bandstream/internal/model"
)

// Sink receives band results from the process loop.
type Sink interface {
	Write(r model.BandResult) error
}

// JSONSink writes each result as one JSON line.
type JSONSink struct {
	mu sync.Mutex
	w  *bufio.Writer
}

// NewJSONSink creates a buffered JSON-lines sink. Call Flush before exit.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{w: bufio.NewWriter(w)}
}

func (s *JSONSink) Write(r model.BandResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(r.JSON()); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

// Flush writes any buffered lines to the underlying writer.
func (s *JSONSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}
