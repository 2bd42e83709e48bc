package bandengine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"bandstream/internal/model"
)

// Source pushes samples into out until its input is exhausted or ctx is done.
// Run must not close out.
type Source interface {
	Run(ctx context.Context, out chan<- model.StreamSample) error
}

// CSVSource reads "stream,unix_ms,value" lines. Blank lines, lines starting
// with '#' and a leading "stream,..." header are ignored. Malformed lines are
// reported to OnError and skipped.
type CSVSource struct {
	r io.Reader

	// OnError is called for every skipped line (1-based line number).
	OnError func(line int, err error)
}

// NewCSVSource creates a CSV source reading from r.
func NewCSVSource(r io.Reader) *CSVSource {
	return &CSVSource{r: r}
}

// Run scans r line by line. Returns nil at EOF.
func (s *CSVSource) Run(ctx context.Context, out chan<- model.StreamSample) error {
	sc := bufio.NewScanner(s.r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if lineNo == 1 && strings.HasPrefix(strings.ToLower(line), "stream,") {
			continue
		}

		ss, err := ParseLine(line)
		if err != nil {
			if s.OnError != nil {
				s.OnError(lineNo, err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- ss:
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read samples: %w", err)
	}
	return nil
}

// ParseLine parses one "stream,unix_ms,value" record.
func ParseLine(line string) (model.StreamSample, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return model.StreamSample{}, fmt.Errorf("want 3 fields, got %d", len(fields))
	}
	stream := strings.TrimSpace(fields[0])
	if stream == "" {
		return model.StreamSample{}, fmt.Errorf("empty stream name")
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		return model.StreamSample{}, fmt.Errorf("timestamp: %w", err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return model.StreamSample{}, fmt.Errorf("value: %w", err)
	}
	return model.StreamSample{
		Stream: stream,
		Sample: model.Sample{TS: time.UnixMilli(ms).UTC(), Value: v},
	}, nil
}
