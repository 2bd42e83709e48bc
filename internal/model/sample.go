package model

import (
	"encoding/json"
	"time"
)

// Sample is a single observation of a numeric series.
// Timestamps are expected to be non-decreasing within one stream.
type Sample struct {
	TS    time.Time `json:"ts"`
	Value float64   `json:"value"`
}

// StreamSample routes a sample to the indicator graphs of one stream.
type StreamSample struct {
	Stream string `json:"stream"`
	Sample
}

// BandResult holds one Bollinger reading for a stream after a sample.
type BandResult struct {
	Band     string    `json:"band"` // e.g. "BOLL_20_2"
	Stream   string    `json:"stream"`
	TS       time.Time `json:"ts"`
	Value    float64   `json:"value"` // sample value that produced this reading
	Middle   float64   `json:"middle"`
	Upper    float64   `json:"upper"`
	Lower    float64   `json:"lower"`
	StdDev   float64   `json:"stddev"`
	ZScore   float64   `json:"zscore"`
	Ready    bool      `json:"ready"`
	ZScoreOK bool      `json:"zscore_ok"`        // false when not ready or the z-score failed
	Err      string    `json:"error,omitempty"` // z-score failure, e.g. division by zero

	// err keeps the typed failure for errors.Is in-process.
	err error
}

// Failure returns the typed z-score failure, or nil.
func (r *BandResult) Failure() error { return r.err }

// WithError records a z-score failure on the result.
func (r *BandResult) WithError(err error) {
	r.err = err
	if err != nil {
		r.Err = err.Error()
		r.ZScoreOK = false
	}
}

// JSON returns the JSON-encoded result (ignoring errors for hot-path usage).
func (r *BandResult) JSON() []byte {
	b, _ := json.Marshal(r)
	return b
}
