package indicator

import (
	"errors"
	"sort"

	"bandstream/internal/model"
)

// streamBands holds live Bollinger graphs for one stream.
type streamBands struct {
	bands   []*Bollinger
	configs []BandConfig
	last    model.Sample // most recent sample fed to bands
}

// Engine computes a set of Bollinger graphs for many streams.
// Not safe for concurrent use; callers sharing an Engine across goroutines
// must serialize access themselves.
type Engine struct {
	configs []BandConfig

	// state[stream] → *streamBands
	state map[string]*streamBands
}

// NewEngine creates an engine with the given band configs.
func NewEngine(configs []BandConfig) (*Engine, error) {
	if err := ValidateConfigs(configs); err != nil {
		return nil, err
	}
	return &Engine{
		configs: resolveAll(configs),
		state:   make(map[string]*streamBands, 64),
	}, nil
}

func resolveAll(configs []BandConfig) []BandConfig {
	out := make([]BandConfig, len(configs))
	for i, c := range configs {
		out[i] = c.Resolved()
	}
	return out
}

// Configs returns the resolved band configs.
func (e *Engine) Configs() []BandConfig {
	return append([]BandConfig(nil), e.configs...)
}

// Process feeds a sample into every band of its stream and returns one
// result per band. Z-score failures are reported on the result, not as the
// returned error, which is reserved for graph construction.
func (e *Engine) Process(ss model.StreamSample) ([]model.BandResult, error) {
	sb, exists := e.state[ss.Stream]
	if !exists {
		// First sample for this stream: create graph instances
		var err error
		sb, err = newStreamBands(e.configs)
		if err != nil {
			return nil, err
		}
		e.state[ss.Stream] = sb
	}

	sb.last = ss.Sample

	results := make([]model.BandResult, 0, len(sb.bands))
	for _, b := range sb.bands {
		err := b.Update(ss.Sample)
		r := reading(b, ss.Stream, ss.Sample)
		if err != nil && !errors.Is(err, ErrNotReady) {
			r.WithError(err)
		}
		results = append(results, r)
	}
	return results, nil
}

// Lookup returns the current reading of every band for stream without
// ingesting anything. TS and Value are those of the stream's latest sample.
// ok is false for a stream that has not been seen.
func (e *Engine) Lookup(stream string) (results []model.BandResult, ok bool) {
	sb, exists := e.state[stream]
	if !exists {
		return nil, false
	}
	results = make([]model.BandResult, 0, len(sb.bands))
	for _, b := range sb.bands {
		r := reading(b, stream, sb.last)
		if _, err := b.ZScore(); err != nil && !errors.Is(err, ErrNotReady) {
			r.WithError(err)
		}
		results = append(results, r)
	}
	return results, true
}

// Streams returns the known stream names, sorted.
func (e *Engine) Streams() []string {
	out := make([]string, 0, len(e.state))
	for s := range e.state {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// StreamCount returns the number of streams with live graphs.
func (e *Engine) StreamCount() int { return len(e.state) }

func newStreamBands(configs []BandConfig) (*streamBands, error) {
	bands := make([]*Bollinger, len(configs))
	for i, c := range configs {
		b, err := NewBollingerFromConfig(c)
		if err != nil {
			return nil, err
		}
		bands[i] = b
	}
	return &streamBands{bands: bands, configs: configs}, nil
}

func reading(b *Bollinger, stream string, s model.Sample) model.BandResult {
	r := model.BandResult{
		Band:   b.Name(),
		Stream: stream,
		TS:     s.TS,
		Value:  s.Value,
		Ready:  b.Ready(),
	}
	r.Middle, _ = b.Middle()
	r.Upper, _ = b.Upper()
	r.Lower, _ = b.Lower()
	r.StdDev, _ = b.StdDev()
	if z, err := b.ZScore(); err == nil {
		r.ZScore = z
		r.ZScoreOK = true
	}
	return r
}
