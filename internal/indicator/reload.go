package indicator

import (
	"log/slog"
)

// ReloadConfigs replaces the engine's band configs. Graphs whose config is
// unchanged keep their accumulated state; new or changed bands start cold.
// On a validation error the engine is left untouched.
func (e *Engine) ReloadConfigs(newConfigs []BandConfig) (preserved, created int, err error) {
	if err := ValidateConfigs(newConfigs); err != nil {
		return 0, 0, err
	}
	resolved := resolveAll(newConfigs)

	if configSetsEqual(e.configs, resolved) {
		e.configs = resolved
		for _, sb := range e.state {
			preserved += len(sb.bands)
		}
		slog.Info("band config unchanged", "streams", len(e.state), "preserved", preserved)
		return preserved, 0, nil
	}

	newState := make(map[string]*streamBands, len(e.state))
	for stream, old := range e.state {
		sb, p, c, err := migrateStreamBands(old, resolved)
		if err != nil {
			return 0, 0, err
		}
		newState[stream] = sb
		preserved += p
		created += c
	}

	e.configs = resolved
	e.state = newState

	slog.Info("band config reloaded",
		"bands", len(resolved), "streams", len(newState),
		"preserved", preserved, "created", created)
	return preserved, created, nil
}

// migrateStreamBands builds graphs for newConfigs, reusing old graphs that
// match by config.
func migrateStreamBands(old *streamBands, newConfigs []BandConfig) (*streamBands, int, int, error) {
	oldByKey := make(map[string]*Bollinger, len(old.bands))
	for i, c := range old.configs {
		oldByKey[c.key()] = old.bands[i]
	}

	var preserved, created int
	bands := make([]*Bollinger, len(newConfigs))
	for i, c := range newConfigs {
		if existing, ok := oldByKey[c.key()]; ok {
			bands[i] = existing // preserve accumulated state
			preserved++
			continue
		}
		b, err := NewBollingerFromConfig(c)
		if err != nil {
			return nil, 0, 0, err
		}
		bands[i] = b
		created++
	}
	return &streamBands{bands: bands, configs: newConfigs, last: old.last}, preserved, created, nil
}

// configSetsEqual checks if two resolved config slices are identical, in order.
func configSetsEqual(a, b []BandConfig) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].key() != b[i].key() {
			return false
		}
	}
	return true
}
