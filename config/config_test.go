package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bandstream/internal/indicator"
)

func TestParse_Defaults(t *testing.T) {
	c, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Service != "bandengine" || c.LogLevel != "info" || c.HTTPAddr != ":9095" || c.SampleBuffer != 5000 {
		t.Errorf("unexpected defaults %+v", c)
	}
	if len(c.Bands) != 1 || c.Bands[0].MAPeriod != 20 || c.Bands[0].K != 2 {
		t.Errorf("expected default BOLL(20, 2), got %+v", c.Bands)
	}
}

func TestParse_YAMLBands(t *testing.T) {
	data := []byte(`
service: boll
log_level: DEBUG
bands:
  - name: fast
    ma_period: 10
    std_period: 5
    k: 1.5
    ma_kind: exponential
  - ma_period: 50
    k: 2
`)
	c, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if c.Service != "boll" || c.LogLevel != "debug" {
		t.Errorf("unexpected top-level fields %+v", c)
	}
	if len(c.Bands) != 2 {
		t.Fatalf("expected 2 bands, got %d", len(c.Bands))
	}
	fast := c.Bands[0]
	if fast.Name != "fast" || fast.MAPeriod != 10 || fast.StdPeriod != 5 || fast.K != 1.5 || fast.MAKind != indicator.MAExponential {
		t.Errorf("unexpected fast band %+v", fast)
	}
	slow := c.Bands[1]
	if slow.K != 2 || slow.MAKind != indicator.MASimple {
		t.Errorf("expected default kind on second band, got %+v", slow)
	}
}

func TestParse_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad level":   "log_level: loud\n",
		"bad period":  "bands:\n  - ma_period: -5\n    k: 2\n",
		"bad kind":    "bands:\n  - ma_period: 5\n    k: 2\n    ma_kind: hull\n",
		"bad buffer":  "sample_buffer: -1\n",
		"broken yaml": "bands: [\n",
	}
	for name, data := range cases {
		if _, err := Parse([]byte(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestParse_RejectsZeroInsteadOfDefaulting(t *testing.T) {
	cases := map[string]string{
		"zero period":    "bands:\n  - ma_period: 0\n    k: 2\n",
		"missing period": "bands:\n  - name: x\n    k: 2\n",
		"zero k":         "bands:\n  - ma_period: 20\n    k: 0\n",
		"missing k":      "bands:\n  - ma_period: 20\n",
	}
	for name, data := range cases {
		c, err := Parse([]byte(data))
		if !errors.Is(err, indicator.ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got err=%v config=%+v", name, err, c)
		}
	}
}

func TestNormalizeBands_ZeroPeriod(t *testing.T) {
	bands := []indicator.BandConfig{{MAPeriod: 0, K: 2}}
	if err := NormalizeBands(bands); !errors.Is(err, indicator.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if bands[0].MAPeriod != 0 {
		t.Errorf("period must not be defaulted, got %d", bands[0].MAPeriod)
	}
}

func TestParse_DuplicateBandNames(t *testing.T) {
	_, err := Parse([]byte("bands:\n  - ma_period: 5\n    k: 2\n  - ma_period: 5\n    k: 2\n"))
	if !errors.Is(err, indicator.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bands.yaml")
	if err := os.WriteFile(path, []byte("http_addr: \":7000\"\nbands:\n  - ma_period: 10\n    k: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BAND_CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("SAMPLE_BUFFER", "64")
	t.Setenv("BAND_SPECS", "")

	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.HTTPAddr != ":7000" || c.LogLevel != "warn" || c.SampleBuffer != 64 {
		t.Errorf("unexpected config %+v", c)
	}
	if len(c.Bands) != 1 || c.Bands[0].MAPeriod != 10 {
		t.Errorf("expected file band, got %+v", c.Bands)
	}

	t.Setenv("BAND_SPECS", "20:2,50/20:2.5:ema")
	c, err = Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Bands) != 2 || c.Bands[1].StdPeriod != 20 || c.Bands[1].MAKind != indicator.MAExponential {
		t.Errorf("expected env bands to win, got %+v", c.Bands)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("BAND_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseBandSpecs(t *testing.T) {
	bands, err := ParseBandSpecs(" 20:2 , 50/20:2.5:ema ")
	if err != nil {
		t.Fatal(err)
	}
	if len(bands) != 2 {
		t.Fatalf("expected 2 bands, got %d", len(bands))
	}
	if bands[0].MAPeriod != 20 || bands[0].StdPeriod != 0 || bands[0].K != 2 {
		t.Errorf("unexpected first band %+v", bands[0])
	}
	if bands[1].MAPeriod != 50 || bands[1].StdPeriod != 20 || bands[1].K != 2.5 || bands[1].MAKind != indicator.MAExponential {
		t.Errorf("unexpected second band %+v", bands[1])
	}

	for _, bad := range []string{"", "20", "x:2", "20/y:2", "20:k", "20:2:alma", "20:2:sma:extra"} {
		if _, err := ParseBandSpecs(bad); err == nil {
			t.Errorf("ParseBandSpecs(%q): expected error", bad)
		}
	}
	for _, zero := range []string{"0:2", "0:0", "-3:2", "20/0:2", "20:0"} {
		if _, err := ParseBandSpecs(zero); !errors.Is(err, indicator.ErrInvalidConfig) {
			t.Errorf("ParseBandSpecs(%q): expected ErrInvalidConfig, got %v", zero, err)
		}
	}
}
