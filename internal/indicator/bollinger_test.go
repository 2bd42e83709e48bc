package indicator

import (
	"errors"
	"math"
	"testing"
)

func mustBollinger(t *testing.T, maPeriod, stdPeriod int, k float64, kind MAKind) *Bollinger {
	t.Helper()
	b, err := NewBollinger("", maPeriod, stdPeriod, k, kind)
	if err != nil {
		t.Fatalf("NewBollinger(%d, %d, %v, %s): %v", maPeriod, stdPeriod, k, kind, err)
	}
	return b
}

func TestBollinger_BandsAndReadiness(t *testing.T) {
	// BB(2, 2, k=2) over 1, 3, 5, 7:
	// after 3: mid=2 std=1 → upper=4 lower=0 z=1
	// after 5: mid=4 std=1 → upper=6 lower=2 z=1
	// after 7: mid=6 std=1 → upper=8 lower=4 z=1
	b := mustBollinger(t, 2, 2, 2, MASimple)
	values := []float64{1, 3, 5, 7}
	wantMid := []float64{0, 2, 4, 6}

	for i, v := range values {
		if err := b.Update(sample(i, v)); err != nil {
			t.Fatalf("sample %d: %v", i, err)
		}
		if i == 0 {
			if b.Ready() {
				t.Fatal("ready after one sample")
			}
			if _, err := b.ZScore(); !errors.Is(err, ErrNotReady) {
				t.Fatalf("expected ErrNotReady before ready, got %v", err)
			}
			continue
		}
		if !b.Ready() {
			t.Fatalf("sample %d: expected ready", i)
		}

		mid, _ := b.Middle()
		std, _ := b.StdDev()
		upper, _ := b.Upper()
		lower, _ := b.Lower()
		assertClose(t, "middle", mid, wantMid[i], 1e-12)
		assertClose(t, "std", std, 1, 1e-12)
		assertClose(t, "upper", upper, mid+2*std, 1e-12)
		assertClose(t, "lower", lower, mid-2*std, 1e-12)

		z, err := b.ZScore()
		if err != nil {
			t.Fatalf("sample %d: z-score: %v", i, err)
		}
		assertClose(t, "z-score", z, 1, 1e-12)
		assertClose(t, "Value", b.Value(), z, 0)
	}
}

func TestBollinger_BandIdentityAcrossKinds(t *testing.T) {
	series := []float64{101.2, 99.8, 100.4, 102.9, 98.7, 97.5, 103.3, 104.1, 100.0, 99.1, 101.7, 105.2}
	for _, kind := range []MAKind{MASimple, MAExponential, MASmoothed, MAWeighted} {
		b := mustBollinger(t, 4, 5, 2.5, kind)
		for i, v := range series {
			if err := b.Update(sample(i, v)); err != nil {
				t.Fatalf("%s sample %d: %v", kind, i, err)
			}
			if !b.Ready() {
				continue
			}
			mid, _ := b.Middle()
			std, _ := b.StdDev()
			upper, _ := b.Upper()
			lower, _ := b.Lower()
			assertClose(t, string(kind)+" upper", upper, mid+2.5*std, 1e-9)
			assertClose(t, string(kind)+" lower", lower, mid-2.5*std, 1e-9)

			// z-score inverts back to the sample
			z, err := b.ZScore()
			if err != nil {
				t.Fatalf("%s sample %d: %v", kind, i, err)
			}
			assertClose(t, string(kind)+" round-trip", mid+z*std, v, 1e-9)
		}
		if !b.Ready() {
			t.Errorf("%s: never ready", kind)
		}
	}
}

func TestBollinger_ReadyNeedsBothPeriods(t *testing.T) {
	b := mustBollinger(t, 2, 4, 2, MASimple)
	for i, v := range []float64{1, 2, 3} {
		b.Update(sample(i, v))
		if b.Ready() {
			t.Fatalf("ready after %d samples; std needs 4", i+1)
		}
	}
	b.Update(sample(3, 4))
	if !b.Ready() {
		t.Fatal("expected ready after 4 samples")
	}
}

func TestBollinger_DivisionByZero_StdPeriodOne(t *testing.T) {
	b, err := NewBollingerPeriod("", 1, 2, MASimple)
	if err != nil {
		t.Fatal(err)
	}
	b.Update(sample(0, 10))

	err = b.Update(sample(1, 12))
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
	if _, zerr := b.ZScore(); !errors.Is(zerr, ErrDivisionByZero) {
		t.Fatalf("ZScore should report ErrDivisionByZero, got %v", zerr)
	}
	if z := b.Value(); math.IsNaN(z) || math.IsInf(z, 0) {
		t.Fatalf("value must not be NaN/Inf, got %v", z)
	}

	// the bands still track the sample
	mid, ok := b.Middle()
	if !ok || mid != 12 {
		t.Errorf("expected middle=12 ready, got %v ok=%v", mid, ok)
	}
}

func TestBollinger_DivisionByZero_LongerMAPeriod(t *testing.T) {
	b := mustBollinger(t, 2, 1, 2, MASimple)
	if err := b.Update(sample(0, 1)); err != nil {
		t.Fatalf("first sample is not ready yet, got %v", err)
	}
	if err := b.Update(sample(1, 2)); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestBollinger_FlatWindowThenRecovers(t *testing.T) {
	b := mustBollinger(t, 3, 3, 2, MASimple)
	for i, v := range []float64{5, 5} {
		b.Update(sample(i, v))
	}
	if err := b.Update(sample(2, 5)); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero on flat window, got %v", err)
	}
	if err := b.Update(sample(3, 8)); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	z, err := b.ZScore()
	if err != nil {
		t.Fatal(err)
	}
	// window 5, 5, 8: mean 6, std sqrt(2)
	assertClose(t, "z after recovery", z, 2/math.Sqrt(2), 1e-12)
}

func TestBollinger_ValueClearedOnDivisionByZero(t *testing.T) {
	b := mustBollinger(t, 3, 3, 2, MASimple)
	for i, v := range []float64{1, 2, 3} {
		b.Update(sample(i, v))
	}
	if b.Value() == 0 {
		t.Fatal("expected a non-zero z-score on a rising window")
	}

	b.Update(sample(3, 3))
	if err := b.Update(sample(4, 3)); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero on flat window, got %v", err)
	}
	if z := b.Value(); z != 0 {
		t.Errorf("expected Value()=0 after a failed z-score, got %v", z)
	}
}

func TestBollinger_PeriodShorthandMatchesFull(t *testing.T) {
	short, err := NewBollingerPeriod("x", 3, 2, MAExponential)
	if err != nil {
		t.Fatal(err)
	}
	full := mustBollinger(t, 3, 3, 2, MAExponential)

	for i, v := range []float64{3, 1, 4, 1, 5, 9, 2, 6} {
		short.Update(sample(i, v))
		full.Update(sample(i, v))
		m1, r1 := short.Middle()
		m2, r2 := full.Middle()
		u1, _ := short.Upper()
		u2, _ := full.Upper()
		if m1 != m2 || r1 != r2 || u1 != u2 {
			t.Fatalf("sample %d: shorthand diverged: mid %v/%v upper %v/%v", i, m1, m2, u1, u2)
		}
	}
	if short.Name() != "x" {
		t.Errorf("expected name x, got %s", short.Name())
	}
	cfg := short.Config()
	if cfg.MAPeriod != 3 || cfg.StdPeriod != 3 || cfg.K != 2 || cfg.MAKind != MAExponential {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestBollinger_InvalidConfig(t *testing.T) {
	cases := []struct {
		ma, std int
		k       float64
		kind    MAKind
	}{
		{0, 20, 2, MASimple},
		{20, 0, 2, MASimple},
		{-1, -1, 2, MASimple},
		{20, 20, math.NaN(), MASimple},
		{20, 20, math.Inf(1), MASimple},
		{20, 20, 2, "ALMA"},
	}
	for _, tc := range cases {
		if _, err := NewBollinger("", tc.ma, tc.std, tc.k, tc.kind); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("NewBollinger(%d, %d, %v, %q): expected ErrInvalidConfig, got %v", tc.ma, tc.std, tc.k, tc.kind, err)
		}
	}
}

func TestBollinger_GeneratedName(t *testing.T) {
	cases := []struct {
		ma, std int
		k       float64
		want    string
	}{
		{20, 20, 2, "BOLL_20_2"},
		{20, 10, 2.5, "BOLL_20_10_2.5"},
	}
	for _, tc := range cases {
		b := mustBollinger(t, tc.ma, tc.std, tc.k, "")
		if b.Name() != tc.want {
			t.Errorf("expected %s, got %s", tc.want, b.Name())
		}
	}
}
