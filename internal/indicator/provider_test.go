package indicator

import (
	"errors"
	"math"
	"testing"
	"time"

	"QuantChart/internal/model"
)

func input(closes []float64) Input {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := Input{Index: make([]time.Time, len(closes)), Close: closes}
	in.High = make([]float64, len(closes))
	in.Low = make([]float64, len(closes))
	for i, c := range closes {
		in.Index[i] = base.AddDate(0, 0, i)
		in.High[i] = c + 1
		in.Low[i] = c - 1
	}
	return in
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRegistry_UnknownIndicator(t *testing.T) {
	_, err := Default().Compute("ICHIMOKU", input([]float64{1, 2}))
	if !errors.Is(err, model.ErrUnsupportedOption) {
		t.Errorf("expected ErrUnsupportedOption, got %v", err)
	}
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	out, err := Default().Compute("sma", input([]float64{1, 2, 3}), 2)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 series, got %d", len(out))
	}
}

func TestSMA_DropsWarmup(t *testing.T) {
	in := input([]float64{1, 2, 3, 4})
	out, err := Default().Compute("SMA", in, 2)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	s := out[0]
	want := []float64{1.5, 2.5, 3.5}
	if len(s.Values) != len(want) {
		t.Fatalf("expected %d values, got %v", len(want), s.Values)
	}
	for i, w := range want {
		if !almostEqual(s.Values[i], w) {
			t.Errorf("value %d: expected %v, got %v", i, w, s.Values[i])
		}
	}
	if !s.Index[0].Equal(in.Index[1]) {
		t.Errorf("expected series to start at second bar, got %v", s.Index[0])
	}
}

func TestBollinger_ThreeBands(t *testing.T) {
	out, err := Default().Compute("BBANDS", input([]float64{1, 2, 3, 4, 5}), 3, 2)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 bands, got %d", len(out))
	}
	names := []string{"upper", "middle", "lower"}
	for i, s := range out {
		if s.Name != names[i] {
			t.Errorf("band %d: expected %q, got %q", i, names[i], s.Name)
		}
	}
	last := len(out[1].Values) - 1
	if !(out[0].Values[last] > out[1].Values[last] && out[1].Values[last] > out[2].Values[last]) {
		t.Errorf("expected upper > middle > lower, got %v %v %v",
			out[0].Values[last], out[1].Values[last], out[2].Values[last])
	}
}

func TestRSI_MonotonicRiseIs100(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	out, err := Default().Compute("RSI", input(closes), 14)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	s := out[0]
	if len(s.Values) != 20-14 {
		t.Fatalf("expected %d values, got %d", 20-14, len(s.Values))
	}
	for _, v := range s.Values {
		if v != 100 {
			t.Errorf("expected RSI 100 on a pure uptrend, got %v", v)
		}
	}
}

func TestRSI_NotEnoughBars(t *testing.T) {
	out, err := Default().Compute("RSI", input([]float64{1, 2, 3}), 14)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(out[0].Values) != 0 {
		t.Errorf("expected empty series, got %v", out[0].Values)
	}
}

func TestRange_TracksExtremes(t *testing.T) {
	out, err := Default().Compute("RANGE", input([]float64{10, 12, 11, 9}), 2)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	high, low := out[0], out[1]
	wantHigh := []float64{11, 13, 13, 12}
	wantLow := []float64{9, 9, 10, 8}
	for i := range wantHigh {
		if high.Values[i] != wantHigh[i] || low.Values[i] != wantLow[i] {
			t.Errorf("row %d: expected %v/%v, got %v/%v", i, wantHigh[i], wantLow[i], high.Values[i], low.Values[i])
		}
	}
}

func TestMissingColumns(t *testing.T) {
	in := input([]float64{1, 2, 3})
	in.Close = nil
	if _, err := Default().Compute("EMA", in, 2); !errors.Is(err, model.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
	in = input([]float64{1, 2, 3})
	in.High = nil
	if _, err := Default().Compute("ATR", in, 2); !errors.Is(err, model.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData for ATR, got %v", err)
	}
}

func TestInvalidPeriod(t *testing.T) {
	if _, err := Default().Compute("SMA", input([]float64{1, 2}), -3); err == nil {
		t.Error("expected error for negative period")
	}
}

func linear(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 10 + float64(i)
	}
	return closes
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestWMA(t *testing.T) {
	out, err := Default().Compute("WMA", input([]float64{1, 2, 3, 6}), 3)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	want := []float64{14.0 / 6, 26.0 / 6}
	if len(out[0].Values) != len(want) {
		t.Fatalf("expected %d values, got %v", len(want), out[0].Values)
	}
	for i, w := range want {
		if !almostEqual(out[0].Values[i], w) {
			t.Errorf("value %d: expected %v, got %v", i, w, out[0].Values[i])
		}
	}
}

func TestDEMAAndTEMA_TrackLinearTrend(t *testing.T) {
	closes := linear(30)
	tests := []struct {
		name   string
		warmup int
	}{
		{"DEMA", 2 * 4},
		{"TEMA", 3 * 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Default().Compute(tt.name, input(closes), 5)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			s := out[0]
			if len(s.Values) != len(closes)-tt.warmup {
				t.Fatalf("expected %d values, got %d", len(closes)-tt.warmup, len(s.Values))
			}
			for i, v := range s.Values {
				if want := closes[i+tt.warmup]; !near(v, want) {
					t.Errorf("row %d: expected %v, got %v", i, want, v)
				}
			}
		})
	}
}

func TestTRIMA_LagsLinearTrend(t *testing.T) {
	closes := linear(12)
	out, err := Default().Compute("TRIMA", input(closes), 4)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	s := out[0]
	if len(s.Values) != len(closes)-3 {
		t.Fatalf("expected %d values, got %d", len(closes)-3, len(s.Values))
	}
	for i, v := range s.Values {
		if want := closes[i+3] - 1.5; !near(v, want) {
			t.Errorf("row %d: expected %v, got %v", i, want, v)
		}
	}
}

func TestKAMA(t *testing.T) {
	out, err := Default().Compute("KAMA", input([]float64{1, 2, 3, 4}), 2)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	first := 2 + 4.0/9*(3-2)
	want := []float64{first, first + 4.0/9*(4-first)}
	if len(out[0].Values) != len(want) {
		t.Fatalf("expected %d values, got %v", len(want), out[0].Values)
	}
	for i, w := range want {
		if !almostEqual(out[0].Values[i], w) {
			t.Errorf("value %d: expected %v, got %v", i, w, out[0].Values[i])
		}
	}

	flat, err := Default().Compute("KAMA", input([]float64{5, 5, 5, 5, 5}), 3)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for _, v := range flat[0].Values {
		if v != 5 {
			t.Errorf("expected flat KAMA 5, got %v", v)
		}
	}
}

func TestMA_TypeSelector(t *testing.T) {
	in := input([]float64{1, 2, 3, 6, 4})
	wma, _ := Default().Compute("WMA", in, 3)
	ma, err := Default().Compute("MA", in, 3, 2)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i := range wma[0].Values {
		if !almostEqual(ma[0].Values[i], wma[0].Values[i]) {
			t.Errorf("row %d: expected WMA %v, got %v", i, wma[0].Values[i], ma[0].Values[i])
		}
	}

	sma, _ := Default().Compute("SMA", in, 3)
	ma, err = Default().Compute("MA", in, 3)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(ma[0].Values) != len(sma[0].Values) || !almostEqual(ma[0].Values[0], sma[0].Values[0]) {
		t.Errorf("expected MA to default to SMA, got %v want %v", ma[0].Values, sma[0].Values)
	}

	if _, err := Default().Compute("MA", in, 3, 9); !errors.Is(err, model.ErrUnsupportedOption) {
		t.Errorf("expected ErrUnsupportedOption for type 9, got %v", err)
	}
}

func TestRange_MatchesWindowedExtremes(t *testing.T) {
	in := input([]float64{5, 9, 2, 7, 7, 1, 8, 3, 6, 4})
	out, err := Default().Compute("RANGE", in, 3)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(out[0].Values) != len(in.Index) {
		t.Fatalf("expected no warm-up rows, got %d values", len(out[0].Values))
	}
	for i := range in.Index {
		high, low := math.Inf(-1), math.Inf(1)
		for j := max(0, i-2); j <= i; j++ {
			high = math.Max(high, in.High[j])
			low = math.Min(low, in.Low[j])
		}
		if out[0].Values[i] != high || out[1].Values[i] != low {
			t.Errorf("row %d: expected %v/%v, got %v/%v", i, high, low, out[0].Values[i], out[1].Values[i])
		}
	}
}
