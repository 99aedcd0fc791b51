package analysis

import (
	"math"
	"strings"
	"testing"
)

func TestResample(t *testing.T) {
	times := []float64{0, 0.5, 2, 2, 4}
	data := []float64{0, 1, 4, 10, 14}

	out, step, err := Resample(times, data, 5)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	if step != 1 {
		t.Errorf("expected step 1, got %f", step)
	}

	// Linear between samples; the duplicate time at t=2 keeps the later value.
	want := []float64{0, 2, 10, 12, 14}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Errorf("sample %d: expected %f, got %f", i, want[i], out[i])
		}
	}
}

func TestResample_Errors(t *testing.T) {
	if _, _, err := Resample([]float64{0}, []float64{1}, 8); err == nil {
		t.Error("expected error for a single sample")
	}
	if _, _, err := Resample([]float64{0, 1}, []float64{1}, 8); err == nil {
		t.Error("expected error for length mismatch")
	}
	if _, _, err := Resample([]float64{1, 1}, []float64{1, 2}, 8); err == nil {
		t.Error("expected error for zero span")
	}
}

func TestPowerSpectrum_DominantPeriod(t *testing.T) {
	// Unevenly sampled sine with period 2.
	var times, data []float64
	for at := 0.0; at <= 32; at += 0.003 + 0.002*math.Abs(math.Sin(7*at)) {
		times = append(times, at)
		data = append(data, 3+math.Sin(math.Pi*at))
	}

	spec, err := PowerSpectrum(times, data, 4096)
	if err != nil {
		t.Fatalf("spectrum failed: %v", err)
	}

	period := spec.DominantPeriod()
	if math.Abs(period-2) > 0.1 {
		t.Errorf("expected period near 2, got %f", period)
	}

	peaks := spec.Peaks(3)
	if len(peaks) == 0 || peaks[0].Amplitude < 0.3 {
		t.Errorf("expected a strong peak, got %+v", peaks)
	}
}

func TestPhasePortrait(t *testing.T) {
	states := [][]float64{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

	p, err := NewPhasePortrait(states, 0, 1)
	if err != nil {
		t.Fatalf("portrait failed: %v", err)
	}
	if len(p.Points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(p.Points))
	}

	p.AddJump([]float64{0, -1}, []float64{0.5, -0.5})
	art := p.ToASCII(21, 11)

	if strings.Count(art, "\n") != 11 {
		t.Errorf("expected 11 rows, got:\n%s", art)
	}
	for _, mark := range []string{"o", "•", "▲", "│", "─"} {
		if !strings.Contains(art, mark) {
			t.Errorf("missing %q in:\n%s", mark, art)
		}
	}
}

func TestPhasePortrait_Errors(t *testing.T) {
	if _, err := NewPhasePortrait(nil, 0, 1); err == nil {
		t.Error("expected error for empty trajectory")
	}
	if _, err := NewPhasePortrait([][]float64{{1}}, 0, 1); err == nil {
		t.Error("expected error for out of range component")
	}
}
