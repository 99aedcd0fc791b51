package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
)

// Resample linearly interpolates data, sampled at increasing times, onto n
// evenly spaced points over [times[0], times[last]]. Duplicate times, which
// occur when several events fire at one instant, keep the later sample.
func Resample(times, data []float64, n int) ([]float64, float64, error) {
	if len(times) != len(data) {
		return nil, 0, fmt.Errorf("times and data differ in length: %d vs %d", len(times), len(data))
	}
	if len(times) < 2 || n < 2 {
		return nil, 0, fmt.Errorf("need at least two samples")
	}
	t0, t1 := times[0], times[len(times)-1]
	if !(t1 > t0) {
		return nil, 0, fmt.Errorf("trajectory spans no time")
	}

	step := (t1 - t0) / float64(n-1)
	out := make([]float64, n)
	j := 0
	for i := range out {
		t := t0 + float64(i)*step
		for j < len(times)-2 && times[j+1] <= t {
			j++
		}
		ta, tb := times[j], times[j+1]
		if tb == ta {
			out[i] = data[j+1]
			continue
		}
		w := (t - ta) / (tb - ta)
		w = max(0, min(w, 1))
		out[i] = data[j] + w*(data[j+1]-data[j])
	}
	return out, step, nil
}

// Spectrum is the one-sided amplitude spectrum of a uniformly sampled signal.
type Spectrum struct {
	Freqs     []float64
	Amplitude []float64
}

// PowerSpectrum resamples the trajectory onto n points (a power of two is
// fastest), removes the mean and transforms it.
func PowerSpectrum(times, data []float64, n int) (*Spectrum, error) {
	samples, step, err := Resample(times, data, n)
	if err != nil {
		return nil, err
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))
	for i := range samples {
		samples[i] -= mean
	}

	coeffs := fft.FFTReal(samples)
	half := len(coeffs) / 2
	spec := &Spectrum{
		Freqs:     make([]float64, half),
		Amplitude: make([]float64, half),
	}
	for k := 0; k < half; k++ {
		spec.Freqs[k] = float64(k) / (float64(n) * step)
		spec.Amplitude[k] = cmplx.Abs(coeffs[k]) / float64(n)
	}
	return spec, nil
}

// Peak is a local maximum of a spectrum.
type Peak struct {
	Freq      float64
	Period    float64
	Amplitude float64
}

// Peaks returns the k largest local maxima, strongest first. The zero
// frequency bin is skipped.
func (s *Spectrum) Peaks(k int) []Peak {
	var peaks []Peak
	for i := 1; i < len(s.Amplitude); i++ {
		a := s.Amplitude[i]
		if a <= s.Amplitude[i-1] {
			continue
		}
		if i+1 < len(s.Amplitude) && a < s.Amplitude[i+1] {
			continue
		}
		peaks = append(peaks, Peak{Freq: s.Freqs[i], Period: 1 / s.Freqs[i], Amplitude: a})
	}
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].Amplitude > peaks[j].Amplitude })
	if len(peaks) > k {
		peaks = peaks[:k]
	}
	return peaks
}

// DominantPeriod returns the period of the strongest peak, or NaN.
func (s *Spectrum) DominantPeriod() float64 {
	peaks := s.Peaks(1)
	if len(peaks) == 0 {
		return math.NaN()
	}
	return peaks[0].Period
}
