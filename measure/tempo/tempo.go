package tempo

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
)

const (
	// DefaultBPM is reported when no tempo can be estimated.
	DefaultBPM = 120

	// MinBPM and MaxBPM bound the searched lag range.
	MinBPM = 60.0
	MaxBPM = 200.0

	// AnalysisSeconds caps how much audio is analyzed.
	AnalysisSeconds = 30.0
)

var (
	// ErrNoEnergy is returned for silent input.
	ErrNoEnergy = errors.New("tempo: signal has no energy")

	// ErrTooShort is returned when the input cannot cover the minimum lag.
	ErrTooShort = errors.New("tempo: signal too short")
)

// Estimate is the result of a tempo analysis.
type Estimate struct {
	BPM int

	// Lag is the winning autocorrelation lag in samples.
	Lag int

	// Strength is the autocorrelation at Lag normalized by lag 0, in [-1,1].
	Strength float64
}

// DetectBPM returns the estimated tempo rounded to whole BPM, or DefaultBPM
// when the signal is silent, too short, or sampleRate is invalid.
func DetectBPM(samples []float64, sampleRate float64) int {
	est, err := Analyze(samples, sampleRate)
	if err != nil {
		return DefaultBPM
	}

	return est.BPM
}

// Analyze runs the autocorrelation estimator.
func Analyze(samples []float64, sampleRate float64) (Estimate, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Estimate{}, fmt.Errorf("tempo: sample rate must be > 0: %f", sampleRate)
	}

	n := min(len(samples), int(AnalysisSeconds*sampleRate))
	samples = samples[:n]

	minLag := int(math.Floor(60 * sampleRate / MaxBPM))
	maxLag := min(int(math.Ceil(60*sampleRate/MinBPM)), n-1)

	if minLag < 1 || maxLag < minLag {
		return Estimate{}, fmt.Errorf("%w: %d samples, need > %d", ErrTooShort, n, minLag)
	}

	r, err := autocorrelate(samples, maxLag)
	if err != nil {
		return Estimate{}, err
	}

	if r[0] <= 0 || math.IsNaN(r[0]) {
		return Estimate{}, ErrNoEnergy
	}

	best := minLag
	for lag := minLag + 1; lag <= maxLag; lag++ {
		if r[lag] > r[best] {
			best = lag
		}
	}

	return Estimate{
		BPM:      int(math.Round(60 * sampleRate / float64(best))),
		Lag:      best,
		Strength: r[best] / r[0],
	}, nil
}

// autocorrelate returns r[0..maxLag] of the linear autocorrelation of x.
func autocorrelate(x []float64, maxLag int) ([]float64, error) {
	fftSize := nextPowerOf2(len(x) + maxLag)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("tempo: failed to create FFT plan: %w", err)
	}

	in := make([]complex128, fftSize)
	for i, v := range x {
		in[i] = complex(v, 0)
	}

	spec := make([]complex128, fftSize)
	if err := plan.Forward(spec, in); err != nil {
		return nil, fmt.Errorf("tempo: forward FFT: %w", err)
	}

	// Power spectrum, reusing the input buffer.
	for i, c := range spec {
		re, im := real(c), imag(c)
		in[i] = complex(re*re+im*im, 0)
	}

	if err := plan.Inverse(spec, in); err != nil {
		return nil, fmt.Errorf("tempo: inverse FFT: %w", err)
	}

	r := make([]float64, maxLag+1)
	for i := range r {
		r[i] = real(spec[i])
	}

	return r, nil
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
