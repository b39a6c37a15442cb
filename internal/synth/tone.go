package synth

import (
	"fmt"
	"math"
	"time"
)

// Tone is one rendered sine at its effective (clamped) frequency.
type Tone struct {
	Frequency float64
	Samples   []float64
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// Synthesize renders a sine of the given duration at freqHz clamped into band.
// The output is deterministic: equal arguments give bit-identical samples.
func Synthesize(freqHz float64, d time.Duration, sampleRate int, volumeDB float64, band Band) (Tone, error) {
	if math.IsNaN(freqHz) {
		return Tone{}, fmt.Errorf("%w: frequency is NaN", ErrSynthesis)
	}
	if sampleRate <= 0 {
		return Tone{}, fmt.Errorf("%w: sample rate must be > 0: %d", ErrSynthesis, sampleRate)
	}
	if !band.Valid() {
		return Tone{}, fmt.Errorf("%w: invalid band [%g, %g]", ErrSynthesis, band.Min, band.Max)
	}
	n := SampleCount(d, sampleRate)
	if n <= 0 {
		return Tone{}, fmt.Errorf("%w: %v at %d Hz yields no samples", ErrSynthesis, d, sampleRate)
	}
	amplitude := DBToLinear(volumeDB)
	if math.IsNaN(amplitude) || math.IsInf(amplitude, 0) {
		return Tone{}, fmt.Errorf("%w: volume %g dB", ErrSynthesis, volumeDB)
	}

	freq := band.Clamp(freqHz)
	out := make([]float64, n)
	step := 2 * math.Pi * freq / float64(sampleRate)
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return Tone{Frequency: freq, Samples: out}, nil
}
