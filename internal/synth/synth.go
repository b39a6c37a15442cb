// Package synth turns terahertz readings into a single additive sine mix.
//
// Each reading is scaled to hertz, clamped into the processing band,
// rendered as a fixed-length sine tone and summed into a master buffer
// owned by a Mixer. The finished Track is handed to an exporter once.
package synth

import (
	"errors"
	"time"
)

// Defaults for a run.
const (
	DefaultDuration   = 30 * time.Second
	DefaultSampleRate = 44100
	DefaultVolumeDB   = -10.0
	DefaultMinHz      = 18000.0
	DefaultMaxHz      = 22000.0
)

var (
	// ErrInvalidFrequency is returned by ToHertz for NaN input.
	ErrInvalidFrequency = errors.New("synth: invalid frequency")

	// ErrSynthesis means a tone could not be rendered with the given parameters.
	ErrSynthesis = errors.New("synth: tone synthesis failed")

	// ErrLengthMismatch guards Overlay against tones rendered for another track length.
	ErrLengthMismatch = errors.New("synth: tone length does not match master buffer")

	// ErrFinalized is returned by a Mixer whose buffer was already handed over.
	ErrFinalized = errors.New("synth: mixer already finalized")

	// ErrNothingMixed means a non-empty batch contributed no tone at all.
	ErrNothingMixed = errors.New("synth: no tones contributed to the mix")
)

// Band is the inclusive frequency window every tone is clamped into.
type Band struct {
	Min float64
	Max float64
}

// DefaultBand returns the 18-22 kHz processing band.
func DefaultBand() Band {
	return Band{Min: DefaultMinHz, Max: DefaultMaxHz}
}

// Clamp limits hz to [b.Min, b.Max].
func (b Band) Clamp(hz float64) float64 {
	if hz < b.Min {
		return b.Min
	}
	if hz > b.Max {
		return b.Max
	}
	return hz
}

// Valid reports whether the band is a usable, non-inverted window.
func (b Band) Valid() bool {
	return b.Min <= b.Max && b.Min >= 0
}

// SampleCount returns the number of samples in d at sampleRate.
// Fractional samples are truncated. Whole seconds and the remainder are
// scaled separately so long durations do not overflow int64.
func SampleCount(d time.Duration, sampleRate int) int {
	if d <= 0 || sampleRate <= 0 {
		return 0
	}
	rate := int64(sampleRate)
	whole := int64(d/time.Second) * rate
	frac := int64(d%time.Second) * rate / int64(time.Second)
	return int(whole + frac)
}
