package synth

import (
	"fmt"
	"math"
)

// TeraHertz is the scale factor from THz to Hz.
const TeraHertz = 1e12

// ToHertz converts a terahertz reading to hertz.
// Infinite and negative values are numeric and pass through; they end up
// on a band edge once clamped.
func ToHertz(thz float64) (float64, error) {
	if math.IsNaN(thz) {
		return 0, fmt.Errorf("%w: %v THz", ErrInvalidFrequency, thz)
	}
	return thz * TeraHertz, nil
}
