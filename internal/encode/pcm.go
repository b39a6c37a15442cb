package encode

import (
	"encoding/binary"
	"math"
)

// ToInt16 converts float samples in [-1, 1] to int16, clipping anything
// outside full scale.
func ToInt16(samples []float64) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		v := math.Round(s * 32767)

		// Clip to int16 range
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		} else if math.IsNaN(v) {
			v = 0
		}
		out[i] = int16(v)
	}
	return out
}

// SamplesToBytes converts int16 samples to little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}
