package report

import "math"

// Stats summarises a list of THz readings. Count is the length of the input;
// the remaining fields only consider finite values.
type Stats struct {
	Count  int
	Finite int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Range is Max minus Min.
func (s Stats) Range() float64 { return s.Max - s.Min }

// Summarize computes Stats over values. StdDev is the population deviation.
// With no finite values every float field is zero.
func Summarize(values []float64) Stats {
	s := Stats{Count: len(values)}
	var sum float64
	for _, v := range values {
		if !finite(v) {
			continue
		}
		if s.Finite == 0 || v < s.Min {
			s.Min = v
		}
		if s.Finite == 0 || v > s.Max {
			s.Max = v
		}
		sum += v
		s.Finite++
	}
	if s.Finite == 0 {
		return s
	}
	s.Mean = sum / float64(s.Finite)

	var sq float64
	for _, v := range values {
		if finite(v) {
			d := v - s.Mean
			sq += d * d
		}
	}
	s.StdDev = math.Sqrt(sq / float64(s.Finite))
	return s
}

// Bin is one histogram bucket covering [Start, End). The last bucket also
// includes End.
type Bin struct {
	Start float64
	End   float64
	Count int
}

// Histogram splits the finite values into n equal-width bins spanning their
// range. A zero-width range is widened by 0.5 on each side.
func Histogram(values []float64, n int) []Bin {
	s := Summarize(values)
	if n <= 0 || s.Finite == 0 {
		return nil
	}
	lo, hi := s.Min, s.Max
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / float64(n)

	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Start = lo + float64(i)*width
		bins[i].End = lo + float64(i+1)*width
	}
	bins[n-1].End = hi

	for _, v := range values {
		if !finite(v) {
			continue
		}
		i := int((v - lo) / (hi - lo) * float64(n))
		if i >= n {
			i = n - 1
		}
		if i < 0 {
			i = 0
		}
		bins[i].Count++
	}
	return bins
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
