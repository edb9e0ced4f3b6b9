package mocking

import "math"

const (
	DefaultMaxRate = 84
	DefaultMinRate = 80
)

// RateSchedule maps a word position to a speech rate percentage, slowing
// down linearly from Max at the first word to Min at the last one.
type RateSchedule struct {
	Max int
	Min int
}

var DefaultRateSchedule = RateSchedule{
	Max: DefaultMaxRate,
	Min: DefaultMinRate,
}

// Rate returns the rate of the word at index i, where lastIndex is the index
// of the last word. A single word gets Min.
func (rs RateSchedule) Rate(lastIndex, i int) int {
	if lastIndex == 0 {
		return rs.Min
	}

	step := float64(rs.Max-rs.Min) / float64(lastIndex)
	return int(math.Round(step*float64(lastIndex-i) + float64(rs.Min)))
}
