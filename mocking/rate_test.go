package mocking

import (
	"fmt"
	"testing"
)

var rateTests = []struct {
	rs        RateSchedule
	lastIndex int
	i         int
	want      int
}{
	{rs: DefaultRateSchedule, lastIndex: 0, i: 0, want: 80},
	{rs: DefaultRateSchedule, lastIndex: 1, i: 0, want: 84},
	{rs: DefaultRateSchedule, lastIndex: 1, i: 1, want: 80},
	{rs: DefaultRateSchedule, lastIndex: 2, i: 1, want: 82},
	{rs: DefaultRateSchedule, lastIndex: 3, i: 0, want: 84},
	{rs: DefaultRateSchedule, lastIndex: 3, i: 1, want: 83},
	{rs: DefaultRateSchedule, lastIndex: 3, i: 2, want: 81},
	{rs: DefaultRateSchedule, lastIndex: 3, i: 3, want: 80},
	// halves round away from zero
	{rs: DefaultRateSchedule, lastIndex: 8, i: 1, want: 84},
	{rs: DefaultRateSchedule, lastIndex: 8, i: 3, want: 83},
	{rs: DefaultRateSchedule, lastIndex: 8, i: 5, want: 82},
	{rs: DefaultRateSchedule, lastIndex: 8, i: 7, want: 81},
	{rs: RateSchedule{Max: 100, Min: 50}, lastIndex: 4, i: 2, want: 75},
	{rs: RateSchedule{Max: 100, Min: 50}, lastIndex: 0, i: 0, want: 50},
}

func TestRateScheduleRate(t *testing.T) {
	for i, tt := range rateTests {
		t.Run(fmt.Sprintf("test_%02d", i+1), func(t *testing.T) {
			got := tt.rs.Rate(tt.lastIndex, tt.i)
			if got != tt.want {
				t.Errorf("RateSchedule%+v.Rate(%d, %d): got %d, want %d", tt.rs, tt.lastIndex, tt.i, got, tt.want)
			}
		})
	}
}

func TestRateScheduleMonotonic(t *testing.T) {
	rs := DefaultRateSchedule
	for lastIndex := 1; lastIndex <= 32; lastIndex++ {
		if got := rs.Rate(lastIndex, 0); got != rs.Max {
			t.Errorf("Rate(%d, 0): got %d, want %d", lastIndex, got, rs.Max)
		}
		if got := rs.Rate(lastIndex, lastIndex); got != rs.Min {
			t.Errorf("Rate(%d, %d): got %d, want %d", lastIndex, lastIndex, got, rs.Min)
		}

		prev := rs.Rate(lastIndex, 0)
		for i := 1; i <= lastIndex; i++ {
			rate := rs.Rate(lastIndex, i)
			if rate > prev {
				t.Errorf("Rate(%d, %d) = %d is greater than Rate(%d, %d) = %d", lastIndex, i, rate, lastIndex, i-1, prev)
			}
			prev = rate
		}
	}
}
