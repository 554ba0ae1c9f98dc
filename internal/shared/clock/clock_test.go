package clock

import (
	"testing"
	"time"
)

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	in := time.Date(2025, time.November, 18, 23, 30, 0, 0, loc)

	got := DateOf(in)
	want := time.Date(2025, time.November, 18, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOf() = %v, want %v", got, want)
	}
}

func TestFixed(t *testing.T) {
	c := Fixed{Date: time.Date(2025, time.December, 5, 14, 0, 0, 0, time.UTC)}
	want := time.Date(2025, time.December, 5, 0, 0, 0, 0, time.UTC)
	if got := c.Today(); !got.Equal(want) {
		t.Errorf("Today() = %v, want %v", got, want)
	}
}
