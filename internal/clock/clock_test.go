package clock

import (
	"errors"
	"testing"
	"time"
)

func TestParseWall(t *testing.T) {
	cases := []struct {
		in   string
		want Wall
	}{
		{"09:00", Wall{9, 0}},
		{"23:45", Wall{23, 45}},
		{"2:30PM", Wall{14, 30}},
		{"11:45pm", Wall{23, 45}},
	}
	for _, tc := range cases {
		got, err := ParseWall(tc.in)
		if err != nil {
			t.Fatalf("ParseWall(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseWall(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseWallRejectsMalformed(t *testing.T) {
	for _, in := range []string{"25:99", "banana", "9am", ""} {
		if _, err := ParseWall(in); !errors.Is(err, ErrInvalidTime) {
			t.Fatalf("ParseWall(%q): expected ErrInvalidTime, got %v", in, err)
		}
	}
}

func TestDueMatchesWithinTolerance(t *testing.T) {
	c := NewInLocation(time.UTC)
	w := Wall{9, 0}
	tol := 2 * time.Minute

	occ := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if !c.Due(occ, w, tol) {
		t.Fatal("expected due at the exact minute")
	}
	if !c.Due(occ.Add(-tol), w, tol) || !c.Due(occ.Add(tol), w, tol) {
		t.Fatal("expected due at the window edges")
	}
	if c.Due(occ.Add(tol+time.Second), w, tol) {
		t.Fatal("expected not due past the window")
	}
}

func TestNearestSpansMidnight(t *testing.T) {
	c := NewInLocation(time.UTC)
	w := Wall{23, 59}

	now := time.Date(2026, 3, 11, 0, 0, 30, 0, time.UTC)
	got := c.Nearest(now, w)
	want := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Nearest = %v, want previous day's %v", got, want)
	}
	if !c.Due(now, w, 2*time.Minute) {
		t.Fatal("expected due just after midnight for a 23:59 schedule")
	}
}

func TestNextAfter(t *testing.T) {
	c := NewInLocation(time.UTC)
	w := Wall{9, 0}

	before := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	if got := c.NextAfter(before, w); !got.Equal(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("NextAfter before occurrence = %v", got)
	}
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if got := c.NextAfter(at, w); !got.Equal(time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("NextAfter at occurrence = %v, want next day", got)
	}
}

func TestOccurrenceOnUsesFixedZone(t *testing.T) {
	loc := time.FixedZone("PST", -8*3600)
	c := NewInLocation(loc)

	// 09:00 PST expressed from a UTC reference instant.
	ref := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	got := c.OccurrenceOn(ref, Wall{9, 0})
	want := time.Date(2026, 3, 10, 9, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("OccurrenceOn = %v, want %v", got, want)
	}
}
