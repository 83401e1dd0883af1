// Package clock converts between the bot's fixed civil timezone and absolute
// instants, and answers whether a wall-clock occurrence is currently due.
package clock

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTime = errors.New("invalid time of day")

// Wall is a civil time of day (no date) in a fixed timezone.
type Wall struct {
	Hour   int
	Minute int
}

// ParseWall accepts 24-hour "15:04" input as well as the 12-hour forms
// "3:04PM" and "03:04pm".
func ParseWall(s string) (Wall, error) {
	for _, layout := range []string{"15:04", "3:04PM", "3:04pm", "15:04:05"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Wall{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return Wall{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}

func (w Wall) String() string {
	return fmt.Sprintf("%02d:%02d", w.Hour, w.Minute)
}

// Clock does occurrence math in one fixed location.
type Clock struct {
	loc *time.Location
}

func New(timezone string) (*Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Clock{loc: loc}, nil
}

func NewInLocation(loc *time.Location) *Clock {
	return &Clock{loc: loc}
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

// OccurrenceOn returns the instant at which w falls on the civil day of ref.
func (c *Clock) OccurrenceOn(ref time.Time, w Wall) time.Time {
	local := ref.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), w.Hour, w.Minute, 0, 0, c.loc)
}

// Nearest returns the occurrence of w closest to now, which may fall on the
// previous or next civil day when now sits near midnight.
func (c *Clock) Nearest(now time.Time, w Wall) time.Time {
	today := c.OccurrenceOn(now, w)
	best := today
	for _, cand := range []time.Time{today.AddDate(0, 0, -1), today.AddDate(0, 0, 1)} {
		if absDuration(now.Sub(cand)) < absDuration(now.Sub(best)) {
			best = cand
		}
	}
	return best
}

// Due reports whether now is within tolerance of the nearest occurrence of w.
// The window is symmetric so a coarse tick landing slightly before or after
// the exact minute still matches.
func (c *Clock) Due(now time.Time, w Wall, tolerance time.Duration) bool {
	return absDuration(now.Sub(c.Nearest(now, w))) <= tolerance
}

// NextAfter returns the first occurrence of w strictly after t.
func (c *Clock) NextAfter(t time.Time, w Wall) time.Time {
	occ := c.OccurrenceOn(t, w)
	if occ.After(t) {
		return occ
	}
	return occ.AddDate(0, 0, 1)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
