// Package timeutil provides calendar-day utilities for the Sync points engine.
// All day comparisons are done on local calendar dates in a configured
// location, never on elapsed durations.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DateLayout is the layout of a day key (ISO date, no time part).
const DateLayout = "2006-01-02"

// ══════════════════════════════════════════════════════════════════════════════
// CLOCK
// ══════════════════════════════════════════════════════════════════════════════

// Clock supplies the current time. It is injected everywhere "now" matters
// so that day boundaries can be tested deterministically.
type Clock interface {
	// Now returns the current instant.
	Now() time.Time

	// Location returns the timezone used for calendar-day comparisons.
	Location() *time.Location
}

// SystemClock reads the wall clock.
type SystemClock struct {
	loc *time.Location
}

// NewSystemClock creates a wall clock bound to the given location.
// A nil location falls back to time.Local.
func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.Local
	}
	return &SystemClock{loc: loc}
}

// Now returns the current time in the clock's location.
func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Location returns the clock's location.
func (c *SystemClock) Location() *time.Location {
	return c.loc
}

// FixedClock is a manually driven clock for tests and replays.
type FixedClock struct {
	mu  sync.RWMutex
	now time.Time
	loc *time.Location
}

// NewFixedClock creates a clock frozen at t. The clock uses t's location.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t, loc: t.Location()}
}

// Now returns the frozen instant.
func (c *FixedClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Location returns the clock's location.
func (c *FixedClock) Location() *time.Location {
	return c.loc
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.In(c.loc)
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// AddDays moves the clock by n calendar days, keeping the wall time.
func (c *FixedClock) AddDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}

// ══════════════════════════════════════════════════════════════════════════════
// CALENDAR DAYS
// ══════════════════════════════════════════════════════════════════════════════

// StartOfDay returns local midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DateKey formats t as a calendar-day key ("2006-01-02") in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// Today returns the day key of the clock's current date.
func Today(c Clock) string {
	return DateKey(c.Now(), c.Location())
}

// Yesterday returns the day key of the calendar day before the clock's date.
func Yesterday(c Clock) string {
	return DateKey(c.Now().In(c.Location()).AddDate(0, 0, -1), c.Location())
}

// IsSameDay checks if two instants fall on the same calendar day in loc.
func IsSameDay(t1, t2 time.Time, loc *time.Location) bool {
	return DateKey(t1, loc) == DateKey(t2, loc)
}

// DaysBetween returns the number of calendar days from t1 to t2 in loc.
// The result is negative when t2 is before t1. DST shifts do not affect it.
func DaysBetween(t1, t2 time.Time, loc *time.Location) int {
	a := t1.In(loc)
	b := t2.In(loc)
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// ══════════════════════════════════════════════════════════════════════════════
// PARSING & FORMATTING
// ══════════════════════════════════════════════════════════════════════════════

// FormatTimestamp renders an instant as an ISO-8601 timestamp in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp parses an ISO-8601 timestamp.
func ParseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: invalid timestamp %q: %w", value, err)
	}
	return t, nil
}

// ParseClockTime parses a wall-clock string used by class slots.
// Both "15:04" and "03:04 PM" forms are accepted.
func ParseClockTime(value string) (hour, minute int, err error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	for _, layout := range []string{"15:04", "03:04 PM", "3:04 PM", "03:04PM", "3:04PM"} {
		if t, perr := time.Parse(layout, value); perr == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("timeutil: invalid clock time %q", value)
}

// LoadLocation loads a timezone by name, falling back to UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
