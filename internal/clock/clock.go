// Package clock provides the time source and the civil-day rules used for
// distribution bookkeeping. Every "today" in the system is a day in the
// kitchen's local zone, not the server's.
package clock

import (
	"sync"
	"time"
)

const DayLayout = "2006-01-02"

// Clock is an injectable time source bound to a civil time zone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// LoadLocation resolves a zone name, falling back to WIB (UTC+7) when the
// host has no tz database.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = "Asia/Jakarta"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

type system struct {
	loc *time.Location
}

// New returns the wall clock in loc.
func New(loc *time.Location) Clock {
	return system{loc: loc}
}

func (s system) Now() time.Time           { return time.Now().In(s.loc) }
func (s system) Location() *time.Location { return s.loc }

// Fixed is a manually advanced clock for tests and replays.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
	loc *time.Location
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now, loc: now.Location()}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Location() *time.Location { return f.loc }

func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Day returns the civil date of t in loc as YYYY-MM-DD.
func Day(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// ParseDay parses YYYY-MM-DD as midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, loc)
}

// SameDay reports whether a and b fall on the same civil date in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return Day(a, loc) == Day(b, loc)
}
