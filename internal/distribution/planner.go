package distribution

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"sppg-kitchen-api-server/internal/clock"
	"sppg-kitchen-api-server/internal/models"
)

var (
	ErrEmptyBatch       = errors.New("no destinations selected")
	ErrMissingRecipient = errors.New("recipient name is required")
	ErrBadDestination   = errors.New("destination name is required")
	ErrBadPortions      = errors.New("portions must be positive")
	ErrRepeated         = errors.New("destination listed twice")
)

// DuplicateDestinationError rejects a batch because some destinations
// already have a delivery on that day.
type DuplicateDestinationError struct {
	Day          string
	Destinations []string
}

func (e *DuplicateDestinationError) Error() string {
	return fmt.Sprintf("destinations already scheduled on %s: %s", e.Day, strings.Join(e.Destinations, ", "))
}

// Allocation is one destination and its portion count in a bulk request.
type Allocation struct {
	Destination string
	Portions    int
}

// Batch is a bulk creation request. Items are numbered in the given order.
type Batch struct {
	Items         []Allocation
	RecipientName string
	PerformedBy   string
	// Day is the target civil day; the zero value means today.
	Day time.Time
}

// Planner turns a Batch into new PREPARING distributions.
type Planner struct {
	Clock clock.Clock
	NewID func() string

	// LastIssued reports the highest sequence ever issued for a serial
	// suffix. Nil means only the records in existing count.
	LastIssued func(suffix string) int
}

// Plan validates b against the existing records and returns the records to
// insert. It either plans the whole batch or returns an error; callers run it
// inside the repository lock so the guard and the numbering see the same view.
func (p Planner) Plan(existing []models.Distribution, b Batch) ([]models.Distribution, error) {
	loc := p.Clock.Location()
	now := p.Clock.Now().In(loc)

	if len(b.Items) == 0 {
		return nil, ErrEmptyBatch
	}
	recipient := strings.TrimSpace(b.RecipientName)
	if recipient == "" {
		return nil, ErrMissingRecipient
	}

	createdAt := now
	if !b.Day.IsZero() && !clock.SameDay(b.Day, now, loc) {
		day := b.Day.In(loc)
		createdAt = time.Date(day.Year(), day.Month(), day.Day(), now.Hour(), now.Minute(), now.Second(), 0, loc)
	}

	seen := make(map[string]struct{}, len(b.Items))
	for _, it := range b.Items {
		key := destinationKey(it.Destination)
		if key == "" {
			return nil, ErrBadDestination
		}
		if it.Portions <= 0 {
			return nil, fmt.Errorf("%s: %w", it.Destination, ErrBadPortions)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%s: %w", strings.TrimSpace(it.Destination), ErrRepeated)
		}
		seen[key] = struct{}{}
	}

	if conflicts := Conflicts(existing, b.Items, createdAt, loc); len(conflicts) > 0 {
		return nil, &DuplicateDestinationError{Day: clock.Day(createdAt, loc), Destinations: conflicts}
	}

	floor := 0
	if p.LastIssued != nil {
		floor = p.LastIssued(SerialSuffix(createdAt, loc))
	}
	serials := NextSerialsAfter(existing, floor, createdAt, loc, len(b.Items))
	out := make([]models.Distribution, len(b.Items))
	for i, it := range b.Items {
		out[i] = models.Distribution{
			ID:            p.NewID(),
			SerialNumber:  serials[i],
			Destination:   strings.TrimSpace(it.Destination),
			RecipientName: recipient,
			Portions:      it.Portions,
			Status:        models.StatusPreparing,
			Timestamp:     createdAt,
			PerformedBy:   b.PerformedBy,
		}
	}
	return out, nil
}

// Canonical returns the catalogue spelling of name when a known destination
// matches it ignoring case and surrounding space, and name trimmed otherwise.
func Canonical(name string, known []models.Destination) string {
	key := destinationKey(name)
	for _, d := range known {
		if destinationKey(d.Name) == key {
			return d.Name
		}
	}
	return strings.TrimSpace(name)
}

// Conflicts lists the requested destinations that already have a
// distribution on the civil day of t, in request order.
func Conflicts(existing []models.Distribution, items []Allocation, t time.Time, loc *time.Location) []string {
	day := clock.Day(t, loc)
	taken := make(map[string]struct{})
	for _, d := range existing {
		if clock.Day(d.Timestamp, loc) == day {
			taken[destinationKey(d.Destination)] = struct{}{}
		}
	}
	var out []string
	for _, it := range items {
		if _, ok := taken[destinationKey(it.Destination)]; ok {
			out = append(out, strings.TrimSpace(it.Destination))
		}
	}
	return out
}

// ScheduledOn returns the distributions whose creation falls on the civil day
// of t.
func ScheduledOn(existing []models.Distribution, t time.Time, loc *time.Location) []models.Distribution {
	day := clock.Day(t, loc)
	var out []models.Distribution
	for _, d := range existing {
		if clock.Day(d.Timestamp, loc) == day {
			out = append(out, d)
		}
	}
	return out
}

func destinationKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
