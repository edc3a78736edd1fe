package distribution

import (
	"context"
	"time"

	"sppg-kitchen-api-server/internal/models"
	"sppg-kitchen-api-server/internal/store"
)

// SerialLedger keeps the per-month high-water mark of issued serial numbers.
// The zero value remembers nothing.
type SerialLedger struct {
	Counters *store.Repository[models.SerialCounter]
}

// LastIssued returns the highest sequence recorded for suffix, or 0.
func (l SerialLedger) LastIssued(suffix string) int {
	if l.Counters == nil {
		return 0
	}
	c, err := l.Counters.Get(suffix)
	if err != nil {
		return 0
	}
	return c.Last
}

// Record raises the marks to cover the serials of ds. Marks never go down.
func (l SerialLedger) Record(ctx context.Context, ds []models.Distribution, now time.Time) {
	if l.Counters == nil {
		return
	}
	highest := make(map[string]int)
	for _, d := range ds {
		if seq, suffix, ok := splitSerial(d.SerialNumber); ok && seq > highest[suffix] {
			highest[suffix] = seq
		}
	}
	for suffix, seq := range highest {
		if seq > l.LastIssued(suffix) {
			l.Counters.Put(ctx, models.SerialCounter{Suffix: suffix, Last: seq, UpdatedAt: now})
		}
	}
}
