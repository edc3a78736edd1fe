// Package distribution implements the delivery lifecycle, serial numbering
// and the one-delivery-per-destination-per-day rule. Apart from SerialLedger
// everything here is pure: callers pass the current record set and the time,
// and persist the result.
package distribution

import (
	"errors"
	"time"

	"sppg-kitchen-api-server/internal/clock"
	"sppg-kitchen-api-server/internal/models"
)

// ErrNotDue refuses to dispatch a delivery planned for a later day.
var ErrNotDue = errors.New("distribution is planned for a later day")

// CheckDue reports ErrNotDue when d is still PREPARING and its planned civil
// day in loc is after the day of now.
func CheckDue(d models.Distribution, now time.Time, loc *time.Location) error {
	if d.Status != models.StatusPreparing {
		return nil
	}
	if clock.Day(now, loc) < clock.Day(d.Timestamp, loc) {
		return ErrNotDue
	}
	return nil
}

// Each transition returns the updated record and whether it applied. A call
// made from any status other than the transition's predecessor returns the
// record unchanged and false.

// StartDelivery moves PREPARING -> ON_DELIVERY. sentAt is now as given;
// callers use CheckDue to keep future-dated records waiting.
func StartDelivery(d models.Distribution, driver string, now time.Time) (models.Distribution, bool) {
	if d.Status != models.StatusPreparing {
		return d, false
	}
	at := now
	d.Status = models.StatusOnDelivery
	d.SentAt = &at
	d.DriverName = driver
	return d, true
}

// CaptureDelivery moves ON_DELIVERY -> DELIVERED. Without a photo there is
// no evidence and nothing happens.
func CaptureDelivery(d models.Distribution, photoURL string, now time.Time) (models.Distribution, bool) {
	if d.Status != models.StatusOnDelivery || photoURL == "" {
		return d, false
	}
	at := stamp(now, deref(d.SentAt, now))
	d.Status = models.StatusDelivered
	d.DeliveredAt = &at
	d.PhotoURL = photoURL
	return d, true
}

// SchedulePickup moves DELIVERED -> PICKING_UP.
func SchedulePickup(d models.Distribution, driver string, now time.Time) (models.Distribution, bool) {
	if d.Status != models.StatusDelivered {
		return d, false
	}
	at := stamp(now, deref(d.DeliveredAt, now))
	d.Status = models.StatusPickingUp
	d.PickupStartedAt = &at
	d.PickupDriverName = driver
	return d, true
}

// FinalizePickup moves PICKING_UP -> PICKED_UP, recording how many
// containers came back. Negative counts are refused.
func FinalizePickup(d models.Distribution, count int, now time.Time) (models.Distribution, bool) {
	if d.Status != models.StatusPickingUp || count < 0 {
		return d, false
	}
	at := stamp(now, deref(d.PickupStartedAt, now))
	d.Status = models.StatusPickedUp
	d.PickedUpAt = &at
	d.PickedUpCount = &count
	return d, true
}

// Next returns the status a record moves to from s, and false for the
// terminal state.
func Next(s models.DistributionStatus) (models.DistributionStatus, bool) {
	switch s {
	case models.StatusPreparing:
		return models.StatusOnDelivery, true
	case models.StatusOnDelivery:
		return models.StatusDelivered, true
	case models.StatusDelivered:
		return models.StatusPickingUp, true
	case models.StatusPickingUp:
		return models.StatusPickedUp, true
	}
	return "", false
}

// stamp keeps lifecycle timestamps non-decreasing even if the clock steps back.
func stamp(now, prev time.Time) time.Time {
	if now.Before(prev) {
		return prev
	}
	return now
}

func deref(t *time.Time, fallback time.Time) time.Time {
	if t == nil {
		return fallback
	}
	return *t
}
