package distribution

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sppg-kitchen-api-server/internal/clock"
	"sppg-kitchen-api-server/internal/models"
)

var wib = clock.LoadLocation("Asia/Jakarta")

func fresh(at time.Time) models.Distribution {
	return models.Distribution{
		ID:            "d1",
		SerialNumber:  "001/SJ/MRTJSH/XI/2025",
		Destination:   "SDN MARTAJASAH",
		RecipientName: "PANITIA MBG",
		Portions:      120,
		Status:        models.StatusPreparing,
		Timestamp:     at,
	}
}

func TestLifecycle_FullPath(t *testing.T) {
	t0 := time.Date(2025, 11, 3, 7, 0, 0, 0, wib)
	d := fresh(t0)

	d, ok := StartDelivery(d, "Budi", t0.Add(10*time.Minute))
	require.True(t, ok)
	assert.Equal(t, models.StatusOnDelivery, d.Status)
	assert.Equal(t, "Budi", d.DriverName)

	d, ok = CaptureDelivery(d, "https://cdn/p.jpg", t0.Add(40*time.Minute))
	require.True(t, ok)
	assert.Equal(t, models.StatusDelivered, d.Status)
	assert.Equal(t, "https://cdn/p.jpg", d.PhotoURL)

	d, ok = SchedulePickup(d, "Sari", t0.Add(5*time.Hour))
	require.True(t, ok)
	assert.Equal(t, "Sari", d.PickupDriverName)

	d, ok = FinalizePickup(d, 118, t0.Add(6*time.Hour))
	require.True(t, ok)
	assert.Equal(t, models.StatusPickedUp, d.Status)
	require.NotNil(t, d.PickedUpCount)
	assert.Equal(t, 118, *d.PickedUpCount)

	assert.False(t, d.SentAt.After(*d.DeliveredAt))
	assert.False(t, d.DeliveredAt.After(*d.PickupStartedAt))
	assert.False(t, d.PickupStartedAt.After(*d.PickedUpAt))
}

func TestLifecycle_OutOfOrderIsNoop(t *testing.T) {
	t0 := time.Date(2025, 11, 3, 7, 0, 0, 0, wib)
	d := fresh(t0)

	cases := []struct {
		name string
		run  func(models.Distribution) (models.Distribution, bool)
	}{
		{"capture from preparing", func(d models.Distribution) (models.Distribution, bool) { return CaptureDelivery(d, "x.jpg", t0) }},
		{"pickup from preparing", func(d models.Distribution) (models.Distribution, bool) { return SchedulePickup(d, "Sari", t0) }},
		{"finalize from preparing", func(d models.Distribution) (models.Distribution, bool) { return FinalizePickup(d, 3, t0) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.run(d)
			assert.False(t, ok)
			if diff := cmp.Diff(d, got); diff != "" {
				t.Fatalf("record changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLifecycle_CaptureWithoutPhotoDoesNothing(t *testing.T) {
	t0 := time.Date(2025, 11, 3, 7, 0, 0, 0, wib)
	d, _ := StartDelivery(fresh(t0), "Budi", t0)

	got, ok := CaptureDelivery(d, "", t0.Add(time.Hour))
	assert.False(t, ok)
	assert.Equal(t, models.StatusOnDelivery, got.Status)
	assert.Nil(t, got.DeliveredAt)
}

func TestLifecycle_FinalizeTwiceIsNoop(t *testing.T) {
	t0 := time.Date(2025, 11, 3, 7, 0, 0, 0, wib)
	d, _ := StartDelivery(fresh(t0), "Budi", t0)
	d, _ = CaptureDelivery(d, "p.jpg", t0)
	d, _ = SchedulePickup(d, "Sari", t0)
	d, ok := FinalizePickup(d, 100, t0.Add(time.Hour))
	require.True(t, ok)

	again, ok := FinalizePickup(d, 5, t0.Add(2*time.Hour))
	assert.False(t, ok)
	assert.Equal(t, 100, *again.PickedUpCount)
	assert.Equal(t, *d.PickedUpAt, *again.PickedUpAt)
}

func TestLifecycle_NegativeCountRejected(t *testing.T) {
	t0 := time.Date(2025, 11, 3, 7, 0, 0, 0, wib)
	d, _ := StartDelivery(fresh(t0), "Budi", t0)
	d, _ = CaptureDelivery(d, "p.jpg", t0)
	d, _ = SchedulePickup(d, "Sari", t0)

	got, ok := FinalizePickup(d, -1, t0)
	assert.False(t, ok)
	assert.Equal(t, models.StatusPickingUp, got.Status)

	got, ok = FinalizePickup(d, 0, t0)
	assert.True(t, ok, "zero containers is a valid count")
	assert.Equal(t, 0, *got.PickedUpCount)
}

func TestLifecycle_TimestampsNeverGoBackwards(t *testing.T) {
	t0 := time.Date(2025, 11, 3, 7, 0, 0, 0, wib)
	d, _ := StartDelivery(fresh(t0), "Budi", t0.Add(time.Hour))
	// Clock stepped back by an NTP correction.
	d, ok := CaptureDelivery(d, "p.jpg", t0.Add(30*time.Minute))
	require.True(t, ok)
	assert.Equal(t, *d.SentAt, *d.DeliveredAt)
}

func TestStartDelivery_SentAtIsTheCallTime(t *testing.T) {
	planned := fresh(time.Date(2025, 11, 10, 7, 0, 0, 0, wib))
	now := time.Date(2025, 11, 3, 7, 0, 0, 0, wib)

	d, ok := StartDelivery(planned, "Budi", now)
	require.True(t, ok)
	require.NotNil(t, d.SentAt)
	assert.True(t, now.Equal(*d.SentAt), "sentAt = %s", d.SentAt)
}

func TestCheckDue(t *testing.T) {
	planned := fresh(time.Date(2025, 11, 10, 6, 30, 0, 0, wib))

	assert.ErrorIs(t, CheckDue(planned, time.Date(2025, 11, 3, 7, 0, 0, 0, wib), wib), ErrNotDue)
	assert.ErrorIs(t, CheckDue(planned, time.Date(2025, 11, 9, 23, 59, 0, 0, wib), wib), ErrNotDue)
	assert.NoError(t, CheckDue(planned, time.Date(2025, 11, 10, 0, 1, 0, 0, wib), wib))
	assert.NoError(t, CheckDue(planned, time.Date(2025, 11, 12, 8, 0, 0, 0, wib), wib), "late dispatch is allowed")

	// 2025-11-09 18:00 UTC is already the 10th in WIB.
	assert.NoError(t, CheckDue(planned, time.Date(2025, 11, 9, 18, 0, 0, 0, time.UTC), wib))

	started, _ := StartDelivery(fresh(time.Date(2025, 11, 3, 7, 0, 0, 0, wib)), "Budi", time.Date(2025, 11, 3, 7, 0, 0, 0, wib))
	started.Timestamp = planned.Timestamp
	assert.NoError(t, CheckDue(started, time.Date(2025, 11, 3, 8, 0, 0, 0, wib), wib), "only PREPARING records wait")
}

func TestNext(t *testing.T) {
	s := models.StatusPreparing
	var path []models.DistributionStatus
	for {
		n, ok := Next(s)
		if !ok {
			break
		}
		path = append(path, n)
		s = n
	}
	assert.Equal(t, []models.DistributionStatus{
		models.StatusOnDelivery, models.StatusDelivered, models.StatusPickingUp, models.StatusPickedUp,
	}, path)
}
