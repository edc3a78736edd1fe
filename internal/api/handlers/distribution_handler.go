// server/internal/api/handlers/distribution_handler.go
package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sppg-kitchen-api-server/internal/api/middleware"
	"sppg-kitchen-api-server/internal/clock"
	"sppg-kitchen-api-server/internal/distribution"
	"sppg-kitchen-api-server/internal/export"
	"sppg-kitchen-api-server/internal/metrics"
	"sppg-kitchen-api-server/internal/models"
	"sppg-kitchen-api-server/internal/store"
)

type DistributionHandler struct {
	Distributions *store.Repository[models.Distribution]
	Destinations  []models.Destination
	Planner       distribution.Planner
	Serials       distribution.SerialLedger
	CancelPolicy  distribution.CancelPolicy
	// RecipientName is used when a bulk request names none.
	RecipientName string
	Photos        PhotoStore
	Metrics       *metrics.Metrics
	Log           *zap.Logger
}

type AllocationRequest struct {
	Destination string `json:"destination" binding:"required"`
	Portions    int    `json:"portions"`
}

type BulkDistributionRequest struct {
	Items         []AllocationRequest `json:"items" binding:"required,dive"`
	RecipientName string              `json:"recipientName"`
	Date          string              `json:"date"` // YYYY-MM-DD, defaults to today
}

type FinalizePickupRequest struct {
	PickedUpCount *int `json:"pickedUpCount" binding:"required"`
}

func (h *DistributionHandler) loc() *time.Location { return h.Planner.Clock.Location() }

// day resolves ?date= (or today) in the kitchen's time zone.
func (h *DistributionHandler) day(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return h.Planner.Clock.Now(), true
	}
	t, err := clock.ParseDay(raw, h.loc())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}

// ListDistributions supports ?date=YYYY-MM-DD, ?status= and ?all=true.
func (h *DistributionHandler) ListDistributions(c *gin.Context) {
	items := h.Distributions.List()
	if c.Query("all") != "true" {
		day, ok := h.day(c)
		if !ok {
			return
		}
		items = distribution.ScheduledOn(items, day, h.loc())
	}
	if status := models.DistributionStatus(strings.ToUpper(c.Query("status"))); status != "" {
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + string(status)})
			return
		}
		kept := items[:0:0]
		for _, d := range items {
			if d.Status == status {
				kept = append(kept, d)
			}
		}
		items = kept
	}
	c.JSON(http.StatusOK, orEmpty(items))
}

func (h *DistributionHandler) GetDistribution(c *gin.Context) {
	d, err := h.Distributions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// CreateBulk creates one PREPARING distribution per requested destination.
// The batch is all-or-nothing.
func (h *DistributionHandler) CreateBulk(c *gin.Context) {
	var req BulkDistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	batch := distribution.Batch{
		RecipientName: req.RecipientName,
		PerformedBy:   actor(c),
		Items:         make([]distribution.Allocation, len(req.Items)),
	}
	if batch.RecipientName == "" {
		batch.RecipientName = h.RecipientName
	}
	for i, it := range req.Items {
		batch.Items[i] = distribution.Allocation{Destination: distribution.Canonical(it.Destination, h.Destinations), Portions: it.Portions}
	}
	if req.Date != "" {
		day, err := clock.ParseDay(req.Date, h.loc())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		batch.Day = day
	}

	ctx := c.Request.Context()
	created, err := h.Distributions.CreateWith(ctx, func(existing []models.Distribution) ([]models.Distribution, error) {
		planned, err := h.Planner.Plan(existing, batch)
		if err != nil {
			return nil, err
		}
		h.Serials.Record(ctx, planned, h.Planner.Clock.Now())
		return planned, nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.Log.Info("distributions created",
		zap.Int("count", len(created)),
		zap.String("first", created[0].SerialNumber),
		zap.String("by", batch.PerformedBy))
	c.JSON(http.StatusCreated, created)
}

// transition applies step to the record and answers with the outcome. An
// out-of-order request is not an error: applied is false and the record is
// returned unchanged.
func (h *DistributionHandler) transition(c *gin.Context, id string, step func(models.Distribution) (models.Distribution, bool)) {
	h.guardedTransition(c, id, nil, step)
}

// guardedTransition is transition with a check run against the stored record
// first; a guard error is the response and nothing changes.
func (h *DistributionHandler) guardedTransition(c *gin.Context, id string, guard func(models.Distribution) error, step func(models.Distribution) (models.Distribution, bool)) {
	d, applied, err := h.Distributions.Update(c.Request.Context(), id, func(d models.Distribution) (models.Distribution, bool, error) {
		if guard != nil {
			if err := guard(d); err != nil {
				return d, false, err
			}
		}
		next, ok := step(d)
		return next, ok, nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if applied && h.Metrics != nil {
		h.Metrics.Transitions.WithLabelValues(string(d.Status)).Inc()
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied, "distribution": d})
}

// driverName is the acting user's display name.
func driverName(c *gin.Context) string {
	if claims, ok := middleware.Claims(c); ok {
		if claims.FullName != "" {
			return claims.FullName
		}
		return claims.Username
	}
	return ""
}

func (h *DistributionHandler) StartDelivery(c *gin.Context) {
	driver, now := driverName(c), h.Planner.Clock.Now()
	due := func(d models.Distribution) error { return distribution.CheckDue(d, now, h.loc()) }
	h.guardedTransition(c, c.Param("id"), due, func(d models.Distribution) (models.Distribution, bool) {
		return distribution.StartDelivery(d, driver, now)
	})
}

// CaptureDelivery takes the delivery evidence as a multipart "photo". A
// failed capture leaves the record untouched.
func (h *DistributionHandler) CaptureDelivery(c *gin.Context) {
	id := c.Param("id")
	current, err := h.Distributions.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if current.Status != models.StatusOnDelivery {
		c.JSON(http.StatusOK, gin.H{"applied": false, "distribution": current})
		return
	}
	url, err := savePhoto(c, h.Photos, "distributions", id, "delivery")
	if err != nil {
		h.Log.Warn("delivery capture failed", zap.String("id", id), zap.Error(err))
		respondPhotoError(c, err)
		return
	}
	now := h.Planner.Clock.Now()
	h.transition(c, id, func(d models.Distribution) (models.Distribution, bool) {
		return distribution.CaptureDelivery(d, url, now)
	})
}

func (h *DistributionHandler) SchedulePickup(c *gin.Context) {
	driver, now := driverName(c), h.Planner.Clock.Now()
	h.transition(c, c.Param("id"), func(d models.Distribution) (models.Distribution, bool) {
		return distribution.SchedulePickup(d, driver, now)
	})
}

func (h *DistributionHandler) FinalizePickup(c *gin.Context) {
	var req FinalizePickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pickedUpCount is required"})
		return
	}
	if *req.PickedUpCount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pickedUpCount cannot be negative"})
		return
	}
	count, now := *req.PickedUpCount, h.Planner.Clock.Now()
	h.transition(c, c.Param("id"), func(d models.Distribution) (models.Distribution, bool) {
		return distribution.FinalizePickup(d, count, now)
	})
}

// CancelDistribution deletes a record. Operators are bound by the cancel
// policy; administrators are not.
func (h *DistributionHandler) CancelDistribution(c *gin.Context) {
	id := c.Param("id")
	claims, _ := middleware.Claims(c)
	isAdmin := claims != nil && claims.Role == models.RoleAdmin

	var refused *models.Distribution
	removed := h.Distributions.DeleteIf(c.Request.Context(), func(d models.Distribution) bool {
		if d.ID != id {
			return false
		}
		if !isAdmin && !h.CancelPolicy.Allows(d) {
			refused = &d
			return false
		}
		return true
	})
	switch {
	case refused != nil:
		c.JSON(http.StatusConflict, gin.H{
			"error":  fmt.Sprintf("distribution in status %s cannot be cancelled", refused.Status),
			"policy": h.CancelPolicy,
		})
	case len(removed) == 0:
		c.JSON(http.StatusNotFound, gin.H{"error": "Distribution not found"})
	default:
		h.Log.Info("distribution cancelled", zap.String("serial", removed[0].SerialNumber), zap.String("by", actor(c)))
		c.JSON(http.StatusOK, gin.H{"message": "Distribution cancelled", "distribution": removed[0]})
	}
}

// ClearHistory removes every completed (PICKED_UP) distribution.
func (h *DistributionHandler) ClearHistory(c *gin.Context) {
	removed := h.Distributions.DeleteIf(c.Request.Context(), func(d models.Distribution) bool {
		return d.Status == models.StatusPickedUp
	})
	h.Log.Info("distribution history cleared", zap.Int("removed", len(removed)), zap.String("by", actor(c)))
	c.JSON(http.StatusOK, gin.H{"removed": len(removed)})
}

// DeliveryNotes renders the Surat Jalan PDF for ?date= (default today), or
// for ?ids=a,b,c in that order.
func (h *DistributionHandler) DeliveryNotes(c *gin.Context) {
	var (
		items []models.Distribution
		label string
	)
	if raw := c.Query("ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			d, err := h.Distributions.Get(strings.TrimSpace(id))
			if err != nil {
				respondError(c, err)
				return
			}
			items = append(items, d)
		}
		label = clock.Day(h.Planner.Clock.Now(), h.loc())
	} else {
		day, ok := h.day(c)
		if !ok {
			return
		}
		items = distribution.BySerial(distribution.ScheduledOn(h.Distributions.List(), day, h.loc()))
		label = clock.Day(day, h.loc())
	}
	opts := export.NoteOptions{Addresses: h.addresses(), Location: h.loc()}
	sendPDF(c, "Surat_Jalan_"+label+".pdf", func(w io.Writer) error {
		return export.DeliveryNotes(w, items, opts)
	})
}

func (h *DistributionHandler) addresses() map[string]string {
	m := make(map[string]string, len(h.Destinations))
	for _, d := range h.Destinations {
		m[d.Name] = d.Address
	}
	return m
}

type destinationView struct {
	models.Destination
	Scheduled bool `json:"scheduled"`
}

// ListDestinations returns the reference destinations, each flagged when it
// already has a distribution on ?date= (default today).
func (h *DistributionHandler) ListDestinations(c *gin.Context) {
	day, ok := h.day(c)
	if !ok {
		return
	}
	existing := h.Distributions.List()
	out := make([]destinationView, len(h.Destinations))
	for i, d := range h.Destinations {
		conflicts := distribution.Conflicts(existing, []distribution.Allocation{{Destination: d.Name, Portions: 1}}, day, h.loc())
		out[i] = destinationView{Destination: d, Scheduled: len(conflicts) > 0}
	}
	c.JSON(http.StatusOK, out)
}
