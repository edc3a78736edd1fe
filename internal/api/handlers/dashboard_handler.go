// server/internal/api/handlers/dashboard_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"sppg-kitchen-api-server/internal/activity"
	"sppg-kitchen-api-server/internal/models"
	"sppg-kitchen-api-server/internal/store"
)

type DashboardHandler struct {
	Stock          *store.Repository[models.StockItem]
	Transactions   *store.Repository[models.Transaction]
	MenuPlans      *store.Repository[models.MenuPlan]
	Procurements   *store.Repository[models.Procurement]
	Distributions  *store.Repository[models.Distribution]
	TargetPortions int
}

func (h *DashboardHandler) sources() activity.Sources {
	return activity.Sources{
		Stock:         h.Stock.List(),
		Transactions:  h.Transactions.List(),
		MenuPlans:     h.MenuPlans.List(),
		Procurements:  h.Procurements.List(),
		Distributions: h.Distributions.List(),
	}
}

func (h *DashboardHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, activity.Summarize(h.sources(), h.TargetPortions))
}

// Activities supports ?filter=ALL|LOCATIONS and ?limit=.
func (h *DashboardHandler) Activities(c *gin.Context) {
	filter := activity.Filter(strings.ToUpper(c.DefaultQuery("filter", string(activity.FilterAll))))
	if filter != activity.FilterAll && filter != activity.FilterLocations {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filter must be ALL or LOCATIONS"})
		return
	}
	feed := activity.Feed(h.sources(), filter)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		if n < len(feed) {
			feed = feed[:n]
		}
	}
	c.JSON(http.StatusOK, orEmpty(feed))
}

func (h *DashboardHandler) Gallery(c *gin.Context) {
	c.JSON(http.StatusOK, orEmpty(activity.Gallery(h.sources())))
}

// DeleteActivity removes the record an activity entry was derived from.
func (h *DashboardHandler) DeleteActivity(c *gin.Context) {
	kind, id := activity.Kind(strings.ToUpper(c.Param("type"))), c.Param("sourceId")
	ctx := c.Request.Context()
	var err error
	switch kind {
	case activity.KindMutation:
		_, err = h.Transactions.Delete(ctx, id)
	case activity.KindMenu:
		_, err = h.MenuPlans.Delete(ctx, id)
	case activity.KindProcurement:
		_, err = h.Procurements.Delete(ctx, id)
	case activity.KindDistribution:
		_, err = h.Distributions.Delete(ctx, id)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown activity type " + string(kind)})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Activity deleted successfully"})
}
