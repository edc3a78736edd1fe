// server/internal/api/handlers/procurement_handler.go
package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"sppg-kitchen-api-server/internal/clock"
	"sppg-kitchen-api-server/internal/export"
	"sppg-kitchen-api-server/internal/models"
	"sppg-kitchen-api-server/internal/procurement"
	"sppg-kitchen-api-server/internal/store"
)

type ProcurementHandler struct {
	Procurements *store.Repository[models.Procurement]
	MenuPlans    *store.Repository[models.MenuPlan]
	Stock        *store.Repository[models.StockItem]
	Photos       PhotoStore
	Clock        clock.Clock
	NewID        func() string
}

type ProcurementItemRequest struct {
	Name     string  `json:"name" binding:"required"`
	Quantity float64 `json:"quantity" binding:"gt=0"`
	Price    float64 `json:"price" binding:"min=0"`
	Unit     string  `json:"unit"`
}

type CreateProcurementRequest struct {
	Supplier      string                   `json:"supplier" binding:"required"`
	FundingSource models.FundingSource     `json:"fundingSource"`
	Items         []ProcurementItemRequest `json:"items" binding:"required,min=1,dive"`
}

type ProcurementFromMenuRequest struct {
	Supplier      string               `json:"supplier"`
	FundingSource models.FundingSource `json:"fundingSource"`
}

type EditProcurementRequest struct {
	Supplier *string  `json:"supplier"`
	Price    *float64 `json:"price"`
}

// ListProcurements supports ?status=.
func (h *ProcurementHandler) ListProcurements(c *gin.Context) {
	items := h.Procurements.List()
	if status := models.ProcurementStatus(c.Query("status")); status != "" {
		items = h.Procurements.Filter(func(p models.Procurement) bool { return p.Status == status })
	}
	c.JSON(http.StatusOK, orEmpty(items))
}

func (h *ProcurementHandler) GetProcurement(c *gin.Context) {
	p, err := h.Procurements.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProcurementHandler) CreateProcurement(c *gin.Context) {
	var req CreateProcurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items := make([]models.ProcurementItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = models.ProcurementItem{Name: it.Name, Quantity: it.Quantity, Price: it.Price, Unit: it.Unit}
	}
	p, err := procurement.New(h.NewID(), h.Clock.Now(), req.Supplier, items, req.FundingSource, h.Stock.List(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Procurements.Create(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// CreateFromMenu drafts an unpriced order with one line per menu ingredient.
func (h *ProcurementHandler) CreateFromMenu(c *gin.Context) {
	var req ProcurementFromMenuRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	menu, err := h.MenuPlans.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	supplier := req.Supplier
	if supplier == "" {
		supplier = "-"
	}
	p, err := procurement.New(h.NewID(), h.Clock.Now(), supplier, procurement.FromMenu(menu), req.FundingSource, h.Stock.List(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	p.SourceMenuID = menu.ID
	if err := h.Procurements.Create(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProcurementHandler) EditProcurement(c *gin.Context) {
	var req EditProcurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, _, err := h.Procurements.Update(c.Request.Context(), c.Param("id"), func(p models.Procurement) (models.Procurement, bool, error) {
		return procurement.Edit(p, req.Supplier, req.Price)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProcurementHandler) OrderProcurement(c *gin.Context) {
	p, applied, err := h.Procurements.Update(c.Request.Context(), c.Param("id"), func(p models.Procurement) (models.Procurement, bool, error) {
		next, ok := procurement.Order(p)
		return next, ok, nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied, "procurement": p})
}

// AttachInvoice takes a multipart "photo" of the supplier invoice.
func (h *ProcurementHandler) AttachInvoice(c *gin.Context) {
	id := c.Param("id")
	current, err := h.Procurements.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, _, err := procurement.AttachInvoice(current, "pending"); err != nil {
		respondError(c, err)
		return
	}
	url, err := savePhoto(c, h.Photos, "procurements", id, "invoice")
	if err != nil {
		respondPhotoError(c, err)
		return
	}
	p, _, err := h.Procurements.Update(c.Request.Context(), id, func(p models.Procurement) (models.Procurement, bool, error) {
		return procurement.AttachInvoice(p, url)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Receive takes a multipart "photo" of the delivered goods.
func (h *ProcurementHandler) Receive(c *gin.Context) {
	id := c.Param("id")
	now := h.Clock.Now()
	current, err := h.Procurements.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, _, err := procurement.Receive(current, "pending", now); err != nil {
		respondError(c, err)
		return
	}
	url, err := savePhoto(c, h.Photos, "procurements", id, "receipt")
	if err != nil {
		respondPhotoError(c, err)
		return
	}
	p, _, err := h.Procurements.Update(c.Request.Context(), id, func(p models.Procurement) (models.Procurement, bool, error) {
		return procurement.Receive(p, url, now)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProcurementHandler) DeleteProcurement(c *gin.Context) {
	if _, err := h.Procurements.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Procurement deleted successfully"})
}

func (h *ProcurementHandler) ProcurementReport(c *gin.Context) {
	now := h.Clock.Now()
	name := fmt.Sprintf("Pengadaan_%s.pdf", clock.Day(now, h.Clock.Location()))
	sendPDF(c, name, func(w io.Writer) error {
		return export.ProcurementReport(w, h.Procurements.List(), now, h.Clock.Location())
	})
}
