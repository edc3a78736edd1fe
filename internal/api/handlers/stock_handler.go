// server/internal/api/handlers/stock_handler.go
package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sppg-kitchen-api-server/internal/clock"
	"sppg-kitchen-api-server/internal/export"
	"sppg-kitchen-api-server/internal/metrics"
	"sppg-kitchen-api-server/internal/models"
	"sppg-kitchen-api-server/internal/stock"
	"sppg-kitchen-api-server/internal/store"
)

type StockHandler struct {
	Stock        *store.Repository[models.StockItem]
	Transactions *store.Repository[models.Transaction]
	Clock        clock.Clock
	NewID        func() string
	Metrics      *metrics.Metrics
}

type StockItemRequest struct {
	Name         string          `json:"name" binding:"required"`
	Category     string          `json:"category"`
	ItemType     models.ItemType `json:"itemType" binding:"required,oneof=BAHAN ALAT"`
	Quantity     float64         `json:"quantity" binding:"min=0"`
	Unit         string          `json:"unit" binding:"required"`
	MinThreshold float64         `json:"minThreshold" binding:"min=0"`
}

type MutationRequest struct {
	Type   string  `json:"type" binding:"required"`
	Amount float64 `json:"amount"`
	Notes  string  `json:"notes"`
}

// ListStock supports ?type=BAHAN|ALAT and ?critical=true.
func (h *StockHandler) ListStock(c *gin.Context) {
	itemType := models.ItemType(strings.ToUpper(c.Query("type")))
	items := h.Stock.List()
	if c.Query("critical") == "true" {
		items = stock.Critical(items, itemType)
	} else if itemType != "" {
		items = h.Stock.Filter(func(s models.StockItem) bool { return s.ItemType == itemType })
	}
	c.JSON(http.StatusOK, orEmpty(items))
}

func (h *StockHandler) GetStockItem(c *gin.Context) {
	item, err := h.Stock.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *StockHandler) CreateStockItem(c *gin.Context) {
	var req StockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item := models.StockItem{
		ID:           h.NewID(),
		Name:         strings.TrimSpace(req.Name),
		Category:     req.Category,
		ItemType:     req.ItemType,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		MinThreshold: req.MinThreshold,
		LastUpdated:  h.Clock.Now(),
	}
	if err := h.Stock.Create(c.Request.Context(), item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateStockItem edits the descriptive fields. Quantity only changes
// through mutations so that every change leaves a transaction.
func (h *StockHandler) UpdateStockItem(c *gin.Context) {
	var req StockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	now := h.Clock.Now()
	item, _, err := h.Stock.Update(c.Request.Context(), c.Param("id"), func(s models.StockItem) (models.StockItem, bool, error) {
		s.Name = strings.TrimSpace(req.Name)
		s.Category = req.Category
		s.ItemType = req.ItemType
		s.Unit = req.Unit
		s.MinThreshold = req.MinThreshold
		s.LastUpdated = now
		return s, true, nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *StockHandler) DeleteStockItem(c *gin.Context) {
	if _, err := h.Stock.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock item deleted successfully"})
}

// Mutate applies an IN, OUT or OPNAME to one item and records the transaction.
func (h *StockHandler) Mutate(c *gin.Context) {
	var req MutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, err := stock.ParseKind(strings.ToUpper(req.Type))
	if err != nil {
		respondError(c, err)
		return
	}
	m := stock.Mutation{Kind: kind, Amount: req.Amount, Notes: req.Notes, PerformedBy: actor(c)}

	now := h.Clock.Now()
	txID := h.NewID()
	var tx models.Transaction
	item, _, err := h.Stock.Update(c.Request.Context(), c.Param("id"), func(s models.StockItem) (models.StockItem, bool, error) {
		next, t, err := stock.Apply(s, m, now, txID)
		if err != nil {
			return s, false, err
		}
		tx = t
		return next, true, nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Transactions.Create(c.Request.Context(), tx); err != nil {
		respondError(c, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.StockMoves.WithLabelValues(string(kind)).Inc()
	}
	c.JSON(http.StatusOK, gin.H{"item": item, "transaction": tx})
}

// ListTransactions supports ?itemId=.
func (h *StockHandler) ListTransactions(c *gin.Context) {
	txs := h.Transactions.List()
	if itemID := c.Query("itemId"); itemID != "" {
		txs = h.Transactions.Filter(func(t models.Transaction) bool { return t.ItemID == itemID })
	}
	c.JSON(http.StatusOK, orEmpty(txs))
}

func (h *StockHandler) DeleteTransaction(c *gin.Context) {
	if _, err := h.Transactions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// StockReport renders the PDF report for ?type=BAHAN (default) or ALAT.
func (h *StockHandler) StockReport(c *gin.Context) {
	itemType := models.ItemType(strings.ToUpper(c.DefaultQuery("type", string(models.ItemBahan))))
	if itemType != models.ItemBahan && itemType != models.ItemAlat {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be BAHAN or ALAT"})
		return
	}
	now := h.Clock.Now()
	name := fmt.Sprintf("Stok_%s_%s.pdf", itemType, clock.Day(now, h.Clock.Location()))
	sendPDF(c, name, func(w io.Writer) error {
		return export.StockReport(w, h.Stock.List(), itemType, now, h.Clock.Location())
	})
}
