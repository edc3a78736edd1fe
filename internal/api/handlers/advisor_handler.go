// server/internal/api/handlers/advisor_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sppg-kitchen-api-server/internal/advisor"
	"sppg-kitchen-api-server/internal/models"
	"sppg-kitchen-api-server/internal/store"
)

type AdvisorHandler struct {
	Advisor *advisor.Advisor
	Stock   *store.Repository[models.StockItem]
}

func (h *AdvisorHandler) respond(c *gin.Context, err error) {
	if errors.Is(err, advisor.ErrDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusBadGateway, gin.H{"error": "Gagal mendapatkan jawaban AI"})
}

func (h *AdvisorHandler) MenuRecommendation(c *gin.Context) {
	ans, err := h.Advisor.MenuRecommendation(c.Request.Context(), h.Stock.List())
	if err != nil {
		h.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, ans)
}

func (h *AdvisorHandler) StockAnalysis(c *gin.Context) {
	text, err := h.Advisor.AnalyzeStock(c.Request.Context(), h.Stock.List())
	if err != nil {
		h.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}
