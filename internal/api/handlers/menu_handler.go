// server/internal/api/handlers/menu_handler.go
package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sppg-kitchen-api-server/internal/clock"
	"sppg-kitchen-api-server/internal/export"
	"sppg-kitchen-api-server/internal/models"
	"sppg-kitchen-api-server/internal/store"
)

type MenuHandler struct {
	MenuPlans *store.Repository[models.MenuPlan]
	Clock     clock.Clock
	NewID     func() string
}

type IngredientRequest struct {
	Name     string  `json:"name" binding:"required"`
	Quantity float64 `json:"quantity" binding:"gt=0"`
	Unit     string  `json:"unit" binding:"required"`
}

type CreateMenuRequest struct {
	Name        string              `json:"name" binding:"required"`
	Portions    int                 `json:"portions" binding:"gt=0"`
	Date        string              `json:"date"` // YYYY-MM-DD, defaults to today
	Ingredients []IngredientRequest `json:"ingredients" binding:"required,min=1,dive"`
}

func (h *MenuHandler) ListMenus(c *gin.Context) {
	c.JSON(http.StatusOK, orEmpty(h.MenuPlans.List()))
}

func (h *MenuHandler) GetMenu(c *gin.Context) {
	plan, err := h.MenuPlans.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *MenuHandler) CreateMenu(c *gin.Context) {
	var req CreateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := h.Clock.Now()
	date := now
	if req.Date != "" {
		day, err := clock.ParseDay(req.Date, h.Clock.Location())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = day.Add(time.Duration(now.Hour())*time.Hour + time.Duration(now.Minute())*time.Minute)
	}

	ings := make([]models.Ingredient, len(req.Ingredients))
	for i, ing := range req.Ingredients {
		ings[i] = models.Ingredient{Name: strings.TrimSpace(ing.Name), Quantity: ing.Quantity, Unit: ing.Unit}
	}
	plan := models.MenuPlan{
		ID:          h.NewID(),
		Date:        date,
		Name:        strings.TrimSpace(req.Name),
		Portions:    req.Portions,
		Ingredients: ings,
		CreatedAt:   now,
		PerformedBy: actor(c),
	}
	if err := h.MenuPlans.Create(c.Request.Context(), plan); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *MenuHandler) DeleteMenu(c *gin.Context) {
	if _, err := h.MenuPlans.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu plan deleted successfully"})
}

func (h *MenuHandler) MenuPDF(c *gin.Context) {
	plan, err := h.MenuPlans.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	sendPDF(c, "Menu_"+strings.ReplaceAll(plan.Name, " ", "_")+".pdf", func(w io.Writer) error {
		return export.MenuPlan(w, plan, h.Clock.Location())
	})
}
