package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sppg-kitchen-api-server/internal/clock"
	"sppg-kitchen-api-server/internal/models"
	"sppg-kitchen-api-server/internal/store"
)

type procurementFixture struct {
	h      *ProcurementHandler
	photos *fakePhotos
	r      *gin.Engine
}

func newProcurementFixture(t *testing.T) *procurementFixture {
	t.Helper()
	photos := &fakePhotos{}
	h := &ProcurementHandler{
		Procurements: store.NewRepository[models.Procurement](models.CollectionProcurements),
		MenuPlans:    store.NewRepository[models.MenuPlan](models.CollectionMenuPlans),
		Stock:        store.NewRepository[models.StockItem](models.CollectionStock),
		Photos:       photos,
		Clock:        clock.NewFixed(time.Date(2025, 11, 3, 9, 0, 0, 0, wib)),
		NewID:        seqIDs("po"),
	}
	require.NoError(t, h.Stock.Create(context.Background(),
		models.StockItem{ID: "beras", Name: "Beras Premium", ItemType: models.ItemBahan, Quantity: 150, Unit: "kg", MinThreshold: 50},
	))

	r := gin.New()
	r.Use(as(adminClaims))
	r.GET("/procurements", h.ListProcurements)
	r.GET("/procurements/report", h.ProcurementReport)
	r.GET("/procurements/:id", h.GetProcurement)
	r.POST("/procurements", h.CreateProcurement)
	r.PATCH("/procurements/:id", h.EditProcurement)
	r.POST("/procurements/:id/order", h.OrderProcurement)
	r.POST("/procurements/:id/invoice", h.AttachInvoice)
	r.POST("/procurements/:id/receive", h.Receive)
	r.DELETE("/procurements/:id", h.DeleteProcurement)
	r.POST("/menus/:id/procurement", h.CreateFromMenu)
	return &procurementFixture{h: h, photos: photos, r: r}
}

func TestProcurement_CreateAndEdit(t *testing.T) {
	fx := newProcurementFixture(t)

	w := doJSON(t, fx.r, http.MethodPost, "/procurements", CreateProcurementRequest{
		Supplier: "UD Sumber Rejeki",
		Items: []ProcurementItemRequest{
			{Name: "beras premium", Quantity: 50, Price: 14000},
			{Name: "Wortel", Quantity: 10, Price: 8000, Unit: "kg"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[models.Procurement](t, w)
	assert.Equal(t, models.ProcurementPending, p.Status)
	assert.Equal(t, models.FundingYayasan, p.FundingSource)
	assert.Equal(t, "kg", p.Items[0].Unit, "unit comes from the matching stock item")
	assert.Equal(t, 780000.0, p.TotalPrice)
	assert.Equal(t, "aslap", p.PerformedBy)

	w = doJSON(t, fx.r, http.MethodPatch, "/procurements/"+p.ID, gin.H{"supplier": "CV Tani Makmur", "price": 10000})
	require.Equal(t, http.StatusOK, w.Code)
	p = decode[models.Procurement](t, w)
	assert.Equal(t, "CV Tani Makmur", p.Supplier)
	assert.Equal(t, 600000.0, p.TotalPrice)

	w = doJSON(t, fx.r, http.MethodPatch, "/procurements/"+p.ID, gin.H{"price": -5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, fx.r, http.MethodPost, "/procurements", CreateProcurementRequest{
		Supplier: "X", FundingSource: "HIBAH", Items: []ProcurementItemRequest{{Name: "Gula", Quantity: 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, fx.r, http.MethodPost, "/procurements", CreateProcurementRequest{Supplier: "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, fx.h.Procurements.Len())
}

func TestProcurement_FromMenu(t *testing.T) {
	fx := newProcurementFixture(t)
	require.NoError(t, fx.h.MenuPlans.Create(context.Background(), models.MenuPlan{
		ID: "menu-1", Name: "Nasi Ayam Goreng", Portions: 3000,
		Ingredients: []models.Ingredient{
			{Name: "Beras Premium", Quantity: 300, Unit: "kg"},
			{Name: "Daging Ayam", Quantity: 240, Unit: "kg"},
		},
	}))

	w := doJSON(t, fx.r, http.MethodPost, "/menus/menu-1/procurement", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[models.Procurement](t, w)
	assert.Equal(t, "menu-1", p.SourceMenuID)
	assert.Equal(t, "-", p.Supplier)
	require.Len(t, p.Items, 2)
	assert.Zero(t, p.TotalPrice)

	w = doJSON(t, fx.r, http.MethodPost, "/menus/menu-1/procurement", ProcurementFromMenuRequest{Supplier: "Pasar Induk", FundingSource: models.FundingOperasional})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.FundingOperasional, decode[models.Procurement](t, w).FundingSource)

	w = doJSON(t, fx.r, http.MethodPost, "/menus/nope/procurement", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProcurement_OrderInvoiceReceive(t *testing.T) {
	fx := newProcurementFixture(t)
	w := doJSON(t, fx.r, http.MethodPost, "/procurements", CreateProcurementRequest{
		Supplier: "UD Sumber Rejeki", Items: []ProcurementItemRequest{{Name: "Beras Premium", Quantity: 50, Price: 14000}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.Procurement](t, w).ID
	base := "/procurements/" + id

	w = doPhoto(t, fx.r, base+"/receive", []byte("goods"))
	assert.Equal(t, http.StatusConflict, w.Code, "a pending order cannot be received")

	w = doJSON(t, fx.r, http.MethodPost, base+"/order", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ordered := decode[struct {
		Applied     bool               `json:"applied"`
		Procurement models.Procurement `json:"procurement"`
	}](t, w)
	assert.True(t, ordered.Applied)
	assert.Equal(t, models.ProcurementOrdered, ordered.Procurement.Status)

	w = doJSON(t, fx.r, http.MethodPost, base+"/order", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"applied":false`)

	w = doPhoto(t, fx.r, base+"/receive", []byte("goods"))
	assert.Equal(t, http.StatusBadRequest, w.Code, "invoice photo comes first")
	assert.Zero(t, fx.photos.saved(), "nothing is uploaded for a rejected step")

	w = doPhoto(t, fx.r, base+"/invoice", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doPhoto(t, fx.r, base+"/invoice", []byte("nota"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, decode[models.Procurement](t, w).InvoicePhotoURL, "https://cdn.test/procurements/"+id+"/invoice-")

	fx.photos.err = errBucketDown
	w = doPhoto(t, fx.r, base+"/receive", []byte("goods"))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	fx.photos.err = nil

	w = doPhoto(t, fx.r, base+"/receive", []byte("goods"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	received := decode[models.Procurement](t, w)
	assert.Equal(t, models.ProcurementReceived, received.Status)
	assert.NotEmpty(t, received.PhotoURL)

	w = doPhoto(t, fx.r, base+"/receive", []byte("goods"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 2, fx.photos.saved())

	w = doJSON(t, fx.r, http.MethodGet, "/procurements?status=RECEIVED", nil)
	assert.Len(t, decode[[]models.Procurement](t, w), 1)
	w = doJSON(t, fx.r, http.MethodGet, "/procurements?status=PENDING", nil)
	assert.Empty(t, decode[[]models.Procurement](t, w))
}

func TestProcurement_ReportAndDelete(t *testing.T) {
	fx := newProcurementFixture(t)
	w := doJSON(t, fx.r, http.MethodPost, "/procurements", CreateProcurementRequest{
		Supplier: "UD Sumber Rejeki", Items: []ProcurementItemRequest{{Name: "Beras Premium", Quantity: 5, Price: 14000}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.Procurement](t, w).ID

	w = doJSON(t, fx.r, http.MethodGet, "/procurements/report", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Pengadaan_2025-11-03.pdf")

	w = doJSON(t, fx.r, http.MethodDelete, "/procurements/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, fx.r, http.MethodGet, "/procurements/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
