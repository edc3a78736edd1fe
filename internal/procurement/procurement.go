// Package procurement holds purchase-order rules: totals, unit lookup and
// the PENDING -> ORDERED -> RECEIVED flow with photo evidence.
package procurement

import (
	"errors"
	"strings"
	"time"

	"sppg-kitchen-api-server/internal/models"
)

const defaultUnit = "Unit"

var (
	ErrNoItems         = errors.New("at least one item is required")
	ErrInvalidItem     = errors.New("item needs a name and a positive quantity")
	ErrNegativePrice   = errors.New("price cannot be negative")
	ErrBadFunding      = errors.New("unknown funding source")
	ErrInvoiceRequired = errors.New("invoice photo must be captured before receiving")
	ErrNotOrdered      = errors.New("procurement is not in ORDERED state")
	ErrAlreadyReceived = errors.New("procurement already received")
)

// Total is the sum of quantity x unit price.
func Total(items []models.ProcurementItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Quantity * it.Price
	}
	return sum
}

// UnitFor looks up the unit of a stock item by case-insensitive name.
func UnitFor(stock []models.StockItem, name string) string {
	for _, s := range stock {
		if strings.EqualFold(strings.TrimSpace(s.Name), strings.TrimSpace(name)) && s.Unit != "" {
			return s.Unit
		}
	}
	return defaultUnit
}

// New builds a PENDING procurement, filling missing units from stock.
func New(id string, now time.Time, supplier string, items []models.ProcurementItem, funding models.FundingSource, stock []models.StockItem, by string) (models.Procurement, error) {
	if len(items) == 0 {
		return models.Procurement{}, ErrNoItems
	}
	if funding == "" {
		funding = models.FundingYayasan
	}
	if !funding.Valid() {
		return models.Procurement{}, ErrBadFunding
	}
	out := make([]models.ProcurementItem, len(items))
	for i, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" || it.Quantity <= 0 {
			return models.Procurement{}, ErrInvalidItem
		}
		if it.Price < 0 {
			return models.Procurement{}, ErrNegativePrice
		}
		if it.Unit == "" {
			it.Unit = UnitFor(stock, it.Name)
		}
		out[i] = it
	}
	return models.Procurement{
		ID:            id,
		Date:          now,
		Supplier:      strings.TrimSpace(supplier),
		Items:         out,
		Status:        models.ProcurementPending,
		FundingSource: funding,
		TotalPrice:    Total(out),
		PerformedBy:   by,
	}, nil
}

// FromMenu drafts one procurement line per menu ingredient, unpriced.
func FromMenu(menu models.MenuPlan) []models.ProcurementItem {
	items := make([]models.ProcurementItem, 0, len(menu.Ingredients))
	for _, ing := range menu.Ingredients {
		if ing.Quantity <= 0 {
			continue
		}
		items = append(items, models.ProcurementItem{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit})
	}
	return items
}

// Edit changes supplier and/or the unit price of every line and recomputes
// the total. Nil arguments leave the field alone.
func Edit(p models.Procurement, supplier *string, price *float64) (models.Procurement, bool, error) {
	changed := false
	if supplier != nil && strings.TrimSpace(*supplier) != p.Supplier {
		p.Supplier = strings.TrimSpace(*supplier)
		changed = true
	}
	if price != nil {
		if *price < 0 {
			return p, false, ErrNegativePrice
		}
		items := make([]models.ProcurementItem, len(p.Items))
		for i, it := range p.Items {
			if it.Price != *price {
				changed = true
			}
			it.Price = *price
			items[i] = it
		}
		p.Items = items
		p.TotalPrice = Total(items)
	}
	return p, changed, nil
}

// Order moves PENDING -> ORDERED. Other states are left as they are.
func Order(p models.Procurement) (models.Procurement, bool) {
	if p.Status != models.ProcurementPending {
		return p, false
	}
	p.Status = models.ProcurementOrdered
	return p, true
}

// AttachInvoice records the supplier invoice photo. A PENDING order becomes
// ORDERED at the same time.
func AttachInvoice(p models.Procurement, photoURL string) (models.Procurement, bool, error) {
	if p.Status == models.ProcurementReceived {
		return p, false, ErrAlreadyReceived
	}
	if photoURL == "" {
		return p, false, nil
	}
	p.InvoicePhotoURL = photoURL
	p.Status = models.ProcurementOrdered
	return p, true, nil
}

// Receive moves ORDERED -> RECEIVED with the goods photo. The invoice photo
// must already be on file; the receipt date becomes the procurement date.
func Receive(p models.Procurement, photoURL string, now time.Time) (models.Procurement, bool, error) {
	switch {
	case p.Status == models.ProcurementReceived:
		return p, false, ErrAlreadyReceived
	case p.Status != models.ProcurementOrdered:
		return p, false, ErrNotOrdered
	case p.InvoicePhotoURL == "":
		return p, false, ErrInvoiceRequired
	case photoURL == "":
		return p, false, nil
	}
	p.Status = models.ProcurementReceived
	p.PhotoURL = photoURL
	p.Date = now
	return p, true, nil
}
