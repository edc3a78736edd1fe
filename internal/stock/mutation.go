// Package stock applies inventory mutations and produces their audit records.
package stock

import (
	"errors"
	"fmt"
	"math"
	"time"

	"sppg-kitchen-api-server/internal/models"
)

type Kind string

const (
	KindIn     Kind = "IN"
	KindOut    Kind = "OUT"
	KindOpname Kind = "OPNAME" // physical recount
)

const (
	notesManual = "Mutasi Manual"
	notesOpname = "Update Stok Opname"
)

var (
	ErrUnknownKind   = errors.New("unknown mutation type")
	ErrInvalidAmount = errors.New("invalid amount")
)

// Mutation is a requested change to one stock item.
type Mutation struct {
	Kind        Kind
	Amount      float64
	Notes       string
	PerformedBy string
}

// Apply computes the item after m and the transaction that records it.
// OUT never drives the quantity below zero and the transaction carries the
// quantity actually removed. OPNAME sets the counted quantity and records
// the difference as an IN or OUT.
func Apply(item models.StockItem, m Mutation, now time.Time, txID string) (models.StockItem, models.Transaction, error) {
	if math.IsNaN(m.Amount) || math.IsInf(m.Amount, 0) || m.Amount < 0 {
		return item, models.Transaction{}, fmt.Errorf("%w: %v", ErrInvalidAmount, m.Amount)
	}

	old := item.Quantity
	var (
		next    float64
		txType  models.TransactionType
		applied float64
		notes   = m.Notes
	)
	switch m.Kind {
	case KindIn:
		if m.Amount == 0 {
			return item, models.Transaction{}, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
		}
		next, txType, applied = old+m.Amount, models.TxIn, m.Amount
	case KindOut:
		if m.Amount == 0 {
			return item, models.Transaction{}, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
		}
		next = math.Max(0, old-m.Amount)
		txType, applied = models.TxOut, old-next
	case KindOpname:
		next, applied = m.Amount, math.Abs(m.Amount-old)
		txType = models.TxIn
		if m.Amount < old {
			txType = models.TxOut
		}
		if notes == "" {
			notes = notesOpname
		}
	default:
		return item, models.Transaction{}, fmt.Errorf("%w: %q", ErrUnknownKind, m.Kind)
	}
	if notes == "" {
		notes = notesManual
	}

	item.Quantity = next
	item.LastUpdated = now
	tx := models.Transaction{
		ID:          txID,
		ItemID:      item.ID,
		ItemName:    item.Name,
		Type:        txType,
		Quantity:    applied,
		Date:        now,
		Notes:       notes,
		PerformedBy: m.PerformedBy,
	}
	return item, tx, nil
}

// ParseKind accepts IN, OUT and OPNAME.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindIn, KindOut, KindOpname:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Critical returns the items at or below their threshold, optionally
// restricted to one item type.
func Critical(items []models.StockItem, only models.ItemType) []models.StockItem {
	var out []models.StockItem
	for _, it := range items {
		if only != "" && it.ItemType != only {
			continue
		}
		if it.Critical() {
			out = append(out, it)
		}
	}
	return out
}
