// Package activity builds the dashboard views: the merged activity feed,
// the delivery summary and the photo gallery.
package activity

import (
	"fmt"
	"sort"
	"time"

	"sppg-kitchen-api-server/internal/models"
)

type Kind string

const (
	KindMutation     Kind = "MUTASI"
	KindMenu         Kind = "MENU"
	KindProcurement  Kind = "PEMBELIAN"
	KindDistribution Kind = "DISTRIBUSI"
)

type Filter string

const (
	FilterAll       Filter = "ALL"
	FilterLocations Filter = "LOCATIONS"
)

// Entry is one line of the activity feed. SourceID is the id of the record
// it was derived from.
type Entry struct {
	Kind        Kind      `json:"type"`
	SourceID    string    `json:"sourceId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	PerformedBy string    `json:"performedBy,omitempty"`
	PhotoURL    string    `json:"photoUrl,omitempty"`
	Status      string    `json:"status,omitempty"`
}

// Sources is everything the dashboard reads.
type Sources struct {
	Stock         []models.StockItem
	Transactions  []models.Transaction
	MenuPlans     []models.MenuPlan
	Procurements  []models.Procurement
	Distributions []models.Distribution
}

// Feed merges all sources into one list, newest first.
func Feed(src Sources, filter Filter) []Entry {
	var out []Entry
	if filter != FilterLocations {
		for _, tx := range src.Transactions {
			verb := "Masuk"
			if tx.Type == models.TxOut {
				verb = "Keluar"
			}
			out = append(out, Entry{
				Kind:        KindMutation,
				SourceID:    tx.ID,
				Title:       fmt.Sprintf("Stok %s: %s", verb, tx.ItemName),
				Description: fmt.Sprintf("%s %g. %s", tx.Type, tx.Quantity, tx.Notes),
				Timestamp:   tx.Date,
				PerformedBy: tx.PerformedBy,
			})
		}
		for _, m := range src.MenuPlans {
			out = append(out, Entry{
				Kind:        KindMenu,
				SourceID:    m.ID,
				Title:       "Menu: " + m.Name,
				Description: fmt.Sprintf("%d porsi, %d bahan", m.Portions, len(m.Ingredients)),
				Timestamp:   m.CreatedAt,
				PerformedBy: m.PerformedBy,
			})
		}
		for _, p := range src.Procurements {
			if p.TotalPrice == 0 {
				continue
			}
			out = append(out, Entry{
				Kind:        KindProcurement,
				SourceID:    p.ID,
				Title:       "Pembelian: " + p.Supplier,
				Description: fmt.Sprintf("Rp %.0f (%s)", p.TotalPrice, p.FundingSource),
				Timestamp:   p.Date,
				PerformedBy: p.PerformedBy,
				PhotoURL:    p.PhotoURL,
				Status:      string(p.Status),
			})
		}
	}
	for _, d := range src.Distributions {
		if d.Status == models.StatusPreparing {
			continue
		}
		out = append(out, Entry{
			Kind:        KindDistribution,
			SourceID:    d.ID,
			Title:       "Distribusi: " + d.Destination,
			Description: fmt.Sprintf("%s, %d porsi, driver %s", d.SerialNumber, d.Portions, d.DriverName),
			Timestamp:   distributionTime(d),
			PerformedBy: d.DriverName,
			PhotoURL:    d.PhotoURL,
			Status:      string(d.Status),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func distributionTime(d models.Distribution) time.Time {
	switch {
	case d.DeliveredAt != nil:
		return *d.DeliveredAt
	case d.SentAt != nil:
		return *d.SentAt
	}
	return d.Timestamp
}

// Summary holds the dashboard headline numbers.
type Summary struct {
	PortionsDelivered  int                               `json:"portionsDelivered"`
	ContainersPickedUp int                               `json:"containersPickedUp"`
	TargetPortions     int                               `json:"targetPortions"`
	DeliveryPercentage float64                           `json:"deliveryPercentage"`
	CriticalStockItems int                               `json:"criticalStockItems"`
	ByStatus           map[models.DistributionStatus]int `json:"distributionsByStatus"`
}

// Summarize computes the headline numbers against target portions.
func Summarize(src Sources, target int) Summary {
	s := Summary{TargetPortions: target, ByStatus: map[models.DistributionStatus]int{}}
	for _, d := range src.Distributions {
		s.ByStatus[d.Status]++
		if d.Status != models.StatusPreparing && d.Status != models.StatusOnDelivery {
			s.PortionsDelivered += d.Portions
		}
		if d.PickedUpCount != nil {
			s.ContainersPickedUp += *d.PickedUpCount
		}
	}
	for _, it := range src.Stock {
		if it.Critical() {
			s.CriticalStockItems++
		}
	}
	if target > 0 {
		s.DeliveryPercentage = float64(s.PortionsDelivered) / float64(target) * 100
		if s.DeliveryPercentage > 100 {
			s.DeliveryPercentage = 100
		}
	}
	return s
}

// Photo is one gallery image.
type Photo struct {
	URL       string    `json:"url"`
	Caption   string    `json:"caption"`
	Kind      Kind      `json:"type"`
	SourceID  string    `json:"sourceId"`
	Timestamp time.Time `json:"timestamp"`
}

// Gallery collects every evidence photo, newest first.
func Gallery(src Sources) []Photo {
	var out []Photo
	for _, d := range src.Distributions {
		if d.PhotoURL == "" {
			continue
		}
		out = append(out, Photo{
			URL:       d.PhotoURL,
			Caption:   fmt.Sprintf("%s (%s)", d.Destination, d.SerialNumber),
			Kind:      KindDistribution,
			SourceID:  d.ID,
			Timestamp: distributionTime(d),
		})
	}
	for _, p := range src.Procurements {
		if p.PhotoURL != "" {
			out = append(out, Photo{URL: p.PhotoURL, Caption: "Barang diterima: " + p.Supplier, Kind: KindProcurement, SourceID: p.ID, Timestamp: p.Date})
		}
		if p.InvoicePhotoURL != "" {
			out = append(out, Photo{URL: p.InvoicePhotoURL, Caption: "Nota: " + p.Supplier, Kind: KindProcurement, SourceID: p.ID, Timestamp: p.Date})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}
