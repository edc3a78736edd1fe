package models

import "time"

type ItemType string

const (
	ItemBahan ItemType = "BAHAN" // ingredients
	ItemAlat  ItemType = "ALAT"  // equipment
)

type StockItem struct {
	ID           string    `bson:"_id" json:"id" yaml:"id"`
	Name         string    `bson:"name" json:"name" yaml:"name"`
	Category     string    `bson:"category" json:"category" yaml:"category"`
	ItemType     ItemType  `bson:"itemType" json:"itemType" yaml:"itemType"`
	Quantity     float64   `bson:"quantity" json:"quantity" yaml:"quantity"`
	Unit         string    `bson:"unit" json:"unit" yaml:"unit"`
	MinThreshold float64   `bson:"minThreshold" json:"minThreshold" yaml:"minThreshold"`
	LastUpdated  time.Time `bson:"lastUpdated" json:"lastUpdated" yaml:"-"`
}

func (s StockItem) EntityID() string { return s.ID }

// Critical reports whether the item is at or below its reorder threshold.
func (s StockItem) Critical() bool { return s.Quantity <= s.MinThreshold }

type TransactionType string

const (
	TxIn  TransactionType = "IN"
	TxOut TransactionType = "OUT"
)

// Transaction is an immutable audit record of one stock mutation.
type Transaction struct {
	ID          string          `bson:"_id" json:"id"`
	ItemID      string          `bson:"itemId" json:"itemId"`
	ItemName    string          `bson:"itemName" json:"itemName"`
	Type        TransactionType `bson:"type" json:"type"`
	Quantity    float64         `bson:"quantity" json:"quantity"`
	Date        time.Time       `bson:"date" json:"date"`
	Notes       string          `bson:"notes,omitempty" json:"notes,omitempty"`
	PerformedBy string          `bson:"performedBy,omitempty" json:"performedBy,omitempty"`
}

func (t Transaction) EntityID() string { return t.ID }
