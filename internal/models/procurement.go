package models

import "time"

type ProcurementStatus string

const (
	ProcurementPending  ProcurementStatus = "PENDING"
	ProcurementOrdered  ProcurementStatus = "ORDERED"
	ProcurementReceived ProcurementStatus = "RECEIVED"
)

type FundingSource string

const (
	FundingOperasional FundingSource = "OPERASIONAL"
	FundingYayasan     FundingSource = "YAYASAN"
)

func (f FundingSource) Valid() bool {
	return f == FundingOperasional || f == FundingYayasan
}

type ProcurementItem struct {
	Name     string  `bson:"name" json:"name"`
	Quantity float64 `bson:"quantity" json:"quantity"`
	Price    float64 `bson:"price" json:"price"`
	Unit     string  `bson:"unit" json:"unit"`
}

type Procurement struct {
	ID              string            `bson:"_id" json:"id"`
	Date            time.Time         `bson:"date" json:"date"`
	Supplier        string            `bson:"supplier" json:"supplier"`
	Items           []ProcurementItem `bson:"items" json:"items"`
	Status          ProcurementStatus `bson:"status" json:"status"`
	FundingSource   FundingSource     `bson:"fundingSource" json:"fundingSource"`
	TotalPrice      float64           `bson:"totalPrice" json:"totalPrice"`
	SourceMenuID    string            `bson:"sourceMenuId,omitempty" json:"sourceMenuId,omitempty"`
	PhotoURL        string            `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	InvoicePhotoURL string            `bson:"invoicePhotoUrl,omitempty" json:"invoicePhotoUrl,omitempty"`
	PerformedBy     string            `bson:"performedBy,omitempty" json:"performedBy,omitempty"`
}

func (p Procurement) EntityID() string { return p.ID }
