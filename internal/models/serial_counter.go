package models

import "time"

// SerialCounter is the highest delivery-note sequence ever issued for one
// serial suffix ("/SJ/MRTJSH/XI/2025"). It outlives the records it numbered.
type SerialCounter struct {
	Suffix    string    `bson:"_id" json:"suffix"`
	Last      int       `bson:"last" json:"last"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (s SerialCounter) EntityID() string { return s.Suffix }
