package models

import "time"

type Ingredient struct {
	Name     string  `bson:"name" json:"name"`
	Quantity float64 `bson:"quantity" json:"quantity"`
	Unit     string  `bson:"unit" json:"unit"`
}

type MenuPlan struct {
	ID          string       `bson:"_id" json:"id"`
	Date        time.Time    `bson:"date" json:"date"`
	Name        string       `bson:"name" json:"name"`
	Portions    int          `bson:"portions" json:"portions"`
	Ingredients []Ingredient `bson:"ingredients" json:"ingredients"`
	CreatedAt   time.Time    `bson:"createdAt" json:"createdAt"`
	PerformedBy string       `bson:"performedBy,omitempty" json:"performedBy,omitempty"`
}

func (m MenuPlan) EntityID() string { return m.ID }
