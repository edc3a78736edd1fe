package models

import "time"

type Division string

const (
	DivisionCuciOmpreng Division = "CUCI_OMPRENG"
	DivisionPengolahan  Division = "PENGOLAHAN"
	DivisionKeamanan    Division = "KEAMANAN"
	DivisionKebersihan  Division = "KEBERSIHAN"
	DivisionPersiapan   Division = "PERSIAPAN"
	DivisionPacking     Division = "PACKING"
	DivisionDistribusi  Division = "DISTRIBUSI"
	DivisionPurchasing  Division = "PURCHASING"
)

func (d Division) Valid() bool {
	switch d {
	case DivisionCuciOmpreng, DivisionPengolahan, DivisionKeamanan, DivisionKebersihan,
		DivisionPersiapan, DivisionPacking, DivisionDistribusi, DivisionPurchasing:
		return true
	}
	return false
}

type VolunteerStatus string

const (
	VolunteerActive   VolunteerStatus = "ACTIVE"
	VolunteerInactive VolunteerStatus = "INACTIVE"
)

type Volunteer struct {
	ID            string          `bson:"_id" json:"id"`
	Name          string          `bson:"name" json:"name"`
	Division      Division        `bson:"division" json:"division"`
	Phone         string          `bson:"phone" json:"phone"`
	Status        VolunteerStatus `bson:"status" json:"status"`
	JoinedAt      time.Time       `bson:"joinedAt" json:"joinedAt"`
	IsCoordinator bool            `bson:"isCoordinator" json:"isCoordinator"`
	UserID        string          `bson:"userId,omitempty" json:"userId,omitempty"`
}

func (v Volunteer) EntityID() string { return v.ID }
