package models

import "time"

type DistributionStatus string

const (
	StatusPreparing  DistributionStatus = "PREPARING"
	StatusOnDelivery DistributionStatus = "ON_DELIVERY"
	StatusDelivered  DistributionStatus = "DELIVERED"
	StatusPickingUp  DistributionStatus = "PICKING_UP"
	StatusPickedUp   DistributionStatus = "PICKED_UP"
)

// Valid reports whether s is one of the five lifecycle states.
func (s DistributionStatus) Valid() bool {
	switch s {
	case StatusPreparing, StatusOnDelivery, StatusDelivered, StatusPickingUp, StatusPickedUp:
		return true
	}
	return false
}

// Distribution is one delivery of portions to a destination, from creation
// to container pickup.
type Distribution struct {
	ID               string             `bson:"_id" json:"id"`
	SerialNumber     string             `bson:"serialNumber" json:"serialNumber"`
	Destination      string             `bson:"destination" json:"destination"`
	RecipientName    string             `bson:"recipientName" json:"recipientName"`
	Portions         int                `bson:"portions" json:"portions"`
	DriverName       string             `bson:"driverName,omitempty" json:"driverName,omitempty"`
	PickupDriverName string             `bson:"pickupDriverName,omitempty" json:"pickupDriverName,omitempty"`
	Status           DistributionStatus `bson:"status" json:"status"`
	Timestamp        time.Time          `bson:"timestamp" json:"timestamp"`
	SentAt           *time.Time         `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	DeliveredAt      *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	PickupStartedAt  *time.Time         `bson:"pickupStartedAt,omitempty" json:"pickupStartedAt,omitempty"`
	PickedUpAt       *time.Time         `bson:"pickedUpAt,omitempty" json:"pickedUpAt,omitempty"`
	PhotoURL         string             `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	PickedUpCount    *int               `bson:"pickedUpCount,omitempty" json:"pickedUpCount,omitempty"`
	Location         *Location          `bson:"location,omitempty" json:"location,omitempty"`
	PerformedBy      string             `bson:"performedBy,omitempty" json:"performedBy,omitempty"`
}

func (d Distribution) EntityID() string { return d.ID }

// Destination is a delivery point (a school) with its postal address.
type Destination struct {
	Name    string `yaml:"name" json:"name"`
	Address string `yaml:"address" json:"address"`
}
