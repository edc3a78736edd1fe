// server/internal/models/common.go
package models

// Location is an optional geotag attached to a record.
type Location struct {
	Lat     float64 `bson:"lat" json:"lat"`
	Lng     float64 `bson:"lng" json:"lng"`
	Address string  `bson:"address,omitempty" json:"address,omitempty"`
}

// Collection names, shared by the local mirror and the remote row store.
const (
	CollectionStock         = "stock"
	CollectionTransactions  = "transactions"
	CollectionMenuPlans     = "menu_plans"
	CollectionProcurements  = "procurements"
	CollectionDistributions = "distributions"
	CollectionUsers         = "users"
	CollectionVolunteers    = "volunteers"
	CollectionSerials       = "serial_counters"
)

// Collections lists every persisted collection in load order.
var Collections = []string{
	CollectionStock,
	CollectionTransactions,
	CollectionMenuPlans,
	CollectionProcurements,
	CollectionDistributions,
	CollectionUsers,
	CollectionVolunteers,
	CollectionSerials,
}
