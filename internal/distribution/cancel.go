package distribution

import (
	"fmt"

	"sppg-kitchen-api-server/internal/models"
)

// CancelPolicy decides which distributions may be cancelled (deleted) by
// operators with the distribute permission. Administrators bypass it.
type CancelPolicy string

const (
	CancelWhilePreparing  CancelPolicy = "preparing"
	CancelBeforeDelivered CancelPolicy = "before-evidence"
	CancelAnytime         CancelPolicy = "anytime"
)

func ParseCancelPolicy(s string) (CancelPolicy, error) {
	switch p := CancelPolicy(s); p {
	case CancelWhilePreparing, CancelBeforeDelivered, CancelAnytime:
		return p, nil
	case "":
		return CancelWhilePreparing, nil
	}
	return "", fmt.Errorf("unknown cancel policy %q", s)
}

// Allows reports whether d may be cancelled under p.
func (p CancelPolicy) Allows(d models.Distribution) bool {
	switch p {
	case CancelAnytime:
		return true
	case CancelBeforeDelivered:
		return d.Status == models.StatusPreparing || d.Status == models.StatusOnDelivery
	default:
		return d.Status == models.StatusPreparing
	}
}
