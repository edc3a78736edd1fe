package database

import (
	"fmt"
	"slices"

	"sppg-kitchen-api-server/internal/models"
)

// checkTable refuses anything that is not a known collection. Table names
// end up in SQL text, so this is the only gate against injection.
func checkTable(table string) error {
	if !slices.Contains(models.Collections, table) {
		return fmt.Errorf("unknown table %q", table)
	}
	return nil
}
