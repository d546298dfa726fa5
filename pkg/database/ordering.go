package database

import (
	"fmt"

	"gorm.io/gorm"
)

// NextSortOrder returns the slot after the highest sort_order in table where
// scopeColumn = scopeID. An empty scope starts at 1.
func NextSortOrder(tx *gorm.DB, table, scopeColumn string, scopeID interface{}) (int, error) {
	var next int
	err := tx.Table(table).
		Select("COALESCE(MAX(sort_order), 0) + 1").
		Where(fmt.Sprintf("%s = ?", scopeColumn), scopeID).
		Row().
		Scan(&next)
	return next, err
}
