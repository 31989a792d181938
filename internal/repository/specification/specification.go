package specification

import "gorm.io/gorm"

// Specification is a composable query predicate. Repositories apply any
// number of them to a base query before executing.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
