package specification

import (
	"gorm.io/gorm"
)

// OwnedBy scopes discoveries to a single owner.
type OwnedBy struct {
	OwnerID string
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner_id = ?", s.OwnerID)
}

// ByCategory filters by exact category.
type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category = ?", s.Category)
}

// CapturedAtDesc is the journal's default ordering, most recent capture first.
type CapturedAtDesc struct{}

func (s CapturedAtDesc) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("captured_at DESC")
}
