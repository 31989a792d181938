package entity

import (
	"strings"

	"github.com/google/uuid"
)

// Category tags a discovery with the kind of subject that was captured.
type Category string

const (
	CategoryPlant  Category = "Plant"
	CategoryFlower Category = "Flower"
	CategoryTree   Category = "Tree"
	CategoryInsect Category = "Insect"
	CategoryOther  Category = "Other"

	// CategoryAll is a filter sentinel, never stored on a record.
	CategoryAll Category = "All"
)

// ParseCategory normalizes user input to a known category.
// Unknown or empty input falls back to CategoryPlant.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plant":
		return CategoryPlant
	case "flower":
		return CategoryFlower
	case "tree":
		return CategoryTree
	case "insect":
		return CategoryInsect
	case "other":
		return CategoryOther
	default:
		return CategoryPlant
	}
}

// IdentificationMeta records how a discovery was identified.
type IdentificationMeta struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
}

// Discovery is one identified capture in the journal. Only Category is
// mutable after insert; everything else is write-once.
type Discovery struct {
	Id         uuid.UUID
	OwnerId    string
	Name       string
	Fact       string
	ImagePath  string
	Category   Category
	CapturedAt int64 // epoch milliseconds, time of capture
	CreatedAt  int64 // epoch milliseconds, time of persistence
	Meta       *IdentificationMeta
}
