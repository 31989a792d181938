package model

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Discovery struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerId    string    `gorm:"type:varchar(64);not null;index"`
	Name       string    `gorm:"type:varchar(255);not null"`
	Fact       string    `gorm:"type:text"`
	ImagePath  string    `gorm:"type:varchar(512);not null"`
	Category   string    `gorm:"type:varchar(32);not null;default:'Plant'"`
	CapturedAt int64     `gorm:"not null;index"`
	CreatedAt  int64     `gorm:"not null"`
	Meta       datatypes.JSON
}

func (Discovery) TableName() string {
	return "discoveries"
}
