package entity

import (
	"time"

	"gorm.io/gorm"
)

// Stock is a watchlist entry eligible for scheduled analysis.
type Stock struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Code      string         `gorm:"uniqueIndex;not null" json:"code"`
	Name      string         `gorm:"not null" json:"name"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Stock) TableName() string {
	return "stocks"
}
