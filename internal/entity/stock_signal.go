package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type StockSignal struct {
	ID            int64          `json:"id"`
	StockCode     string         `json:"stock_code"`
	Signal        string         `json:"signal"`
	BuyPercentage int            `json:"buy_percentage"`
	Confidence    float64        `json:"confidence"`
	EODMovement   *float64       `json:"eod_movement,omitempty"`
	Reasoning     string         `gorm:"type:text" json:"reasoning"`
	KeyPoints     pq.StringArray `gorm:"type:text[]" json:"key_points"`
	TechnicalBars int            `json:"technical_bars"`
	Data          datatypes.JSON `gorm:"type:jsonb" json:"data"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"deleted_at"`
}

func (StockSignal) TableName() string {
	return "stock_signals"
}
