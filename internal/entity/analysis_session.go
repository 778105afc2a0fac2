package entity

import (
	"time"

	"gorm.io/datatypes"
)

// AnalysisSession is the persisted snapshot of a panel: the accumulated log
// entries and the final result of the most recent run. A stored session lets
// a panel be reopened without re-invoking the analysis engine.
type AnalysisSession struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	StockCode string         `gorm:"uniqueIndex;not null" json:"stock_code"`
	State     string         `gorm:"type:varchar(20);not null" json:"state"`
	Logs      datatypes.JSON `gorm:"type:jsonb" json:"logs"`
	Result    datatypes.JSON `gorm:"type:jsonb" json:"result"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AnalysisSession) TableName() string {
	return "analysis_sessions"
}
