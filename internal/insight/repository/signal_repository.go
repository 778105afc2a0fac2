package repository

import (
	"context"

	"golang-stock-insight/internal/entity"

	"gorm.io/gorm"
)

type signalRepository struct {
	db *gorm.DB
}

// NewSignalRepository creates a new SignalRepository backed by Postgres.
func NewSignalRepository(db *gorm.DB) SignalRepository {
	return &signalRepository{db: db}
}

// Create saves a new signal row.
func (r *signalRepository) Create(ctx context.Context, signal *entity.StockSignal) error {
	return r.db.WithContext(ctx).Create(signal).Error
}

// GetLatest returns the newest signals, optionally filtered by stock code.
func (r *signalRepository) GetLatest(ctx context.Context, stockCode string, limit int) ([]entity.StockSignal, error) {
	if limit <= 0 {
		limit = 20
	}

	query := r.db.WithContext(ctx).Order("created_at desc").Limit(limit)
	if stockCode != "" {
		query = query.Where("stock_code = ?", stockCode)
	}

	var signals []entity.StockSignal
	if err := query.Find(&signals).Error; err != nil {
		return nil, err
	}
	return signals, nil
}
