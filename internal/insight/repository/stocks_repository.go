package repository

import (
	"context"

	"golang-stock-insight/internal/entity"

	"gorm.io/gorm"
)

type stocksRepository struct {
	db *gorm.DB
}

// NewStocksRepository creates a new StocksRepository backed by Postgres.
func NewStocksRepository(db *gorm.DB) StocksRepository {
	return &stocksRepository{db: db}
}

func (r *stocksRepository) GetStocks(ctx context.Context) ([]entity.Stock, error) {
	var stocks []entity.Stock
	if err := r.db.WithContext(ctx).Order("code asc").Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

func (r *stocksRepository) Create(ctx context.Context, stock *entity.Stock) error {
	return r.db.WithContext(ctx).Create(stock).Error
}

func (r *stocksRepository) Delete(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Where("code = ?", code).Delete(&entity.Stock{}).Error
}
