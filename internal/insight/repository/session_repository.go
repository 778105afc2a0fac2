package repository

import (
	"context"

	"golang-stock-insight/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new SessionRepository backed by Postgres.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Get returns the stored session for a stock, or nil when none exists.
func (r *sessionRepository) Get(ctx context.Context, stockCode string) (*entity.AnalysisSession, error) {
	var session entity.AnalysisSession
	result := r.db.WithContext(ctx).Where("stock_code = ?", stockCode).First(&session)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &session, nil
}

// Upsert inserts or replaces the session snapshot for a stock.
func (r *sessionRepository) Upsert(ctx context.Context, session *entity.AnalysisSession) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stock_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "logs", "result", "updated_at"}),
	}).Create(session).Error
}

// Delete removes the stored session for a stock.
func (r *sessionRepository) Delete(ctx context.Context, stockCode string) error {
	return r.db.WithContext(ctx).Where("stock_code = ?", stockCode).Delete(&entity.AnalysisSession{}).Error
}
