package service

import (
	"context"
	"encoding/json"
	"time"

	"golang-stock-insight/internal/insight/config"
	"golang-stock-insight/internal/insight/dto"
	"golang-stock-insight/internal/insight/repository"
	"golang-stock-insight/pkg/common"
	"golang-stock-insight/pkg/logger"
	"golang-stock-insight/pkg/redis"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// ScheduleService enqueues analysis requests for the whole watchlist on a
// cron schedule.
type ScheduleService interface {
	Start(ctx context.Context)
	EnqueueWatchlist(ctx context.Context)
}

type scheduleService struct {
	cfg         *config.Config
	logger      *logger.Logger
	stocksRepo  repository.StocksRepository
	redisClient *redis.Client
	cronParser  cron.Parser
}

// NewScheduleService creates a new schedule service.
func NewScheduleService(cfg *config.Config, log *logger.Logger, stocksRepo repository.StocksRepository, redisClient *redis.Client) ScheduleService {
	return &scheduleService{
		cfg:         cfg,
		logger:      log,
		stocksRepo:  stocksRepo,
		redisClient: redisClient,
		cronParser:  cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

// Start runs the scheduling loop until the context is cancelled.
func (s *scheduleService) Start(ctx context.Context) {
	schedule, err := s.cronParser.Parse(s.cfg.Scheduler.CronExpression)
	if err != nil {
		s.logger.Error("Failed to parse cron expression, scheduler disabled",
			logger.StringField("cron_expression", s.cfg.Scheduler.CronExpression),
			logger.ErrorField(err))
		return
	}

	next := schedule.Next(time.Now())
	s.logger.Info("Schedule service started",
		logger.StringField("cron_expression", s.cfg.Scheduler.CronExpression),
		logger.Field("next_execution", next))

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Schedule service stopping")
			return
		case now := <-ticker.C:
			if now.Before(next) {
				continue
			}
			s.EnqueueWatchlist(ctx)
			next = schedule.Next(now)
			s.logger.Debug("Next scheduled analysis", logger.Field("next_execution", next))
		}
	}
}

// EnqueueWatchlist publishes one analysis request per watchlist stock.
func (s *scheduleService) EnqueueWatchlist(ctx context.Context) {
	stocks, err := s.stocksRepo.GetStocks(ctx)
	if err != nil {
		s.logger.Error("Failed to load watchlist", logger.ErrorField(err))
		return
	}

	for _, stock := range stocks {
		payload, err := json.Marshal(dto.StreamDataAnalysisRequest{StockCode: stock.Code})
		if err != nil {
			s.logger.Error("Failed to marshal analysis request", logger.ErrorField(err), logger.StringField("stock_code", stock.Code))
			continue
		}

		if err := s.redisClient.XAdd(ctx, &goRedis.XAddArgs{
			Stream: common.RedisStreamAnalysisRequest,
			Values: map[string]interface{}{"payload": payload},
			MaxLen: s.cfg.Redis.StreamMaxLen,
		}).Err(); err != nil {
			s.logger.Error("Failed to enqueue analysis request", logger.ErrorField(err), logger.StringField("stock_code", stock.Code))
			continue
		}

		s.logger.Info("Analysis request enqueued", logger.StringField("stock_code", stock.Code))
	}
}
