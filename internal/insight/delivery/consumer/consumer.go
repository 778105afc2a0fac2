package consumer

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"golang-stock-insight/internal/insight/config"
	"golang-stock-insight/internal/insight/dto"
	"golang-stock-insight/internal/insight/service"
	"golang-stock-insight/pkg/common"
	"golang-stock-insight/pkg/logger"
	insightRedis "golang-stock-insight/pkg/redis"
	"golang-stock-insight/pkg/utils"

	"github.com/redis/go-redis/v9"
)

const streamReadTimeout = 30 * time.Second

// RedisConsumer consumes analysis requests from the Redis stream and hands
// them to the panel manager.
type RedisConsumer struct {
	cfg          *config.Config
	redisClient  *insightRedis.Client
	panelManager *service.PanelManager
	logger       *logger.Logger
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(cfg *config.Config, redisClient *insightRedis.Client, panelManager *service.PanelManager, log *logger.Logger) *RedisConsumer {
	return &RedisConsumer{
		cfg:          cfg,
		redisClient:  redisClient,
		panelManager: panelManager,
		logger:       log,
		stopChan:     make(chan struct{}),
	}
}

// Start begins the consumer's processing loop.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.ensureGroup(ctx, common.RedisStreamAnalysisRequest)
	c.RegisterStreamHandler(ctx, c.ProcessAnalysisRequest, common.RedisStreamAnalysisRequest, streamReadTimeout)
}

func (c *RedisConsumer) ensureGroup(ctx context.Context, streamName string) {
	err := c.redisClient.XGroupCreateMkStream(ctx, streamName, common.RedisStreamGroup, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		c.logger.Error("Failed to create consumer group", logger.ErrorField(err), logger.StringField("stream", streamName))
	}
}

func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, fn func(ctx context.Context), streamName string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.Field("stream", streamName))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping")
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

// ProcessAnalysisRequest reads one analysis request from the stream and
// starts the corresponding panel run.
func (c *RedisConsumer) ProcessAnalysisRequest(ctx context.Context) {
	streams, err := c.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamAnalysisRequest, ">"}, // ">" means only new messages
		Count:    1,
		Block:    2 * time.Second, // Block for 2 seconds to allow graceful shutdown
	}).Result()
	if err != nil {
		// Context cancellation and timeout errors are expected during
		// shutdown or idle periods.
		if err == context.Canceled || err == redis.Nil {
			return
		}
		c.logger.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]

	// The request is expected to be a JSON string in the 'payload' field.
	taskData, ok := message.Values["payload"].(string)
	if !ok {
		c.logger.Error("field 'payload' not found or not a string in stream message", logger.Field("message_id", message.ID))
		return
	}

	var streamData dto.StreamDataAnalysisRequest
	if err := json.Unmarshal([]byte(taskData), &streamData); err != nil {
		c.logger.Error("Failed to unmarshal analysis request", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return
	}

	c.logger.Debug("Processing analysis request", logger.StringField("stock_code", streamData.StockCode))

	if _, started, err := c.panelManager.Analyze(ctx, streamData.StockCode); err != nil {
		c.logger.Error("Failed to start analysis", logger.ErrorField(err), logger.Field("message_id", message.ID), logger.StringField("stock_code", streamData.StockCode))
		return
	} else if !started {
		c.logger.Debug("Analysis already in flight, request dropped", logger.StringField("stock_code", streamData.StockCode))
	}

	if err := c.AckNDel(ctx, common.RedisStreamAnalysisRequest, message.ID); err != nil {
		c.logger.Error("Failed to acknowledge analysis request", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return
	}

	c.logger.Debug("Analysis request processed", logger.StringField("stock_code", streamData.StockCode))
}

// AckNDel acknowledges and deletes a processed message.
func (c *RedisConsumer) AckNDel(ctx context.Context, streamName string, messageID string) error {
	if err := c.redisClient.XAck(ctx, streamName, common.RedisStreamGroup, messageID).Err(); err != nil {
		return err
	}
	if err := c.redisClient.XDel(ctx, streamName, messageID).Err(); err != nil {
		return err
	}
	return nil
}

// Stop gracefully shuts down the consumer.
func (c *RedisConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
