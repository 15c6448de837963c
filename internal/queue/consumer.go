package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"esg-brsr/internal/email"
	"esg-brsr/internal/repository"
	"esg-brsr/internal/service"
)

// DocumentProcessor es el pipeline desde el punto de vista del consumidor.
type DocumentProcessor interface {
	Process(ctx context.Context, documentKey string) (service.PipelineResult, error)
}

type redisQueueClient interface {
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ConsumerConfig parametriza colas y techo de reentregas.
type ConsumerConfig struct {
	TaskQueue     string
	ParkedQueue   string
	MaxDeliveries int
	PopTimeout    time.Duration
}

// Consumer consume claves de documento desde una lista redis y ejecuta el pipeline.
// Un documento que falla se reencola hasta el techo de entregas; después se
// aparca para inspección manual en vez de descartarse en silencio.
type Consumer struct {
	client        redisQueueClient
	pipeline      DocumentProcessor
	status        StatusStore
	alerts        email.Sender
	logger        *zap.Logger
	taskQueue     string
	parkedQueue   string
	attemptPrefix string
	maxDeliveries int
	popTimeout    time.Duration
}

func NewConsumer(
	client *redis.Client,
	pipeline DocumentProcessor,
	status StatusStore,
	alerts email.Sender,
	cfg ConsumerConfig,
	logger *zap.Logger,
) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TaskQueue == "" {
		cfg.TaskQueue = "esg:tasks"
	}
	if cfg.ParkedQueue == "" {
		cfg.ParkedQueue = "esg:parked"
	}
	if cfg.MaxDeliveries <= 0 {
		cfg.MaxDeliveries = 3
	}
	if cfg.PopTimeout <= 0 {
		cfg.PopTimeout = 5 * time.Second
	}
	return &Consumer{
		client:        client,
		pipeline:      pipeline,
		status:        status,
		alerts:        alerts,
		logger:        logger,
		taskQueue:     cfg.TaskQueue,
		parkedQueue:   cfg.ParkedQueue,
		attemptPrefix: "esg:attempts:",
		maxDeliveries: cfg.MaxDeliveries,
		popTimeout:    cfg.PopTimeout,
	}
}

// Run bloquea consumiendo tareas hasta que el contexto se cancele.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer started", zap.String("queue", c.taskQueue))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		res, err := c.client.BRPop(ctx, c.popTimeout, c.taskQueue).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("queue pop failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if len(res) < 2 {
			continue
		}

		c.Handle(ctx, res[1])
	}
}

// Handle procesa una entrega de la cola.
func (c *Consumer) Handle(ctx context.Context, documentKey string) {
	if err := c.status.Set(ctx, documentKey, StatusProcessing, ""); err != nil {
		c.logger.Warn("status set failed", zap.String("document_key", documentKey), zap.Error(err))
	}

	result, err := c.pipeline.Process(ctx, documentKey)
	if err == nil {
		msg := fmt.Sprintf("extracted=%d valid=%d invalid=%d", result.Extracted, result.Valid, result.Invalid)
		_ = c.status.Set(ctx, documentKey, StatusSuccess, msg)
		c.clearAttempts(ctx, documentKey)
		return
	}

	if errors.Is(err, service.ErrAlreadyProcessed) {
		// Entrega duplicada: se confirma sin reprocesar.
		_ = c.status.Set(ctx, documentKey, StatusSuccess, "duplicate delivery ignored")
		c.clearAttempts(ctx, documentKey)
		return
	}

	_ = c.status.Set(ctx, documentKey, StatusFailed, err.Error())

	if isPrecondition(err) {
		// Reintentar no cambia nada: se aparca de inmediato.
		c.park(ctx, documentKey, err.Error())
		return
	}

	attempts := c.countAttempt(ctx, documentKey)
	if attempts >= int64(c.maxDeliveries) {
		c.park(ctx, documentKey, fmt.Sprintf("retry ceiling reached (%d): %s", c.maxDeliveries, err.Error()))
		return
	}

	c.logger.Warn("document failed, requeueing",
		zap.String("document_key", documentKey),
		zap.Int64("attempts", attempts),
		zap.Error(err),
	)
	if pushErr := c.client.LPush(ctx, c.taskQueue, documentKey).Err(); pushErr != nil {
		c.logger.Error("requeue failed", zap.String("document_key", documentKey), zap.Error(pushErr))
	}
}

func isPrecondition(err error) bool {
	return errors.Is(err, service.ErrInvalidDocumentKey) || errors.Is(err, repository.ErrCompanyNotFound)
}

func (c *Consumer) countAttempt(ctx context.Context, documentKey string) int64 {
	key := c.attemptPrefix + documentKey
	attempts, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		c.logger.Warn("attempt count failed", zap.String("document_key", documentKey), zap.Error(err))
		return 1
	}
	if attempts == 1 {
		_ = c.client.Expire(ctx, key, 24*time.Hour).Err()
	}
	return attempts
}

func (c *Consumer) clearAttempts(ctx context.Context, documentKey string) {
	_ = c.client.Del(ctx, c.attemptPrefix+documentKey).Err()
}

func (c *Consumer) park(ctx context.Context, documentKey, reason string) {
	c.logger.Error("parking document for manual inspection",
		zap.String("document_key", documentKey),
		zap.String("reason", reason),
	)
	if err := c.client.LPush(ctx, c.parkedQueue, documentKey).Err(); err != nil {
		c.logger.Error("park push failed", zap.String("document_key", documentKey), zap.Error(err))
	}
	c.clearAttempts(ctx, documentKey)

	if c.alerts != nil {
		if err := c.alerts.SendParkedDocumentAlert(ctx, documentKey, reason, time.Now().UTC()); err != nil {
			c.logger.Warn("parked document alert failed", zap.String("document_key", documentKey), zap.Error(err))
		}
	}
}
