package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Estados del ciclo de vida de un documento, expuestos a la capa de monitoreo.
const (
	StatusProcessing = "PROCESSING"
	StatusSuccess    = "SUCCESS"
	StatusFailed     = "FAILED"
)

// ErrStatusNotFound indica que el documento no tiene estado registrado.
var ErrStatusNotFound = errors.New("document status not found")

// DocumentStatus es el estado visible de un documento en proceso.
type DocumentStatus struct {
	DocumentKey string    `json:"document_key"`
	Status      string    `json:"status"`
	Message     string    `json:"message,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StatusStore guarda y lee el estado de procesamiento por clave de documento.
type StatusStore interface {
	Set(ctx context.Context, documentKey, status, message string) error
	Get(ctx context.Context, documentKey string) (DocumentStatus, error)
}

type redisHashClient interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

type redisStatusStore struct {
	client redisHashClient
	prefix string
	ttl    time.Duration
}

// NewRedisStatusStore guarda estados en hashes con prefijo y TTL.
func NewRedisStatusStore(client *redis.Client) StatusStore {
	if client == nil {
		return nil
	}
	return &redisStatusStore{
		client: client,
		prefix: "esg:docstatus:",
		ttl:    7 * 24 * time.Hour,
	}
}

func (s *redisStatusStore) Set(ctx context.Context, documentKey, status, message string) error {
	key := s.prefix + documentKey
	err := s.client.HSet(ctx, key,
		"status", status,
		"message", message,
		"updated_at", time.Now().UTC().Format(time.RFC3339),
	).Err()
	if err != nil {
		return fmt.Errorf("set document status: %w", err)
	}
	if s.ttl > 0 {
		_ = s.client.Expire(ctx, key, s.ttl).Err()
	}
	return nil
}

func (s *redisStatusStore) Get(ctx context.Context, documentKey string) (DocumentStatus, error) {
	fields, err := s.client.HGetAll(ctx, s.prefix+documentKey).Result()
	if err != nil {
		return DocumentStatus{}, fmt.Errorf("get document status: %w", err)
	}
	if len(fields) == 0 {
		return DocumentStatus{}, fmt.Errorf("%s: %w", documentKey, ErrStatusNotFound)
	}

	status := DocumentStatus{
		DocumentKey: documentKey,
		Status:      fields["status"],
		Message:     fields["message"],
	}
	if ts, parseErr := time.Parse(time.RFC3339, fields["updated_at"]); parseErr == nil {
		status.UpdatedAt = ts
	}
	return status, nil
}
