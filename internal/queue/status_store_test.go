package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeHashClient struct {
	hashes  map[string]map[string]string
	expired map[string]time.Duration
	setErr  error
	getErr  error
}

func newFakeHashClient() *fakeHashClient {
	return &fakeHashClient{
		hashes:  make(map[string]map[string]string),
		expired: make(map[string]time.Duration),
	}
}

func (f *fakeHashClient) HSet(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	if f.setErr != nil {
		return redis.NewIntResult(0, f.setErr)
	}
	if f.hashes[key] == nil {
		f.hashes[key] = make(map[string]string)
	}
	for i := 0; i+1 < len(values); i += 2 {
		f.hashes[key][fmt.Sprint(values[i])] = fmt.Sprint(values[i+1])
	}
	return redis.NewIntResult(int64(len(values) / 2), nil)
}

func (f *fakeHashClient) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	if f.getErr != nil {
		return redis.NewMapStringStringResult(nil, f.getErr)
	}
	return redis.NewMapStringStringResult(f.hashes[key], nil)
}

func (f *fakeHashClient) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.expired[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func newTestStatusStore(client redisHashClient) *redisStatusStore {
	return &redisStatusStore{client: client, prefix: "esg:docstatus:", ttl: 7 * 24 * time.Hour}
}

func TestStatusStore_SetThenGet(t *testing.T) {
	client := newFakeHashClient()
	store := newTestStatusStore(client)
	ctx := context.Background()

	if err := store.Set(ctx, "RELIANCE/2024_BRSR.pdf", StatusProcessing, ""); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "RELIANCE/2024_BRSR.pdf", StatusSuccess, "extracted=5 valid=5 invalid=0"); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, "RELIANCE/2024_BRSR.pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusSuccess {
		t.Fatalf("expected latest status SUCCESS, got %s", got.Status)
	}
	if got.Message != "extracted=5 valid=5 invalid=0" {
		t.Fatalf("unexpected message %q", got.Message)
	}
	if got.DocumentKey != "RELIANCE/2024_BRSR.pdf" {
		t.Fatalf("unexpected document key %q", got.DocumentKey)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("expected parsed updated_at timestamp")
	}
}

func TestStatusStore_SetAppliesTTL(t *testing.T) {
	client := newFakeHashClient()
	store := newTestStatusStore(client)

	if err := store.Set(context.Background(), "DOC/2024_BRSR.pdf", StatusProcessing, ""); err != nil {
		t.Fatalf("set: %v", err)
	}
	if client.expired["esg:docstatus:DOC/2024_BRSR.pdf"] != 7*24*time.Hour {
		t.Fatalf("expected 7 day ttl, got %v", client.expired)
	}
}

func TestStatusStore_GetUnknownDocument(t *testing.T) {
	store := newTestStatusStore(newFakeHashClient())

	_, err := store.Get(context.Background(), "NOBODY/2024_BRSR.pdf")
	if !errors.Is(err, ErrStatusNotFound) {
		t.Fatalf("expected ErrStatusNotFound, got %v", err)
	}
}

func TestStatusStore_WrapsRedisErrors(t *testing.T) {
	client := newFakeHashClient()
	client.setErr = errors.New("redis down")
	store := newTestStatusStore(client)

	if err := store.Set(context.Background(), "DOC/2024_BRSR.pdf", StatusProcessing, ""); err == nil {
		t.Fatal("expected set error")
	}

	client.setErr = nil
	client.getErr = errors.New("redis down")
	if _, err := store.Get(context.Background(), "DOC/2024_BRSR.pdf"); err == nil || errors.Is(err, ErrStatusNotFound) {
		t.Fatalf("expected wrapped redis error, got %v", err)
	}
}
