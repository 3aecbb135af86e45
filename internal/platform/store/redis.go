package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vakinha/checkout/internal/domain"
)

// Key prefixes.
const (
	handoffPrefix = "checkout:handoff:"
	statusPrefix  = "checkout:status:"
)

// Connect accepts either a redis:// URL or a bare host:port.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("parse redis url: %w", parseErr)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisHandoffStore keeps each handoff as one JSON value that expires with
// the session.
type RedisHandoffStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisHandoffStore(client *redis.Client, ttl time.Duration) *RedisHandoffStore {
	return &RedisHandoffStore{client: client, ttl: ttl}
}

func (s *RedisHandoffStore) Save(ctx context.Context, sessionID string, h domain.SessionHandoff) error {
	raw, err := json.Marshal(h)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, handoffPrefix+sessionID, raw, s.ttl).Err()
}

func (s *RedisHandoffStore) Load(ctx context.Context, sessionID string) (*domain.SessionHandoff, error) {
	raw, err := s.client.Get(ctx, handoffPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNoActiveCheckout
		}
		return nil, err
	}
	var out domain.SessionHandoff
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RedisStatusStore keeps payment statuses for ttl after their last update.
type RedisStatusStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStatusStore(client *redis.Client, ttl time.Duration) *RedisStatusStore {
	return &RedisStatusStore{client: client, ttl: ttl}
}

func (s *RedisStatusStore) Put(ctx context.Context, status domain.PaymentStatus) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, statusPrefix+status.PaymentID, raw, s.ttl).Err()
}

func (s *RedisStatusStore) Get(ctx context.Context, paymentID string) (*domain.PaymentStatus, error) {
	raw, err := s.client.Get(ctx, statusPrefix+paymentID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrChargeNotFound
		}
		return nil, err
	}
	var out domain.PaymentStatus
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
