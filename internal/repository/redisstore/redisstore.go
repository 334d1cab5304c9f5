// Package redisstore implements the Record Store on top of Redis strings.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/msomdec/taskboard/internal/domain"
)

const defaultPrefix = "taskboard:"

// RecordStore keeps each record as a Redis string under prefix+key.
type RecordStore struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// New wraps an existing client. An empty prefix falls back to "taskboard:".
func New(client *redis.Client, prefix string) *RecordStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RecordStore{
		client:  client,
		prefix:  prefix,
		timeout: 2 * time.Second,
	}
}

// Open connects to the Redis server at rawURL and verifies it with a PING.
func Open(ctx context.Context, rawURL, prefix string) (*RecordStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, prefix), nil
}

func (s *RecordStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

func (s *RecordStore) Set(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RecordStore) Remove(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RecordStore) Close() error {
	return s.client.Close()
}
