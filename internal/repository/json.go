// Package repository holds helpers shared by the Record Store drivers.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/msomdec/taskboard/internal/domain"
)

// GetJSON loads key from store and decodes it into dst.
// It reports false without error when the key does not exist.
func GetJSON(ctx context.Context, store domain.RecordStore, key string, dst any) (bool, error) {
	data, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, store domain.RecordStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
