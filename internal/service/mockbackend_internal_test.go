package service

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/taskboard/internal/domain"
	"github.com/msomdec/taskboard/internal/repository/memory"
)

func TestMockBackend_DuplicateRegistrationSkipsHashing(t *testing.T) {
	backend := NewMockBackend(memory.NewRecordStore(), MockTokens{}, MockBackendConfig{BcryptCost: 4})
	hashed := 0
	hash := backend.hashPassword
	backend.hashPassword = func(password []byte, cost int) ([]byte, error) {
		hashed++
		return hash(password, cost)
	}
	ctx := context.Background()

	if _, err := backend.Register(ctx, "dup@x.com", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := backend.Register(ctx, "dup@x.com", "secret1"); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if hashed != 1 {
		t.Fatalf("expected 1 hash, got %d", hashed)
	}
}
