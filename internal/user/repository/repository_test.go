package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/AlibekovAA/toggle-task/internal/common/db/dbtest"
	"github.com/AlibekovAA/toggle-task/internal/user/domain"
)

func TestPgRepository_CreateAndFind(t *testing.T) {
	repo := NewPgRepository(dbtest.Postgres(t))
	ctx := context.Background()

	user := domain.User{
		ID:           domain.ID(uuid.NewString()),
		Username:     "alice",
		PasswordHash: "hashed_alice",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername() error = %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("expected id %s, got %s", user.ID, found.ID)
	}

	dup := user
	dup.ID = domain.ID(uuid.NewString())
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrUsernameAlreadyExists) {
		t.Errorf("expected ErrUsernameAlreadyExists, got %v", err)
	}

	if _, err := repo.FindByID(ctx, domain.ID(uuid.NewString())); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
