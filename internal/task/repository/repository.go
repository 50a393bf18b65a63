package repository

import (
	"context"
	"errors"
	"time"

	"github.com/AlibekovAA/toggle-task/internal/task/domain"
	userdomain "github.com/AlibekovAA/toggle-task/internal/user/domain"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskAlreadyCompleted = errors.New("task already completed")
)

// Repository scopes every lookup and mutation by (id, owner) so that a task
// owned by someone else is indistinguishable from a missing one.
type Repository interface {
	Create(ctx context.Context, task domain.Task) error
	FindByIDAndOwner(ctx context.Context, id domain.ID, owner userdomain.ID) (domain.Task, error)
	ListCurrent(ctx context.Context, owner userdomain.ID) ([]domain.Task, error)
	ListCompleted(ctx context.Context, owner userdomain.ID) ([]domain.Task, error)
	Update(ctx context.Context, id domain.ID, owner userdomain.ID, fields domain.Fields) (domain.Task, error)
	Complete(ctx context.Context, id domain.ID, owner userdomain.ID, at time.Time) (domain.Task, error)
	Delete(ctx context.Context, id domain.ID, owner userdomain.ID) error
}
