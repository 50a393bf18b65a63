package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/AlibekovAA/toggle-task/internal/common/db/dbtest"
	"github.com/AlibekovAA/toggle-task/internal/task/domain"
	userdomain "github.com/AlibekovAA/toggle-task/internal/user/domain"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) *GormRepository {
	t.Helper()
	return NewGormRepository(dbtest.SQLite(t, &TaskRecord{}))
}

func newTask(owner userdomain.ID, title string, createdAt time.Time) domain.Task {
	return domain.Task{
		ID:        domain.ID(uuid.NewString()),
		OwnerID:   owner,
		Title:     title,
		Memo:      "memo for " + title,
		CreatedAt: createdAt,
	}
}

func mustCreate(t *testing.T, repo *GormRepository, task domain.Task) {
	t.Helper()
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("Create(%s) error = %v", task.Title, err)
	}
}

func TestGormRepository_FindScopedByOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	task := newTask("alice", "Buy milk", baseTime)
	mustCreate(t, repo, task)

	got, err := repo.FindByIDAndOwner(ctx, task.ID, "alice")
	if err != nil {
		t.Fatalf("FindByIDAndOwner() error = %v", err)
	}
	if got.Title != "Buy milk" || got.Memo != task.Memo || got.IsCompleted() {
		t.Errorf("unexpected task: %+v", got)
	}

	if _, err := repo.FindByIDAndOwner(ctx, task.ID, "bob"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound for foreign owner, got %v", err)
	}
	if _, err := repo.FindByIDAndOwner(ctx, domain.ID(uuid.NewString()), "alice"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound for missing id, got %v", err)
	}
}

func TestGormRepository_ListCurrentOrderedByCreation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	second := newTask("alice", "second", baseTime.Add(time.Minute))
	first := newTask("alice", "first", baseTime)
	foreign := newTask("bob", "bob's", baseTime)
	mustCreate(t, repo, second)
	mustCreate(t, repo, first)
	mustCreate(t, repo, foreign)

	tasks, err := repo.ListCurrent(ctx, "alice")
	if err != nil {
		t.Fatalf("ListCurrent() error = %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != first.ID || tasks[1].ID != second.ID {
		t.Errorf("unexpected order: %s, %s", tasks[0].Title, tasks[1].Title)
	}
}

func TestGormRepository_ListCompletedNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := newTask("alice", "a", baseTime)
	b := newTask("alice", "b", baseTime)
	c := newTask("alice", "c", baseTime)
	for _, task := range []domain.Task{a, b, c} {
		mustCreate(t, repo, task)
	}

	// Completion times span a day boundary and sub-second precision.
	completions := map[domain.ID]time.Time{
		a.ID: baseTime.Add(2 * time.Hour),
		b.ID: baseTime.Add(30 * time.Hour),
		c.ID: baseTime.Add(2*time.Hour + 500*time.Millisecond),
	}
	for id, at := range completions {
		if _, err := repo.Complete(ctx, id, "alice", at); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
	}

	tasks, err := repo.ListCompleted(ctx, "alice")
	if err != nil {
		t.Fatalf("ListCompleted() error = %v", err)
	}
	want := []domain.ID{b.ID, c.ID, a.ID}
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(tasks))
	}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, tasks[i].ID)
		}
	}

	current, err := repo.ListCurrent(ctx, "alice")
	if err != nil {
		t.Fatalf("ListCurrent() error = %v", err)
	}
	if len(current) != 0 {
		t.Errorf("expected no current tasks, got %d", len(current))
	}
}

func TestGormRepository_CompleteTwice(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	task := newTask("alice", "once", baseTime)
	mustCreate(t, repo, task)

	firstAt := baseTime.Add(time.Hour)
	done, err := repo.Complete(ctx, task.ID, "alice", firstAt)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if done.CompletedAt == nil || !done.CompletedAt.Equal(firstAt) {
		t.Fatalf("expected completed_at %v, got %v", firstAt, done.CompletedAt)
	}

	if _, err := repo.Complete(ctx, task.ID, "alice", firstAt.Add(time.Hour)); !errors.Is(err, ErrTaskAlreadyCompleted) {
		t.Errorf("expected ErrTaskAlreadyCompleted, got %v", err)
	}
	if _, err := repo.Complete(ctx, task.ID, "bob", firstAt); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound for foreign owner, got %v", err)
	}

	got, err := repo.FindByIDAndOwner(ctx, task.ID, "alice")
	if err != nil {
		t.Fatalf("FindByIDAndOwner() error = %v", err)
	}
	if !got.CompletedAt.Equal(firstAt) {
		t.Errorf("completed_at changed to %v", got.CompletedAt)
	}
}

func TestGormRepository_UpdateWritesZeroValues(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	task := newTask("alice", "draft", baseTime)
	task.Important = true
	mustCreate(t, repo, task)

	updated, err := repo.Update(ctx, task.ID, "alice", domain.Fields{Title: "final"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "final" || updated.Memo != "" || updated.Important {
		t.Errorf("unexpected task after update: %+v", updated)
	}
	if !updated.CreatedAt.Equal(task.CreatedAt) {
		t.Errorf("created_at changed: %v", updated.CreatedAt)
	}

	if _, err := repo.Update(ctx, task.ID, "bob", domain.Fields{Title: "hijack"}); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestGormRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	task := newTask("alice", "temp", baseTime)
	mustCreate(t, repo, task)

	if err := repo.Delete(ctx, task.ID, "bob"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound for foreign owner, got %v", err)
	}
	if err := repo.Delete(ctx, task.ID, "alice"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, task.ID, "alice"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound on second delete, got %v", err)
	}
}
