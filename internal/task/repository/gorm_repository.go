package repository

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/AlibekovAA/toggle-task/internal/common/db"
	"github.com/AlibekovAA/toggle-task/internal/task/domain"
	userdomain "github.com/AlibekovAA/toggle-task/internal/user/domain"
)

// TaskRecord is the gorm model backing the sqlite store.
type TaskRecord struct {
	ID          string    `gorm:"primaryKey;size:36"`
	UserID      string    `gorm:"size:36;not null;index"`
	Title       string    `gorm:"size:100;not null"`
	Memo        string    `gorm:"not null;default:''"`
	Important   bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null"`
	CompletedAt *time.Time
}

func (TaskRecord) TableName() string {
	return "tasks"
}

func (r TaskRecord) toDomain() domain.Task {
	task := domain.Task{
		ID:        domain.ID(r.ID),
		OwnerID:   userdomain.ID(r.UserID),
		Title:     r.Title,
		Memo:      r.Memo,
		Important: r.Important,
		CreatedAt: r.CreatedAt.UTC(),
	}
	if r.CompletedAt != nil {
		at := r.CompletedAt.UTC()
		task.CompletedAt = &at
	}
	return task
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(gdb *gorm.DB) *GormRepository {
	return &GormRepository{db: gdb}
}

func (r *GormRepository) Create(ctx context.Context, task domain.Task) error {
	q := db.NewQuery(db.DriverSQLite, "create task", "tasks")
	record := TaskRecord{
		ID:          string(task.ID),
		UserID:      string(task.OwnerID),
		Title:       task.Title,
		Memo:        task.Memo,
		Important:   task.Important,
		CreatedAt:   task.CreatedAt,
		CompletedAt: task.CompletedAt,
	}
	return q.HandleExecError(r.db.WithContext(ctx).Create(&record).Error)
}

func (r *GormRepository) FindByIDAndOwner(ctx context.Context, id domain.ID, owner userdomain.ID) (domain.Task, error) {
	q := db.NewQuery(db.DriverSQLite, "find task", "tasks")
	var record TaskRecord
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", string(id), string(owner)).
		First(&record).Error
	if err := q.HandleQueryError(err, ErrTaskNotFound); err != nil {
		return domain.Task{}, err
	}
	return record.toDomain(), nil
}

// ListCurrent and ListCompleted order in Go: sqlite stores timestamps as text
// whose lexical order does not always match time order.
func (r *GormRepository) ListCurrent(ctx context.Context, owner userdomain.ID) ([]domain.Task, error) {
	tasks, err := r.list(ctx, "list current tasks", "user_id = ? AND completed_at IS NULL", owner)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (r *GormRepository) ListCompleted(ctx context.Context, owner userdomain.ID) ([]domain.Task, error) {
	tasks, err := r.list(ctx, "list completed tasks", "user_id = ? AND completed_at IS NOT NULL", owner)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := *tasks[i].CompletedAt, *tasks[j].CompletedAt
		if a.Equal(b) {
			return tasks[i].ID < tasks[j].ID
		}
		return a.After(b)
	})
	return tasks, nil
}

func (r *GormRepository) list(ctx context.Context, operation, where string, owner userdomain.ID) ([]domain.Task, error) {
	q := db.NewQuery(db.DriverSQLite, operation, "tasks")
	var records []TaskRecord
	err := r.db.WithContext(ctx).Where(where, string(owner)).Find(&records).Error
	if err := q.HandleExecError(err); err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(records))
	for _, record := range records {
		tasks = append(tasks, record.toDomain())
	}
	return tasks, nil
}

func (r *GormRepository) Update(ctx context.Context, id domain.ID, owner userdomain.ID, fields domain.Fields) (domain.Task, error) {
	q := db.NewQuery(db.DriverSQLite, "update task", "tasks")
	// Select forces zero values (empty memo, important=false) to be written.
	res := r.db.WithContext(ctx).
		Model(&TaskRecord{}).
		Where("id = ? AND user_id = ?", string(id), string(owner)).
		Select("title", "memo", "important").
		Updates(TaskRecord{Title: fields.Title, Memo: fields.Memo, Important: fields.Important})
	if err := q.HandleExecError(res.Error); err != nil {
		return domain.Task{}, err
	}
	if res.RowsAffected == 0 {
		return domain.Task{}, ErrTaskNotFound
	}
	return r.FindByIDAndOwner(ctx, id, owner)
}

func (r *GormRepository) Complete(ctx context.Context, id domain.ID, owner userdomain.ID, at time.Time) (domain.Task, error) {
	q := db.NewQuery(db.DriverSQLite, "complete task", "tasks")
	res := r.db.WithContext(ctx).
		Model(&TaskRecord{}).
		Where("id = ? AND user_id = ? AND completed_at IS NULL", string(id), string(owner)).
		Update("completed_at", at)
	if err := q.HandleExecError(res.Error); err != nil {
		return domain.Task{}, err
	}

	task, err := r.FindByIDAndOwner(ctx, id, owner)
	if err != nil {
		return domain.Task{}, err
	}
	if res.RowsAffected == 0 {
		return domain.Task{}, ErrTaskAlreadyCompleted
	}
	return task, nil
}

func (r *GormRepository) Delete(ctx context.Context, id domain.ID, owner userdomain.ID) error {
	q := db.NewQuery(db.DriverSQLite, "delete task", "tasks")
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", string(id), string(owner)).
		Delete(&TaskRecord{})
	if err := q.HandleExecError(res.Error); err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
