package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/toggle-task/internal/common/db"
	"github.com/AlibekovAA/toggle-task/internal/task/domain"
	userdomain "github.com/AlibekovAA/toggle-task/internal/user/domain"
)

const taskColumns = `id, user_id, title, memo, important, created_at, completed_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, task domain.Task) error {
	q := db.NewQuery(db.DriverPostgres, "create task", "tasks")
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(task.ID),
		string(task.OwnerID),
		task.Title,
		task.Memo,
		task.Important,
		task.CreatedAt,
		task.CompletedAt,
	)
	return q.HandleExecError(err)
}

func (r *PgRepository) FindByIDAndOwner(ctx context.Context, id domain.ID, owner userdomain.ID) (domain.Task, error) {
	q := db.NewQuery(db.DriverPostgres, "find task", "tasks")
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`,
		string(id),
		string(owner),
	)
	return scanTask(row, q)
}

func (r *PgRepository) ListCurrent(ctx context.Context, owner userdomain.ID) ([]domain.Task, error) {
	return r.list(ctx, "list current tasks",
		`SELECT `+taskColumns+` FROM tasks
		 WHERE user_id = $1 AND completed_at IS NULL
		 ORDER BY created_at ASC, id ASC`,
		owner,
	)
}

func (r *PgRepository) ListCompleted(ctx context.Context, owner userdomain.ID) ([]domain.Task, error) {
	return r.list(ctx, "list completed tasks",
		`SELECT `+taskColumns+` FROM tasks
		 WHERE user_id = $1 AND completed_at IS NOT NULL
		 ORDER BY completed_at DESC, id ASC`,
		owner,
	)
}

func (r *PgRepository) list(ctx context.Context, operation, sql string, owner userdomain.ID) ([]domain.Task, error) {
	q := db.NewQuery(db.DriverPostgres, operation, "tasks")
	rows, err := r.pool.Query(ctx, sql, string(owner))
	if err != nil {
		return nil, q.HandleExecError(err)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows, db.NewQuery(db.DriverPostgres, "scan task", "tasks"))
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := q.HandleExecError(rows.Err()); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *PgRepository) Update(ctx context.Context, id domain.ID, owner userdomain.ID, fields domain.Fields) (domain.Task, error) {
	q := db.NewQuery(db.DriverPostgres, "update task", "tasks")
	row := r.pool.QueryRow(
		ctx,
		`UPDATE tasks SET title = $3, memo = $4, important = $5
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+taskColumns,
		string(id),
		string(owner),
		fields.Title,
		fields.Memo,
		fields.Important,
	)
	return scanTask(row, q)
}

func (r *PgRepository) Complete(ctx context.Context, id domain.ID, owner userdomain.ID, at time.Time) (domain.Task, error) {
	q := db.NewQuery(db.DriverPostgres, "complete task", "tasks")
	row := r.pool.QueryRow(
		ctx,
		`UPDATE tasks SET completed_at = $3
		 WHERE id = $1 AND user_id = $2 AND completed_at IS NULL
		 RETURNING `+taskColumns,
		string(id),
		string(owner),
		at,
	)
	task, err := scanTask(row, q)
	if errors.Is(err, ErrTaskNotFound) {
		// Either missing/foreign or already completed.
		if _, findErr := r.FindByIDAndOwner(ctx, id, owner); findErr != nil {
			return domain.Task{}, findErr
		}
		return domain.Task{}, ErrTaskAlreadyCompleted
	}
	return task, err
}

func (r *PgRepository) Delete(ctx context.Context, id domain.ID, owner userdomain.ID) error {
	q := db.NewQuery(db.DriverPostgres, "delete task", "tasks")
	tag, err := r.pool.Exec(
		ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		string(id),
		string(owner),
	)
	if err := q.HandleExecError(err); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner, q db.Query) (domain.Task, error) {
	var (
		id, owner string
		task      domain.Task
	)
	err := row.Scan(&id, &owner, &task.Title, &task.Memo, &task.Important, &task.CreatedAt, &task.CompletedAt)
	if err := q.HandleQueryError(err, ErrTaskNotFound); err != nil {
		return domain.Task{}, err
	}
	task.ID = domain.ID(id)
	task.OwnerID = userdomain.ID(owner)
	return task, nil
}
