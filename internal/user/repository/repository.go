package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/toggle-task/internal/common/db"
	"github.com/AlibekovAA/toggle-task/internal/user/domain"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUsernameAlreadyExists = errors.New("username already exists")
)

type Repository interface {
	Create(ctx context.Context, user domain.User) error
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	q := db.NewQuery(db.DriverPostgres, "create user", "users")
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		string(user.ID),
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
	)
	if db.IsUniqueViolation(err) {
		_ = q.HandleExecError(nil)
		return ErrUsernameAlreadyExists
	}
	return q.HandleExecError(err)
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	q := db.NewQuery(db.DriverPostgres, "find user by username", "users")
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`,
		username,
	)
	return scanUser(row, q)
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	q := db.NewQuery(db.DriverPostgres, "find user by id", "users")
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = $1`,
		string(id),
	)
	return scanUser(row, q)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner, q db.Query) (domain.User, error) {
	var (
		id   string
		user domain.User
	)
	err := row.Scan(&id, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err := q.HandleQueryError(err, ErrUserNotFound); err != nil {
		return domain.User{}, err
	}
	user.ID = domain.ID(id)
	return user, nil
}
