package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/toggle-task/internal/auth/domain"
	"github.com/AlibekovAA/toggle-task/internal/common/db"
)

type RevokedSessionRepository interface {
	Revoke(ctx context.Context, session domain.RevokedSession) error
	IsRevoked(ctx context.Context, jti string, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type PgRevokedSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPgRevokedSessionRepository(pool *pgxpool.Pool) *PgRevokedSessionRepository {
	return &PgRevokedSessionRepository{pool: pool}
}

func (r *PgRevokedSessionRepository) Revoke(ctx context.Context, session domain.RevokedSession) error {
	q := db.NewQuery(db.DriverPostgres, "revoke session", "revoked_sessions")
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO revoked_sessions (jti, user_id, expires_at, revoked_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (jti) DO NOTHING`,
		session.JTI,
		session.UserID,
		session.ExpiresAt,
		session.RevokedAt,
	)
	return q.HandleExecError(err)
}

func (r *PgRevokedSessionRepository) IsRevoked(ctx context.Context, jti string, now time.Time) (bool, error) {
	q := db.NewQuery(db.DriverPostgres, "check revoked session", "revoked_sessions")
	var exists bool
	err := r.pool.QueryRow(
		ctx,
		`SELECT EXISTS(
			SELECT 1 FROM revoked_sessions
			WHERE jti = $1 AND expires_at > $2
		)`,
		jti,
		now,
	).Scan(&exists)
	if err := q.HandleExecError(err); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PgRevokedSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	q := db.NewQuery(db.DriverPostgres, "delete expired revoked sessions", "revoked_sessions")
	tag, err := r.pool.Exec(ctx, `DELETE FROM revoked_sessions WHERE expires_at <= $1`, now)
	if err := q.HandleExecError(err); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
