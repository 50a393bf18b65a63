package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AlibekovAA/toggle-task/internal/auth/domain"
	"github.com/AlibekovAA/toggle-task/internal/common/db"
)

// RevokedSessionRecord keeps expiry as unix seconds so sqlite compares numbers
// rather than timestamp text.
type RevokedSessionRecord struct {
	JTI       string `gorm:"primaryKey;column:jti;size:36"`
	UserID    string `gorm:"size:36;not null"`
	ExpiresAt int64  `gorm:"not null;index"`
	RevokedAt int64  `gorm:"not null"`
}

func (RevokedSessionRecord) TableName() string {
	return "revoked_sessions"
}

type GormRevokedSessionRepository struct {
	db *gorm.DB
}

func NewGormRevokedSessionRepository(gdb *gorm.DB) *GormRevokedSessionRepository {
	return &GormRevokedSessionRepository{db: gdb}
}

func (r *GormRevokedSessionRepository) Revoke(ctx context.Context, session domain.RevokedSession) error {
	q := db.NewQuery(db.DriverSQLite, "revoke session", "revoked_sessions")
	record := RevokedSessionRecord{
		JTI:       session.JTI,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt.Unix(),
		RevokedAt: session.RevokedAt.Unix(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
	return q.HandleExecError(err)
}

func (r *GormRevokedSessionRepository) IsRevoked(ctx context.Context, jti string, now time.Time) (bool, error) {
	q := db.NewQuery(db.DriverSQLite, "check revoked session", "revoked_sessions")
	var count int64
	err := r.db.WithContext(ctx).
		Model(&RevokedSessionRecord{}).
		Where("jti = ? AND expires_at > ?", jti, now.Unix()).
		Count(&count).Error
	if err := q.HandleExecError(err); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRevokedSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	q := db.NewQuery(db.DriverSQLite, "delete expired revoked sessions", "revoked_sessions")
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now.Unix()).Delete(&RevokedSessionRecord{})
	if err := q.HandleExecError(res.Error); err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}
