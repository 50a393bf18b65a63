package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/AlibekovAA/toggle-task/internal/common/db"
	"github.com/AlibekovAA/toggle-task/internal/user/domain"
)

// UserRecord is the gorm model backing the sqlite store.
type UserRecord struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Username     string    `gorm:"size:32;not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (UserRecord) TableName() string {
	return "users"
}

func (r UserRecord) toDomain() domain.User {
	return domain.User{
		ID:           domain.ID(r.ID),
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(gdb *gorm.DB) *GormRepository {
	return &GormRepository{db: gdb}
}

func (r *GormRepository) Create(ctx context.Context, user domain.User) error {
	q := db.NewQuery(db.DriverSQLite, "create user", "users")
	record := UserRecord{
		ID:           string(user.ID),
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	err := r.db.WithContext(ctx).Create(&record).Error
	if db.IsUniqueViolation(err) {
		_ = q.HandleExecError(nil)
		return ErrUsernameAlreadyExists
	}
	return q.HandleExecError(err)
}

func (r *GormRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	q := db.NewQuery(db.DriverSQLite, "find user by username", "users")
	var record UserRecord
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&record).Error
	if err := q.HandleQueryError(err, ErrUserNotFound); err != nil {
		return domain.User{}, err
	}
	return record.toDomain(), nil
}

func (r *GormRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	q := db.NewQuery(db.DriverSQLite, "find user by id", "users")
	var record UserRecord
	err := r.db.WithContext(ctx).Where("id = ?", string(id)).First(&record).Error
	if err := q.HandleQueryError(err, ErrUserNotFound); err != nil {
		return domain.User{}, err
	}
	return record.toDomain(), nil
}
