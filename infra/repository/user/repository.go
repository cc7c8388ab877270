package user

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amirasaad/walletfx/infra/repository/pgerrors"
	"github.com/amirasaad/walletfx/pkg/repository"
)

type repo struct {
	db *gorm.DB
}

// New creates a user repository bound to the given session.
func New(db *gorm.DB) repository.UserRepository {
	return &repo{db: db}
}

// Exists reports whether a user row with the given id is present.
func (r *repo) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, pgerrors.Translate(err)
	}
	return count > 0, nil
}
