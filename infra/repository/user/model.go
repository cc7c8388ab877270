package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the minimal user record the ledger needs. Registration,
// verification and credentials live with the identity service; only
// existence matters here.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"uniqueIndex;not null;size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}
