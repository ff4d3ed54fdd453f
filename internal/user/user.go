package user

import (
	"time"

	"github.com/frahmantamala/transport-management/internal"
)

var ErrProfileNotFound = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)

// Profile is the read-side view of a user account; credentials live in the
// auth package.
type Profile struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Department string    `json:"department,omitempty"`
	Company    string    `json:"company,omitempty"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

type Repository interface {
	GetByID(id int64) (*Profile, error)
	List(limit, offset int) ([]*Profile, error)
}
