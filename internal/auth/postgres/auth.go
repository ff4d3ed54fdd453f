package postgres

import (
	"errors"

	"github.com/frahmantamala/transport-management/internal/auth"
	userDatamodel "github.com/frahmantamala/transport-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

// AuthRepository resolves credentials and principals from the users table.
type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.RepositoryAPI {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetCredentialsByEmail(email string) (string, int64, error) {
	var u userDatamodel.User
	err := r.db.Where("email = ? AND is_active = ?", email, true).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", 0, auth.ErrInvalidCredentials
		}
		return "", 0, err
	}
	return u.PasswordHash, u.ID, nil
}

func (r *AuthRepository) GetUserByID(userID int64) (*auth.User, error) {
	var u userDatamodel.User
	err := r.db.Where("id = ?", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, auth.ErrUserInactive
	}

	role, ok := auth.ParseRole(u.Role)
	if !ok {
		return nil, auth.ErrUserNotFound
	}

	return &auth.User{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Department: u.Department,
		Company:    u.Company,
		Role:       role,
	}, nil
}
