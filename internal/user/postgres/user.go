package postgres

import (
	"errors"

	userDatamodel "github.com/frahmantamala/transport-management/internal/core/datamodel/user"
	"github.com/frahmantamala/transport-management/internal/user"
	"gorm.io/gorm"
)

// UserRepository implements the user.Repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func fromDataModel(dm *userDatamodel.User) *user.Profile {
	return &user.Profile{
		ID:         dm.ID,
		Email:      dm.Email,
		Name:       dm.Name,
		Department: dm.Department,
		Company:    dm.Company,
		Role:       dm.Role,
		IsActive:   dm.IsActive,
		CreatedAt:  dm.CreatedAt,
	}
}

func (r *UserRepository) GetByID(id int64) (*user.Profile, error) {
	var dm userDatamodel.User
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrProfileNotFound
		}
		return nil, err
	}
	return fromDataModel(&dm), nil
}

func (r *UserRepository) List(limit, offset int) ([]*user.Profile, error) {
	var dms []*userDatamodel.User
	err := r.db.Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}

	profiles := make([]*user.Profile, len(dms))
	for i, dm := range dms {
		profiles[i] = fromDataModel(dm)
	}
	return profiles, nil
}
