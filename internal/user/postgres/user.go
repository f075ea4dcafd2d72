package postgres

import (
	"context"

	userDatamodel "github.com/codeup/novabook/internal/core/datamodel/user"
	"github.com/codeup/novabook/internal/core/dberr"
	"github.com/codeup/novabook/internal/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func withRoles(db *gorm.DB) *gorm.DB {
	return db.Preload("Roles", func(db *gorm.DB) *gorm.DB {
		return db.Order("name ASC")
	})
}

// Create inserts u and links it to the named roles in one transaction. An
// unknown role name aborts the insert.
func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User, roles []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found := make([]userDatamodel.Role, 0, len(roles))
		if len(roles) > 0 {
			if err := tx.Where("name IN ?", roles).Order("name ASC").Find(&found).Error; err != nil {
				return err
			}
			if len(found) != len(roles) {
				return dberr.NotFound(dberr.EntityRole, 0)
			}
		}

		if err := tx.Omit(clause.Associations).Create(u).Error; err != nil {
			return err
		}

		for _, role := range found {
			if err := tx.Create(&userDatamodel.UserRole{UserID: u.ID, RoleID: role.ID}).Error; err != nil {
				return err
			}
		}
		u.Roles = found
		return nil
	})
	return dberr.Translate(err, dberr.EntityUser, u.ID)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := withRoles(r.db.WithContext(ctx)).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, dberr.Translate(err, dberr.EntityUser, id)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := withRoles(r.db.WithContext(ctx)).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, dberr.Translate(err, dberr.EntityUser, 0)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	if err := withRoles(r.db.WithContext(ctx)).Order("name ASC").Order("id ASC").Find(&users).Error; err != nil {
		return nil, dberr.Translate(err, dberr.EntityUser, 0)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, u *userDatamodel.User) error {
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"name":   u.Name,
			"email":  u.Email,
			"active": u.Active,
		})
	if res.Error != nil {
		return dberr.Translate(res.Error, dberr.EntityUser, u.ID)
	}
	if res.RowsAffected == 0 {
		return dberr.NotFound(dberr.EntityUser, u.ID)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return dberr.Translate(res.Error, dberr.EntityUser, id)
	}
	if res.RowsAffected == 0 {
		return dberr.NotFound(dberr.EntityUser, id)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&userDatamodel.UserRole{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&userDatamodel.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return dberr.NotFound(dberr.EntityUser, id)
		}
		return nil
	})
	return dberr.Translate(err, dberr.EntityUser, id)
}

// AssignRole links role to the user. Assigning a role the user already has is a no-op.
func (r *UserRepository) AssignRole(ctx context.Context, userID int64, role string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roleID, err := r.roleID(tx, role)
		if err != nil {
			return err
		}
		if err := r.ensureUser(tx, userID); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&userDatamodel.UserRole{UserID: userID, RoleID: roleID}).Error
	})
	return dberr.Translate(err, dberr.EntityUser, userID)
}

func (r *UserRepository) RemoveRole(ctx context.Context, userID int64, role string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roleID, err := r.roleID(tx, role)
		if err != nil {
			return err
		}
		if err := r.ensureUser(tx, userID); err != nil {
			return err
		}
		res := tx.Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&userDatamodel.UserRole{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return dberr.NotFound(dberr.EntityRole, roleID)
		}
		return nil
	})
	return dberr.Translate(err, dberr.EntityUser, userID)
}

func (r *UserRepository) ListRoles(ctx context.Context) ([]*userDatamodel.Role, error) {
	var roles []*userDatamodel.Role
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&roles).Error; err != nil {
		return nil, dberr.Translate(err, dberr.EntityRole, 0)
	}
	return roles, nil
}

func (r *UserRepository) roleID(tx *gorm.DB, name string) (int64, error) {
	var role userDatamodel.Role
	if err := tx.Where("name = ?", name).First(&role).Error; err != nil {
		return 0, dberr.Translate(err, dberr.EntityRole, 0)
	}
	return role.ID, nil
}

func (r *UserRepository) ensureUser(tx *gorm.DB, id int64) error {
	var count int64
	if err := tx.Model(&userDatamodel.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return dberr.NotFound(dberr.EntityUser, id)
	}
	return nil
}
