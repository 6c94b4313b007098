package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/adminpanel/internal/db"
	"github.com/Skotchmaster/adminpanel/internal/models"
)

// Account is a user row together with its bound role.
type Account struct {
	User     models.User
	RoleID   uint
	RoleName string
}

func (r *GormRepo) FindAccountByEmail(ctx context.Context, email string) (*Account, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).Take(&u).Error; err != nil {
		return nil, translate(err)
	}
	return r.withRole(ctx, r.DB, u)
}

func (r *GormRepo) FindAccountByID(ctx context.Context, id uint) (*Account, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Take(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return r.withRole(ctx, r.DB, u)
}

// withRole attaches the bound role. A user with no role binding is reported
// as not found.
func (r *GormRepo) withRole(ctx context.Context, tx *gorm.DB, u models.User) (*Account, error) {
	var role models.Role
	res := tx.WithContext(ctx).
		Model(&models.Role{}).
		Select("mst_roles.id, mst_roles.name").
		Joins("JOIN ref_user_roles ON ref_user_roles.role_id = mst_roles.id").
		Where("ref_user_roles.user_id = ?", u.ID).
		Order("mst_roles.id").
		Limit(1).
		Scan(&role)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &Account{User: u, RoleID: role.ID, RoleName: role.Name}, nil
}

// RegisterFailedLogin increments the failed-attempt counter and deactivates
// the user once the counter reaches limit. The increment and the comparison run
// in one statement so concurrent failures cannot skip the threshold.
func (r *GormRepo) RegisterFailedLogin(ctx context.Context, id uint, limit int) (attempts int, active bool, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"failed_login_attempts": gorm.Expr("failed_login_attempts + 1"),
				"active":                gorm.Expr("CASE WHEN failed_login_attempts + 1 >= ? THEN ? ELSE active END", limit, false),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		var u models.User
		if err := tx.Select("failed_login_attempts", "active").Take(&u, id).Error; err != nil {
			return translate(err)
		}
		attempts, active = u.FailedLoginAttempts, u.Active
		return nil
	})
	return attempts, active, err
}

func (r *GormRepo) RecordSuccessfulLogin(ctx context.Context, id uint, at time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"failed_login_attempts": 0,
			"last_logged_in":        at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive flips the active flag. Activation also clears the failed-attempt
// counter so a locked account can log in again.
func (r *GormRepo) SetActive(ctx context.Context, id uint, active bool) error {
	fields := map[string]any{"active": active}
	if active {
		fields["failed_login_attempts"] = 0
	}
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateUser inserts u and binds it to the default role in one transaction.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) (*Account, error) {
	var acc *Account
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicate
		}

		var role models.Role
		if err := tx.Where("name = ?", db.DefaultRole).Take(&role).Error; err != nil {
			return translate(err)
		}

		if err := tx.Create(u).Error; err != nil {
			return translate(err)
		}
		if err := tx.Create(&models.UserRole{UserID: u.ID, RoleID: role.ID}).Error; err != nil {
			return translate(err)
		}

		acc = &Account{User: *u, RoleID: role.ID, RoleName: role.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}
