package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/adminpanel/internal/models"
)

// RoleHasAny reports whether roleID is granted at least one of names.
func (r *GormRepo) RoleHasAny(ctx context.Context, roleID uint, names []string) (bool, error) {
	if len(names) == 0 {
		return false, nil
	}
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.RolePermission{}).
		Joins("JOIN mst_permissions ON mst_permissions.id = ref_role_permissions.permission_id").
		Where("ref_role_permissions.role_id = ? AND mst_permissions.name IN ?", roleID, names).
		Count(&n).Error
	return n > 0, err
}

// UserHasAny reports whether userID is directly granted at least one of names.
func (r *GormRepo) UserHasAny(ctx context.Context, userID uint, names []string) (bool, error) {
	if len(names) == 0 {
		return false, nil
	}
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.UserPermission{}).
		Joins("JOIN mst_permissions ON mst_permissions.id = ref_user_permissions.permission_id").
		Where("ref_user_permissions.user_id = ? AND mst_permissions.name IN ?", userID, names).
		Count(&n).Error
	return n > 0, err
}

// GrantRolePermissions binds every permission in permissionIDs to roleID and
// returns their names. Grants the role already holds are left as they are.
// Nothing is written unless the role and every permission exist.
func (r *GormRepo) GrantRolePermissions(ctx context.Context, roleID uint, permissionIDs []uint) ([]string, error) {
	var names []string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		perms, err := grantTargets(tx, roleID, permissionIDs)
		if err != nil {
			return err
		}

		links := make([]models.RolePermission, 0, len(perms))
		for _, p := range perms {
			links = append(links, models.RolePermission{RoleID: roleID, PermissionID: p.ID})
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
			return translate(err)
		}
		names = permissionNames(perms)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// RevokeRolePermissions removes the grants of permissionIDs from roleID and
// returns the permission names. Permissions the role did not hold are
// ignored.
func (r *GormRepo) RevokeRolePermissions(ctx context.Context, roleID uint, permissionIDs []uint) ([]string, error) {
	var names []string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		perms, err := grantTargets(tx, roleID, permissionIDs)
		if err != nil {
			return err
		}

		ids := make([]uint, 0, len(perms))
		for _, p := range perms {
			ids = append(ids, p.ID)
		}
		if err := tx.Where("role_id = ? AND permission_id IN ?", roleID, ids).
			Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		names = permissionNames(perms)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func grantTargets(tx *gorm.DB, roleID uint, permissionIDs []uint) ([]models.Permission, error) {
	var role models.Role
	if err := tx.Select("id").Take(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	ids := make([]uint, 0, len(permissionIDs))
	seen := make(map[uint]struct{}, len(permissionIDs))
	for _, id := range permissionIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, ErrPermissionNotFound
	}

	var perms []models.Permission
	if err := tx.Where("id IN ?", ids).Order("id").Find(&perms).Error; err != nil {
		return nil, err
	}
	if len(perms) != len(ids) {
		return nil, ErrPermissionNotFound
	}
	return perms, nil
}

func permissionNames(perms []models.Permission) []string {
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.Name)
	}
	return names
}
