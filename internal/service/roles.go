package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/adminpanel/internal/apperr"
	"github.com/Skotchmaster/adminpanel/internal/audit"
	"github.com/Skotchmaster/adminpanel/internal/authn"
	"github.com/Skotchmaster/adminpanel/internal/logging"
	"github.com/Skotchmaster/adminpanel/internal/models"
	"github.com/Skotchmaster/adminpanel/internal/repo"
)

var rolePermissionsTable = models.RolePermission{}.TableName()

type RoleGrantStore interface {
	GrantRolePermissions(ctx context.Context, roleID uint, permissionIDs []uint) ([]string, error)
	RevokeRolePermissions(ctx context.Context, roleID uint, permissionIDs []uint) ([]string, error)
}

// RoleGrantResult describes a change to a role's permission set.
type RoleGrantResult struct {
	RoleID      uint
	Permissions []string
	Message     string
}

// RoleService edits the role grants that permission checks read. Changes
// apply to the next request of every holder of the role; issued tokens carry
// only the role id.
type RoleService struct {
	Grants RoleGrantStore
	Audit  audit.Recorder
}

func (s *RoleService) GivePermissions(ctx context.Context, actor *authn.Principal, roleID uint, permissionIDs []uint) (*RoleGrantResult, error) {
	l := logging.FromContext(ctx).With("svc", "roles.give_permissions", "role_id", roleID)
	if err := validateGrant(roleID, permissionIDs); err != nil {
		return nil, err
	}

	names, err := s.Grants.GrantRolePermissions(ctx, roleID, permissionIDs)
	if err != nil {
		err = grantErr(err)
		l.Warn("give permissions failed", "error", err)
		return nil, err
	}

	res := &RoleGrantResult{
		RoleID:      roleID,
		Permissions: names,
		Message:     fmt.Sprintf("Permission %v has been assigned to role %d", names, roleID),
	}
	s.record(ctx, actor, audit.ActionCreate, res)
	l.Info("permissions given", "permissions", names)
	return res, nil
}

func (s *RoleService) RevokePermissions(ctx context.Context, actor *authn.Principal, roleID uint, permissionIDs []uint) (*RoleGrantResult, error) {
	l := logging.FromContext(ctx).With("svc", "roles.revoke_permissions", "role_id", roleID)
	if err := validateGrant(roleID, permissionIDs); err != nil {
		return nil, err
	}

	names, err := s.Grants.RevokeRolePermissions(ctx, roleID, permissionIDs)
	if err != nil {
		err = grantErr(err)
		l.Warn("revoke permissions failed", "error", err)
		return nil, err
	}

	res := &RoleGrantResult{
		RoleID:      roleID,
		Permissions: names,
		Message:     fmt.Sprintf("Permission %v has been revoked from role %d", names, roleID),
	}
	s.record(ctx, actor, audit.ActionDelete, res)
	l.Info("permissions revoked", "permissions", names)
	return res, nil
}

func (s *RoleService) record(ctx context.Context, actor *authn.Principal, action audit.Action, res *RoleGrantResult) {
	if s.Audit == nil {
		return
	}
	s.Audit.Record(ctx, audit.Activity{
		ActorID:   actor.Identity().ID,
		Action:    action,
		RecordID:  recordID(res.RoleID),
		ModelName: rolePermissionsTable,
		IPAddress: actor.IPAddress,
		Notes:     res.Message,
	})
}

func validateGrant(roleID uint, permissionIDs []uint) error {
	if roleID == 0 || len(permissionIDs) == 0 {
		return apperr.ErrValidation.WithMessage("role_id and permission_id are required")
	}
	return nil
}

func grantErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrRoleNotFound):
		return apperr.ErrRoleNotFound
	case errors.Is(err, repo.ErrPermissionNotFound):
		return apperr.ErrPermissionNotFound
	}
	return apperr.Internal(err)
}
