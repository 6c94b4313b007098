// Package authz decides whether an authenticated identity holds a permission.
//
// The order is fixed: the superadmin role short-circuits, then grants on the
// identity's role, then grants on the user. An empty requirement never
// authorizes anyone but the superadmin.
package authz

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/adminpanel/internal/tokens"
)

const SuperAdminRoleID uint = 1

// GrantLookup answers "does this role/user hold any of these permission names".
type GrantLookup interface {
	RoleHasAny(ctx context.Context, roleID uint, names []string) (bool, error)
	UserHasAny(ctx context.Context, userID uint, names []string) (bool, error)
}

type Source int

const (
	SourceNone Source = iota
	SourceSuperAdmin
	SourceRole
	SourceUser
)

func (s Source) String() string {
	switch s {
	case SourceSuperAdmin:
		return "superadmin"
	case SourceRole:
		return "role"
	case SourceUser:
		return "user"
	default:
		return "none"
	}
}

type Decision struct {
	Allowed bool
	Source  Source
}

var denied = Decision{}

type Resolver struct {
	Grants GrantLookup
}

func NewResolver(grants GrantLookup) *Resolver {
	return &Resolver{Grants: grants}
}

// Authorize reports whether identity holds at least one of required.
// Lookup failures are returned as errors and never read as a denial.
func (r *Resolver) Authorize(ctx context.Context, identity tokens.Identity, required []string) (Decision, error) {
	if identity.RoleID == SuperAdminRoleID {
		return Decision{Allowed: true, Source: SourceSuperAdmin}, nil
	}
	if len(required) == 0 {
		return denied, nil
	}

	ok, err := r.Grants.RoleHasAny(ctx, identity.RoleID, required)
	if err != nil {
		return denied, fmt.Errorf("role grants: %w", err)
	}
	if ok {
		return Decision{Allowed: true, Source: SourceRole}, nil
	}

	ok, err = r.Grants.UserHasAny(ctx, identity.ID, required)
	if err != nil {
		return denied, fmt.Errorf("user grants: %w", err)
	}
	if ok {
		return Decision{Allowed: true, Source: SourceUser}, nil
	}
	return denied, nil
}
