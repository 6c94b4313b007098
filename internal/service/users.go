package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/adminpanel/internal/audit"
	"github.com/Skotchmaster/adminpanel/internal/authn"
	"github.com/Skotchmaster/adminpanel/internal/logging"
	"github.com/Skotchmaster/adminpanel/internal/tokens"
)

type UserService struct {
	Accounts AccountStore
	Audit    audit.Recorder
}

// Activate reactivates userID and clears its failed-attempt counter.
func (s *UserService) Activate(ctx context.Context, actor *authn.Principal, userID uint) (*tokens.Identity, error) {
	return s.setActive(ctx, actor, userID, true)
}

func (s *UserService) Deactivate(ctx context.Context, actor *authn.Principal, userID uint) (*tokens.Identity, error) {
	return s.setActive(ctx, actor, userID, false)
}

func (s *UserService) setActive(ctx context.Context, actor *authn.Principal, userID uint, active bool) (*tokens.Identity, error) {
	l := logging.FromContext(ctx).With("svc", "users.set_active", "user_id", userID, "active", active)

	if err := s.Accounts.SetActive(ctx, userID, active); err != nil {
		l.Warn("set active failed", "error", err)
		return nil, storeErr(err)
	}
	acc, err := s.Accounts.FindAccountByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}

	if s.Audit != nil {
		state := "inactive"
		if active {
			state = "active"
		}
		s.Audit.Record(ctx, audit.Activity{
			ActorID:   actor.Identity().ID,
			Action:    audit.ActionUpdate,
			RecordID:  recordID(userID),
			ModelName: usersTable,
			IPAddress: actor.IPAddress,
			Notes:     fmt.Sprintf("User %s set to %s", acc.User.Email, state),
		})
	}

	identity := identityOf(acc)
	return &identity, nil
}
