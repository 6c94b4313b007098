package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Skotchmaster/adminpanel/internal/apperr"
	"github.com/Skotchmaster/adminpanel/internal/audit"
	"github.com/Skotchmaster/adminpanel/internal/authn"
	"github.com/Skotchmaster/adminpanel/internal/logging"
	"github.com/Skotchmaster/adminpanel/internal/models"
	"github.com/Skotchmaster/adminpanel/internal/revocation"
	"github.com/Skotchmaster/adminpanel/internal/tokens"
)

const DefaultMaxFailedAttempts = 3

var usersTable = models.User{}.TableName()

type AuthService struct {
	Accounts          AccountStore
	Tokens            *tokens.Codec
	Revocations       revocation.Store
	Hasher            PasswordHasher
	Audit             audit.Recorder
	MaxFailedAttempts int
	Now               func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *AuthService) maxAttempts() int {
	if s.MaxFailedAttempts <= 0 {
		return DefaultMaxFailedAttempts
	}
	return s.MaxFailedAttempts
}

func (s *AuthService) record(ctx context.Context, a audit.Activity) {
	if s.Audit == nil {
		return
	}
	if a.At.IsZero() {
		a.At = s.now()
	}
	s.Audit.Record(ctx, a)
}

func (s *AuthService) accessResult(identity tokens.Identity) (*TokenResult, error) {
	access, _, err := s.Tokens.IssueAccess(identity)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &TokenResult{
		AccessToken: access,
		TokenType:   TokenType,
		ExpiresIn:   int64(s.Tokens.AccessTTL / time.Second),
	}, nil
}

// Login checks the credentials and the lockout state. A wrong password
// increments the failed-attempt counter and locks the account when the
// counter reaches MaxFailedAttempts.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*TokenResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "email", email)
	limit := s.maxAttempts()

	acc, err := s.Accounts.FindAccountByEmail(ctx, email)
	if err != nil {
		err = storeErr(err)
		l.Warn("login failed", "reason", "lookup", "error", err)
		return nil, err
	}
	user := acc.User

	if user.FailedLoginAttempts >= limit {
		l.Warn("login failed", "status", 403, "reason", "account locked")
		return nil, apperr.ErrAccountLocked
	}
	if !user.Active {
		l.Warn("login failed", "status", 400, "reason", "user inactive")
		return nil, apperr.ErrUserInactive
	}

	if !s.Hasher.Check(user.Password, password) {
		attempts, _, err := s.Accounts.RegisterFailedLogin(ctx, user.ID, limit)
		if err != nil {
			l.Error("login failed", "status", 500, "reason", "cannot register failed attempt", "error", err)
			return nil, storeErr(err)
		}
		if attempts >= limit {
			l.Warn("login failed", "status", 401, "reason", "account locked now", "attempts", attempts)
			return nil, apperr.ErrAccountLocked.WithStatus(http.StatusUnauthorized)
		}
		l.Warn("login failed", "status", 401, "reason", "invalid password", "attempts", attempts)
		return nil, apperr.ErrInvalidCredentials.WithStatus(http.StatusUnauthorized).WithMessage(fmt.Sprintf(
			"Your remaining login attempts are %d. If you fail to login %d times, your account will be locked.",
			limit-attempts, limit))
	}

	at := s.now()
	if err := s.Accounts.RecordSuccessfulLogin(ctx, user.ID, at); err != nil {
		l.Error("login failed", "status", 500, "reason", "cannot reset attempts", "error", err)
		return nil, storeErr(err)
	}
	acc.User.FailedLoginAttempts = 0
	acc.User.LastLoggedIn = &at
	identity := identityOf(acc)

	res, err := s.accessResult(identity)
	if err != nil {
		l.Error("login failed", "status", 500, "error", err)
		return nil, err
	}
	refresh, _, err := s.Tokens.IssueRefresh(identity)
	if err != nil {
		l.Error("login failed", "status", 500, "error", err)
		return nil, apperr.Internal(err)
	}
	res.RefreshToken = refresh
	res.User = &identity

	s.record(ctx, audit.Activity{
		ActorID:   user.ID,
		Action:    audit.ActionLogin,
		RecordID:  recordID(user.ID),
		ModelName: usersTable,
		IPAddress: ip,
		Notes:     fmt.Sprintf("User %s has logged in", user.Email),
		At:        at,
	})
	l.Info("login successful", "user_id", user.ID)
	return res, nil
}

// Refresh issues a new access token from the snapshot carried by an
// authenticated refresh token. The database is not consulted.
func (s *AuthService) Refresh(ctx context.Context, claims *tokens.Claims) (*TokenResult, error) {
	if claims == nil || !claims.Expiry().After(s.now()) {
		return nil, apperr.ErrTokenInvalid
	}
	res, err := s.accessResult(claims.User)
	if err != nil {
		logging.FromContext(ctx).Error("refresh failed", "svc", "auth.refresh", "error", err)
		return nil, err
	}
	return res, nil
}

// Switch revokes the caller's current token and issues an access token for
// the account with targetEmail. The caller's permission to do so is checked
// by the route.
func (s *AuthService) Switch(ctx context.Context, p *authn.Principal, targetEmail string) (*TokenResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.switch", "target", targetEmail)

	if err := s.Revocations.Revoke(ctx, p.JTI()); err != nil {
		l.Error("switch failed", "status", 500, "reason", "cannot revoke token", "error", err)
		return nil, apperr.Internal(err)
	}

	acc, err := s.Accounts.FindAccountByEmail(ctx, targetEmail)
	if err != nil {
		err = storeErr(err)
		l.Warn("switch failed", "error", err)
		return nil, err
	}
	identity := identityOf(acc)

	res, err := s.accessResult(identity)
	if err != nil {
		return nil, err
	}
	res.User = &identity
	l.Info("account switched", "from", p.Identity().ID, "to", identity.ID)
	return res, nil
}

// Logout revokes only the token presented. A refresh token issued alongside
// it stays valid until its own expiry.
func (s *AuthService) Logout(ctx context.Context, p *authn.Principal) error {
	id := p.Identity()
	s.record(ctx, audit.Activity{
		ActorID:   id.ID,
		Action:    audit.ActionLogout,
		RecordID:  recordID(id.ID),
		ModelName: usersTable,
		IPAddress: p.IPAddress,
		Notes:     fmt.Sprintf("User %s has logged out", id.Email),
	})

	if err := s.Revocations.Revoke(ctx, p.JTI()); err != nil {
		logging.FromContext(ctx).Error("logout failed", "svc", "auth.logout", "error", err)
		return apperr.Internal(err)
	}
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, p *authn.Principal, oldPassword, newPassword, confirmPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "user_id", p.Identity().ID)

	acc, err := s.Accounts.FindAccountByID(ctx, p.Identity().ID)
	if err != nil {
		return storeErr(err)
	}

	if !s.Hasher.Check(acc.User.Password, oldPassword) {
		l.Warn("change password failed", "reason", "old password mismatch")
		return apperr.ErrInvalidCredentials
	}
	if newPassword != confirmPassword {
		return apperr.ErrConfirmMismatch
	}
	if !ValidatePassword(newPassword) {
		return apperr.ErrWeakPassword
	}

	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		l.Error("change password failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return apperr.Internal(err)
	}
	if err := s.Accounts.UpdatePassword(ctx, acc.User.ID, hash); err != nil {
		l.Error("change password failed", "status", 500, "error", err)
		return storeErr(err)
	}

	s.record(ctx, audit.Activity{
		ActorID:   acc.User.ID,
		Action:    audit.ActionUpdate,
		RecordID:  recordID(acc.User.ID),
		ModelName: usersTable,
		IPAddress: p.IPAddress,
		Notes:     fmt.Sprintf("User %s has changed their password", acc.User.Email),
	})
	return nil
}

func (s *AuthService) Register(ctx context.Context, name, email, password, ip string) (*tokens.Identity, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "email", email)

	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || password == "" || !strings.Contains(email, "@") {
		return nil, apperr.ErrValidation.WithMessage("name, email and password are required")
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, apperr.Internal(err)
	}

	acc, err := s.Accounts.CreateUser(ctx, &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Active:   true,
	})
	if err != nil {
		if isDuplicate(err) {
			l.Warn("register_error", "status", 403, "reason", "user already exist")
			return nil, apperr.ErrUserExists
		}
		l.Error("register_error", "status", 500, "error", err)
		return nil, apperr.Internal(err)
	}

	identity := identityOf(acc)
	s.record(ctx, audit.Activity{
		ActorID:   identity.ID,
		Action:    audit.ActionCreate,
		RecordID:  recordID(identity.ID),
		ModelName: usersTable,
		IPAddress: ip,
		Notes:     fmt.Sprintf("User %s has registered", identity.Email),
	})
	return &identity, nil
}

// Me reads the caller's current account state, which may differ from the
// snapshot in the token.
func (s *AuthService) Me(ctx context.Context, p *authn.Principal) (*tokens.Identity, error) {
	acc, err := s.Accounts.FindAccountByID(ctx, p.Identity().ID)
	if err != nil {
		return nil, storeErr(err)
	}
	identity := identityOf(acc)
	return &identity, nil
}
