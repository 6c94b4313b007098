package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Skotchmaster/adminpanel/internal/apperr"
	"github.com/Skotchmaster/adminpanel/internal/models"
	"github.com/Skotchmaster/adminpanel/internal/repo"
	"github.com/Skotchmaster/adminpanel/internal/tokens"
)

const TokenType = "Bearer"

// AccountStore is the persistence the account flows need.
type AccountStore interface {
	FindAccountByEmail(ctx context.Context, email string) (*repo.Account, error)
	FindAccountByID(ctx context.Context, id uint) (*repo.Account, error)
	RegisterFailedLogin(ctx context.Context, id uint, limit int) (attempts int, active bool, err error)
	RecordSuccessfulLogin(ctx context.Context, id uint, at time.Time) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	CreateUser(ctx context.Context, u *models.User) (*repo.Account, error)
	SetActive(ctx context.Context, id uint, active bool) error
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Check(hash, plain string) bool
}

// TokenResult is returned by every flow that issues tokens. RefreshToken and
// User are empty when the flow does not produce them.
type TokenResult struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
	User         *tokens.Identity
}

func identityOf(acc *repo.Account) tokens.Identity {
	return tokens.Identity{
		ID:           acc.User.ID,
		Name:         acc.User.Name,
		Email:        acc.User.Email,
		RoleID:       acc.RoleID,
		Role:         acc.RoleName,
		Active:       acc.User.Active,
		LastLoggedIn: acc.User.LastLoggedIn,
	}
}

func isDuplicate(err error) bool { return errors.Is(err, repo.ErrDuplicate) }

func recordID(id uint) string { return strconv.FormatUint(uint64(id), 10) }

// storeErr maps repository failures onto the public taxonomy.
func storeErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return apperr.ErrUserNotFound
	case errors.Is(err, repo.ErrDuplicate):
		return apperr.ErrDuplicateRecord
	}
	return apperr.Internal(err)
}
