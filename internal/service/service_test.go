package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/adminpanel/internal/apperr"
	"github.com/Skotchmaster/adminpanel/internal/audit"
	"github.com/Skotchmaster/adminpanel/internal/authn"
	"github.com/Skotchmaster/adminpanel/internal/db"
	"github.com/Skotchmaster/adminpanel/internal/db/dbtest"
	"github.com/Skotchmaster/adminpanel/internal/hash"
	"github.com/Skotchmaster/adminpanel/internal/models"
	"github.com/Skotchmaster/adminpanel/internal/repo"
	"github.com/Skotchmaster/adminpanel/internal/revocation"
	"github.com/Skotchmaster/adminpanel/internal/tokens"
)

const (
	userEmail    = "user@mail.com"
	userPassword = "Secret#123"
)

type testEnv struct {
	db     *gorm.DB
	svc    *AuthService
	users  *UserService
	auth   *authn.Authenticator
	codec  *tokens.Codec
	hasher hash.Bcrypt
	now    time.Time
	user   models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb := dbtest.InitTestDB(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	codec, err := tokens.NewCodec([]byte("test-jwt-secret"), "HS256", time.Hour, 48*time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		db:     gdb,
		codec:  codec,
		hasher: hash.Bcrypt{Cost: bcrypt.MinCost},
		now:    time.Now().UTC().Truncate(time.Second),
	}
	codec.Now = func() time.Time { return env.now }

	store := revocation.NewRedisStore(client, time.Hour)
	accounts := repo.New(gdb)
	recorder := audit.NewFanout(&audit.DBSink{DB: gdb})

	env.auth = authn.NewAuthenticator(codec, store)
	env.svc = &AuthService{
		Accounts:          accounts,
		Tokens:            codec,
		Revocations:       store,
		Hasher:            env.hasher,
		Audit:             recorder,
		MaxFailedAttempts: 3,
		Now:               func() time.Time { return env.now },
	}
	env.users = &UserService{Accounts: accounts, Audit: recorder}

	pw, err := env.hasher.Hash(userPassword)
	require.NoError(t, err)
	env.user = dbtest.SeedUser(t, gdb, "Jane", userEmail, pw, dbtest.RoleID(t, gdb, db.DefaultRole))
	return env
}

func (e *testEnv) principal(t *testing.T, raw string, kind authn.Kind) *authn.Principal {
	t.Helper()
	claims, err := e.auth.Authenticate(context.Background(), "Bearer "+raw, kind)
	require.NoError(t, err)
	return &authn.Principal{Claims: claims, IPAddress: "10.0.0.1"}
}

func (e *testEnv) reload(t *testing.T) models.User {
	t.Helper()
	var u models.User
	require.NoError(t, e.db.Take(&u, e.user.ID).Error)
	return u
}

func (e *testEnv) auditActions(t *testing.T) []string {
	t.Helper()
	var actions []string
	require.NoError(t, e.db.Model(&models.AuditLog{}).Order("id").Pluck("action", &actions).Error)
	return actions
}

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Login(ctx, userEmail, userPassword, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.EqualValues(t, 3600, res.ExpiresIn)
	require.NotNil(t, res.User)
	assert.Equal(t, env.user.ID, res.User.ID)
	assert.Equal(t, db.DefaultRole, res.User.Role)

	access, err := env.codec.Verify(res.AccessToken)
	require.NoError(t, err)
	assert.False(t, access.Refresh)
	assert.Equal(t, userEmail, access.User.Email)

	refresh, err := env.codec.Verify(res.RefreshToken)
	require.NoError(t, err)
	assert.True(t, refresh.Refresh)
	assert.NotEqual(t, access.JTI(), refresh.JTI())

	u := env.reload(t)
	require.NotNil(t, u.LastLoggedIn)
	assert.True(t, env.now.Equal(*u.LastLoggedIn))
	assert.Equal(t, []string{"LOGIN"}, env.auditActions(t))
}

func TestLogin_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Login(context.Background(), "nobody@mail.com", userPassword, "")
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestLogin_UserWithoutRole(t *testing.T) {
	env := newTestEnv(t)
	pw, err := env.hasher.Hash(userPassword)
	require.NoError(t, err)
	require.NoError(t, env.db.Create(&models.User{Name: "Loose", Email: "loose@mail.com", Password: pw, Active: true}).Error)

	res, err := env.svc.Login(context.Background(), "loose@mail.com", userPassword, "")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
	assert.Empty(t, env.auditActions(t))
}

func TestLogin_LockoutAfterThreeFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Login(ctx, userEmail, "wrong", "")
	require.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	assert.Equal(t, http.StatusUnauthorized, apperr.From(err).Status)
	assert.Contains(t, apperr.From(err).Message, "remaining login attempts are 2")

	_, err = env.svc.Login(ctx, userEmail, "wrong", "")
	require.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	assert.Contains(t, apperr.From(err).Message, "remaining login attempts are 1")

	_, err = env.svc.Login(ctx, userEmail, "wrong", "")
	require.ErrorIs(t, err, apperr.ErrAccountLocked)
	assert.Equal(t, http.StatusUnauthorized, apperr.From(err).Status)

	u := env.reload(t)
	assert.Equal(t, 3, u.FailedLoginAttempts)
	assert.False(t, u.Active)

	_, err = env.svc.Login(ctx, userEmail, userPassword, "")
	require.ErrorIs(t, err, apperr.ErrAccountLocked)
	assert.Equal(t, http.StatusForbidden, apperr.From(err).Status)
	assert.Equal(t, 3, env.reload(t).FailedLoginAttempts)
}

func TestLogin_SuccessResetsCounter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for range 2 {
		_, err := env.svc.Login(ctx, userEmail, "wrong", "")
		require.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	}
	_, err := env.svc.Login(ctx, userEmail, userPassword, "")
	require.NoError(t, err)
	assert.Zero(t, env.reload(t).FailedLoginAttempts)

	_, err = env.svc.Login(ctx, userEmail, "wrong", "")
	assert.Contains(t, apperr.From(err).Message, "remaining login attempts are 2")
}

func TestLogin_InactiveUser(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", env.user.ID).Update("active", false).Error)

	_, err := env.svc.Login(context.Background(), userEmail, userPassword, "")
	assert.ErrorIs(t, err, apperr.ErrUserInactive)
	assert.Zero(t, env.reload(t).FailedLoginAttempts)
}

func TestActivate_UnlocksAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for range 3 {
		_, _ = env.svc.Login(ctx, userEmail, "wrong", "")
	}

	admin := &authn.Principal{Claims: &tokens.Claims{User: tokens.Identity{ID: 99, RoleID: 1}}, IPAddress: "10.0.0.2"}
	identity, err := env.users.Activate(ctx, admin, env.user.ID)
	require.NoError(t, err)
	assert.True(t, identity.Active)

	_, err = env.svc.Login(ctx, userEmail, userPassword, "")
	require.NoError(t, err)

	identity, err = env.users.Deactivate(ctx, admin, env.user.ID)
	require.NoError(t, err)
	assert.False(t, identity.Active)

	_, err = env.svc.Login(ctx, userEmail, userPassword, "")
	assert.ErrorIs(t, err, apperr.ErrUserInactive)

	_, err = env.users.Activate(ctx, admin, 12345)
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Login(ctx, userEmail, userPassword, "")
	require.NoError(t, err)
	p := env.principal(t, res.RefreshToken, authn.RefreshToken)

	out, err := env.svc.Refresh(ctx, p.Claims)
	require.NoError(t, err)
	assert.Empty(t, out.RefreshToken)

	claims, err := env.codec.Verify(out.AccessToken)
	require.NoError(t, err)
	assert.False(t, claims.Refresh)
	assert.Equal(t, p.Identity(), claims.User)

	env.now = env.now.Add(48 * time.Hour)
	_, err = env.svc.Refresh(ctx, p.Claims)
	assert.ErrorIs(t, err, apperr.ErrTokenInvalid)
}

func TestLogout_RevokesOnlyPresentedToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Login(ctx, userEmail, userPassword, "")
	require.NoError(t, err)

	require.NoError(t, env.svc.Logout(ctx, env.principal(t, res.AccessToken, authn.AccessToken)))

	_, err = env.auth.Authenticate(ctx, "Bearer "+res.AccessToken, authn.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrTokenRevoked)

	_, err = env.auth.Authenticate(ctx, "Bearer "+res.RefreshToken, authn.RefreshToken)
	assert.NoError(t, err, "refresh token outlives logout")

	assert.Equal(t, []string{"LOGIN", "LOGOUT"}, env.auditActions(t))
}

func TestSwitch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	other := dbtest.SeedUser(t, env.db, "Other", "other@mail.com", "x", dbtest.RoleID(t, env.db, db.SuperAdminRole))

	res, err := env.svc.Login(ctx, userEmail, userPassword, "")
	require.NoError(t, err)
	p := env.principal(t, res.AccessToken, authn.AccessToken)

	out, err := env.svc.Switch(ctx, p, "other@mail.com")
	require.NoError(t, err)
	require.NotNil(t, out.User)
	assert.Equal(t, other.ID, out.User.ID)
	assert.Equal(t, db.SuperAdminRole, out.User.Role)

	_, err = env.auth.Authenticate(ctx, "Bearer "+res.AccessToken, authn.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrTokenRevoked)

	claims, err := env.auth.Authenticate(ctx, "Bearer "+out.AccessToken, authn.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "other@mail.com", claims.User.Email)
}

func TestSwitch_UnknownTargetStillRevokes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Login(ctx, userEmail, userPassword, "")
	require.NoError(t, err)
	p := env.principal(t, res.AccessToken, authn.AccessToken)

	_, err = env.svc.Switch(ctx, p, "ghost@mail.com")
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)

	_, err = env.auth.Authenticate(ctx, "Bearer "+res.AccessToken, authn.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrTokenRevoked)
}

func TestSwitch_TargetWithoutRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.db.Create(&models.User{Name: "Loose", Email: "loose@mail.com", Password: "x", Active: true}).Error)

	res, err := env.svc.Login(ctx, userEmail, userPassword, "")
	require.NoError(t, err)
	p := env.principal(t, res.AccessToken, authn.AccessToken)

	out, err := env.svc.Switch(ctx, p, "loose@mail.com")
	assert.Nil(t, out)
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestStoreErr(t *testing.T) {
	assert.ErrorIs(t, storeErr(repo.ErrNotFound), apperr.ErrUserNotFound)
	assert.ErrorIs(t, storeErr(fmt.Errorf("create: %w", repo.ErrDuplicate)), apperr.ErrDuplicateRecord)

	err := storeErr(errors.New("connection reset"))
	assert.ErrorIs(t, err, apperr.ErrInternal)
	assert.Equal(t, http.StatusInternalServerError, apperr.From(err).Status)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Login(ctx, userEmail, userPassword, "")
	require.NoError(t, err)
	p := env.principal(t, res.AccessToken, authn.AccessToken)
	original := env.reload(t).Password

	tests := []struct {
		name    string
		old     string
		new     string
		confirm string
		want    error
	}{
		{name: "wrong old password", old: "nope", new: "NewPass#1", confirm: "NewPass#1", want: apperr.ErrInvalidCredentials},
		{name: "confirm mismatch", old: userPassword, new: "NewPass#1", confirm: "NewPass#2", want: apperr.ErrConfirmMismatch},
		{name: "weak password", old: userPassword, new: "weakpass", confirm: "weakpass", want: apperr.ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.svc.ChangePassword(ctx, p, tt.old, tt.new, tt.confirm)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, original, env.reload(t).Password)
		})
	}

	require.NoError(t, env.svc.ChangePassword(ctx, p, userPassword, "NewPass#1", "NewPass#1"))
	assert.True(t, env.hasher.Check(env.reload(t).Password, "NewPass#1"))
	assert.Equal(t, []string{"LOGIN", "UPDATE"}, env.auditActions(t))

	_, err = env.svc.Login(ctx, userEmail, "NewPass#1", "")
	assert.NoError(t, err)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	identity, err := env.svc.Register(ctx, "New", "new@mail.com", "Secret#456", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, db.DefaultRole, identity.Role)
	assert.True(t, identity.Active)

	_, err = env.svc.Login(ctx, "new@mail.com", "Secret#456", "")
	require.NoError(t, err)

	_, err = env.svc.Register(ctx, "Again", "new@mail.com", "Secret#456", "")
	assert.ErrorIs(t, err, apperr.ErrUserExists)

	_, err = env.svc.Register(ctx, "", "bad", "", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestMe_ReadsCurrentState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Login(ctx, userEmail, userPassword, "")
	require.NoError(t, err)
	p := env.principal(t, res.AccessToken, authn.AccessToken)

	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", env.user.ID).Update("name", "Renamed").Error)

	identity, err := env.svc.Me(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", identity.Name)
	assert.Equal(t, "Jane", p.Identity().Name)
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		password string
		ok       bool
	}{
		{"Secret#123", true},
		{"Aa1-aaaa", true},
		{"Aa1#aaa", false},
		{"secret#123", false},
		{"SECRET#123", false},
		{"Secret#abc", false},
		{"Secret1234", false},
		{"Secret 123", false},
		{"Secret#123\n", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, ValidatePassword(tt.password), tt.password)
	}
}
