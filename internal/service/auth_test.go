package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/echotube/echotube/internal/hash"
	"github.com/echotube/echotube/internal/models"
	"github.com/echotube/echotube/internal/policy"
	"github.com/echotube/echotube/internal/repo"
	"github.com/echotube/echotube/internal/search"
	"github.com/echotube/echotube/internal/tokens"
)

var testSecret = []byte("test-jwt-secret")

type testEnv struct {
	repo     *repo.GormRepo
	auth     *AuthService
	accounts *AccountService
	videos   *VideoService
	configs  *ConfigService
	backup   *BackupService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.Video{}, &models.ConfigEntry{}))

	r := repo.New(db)
	return &testEnv{
		repo:     r,
		auth:     &AuthService{Repo: r, Secret: testSecret},
		accounts: &AccountService{Repo: r},
		videos:   &VideoService{Repo: r, Search: &search.Service{Repo: r}},
		configs:  &ConfigService{Repo: r},
		backup:   &BackupService{Repo: r},
	}
}

func (e *testEnv) seedAccount(t *testing.T, username, password, role string, expiry *time.Time) *models.Account {
	t.Helper()

	pwHash, err := hash.Password(password)
	require.NoError(t, err)
	account := &models.Account{Username: username, PasswordHash: pwHash, Role: role, ExpiryDate: expiry}
	require.NoError(t, e.repo.CreateAccount(context.Background(), account))
	return account
}

func actorFor(a *models.Account) Actor {
	return Actor{ID: a.ID, Username: a.Username, Role: a.Role}
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.seedAccount(t, "alice", "s3cret", policy.RoleAuthor, nil)

	res, err := env.auth.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, res.Account)

	assert.Equal(t, "alice", res.Account.Username)
	assert.Equal(t, policy.RoleAuthor, res.Account.Role)
	assert.WithinDuration(t, time.Now().Add(tokens.DefaultTTL), res.ExpiresAt, 5*time.Second)

	claims, err := tokens.Parse(res.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, res.Account.ID, claims.Subject)
	assert.Equal(t, policy.RoleAuthor, claims.Role)
}

func TestLogin_NoUsernameEnumeration(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.seedAccount(t, "alice", "s3cret", policy.RoleUser, nil)

	_, errUnknownUser := env.auth.Login(ctx, "mallory", "whatever")
	_, errWrongPassword := env.auth.Login(ctx, "alice", "wrong")

	// Unknown username and wrong password must be indistinguishable.
	assert.ErrorIs(t, errUnknownUser, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPassword, ErrInvalidCredentials)
	assert.Equal(t, errUnknownUser.Error(), errWrongPassword.Error())
}

func TestLogin_ExpiredAccount(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	past := time.Now().Add(-24 * time.Hour)
	env.seedAccount(t, "old", "s3cret", policy.RoleUser, &past)

	// Expired even with the correct password.
	_, err := env.auth.Login(ctx, "old", "s3cret")
	assert.ErrorIs(t, err, ErrAccountExpired)

	// And with a wrong one: expiry is evaluated regardless.
	_, err = env.auth.Login(ctx, "old", "wrong")
	assert.ErrorIs(t, err, ErrAccountExpired)
}

func TestLogin_FutureExpiryStillValid(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	future := time.Now().Add(24 * time.Hour)
	env.seedAccount(t, "trial", "s3cret", policy.RoleUser, &future)

	res, err := env.auth.Login(ctx, "trial", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "trial", res.Account.Username)
}

func TestVerify_ReChecksExpiry(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	account := env.seedAccount(t, "soon", "s3cret", policy.RoleUser, nil)

	got, err := env.auth.Verify(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	// Expire the account after the token was issued: verification must now
	// reject it even though the token itself is still unexpired.
	past := time.Now().Add(-time.Minute)
	account.ExpiryDate = &past
	require.NoError(t, env.repo.SaveAccount(ctx, account))

	_, err = env.auth.Verify(ctx, account.ID)
	assert.ErrorIs(t, err, ErrAccountExpired)
}

func TestEnsureAdmin_Bootstrap(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.auth.EnsureAdmin(ctx))

	res, err := env.auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, policy.RoleAdmin, res.Account.Role)

	// Idempotent: a second run must not create a second admin or touch the
	// existing one.
	require.NoError(t, env.auth.EnsureAdmin(ctx))
	accounts, err := env.repo.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestEnsureAdmin_SkipsWhenAdminPresent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.seedAccount(t, "root", "hunter2", policy.RoleAdmin, nil)

	require.NoError(t, env.auth.EnsureAdmin(ctx))

	_, err := env.repo.GetAccountByUsername(ctx, "admin")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestAccountService_AdminOnly(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedAccount(t, "plain", "pw", policy.RoleUser, nil)

	_, err := env.accounts.List(ctx, actorFor(user))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.accounts.Create(ctx, actorFor(user), "new", "pw", policy.RoleUser, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	err = env.accounts.Delete(ctx, actorFor(user), user.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAccountService_CreateAndUpdate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedAccount(t, "root", "rootpw", policy.RoleAdmin, nil)

	created, err := env.accounts.Create(ctx, actorFor(admin), "student", "firstpw", "", nil)
	require.NoError(t, err)
	assert.Equal(t, policy.RoleUser, created.Role, "role defaults to user")
	assert.NotEqual(t, "firstpw", created.PasswordHash)

	_, err = env.accounts.Create(ctx, actorFor(admin), "student", "other", policy.RoleUser, nil)
	assert.ErrorIs(t, err, repo.ErrUsernameTaken)

	newPassword := "secondpw"
	newRole := policy.RoleAuthor
	updated, err := env.accounts.Update(ctx, actorFor(admin), created.ID, AccountPatch{
		Password: &newPassword,
		Role:     &newRole,
	})
	require.NoError(t, err)
	assert.Equal(t, policy.RoleAuthor, updated.Role)

	// Old password no longer works, new one does, and it was stored hashed.
	_, err = env.auth.Login(ctx, "student", "firstpw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	res, err := env.auth.Login(ctx, "student", "secondpw")
	require.NoError(t, err)
	assert.Equal(t, policy.RoleAuthor, res.Account.Role)
}

func TestAccountService_InvalidRole(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedAccount(t, "root", "rootpw", policy.RoleAdmin, nil)

	_, err := env.accounts.Create(ctx, actorFor(admin), "weird", "pw", "superuser", nil)
	assert.ErrorIs(t, err, ErrValidation)
}
