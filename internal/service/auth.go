package service

import (
	"context"
	"fmt"
	"time"

	"github.com/echotube/echotube/internal/events"
	"github.com/echotube/echotube/internal/hash"
	"github.com/echotube/echotube/internal/logging"
	"github.com/echotube/echotube/internal/metrics"
	"github.com/echotube/echotube/internal/models"
	"github.com/echotube/echotube/internal/policy"
	"github.com/echotube/echotube/internal/repo"
	"github.com/echotube/echotube/internal/tokens"
)

// Bootstrap credentials for a fresh store. The admin is expected to rotate
// the password immediately.
const (
	bootstrapAdminUsername = "admin"
	bootstrapAdminPassword = "admin123"
)

type AuthService struct {
	Repo    *repo.GormRepo
	Secret  []byte
	Metrics *metrics.Collector
	Events  *events.Producer
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *models.Account
}

// Login authenticates a username/password pair and issues a session token.
// Unknown usernames and wrong passwords both surface as
// ErrInvalidCredentials so responses cannot be used to enumerate accounts.
// Expiry is evaluated against the wall clock on every call, regardless of
// whether the password matched.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	account, err := s.Repo.GetAccountByUsername(ctx, username)
	if err != nil {
		if err == repo.ErrNotFound {
			s.recordLogin(false)
			s.Events.Publish(ctx, events.TypeLoginFailed, username, map[string]string{"reason": "unknown username"})
			l.Warn("login_failed", "status", 401, "reason", "unknown username")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	if account.Expired(time.Now()) {
		s.recordLogin(false)
		s.Events.Publish(ctx, events.TypeLoginFailed, account.ID, map[string]string{"reason": "account expired"})
		l.Warn("login_failed", "status", 403, "reason", "account expired")
		return nil, ErrAccountExpired
	}

	if !hash.Check(account.PasswordHash, password) {
		s.recordLogin(false)
		s.Events.Publish(ctx, events.TypeLoginFailed, account.ID, map[string]string{"reason": "bad password"})
		l.Warn("login_failed", "status", 401, "reason", "bad password")
		return nil, ErrInvalidCredentials
	}

	exp := time.Now().Add(tokens.DefaultTTL)
	token, err := tokens.Issue(account.ID, account.Username, account.Role, exp, s.Secret)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.recordLogin(true)
	s.Events.Publish(ctx, events.TypeLogin, account.ID, map[string]string{"username": account.Username})
	l.Info("login_successful", "role", account.Role)

	return &LoginResult{Token: token, ExpiresAt: exp, Account: account}, nil
}

// Verify reloads the token subject's account so role changes, deletions and
// expiry take effect immediately rather than at token refresh.
func (s *AuthService) Verify(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.Repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Expired(time.Now()) {
		return nil, ErrAccountExpired
	}
	return account, nil
}

// EnsureAdmin is the idempotent bootstrap step: when the store holds no
// admin account it creates the default one, otherwise it does nothing.
func (s *AuthService) EnsureAdmin(ctx context.Context) error {
	l := logging.FromContext(ctx).With("svc", "auth.bootstrap")

	exists, err := s.Repo.AdminExists(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if exists {
		return nil
	}

	pwHash, err := hash.Password(bootstrapAdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	account := &models.Account{
		Username:     bootstrapAdminUsername,
		PasswordHash: pwHash,
		Role:         policy.RoleAdmin,
	}
	if err := s.Repo.CreateAccount(ctx, account); err != nil {
		// A concurrent boot may have won the race; that still satisfies
		// the postcondition.
		if err == repo.ErrUsernameTaken {
			return nil
		}
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	l.Info("default_admin_created", "username", bootstrapAdminUsername)
	return nil
}

func (s *AuthService) recordLogin(success bool) {
	if s.Metrics != nil {
		s.Metrics.RecordLogin(success)
	}
}
