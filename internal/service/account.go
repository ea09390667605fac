package service

import (
	"context"
	"fmt"
	"time"

	"github.com/echotube/echotube/internal/hash"
	"github.com/echotube/echotube/internal/logging"
	"github.com/echotube/echotube/internal/models"
	"github.com/echotube/echotube/internal/policy"
	"github.com/echotube/echotube/internal/repo"
)

// AccountService is the admin-only account management surface. Every method
// takes the acting identity and consults the policy itself, so handlers
// never duplicate the role check.
type AccountService struct {
	Repo *repo.GormRepo
}

func (s *AccountService) authorize(actor Actor) error {
	if d := policy.Decide(actor.Role, actor.ID, "", policy.ActionManageAccounts); !d.Allowed {
		return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}
	return nil
}

func (s *AccountService) List(ctx context.Context, actor Actor) ([]models.Account, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	return s.Repo.ListAccounts(ctx)
}

func (s *AccountService) Create(ctx context.Context, actor Actor, username, password, role string, expiry *time.Time) (*models.Account, error) {
	l := logging.FromContext(ctx).With("svc", "account.create", "username", username)

	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if role == "" {
		role = policy.RoleUser
	}
	if !policy.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	pwHash, err := hash.Password(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &models.Account{
		Username:     username,
		PasswordHash: pwHash,
		Role:         role,
		ExpiryDate:   expiry,
	}
	if err := s.Repo.CreateAccount(ctx, account); err != nil {
		if err == repo.ErrUsernameTaken {
			l.Warn("account_create_failed", "status", 409, "reason", "username taken")
		}
		return nil, err
	}

	l.Info("account_created", "role", role)
	return account, nil
}

// AccountPatch carries the admin-updatable fields; nil means "leave as is".
// A non-nil password is re-hashed before it is stored.
type AccountPatch struct {
	Password   *string
	Role       *string
	ExpiryDate *time.Time
	// ClearExpiry removes an existing expiry date.
	ClearExpiry bool
}

func (s *AccountService) Update(ctx context.Context, actor Actor, id string, patch AccountPatch) (*models.Account, error) {
	l := logging.FromContext(ctx).With("svc", "account.update", "account_id", id)

	if err := s.authorize(actor); err != nil {
		return nil, err
	}

	account, err := s.Repo.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Password != nil && *patch.Password != "" {
		pwHash, err := hash.Password(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		account.PasswordHash = pwHash
	}
	if patch.Role != nil {
		if !policy.ValidRole(*patch.Role) {
			return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, *patch.Role)
		}
		account.Role = *patch.Role
	}
	if patch.ClearExpiry {
		account.ExpiryDate = nil
	} else if patch.ExpiryDate != nil {
		account.ExpiryDate = patch.ExpiryDate
	}

	if err := s.Repo.SaveAccount(ctx, account); err != nil {
		return nil, err
	}

	l.Info("account_updated")
	return account, nil
}

func (s *AccountService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := s.authorize(actor); err != nil {
		return err
	}
	return s.Repo.DeleteAccount(ctx, id)
}
