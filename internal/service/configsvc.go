package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/echotube/echotube/internal/logging"
	"github.com/echotube/echotube/internal/policy"
	"github.com/echotube/echotube/internal/repo"
)

// ConfigService exposes the free-form key/value settings: readable by any
// authenticated user (the UI needs them), writable by admins only.
type ConfigService struct {
	Repo *repo.GormRepo
}

// Get returns the raw value for key, or nil when the key is absent. A
// missing key is not an error: the UI probes for optional settings.
func (s *ConfigService) Get(ctx context.Context, actor Actor, key string) (any, error) {
	if d := policy.Decide(actor.Role, actor.ID, "", policy.ActionRead); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}

	entry, err := s.Repo.GetConfig(ctx, key)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entry.Value, nil
}

func (s *ConfigService) Set(ctx context.Context, actor Actor, key string, value any) error {
	l := logging.FromContext(ctx).With("svc", "config.set", "key", key)

	if d := policy.Decide(actor.Role, actor.ID, "", policy.ActionManageConfig); !d.Allowed {
		return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}
	if key == "" {
		return fmt.Errorf("%w: key is required", ErrValidation)
	}

	if err := s.Repo.SetConfig(ctx, key, value); err != nil {
		return err
	}
	l.Info("config_saved")
	return nil
}
