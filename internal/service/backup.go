package service

import (
	"context"
	"fmt"
	"time"

	"github.com/echotube/echotube/internal/events"
	"github.com/echotube/echotube/internal/logging"
	"github.com/echotube/echotube/internal/metrics"
	"github.com/echotube/echotube/internal/models"
	"github.com/echotube/echotube/internal/policy"
	"github.com/echotube/echotube/internal/repo"
)

// BackupService exports and restores whole collections. Import is a
// destructive replace and is transactional per collection but not across
// collections; it is meant to run in a maintenance window, not against a
// store serving concurrent writes.
type BackupService struct {
	Repo    *repo.GormRepo
	Metrics *metrics.Collector
	Events  *events.Producer
}

func (s *BackupService) authorize(actor Actor) error {
	if d := policy.Decide(actor.Role, actor.ID, "", policy.ActionBackup); !d.Allowed {
		return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}
	return nil
}

// Export bundles all videos, accounts and configs into one snapshot.
// Password hashes are excluded by the account model's json tags, so a
// snapshot can be archived without holding secrets.
func (s *BackupService) Export(ctx context.Context, actor Actor) (*models.Snapshot, error) {
	l := logging.FromContext(ctx).With("svc", "backup.export")

	if err := s.authorize(actor); err != nil {
		return nil, err
	}

	videos, err := s.Repo.ListVideos(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("export videos: %w", err)
	}
	accounts, err := s.Repo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("export accounts: %w", err)
	}
	configs, err := s.Repo.ListConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("export configs: %w", err)
	}

	if s.Metrics != nil {
		s.Metrics.RecordBackupExport()
	}
	s.Events.Publish(ctx, events.TypeBackupExport, actor.ID, map[string]int{
		"videos": len(videos), "users": len(accounts), "configs": len(configs),
	})
	l.Info("backup_exported", "videos", len(videos), "users", len(accounts), "configs", len(configs))

	return &models.Snapshot{
		Version:   models.SnapshotVersion,
		Timestamp: time.Now().UTC(),
		Data: models.SnapshotData{
			Videos:  videos,
			Users:   accounts,
			Configs: configs,
		},
	}, nil
}

// Import restores the collections present in the snapshot. Accounts are
// deliberately never imported: restoring them would overwrite live
// credentials. Each present collection is replaced wholesale.
func (s *BackupService) Import(ctx context.Context, actor Actor, data *models.SnapshotData) error {
	l := logging.FromContext(ctx).With("svc", "backup.import")

	if err := s.authorize(actor); err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("%w: missing data object", ErrMalformedSnapshot)
	}

	if data.Videos != nil {
		if err := s.Repo.ReplaceVideos(ctx, data.Videos); err != nil {
			return fmt.Errorf("import videos: %w", err)
		}
		l.Info("collection_restored", "collection", "videos", "count", len(data.Videos))
	}
	if data.Configs != nil {
		if err := s.Repo.ReplaceConfigs(ctx, data.Configs); err != nil {
			return fmt.Errorf("import configs: %w", err)
		}
		l.Info("collection_restored", "collection", "configs", "count", len(data.Configs))
	}

	if s.Metrics != nil {
		s.Metrics.RecordBackupImport()
	}
	s.Events.Publish(ctx, events.TypeBackupImport, actor.ID, map[string]int{
		"videos": len(data.Videos), "configs": len(data.Configs),
	})
	return nil
}
