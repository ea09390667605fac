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
	"github.com/echotube/echotube/internal/search"
)

type VideoService struct {
	Repo    *repo.GormRepo
	Search  *search.Service
	Metrics *metrics.Collector
	Events  *events.Producer
}

type CreateVideoInput struct {
	Title       string
	VideoID     string
	VideoSource string
	Subtitles   string
	Keywords    []models.Keyword
}

func (s *VideoService) Create(ctx context.Context, actor Actor, in CreateVideoInput) (*models.Video, error) {
	l := logging.FromContext(ctx).With("svc", "video.create")

	if d := policy.Decide(actor.Role, actor.ID, "", policy.ActionCreate); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}
	if in.Title == "" || in.VideoID == "" {
		return nil, fmt.Errorf("%w: title and videoId are required", ErrValidation)
	}
	if in.VideoSource != "" && !models.ValidVideoSource(in.VideoSource) {
		return nil, fmt.Errorf("%w: unsupported video source %q", ErrValidation, in.VideoSource)
	}

	video := &models.Video{
		Title:       in.Title,
		VideoID:     in.VideoID,
		VideoSource: in.VideoSource,
		Subtitles:   in.Subtitles,
		Keywords:    in.Keywords,
		CreatedBy:   actor.ID,
	}
	if err := s.Repo.CreateVideo(ctx, video); err != nil {
		return nil, err
	}

	s.Search.Index(ctx, video)
	s.Events.Publish(ctx, events.TypeVideoCreated, video.ID, map[string]string{"title": video.Title})
	l.Info("video_created", "video_id", video.ID)
	return video, nil
}

func (s *VideoService) Get(ctx context.Context, actor Actor, id string) (*models.Video, error) {
	if d := policy.Decide(actor.Role, actor.ID, "", policy.ActionRead); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}
	return s.Repo.GetVideo(ctx, id)
}

// List returns videos for the actor, owner-scoped for authors rather than
// denied, with creator usernames resolved for display.
func (s *VideoService) List(ctx context.Context, actor Actor) ([]models.Video, error) {
	if d := policy.Decide(actor.Role, actor.ID, "", policy.ActionRead); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}

	ownerID := ""
	if policy.OwnerScoped(actor.Role) {
		ownerID = actor.ID
	}
	videos, err := s.Repo.ListVideos(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.resolveCreators(ctx, videos); err != nil {
		return nil, err
	}
	return videos, nil
}

func (s *VideoService) resolveCreators(ctx context.Context, videos []models.Video) error {
	ids := make([]string, 0, len(videos))
	seen := make(map[string]bool, len(videos))
	for _, v := range videos {
		if v.CreatedBy != "" && !seen[v.CreatedBy] {
			seen[v.CreatedBy] = true
			ids = append(ids, v.CreatedBy)
		}
	}
	names, err := s.Repo.UsernamesByID(ctx, ids)
	if err != nil {
		return err
	}
	for i := range videos {
		videos[i].CreatedByName = names[videos[i].CreatedBy]
	}
	return nil
}

// VideoPatch is a merge-patch: nil fields are retained, non-nil overwrite.
type VideoPatch struct {
	Title       *string
	VideoID     *string
	VideoSource *string
	Subtitles   *string
	Keywords    *[]models.Keyword
}

func (s *VideoService) Update(ctx context.Context, actor Actor, id string, patch VideoPatch) (*models.Video, error) {
	l := logging.FromContext(ctx).With("svc", "video.update", "video_id", id)

	video, err := s.Repo.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := policy.Decide(actor.Role, actor.ID, video.CreatedBy, policy.ActionUpdate); !d.Allowed {
		l.Warn("video_update_denied", "status", 403, "reason", d.Reason)
		return nil, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}

	if patch.Title != nil {
		video.Title = *patch.Title
	}
	if patch.VideoID != nil {
		video.VideoID = *patch.VideoID
	}
	if patch.VideoSource != nil {
		if !models.ValidVideoSource(*patch.VideoSource) {
			return nil, fmt.Errorf("%w: unsupported video source %q", ErrValidation, *patch.VideoSource)
		}
		video.VideoSource = *patch.VideoSource
	}
	if patch.Subtitles != nil {
		video.Subtitles = *patch.Subtitles
	}
	if patch.Keywords != nil {
		video.Keywords = *patch.Keywords
	}

	if err := s.Repo.SaveVideo(ctx, video); err != nil {
		return nil, err
	}

	s.Search.Index(ctx, video)
	l.Info("video_updated")
	return video, nil
}

func (s *VideoService) Delete(ctx context.Context, actor Actor, id string) error {
	l := logging.FromContext(ctx).With("svc", "video.delete", "video_id", id)

	video, err := s.Repo.GetVideo(ctx, id)
	if err != nil {
		return err
	}
	if d := policy.Decide(actor.Role, actor.ID, video.CreatedBy, policy.ActionDelete); !d.Allowed {
		l.Warn("video_delete_denied", "status", 403, "reason", d.Reason)
		return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}

	if err := s.Repo.DeleteVideo(ctx, id); err != nil {
		return err
	}

	s.Search.Remove(ctx, id)
	s.Events.Publish(ctx, events.TypeVideoDeleted, id, nil)
	l.Info("video_deleted")
	return nil
}

type CheckInResult struct {
	Video        *models.Video
	TotalRecords int
	DistinctDays int
}

// CheckIn appends a study record to the video's log. Multiple check-ins on
// one calendar day are all stored; DistinctDays collapses them for callers.
func (s *VideoService) CheckIn(ctx context.Context, actor Actor, videoID string, step int) (*CheckInResult, error) {
	l := logging.FromContext(ctx).With("svc", "video.checkin", "video_id", videoID)

	if d := policy.Decide(actor.Role, actor.ID, "", policy.ActionCheckIn); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}

	video, err := s.Repo.AppendCheckIn(ctx, videoID, step, time.Now())
	if err != nil {
		return nil, err
	}

	if s.Metrics != nil {
		s.Metrics.RecordCheckIn()
	}
	s.Events.Publish(ctx, events.TypeCheckIn, videoID, map[string]any{"step": step, "by": actor.ID})
	l.Info("checkin_recorded", "step", step)

	return &CheckInResult{
		Video:        video,
		TotalRecords: len(video.CheckInRecords),
		DistinctDays: DistinctCheckInDays(video.CheckInRecords),
	}, nil
}

// DistinctCheckInDays collapses the append-only check-in log by calendar
// date (UTC) and returns the number of distinct study days.
func DistinctCheckInDays(records []models.CheckInRecord) int {
	days := make(map[string]bool, len(records))
	for _, rec := range records {
		days[rec.Date.UTC().Format("2006-01-02")] = true
	}
	return len(days)
}

func (s *VideoService) SearchVideos(ctx context.Context, actor Actor, query string) ([]models.Video, error) {
	if d := policy.Decide(actor.Role, actor.ID, "", policy.ActionRead); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}

	ownerID := ""
	if policy.OwnerScoped(actor.Role) {
		ownerID = actor.ID
	}
	videos, err := s.Search.Search(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.resolveCreators(ctx, videos); err != nil {
		return nil, err
	}
	return videos, nil
}
