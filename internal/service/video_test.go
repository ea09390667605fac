package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echotube/echotube/internal/models"
	"github.com/echotube/echotube/internal/policy"
	"github.com/echotube/echotube/internal/repo"
)

func TestVideoCreate_StampsOwner(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	author := env.seedAccount(t, "author", "pw", policy.RoleAuthor, nil)

	video, err := env.videos.Create(ctx, actorFor(author), CreateVideoInput{
		Title:   "Morning Routine Vocabulary",
		VideoID: "dQw4w9WgXcQ",
		Keywords: []models.Keyword{
			{Word: "kettle", Translation: "水壶"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, author.ID, video.CreatedBy)
	assert.Equal(t, "youtube", video.VideoSource, "source defaults to youtube")
	assert.NotEmpty(t, video.ID)
	assert.False(t, video.CreatedAt.IsZero())
}

func TestVideoSource_RestrictedToKnownPlatforms(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	author := env.seedAccount(t, "author", "pw", policy.RoleAuthor, nil)

	_, err := env.videos.Create(ctx, actorFor(author), CreateVideoInput{
		Title: "t", VideoID: "v", VideoSource: "vimeo",
	})
	assert.ErrorIs(t, err, ErrValidation)

	video, err := env.videos.Create(ctx, actorFor(author), CreateVideoInput{
		Title: "t", VideoID: "v", VideoSource: models.SourceBilibili,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SourceBilibili, video.VideoSource)

	bad := "vimeo"
	_, err = env.videos.Update(ctx, actorFor(author), video.ID, VideoPatch{VideoSource: &bad})
	assert.ErrorIs(t, err, ErrValidation)

	good := models.SourceYouTube
	updated, err := env.videos.Update(ctx, actorFor(author), video.ID, VideoPatch{VideoSource: &good})
	require.NoError(t, err)
	assert.Equal(t, models.SourceYouTube, updated.VideoSource)
}

func TestVideoCreate_RoleGate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedAccount(t, "student", "pw", policy.RoleUser, nil)
	viewer := env.seedAccount(t, "auditor", "pw", policy.RoleViewer, nil)

	in := CreateVideoInput{Title: "t", VideoID: "v"}

	_, err := env.videos.Create(ctx, actorFor(user), in)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.videos.Create(ctx, actorFor(viewer), in)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestVideoMutation_OwnershipEnforced(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedAccount(t, "owner", "pw", policy.RoleAuthor, nil)
	rival := env.seedAccount(t, "rival", "pw", policy.RoleAuthor, nil)
	user := env.seedAccount(t, "student", "pw", policy.RoleUser, nil)
	admin := env.seedAccount(t, "root", "pw", policy.RoleAdmin, nil)

	video, err := env.videos.Create(ctx, actorFor(owner), CreateVideoInput{Title: "mine", VideoID: "v"})
	require.NoError(t, err)

	newTitle := "stolen"
	_, err = env.videos.Update(ctx, actorFor(rival), video.ID, VideoPatch{Title: &newTitle})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.videos.Update(ctx, actorFor(user), video.ID, VideoPatch{Title: &newTitle})
	assert.ErrorIs(t, err, ErrForbidden)

	err = env.videos.Delete(ctx, actorFor(rival), video.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	ownTitle := "mine, renamed"
	updated, err := env.videos.Update(ctx, actorFor(owner), video.ID, VideoPatch{Title: &ownTitle})
	require.NoError(t, err)
	assert.Equal(t, "mine, renamed", updated.Title)

	// Admin overrides ownership.
	require.NoError(t, env.videos.Delete(ctx, actorFor(admin), video.ID))
	_, err = env.repo.GetVideo(ctx, video.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestVideoUpdate_MergePatchRetainsOmitted(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedAccount(t, "owner", "pw", policy.RoleAuthor, nil)

	video, err := env.videos.Create(ctx, actorFor(owner), CreateVideoInput{
		Title:     "original",
		VideoID:   "v1",
		Subtitles: "keep me",
		Keywords:  []models.Keyword{{Word: "tea"}},
	})
	require.NoError(t, err)

	newTitle := "renamed"
	updated, err := env.videos.Update(ctx, actorFor(owner), video.ID, VideoPatch{Title: &newTitle})
	require.NoError(t, err)

	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "keep me", updated.Subtitles)
	require.Len(t, updated.Keywords, 1)
	assert.Equal(t, "tea", updated.Keywords[0].Word)
}

func TestVideoList_AuthorScopedAdminUnscoped(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	a1 := env.seedAccount(t, "author1", "pw", policy.RoleAuthor, nil)
	a2 := env.seedAccount(t, "author2", "pw", policy.RoleAuthor, nil)
	admin := env.seedAccount(t, "root", "pw", policy.RoleAdmin, nil)
	user := env.seedAccount(t, "student", "pw", policy.RoleUser, nil)

	_, err := env.videos.Create(ctx, actorFor(a1), CreateVideoInput{Title: "one", VideoID: "v1"})
	require.NoError(t, err)
	_, err = env.videos.Create(ctx, actorFor(a2), CreateVideoInput{Title: "two", VideoID: "v2"})
	require.NoError(t, err)

	mine, err := env.videos.List(ctx, actorFor(a1))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "one", mine[0].Title)
	assert.Equal(t, "author1", mine[0].CreatedByName)

	all, err := env.videos.List(ctx, actorFor(admin))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Plain users see everything too; scoping only applies to authors.
	visible, err := env.videos.List(ctx, actorFor(user))
	require.NoError(t, err)
	assert.Len(t, visible, 2)
}

func TestCheckIn_DistinctDayDeduplication(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedAccount(t, "owner", "pw", policy.RoleAuthor, nil)
	user := env.seedAccount(t, "student", "pw", policy.RoleUser, nil)

	video, err := env.videos.Create(ctx, actorFor(owner), CreateVideoInput{Title: "lesson", VideoID: "v"})
	require.NoError(t, err)

	first, err := env.videos.CheckIn(ctx, actorFor(user), video.ID, 1)
	require.NoError(t, err)
	second, err := env.videos.CheckIn(ctx, actorFor(user), video.ID, 2)
	require.NoError(t, err)

	// Two records stored, one distinct study day.
	assert.Equal(t, 1, first.TotalRecords)
	assert.Equal(t, 2, second.TotalRecords)
	assert.Equal(t, 1, second.DistinctDays)
}

func TestCheckIn_ViewerDenied(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedAccount(t, "owner", "pw", policy.RoleAuthor, nil)
	viewer := env.seedAccount(t, "auditor", "pw", policy.RoleViewer, nil)

	video, err := env.videos.Create(ctx, actorFor(owner), CreateVideoInput{Title: "lesson", VideoID: "v"})
	require.NoError(t, err)

	_, err = env.videos.CheckIn(ctx, actorFor(viewer), video.ID, 1)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDistinctCheckInDays(t *testing.T) {
	t.Parallel()

	day1 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 5, 2, 22, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		records []models.CheckInRecord
		want    int
	}{
		{name: "empty", records: nil, want: 0},
		{name: "one day twice", records: []models.CheckInRecord{
			{Date: day1, Step: 1}, {Date: day1.Add(6 * time.Hour), Step: 2},
		}, want: 1},
		{name: "two days", records: []models.CheckInRecord{
			{Date: day1, Step: 1}, {Date: day2, Step: 1},
		}, want: 2},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, DistinctCheckInDays(tt.records))
		})
	}
}

func TestSearchVideos_SQLFallback(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	author := env.seedAccount(t, "author", "pw", policy.RoleAuthor, nil)
	user := env.seedAccount(t, "student", "pw", policy.RoleUser, nil)

	_, err := env.videos.Create(ctx, actorFor(author), CreateVideoInput{Title: "Cooking verbs", VideoID: "v1"})
	require.NoError(t, err)
	_, err = env.videos.Create(ctx, actorFor(author), CreateVideoInput{Title: "Sports idioms", VideoID: "v2"})
	require.NoError(t, err)

	hits, err := env.videos.SearchVideos(ctx, actorFor(user), "cooking")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Cooking verbs", hits[0].Title)

	_, err = env.videos.SearchVideos(ctx, actorFor(user), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConfigService_ReadOpenWriteAdmin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedAccount(t, "root", "pw", policy.RoleAdmin, nil)
	user := env.seedAccount(t, "student", "pw", policy.RoleUser, nil)

	err := env.configs.Set(ctx, actorFor(user), "ai.apiBase", "https://example.com")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, env.configs.Set(ctx, actorFor(admin), "ai.apiBase", "https://example.com"))

	value, err := env.configs.Get(ctx, actorFor(user), "ai.apiBase")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", value)

	// Probing an absent key is not an error.
	missing, err := env.configs.Get(ctx, actorFor(user), "no.such.key")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
