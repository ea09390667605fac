// Package search maintains an optional Elasticsearch index over videos and
// answers keyword queries. When no cluster is configured the service falls
// back to a store-side substring search, so the endpoint always works.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/echotube/echotube/internal/logging"
	"github.com/echotube/echotube/internal/models"
	"github.com/echotube/echotube/internal/repo"
)

const indexName = "echotube-videos"

type Service struct {
	ES   *elasticsearch.Client
	Repo *repo.GormRepo
}

// indexDoc is the flattened form a video takes in the index. Keyword words
// are folded into one field so cards are searchable alongside titles.
type indexDoc struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subtitles string `json:"subtitles"`
	Keywords  string `json:"keywords"`
	CreatedBy string `json:"createdBy"`
}

func toDoc(v *models.Video) indexDoc {
	words := make([]string, 0, len(v.Keywords))
	for _, k := range v.Keywords {
		words = append(words, k.Word)
	}
	return indexDoc{
		ID:        v.ID,
		Title:     v.Title,
		Subtitles: v.Subtitles,
		Keywords:  strings.Join(words, " "),
		CreatedBy: v.CreatedBy,
	}
}

// Index upserts a video into the search index. Best-effort: indexing lag is
// acceptable, losing the request is not.
func (s *Service) Index(ctx context.Context, video *models.Video) {
	if s.ES == nil {
		return
	}
	l := logging.FromContext(ctx).With("component", "search")

	body, err := json.Marshal(toDoc(video))
	if err != nil {
		l.Error("index_marshal_failed", "video_id", video.ID, "error", err)
		return
	}

	res, err := s.ES.Index(indexName, bytes.NewReader(body),
		s.ES.Index.WithContext(ctx),
		s.ES.Index.WithDocumentID(video.ID),
	)
	if err != nil {
		l.Error("index_failed", "video_id", video.ID, "error", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		l.Error("index_failed", "video_id", video.ID, "status", res.Status())
	}
}

// Remove drops a deleted video from the index.
func (s *Service) Remove(ctx context.Context, videoID string) {
	if s.ES == nil {
		return
	}
	l := logging.FromContext(ctx).With("component", "search")

	res, err := s.ES.Delete(indexName, videoID, s.ES.Delete.WithContext(ctx))
	if err != nil {
		l.Error("deindex_failed", "video_id", videoID, "error", err)
		return
	}
	res.Body.Close()
}

// Search answers a keyword query, owner-scoped when ownerID is non-empty.
// Results come back as full video documents loaded from the store.
func (s *Service) Search(ctx context.Context, query, ownerID string) ([]models.Video, error) {
	if s.ES == nil {
		return s.Repo.SearchVideosSQL(ctx, query, ownerID)
	}

	ids, err := s.searchIndex(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}

	videos := make([]models.Video, 0, len(ids))
	for _, id := range ids {
		video, err := s.Repo.GetVideo(ctx, id)
		if err != nil {
			// Index ahead of the store after a delete; skip the stale hit.
			continue
		}
		videos = append(videos, *video)
	}
	return videos, nil
}

func (s *Service) searchIndex(ctx context.Context, query, ownerID string) ([]string, error) {
	must := []map[string]any{{
		"multi_match": map[string]any{
			"query":     query,
			"fields":    []string{"title^2", "keywords^2", "subtitles"},
			"fuzziness": "AUTO",
		},
	}}
	boolQuery := map[string]any{"must": must}
	if ownerID != "" {
		boolQuery["filter"] = []map[string]any{
			{"term": map[string]any{"createdBy.keyword": ownerID}},
		}
	}

	body := map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"size":  50,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(indexName),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source indexDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		ids = append(ids, hit.Source.ID)
	}
	return ids, nil
}
