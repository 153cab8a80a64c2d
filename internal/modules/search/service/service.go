package search

import (
	"log"

	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"ramplog.app/backend/internal/entity"
)

const (
	indexTricks   = "tricks"
	indexArticles = "articles"
)

// SearchService keeps the meilisearch indexes in sync with catalog writes
// and serves the combined search endpoint. All indexing is best effort;
// a failed index write never fails the catalog mutation.
type SearchService interface {
	IndexTrick(trick *entity.Trick) error
	IndexArticle(article *entity.Article) error
	DeleteTrick(id string) error
	DeleteArticle(id string) error
	Search(query string, limit int64) (map[string]any, error)
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	sortable := []string{"updated_at"}
	if _, err := s.client.Index(indexTricks).UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("failed to update tricks sortable attributes: %v", err)
	}
	if _, err := s.client.Index(indexArticles).UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("failed to update articles sortable attributes: %v", err)
	}
}

// trickDocument strips markup from the free-text fields before they enter
// the index; search results are rendered verbatim by clients.
func (s *searchService) trickDocument(trick *entity.Trick) map[string]any {
	return map[string]any{
		"id":          trick.ID.String(),
		"name":        trick.Name,
		"category":    trick.Category,
		"difficulty":  trick.Difficulty,
		"description": s.sanitizer.Sanitize(trick.Description),
		"updated_at":  trick.UpdatedAt.Unix(),
	}
}

func (s *searchService) articleDocument(article *entity.Article) map[string]any {
	return map[string]any{
		"id":         article.ID.String(),
		"title":      s.sanitizer.Sanitize(article.Title),
		"slug":       article.Slug,
		"body":       s.sanitizer.Sanitize(article.Body),
		"updated_at": article.UpdatedAt.Unix(),
	}
}

func (s *searchService) IndexTrick(trick *entity.Trick) error {
	_, err := s.client.Index(indexTricks).AddDocuments([]map[string]any{s.trickDocument(trick)}, nil)
	return err
}

func (s *searchService) IndexArticle(article *entity.Article) error {
	_, err := s.client.Index(indexArticles).AddDocuments([]map[string]any{s.articleDocument(article)}, nil)
	return err
}

func (s *searchService) DeleteTrick(id string) error {
	_, err := s.client.Index(indexTricks).DeleteDocument(id)
	return err
}

func (s *searchService) DeleteArticle(id string) error {
	_, err := s.client.Index(indexArticles).DeleteDocument(id)
	return err
}

func (s *searchService) Search(query string, limit int64) (map[string]any, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	result := make(map[string]any, 2)
	for _, index := range []string{indexTricks, indexArticles} {
		resp, err := s.client.Index(index).Search(query, &meilisearch.SearchRequest{Limit: limit})
		if err != nil {
			return nil, err
		}
		result[index] = resp.Hits
	}
	return result, nil
}
