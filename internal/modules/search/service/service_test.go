package search

import (
	"testing"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"ramplog.app/backend/internal/entity"
)

func newTestSearchService() *searchService {
	return &searchService{sanitizer: bluemonday.StrictPolicy()}
}

func TestArticleDocumentSanitized(t *testing.T) {
	s := newTestSearchService()

	doc := s.articleDocument(&entity.Article{
		ID:    uuid.New(),
		Title: `Coping <b>basics</b>`,
		Slug:  "coping-basics",
		Body:  `<script>alert(1)</script><p>Lock the back truck first.</p>`,
	})

	assert.Equal(t, "Coping basics", doc["title"])
	assert.Equal(t, "Lock the back truck first.", doc["body"])
	assert.Equal(t, "coping-basics", doc["slug"])
}

func TestTrickDocumentSanitized(t *testing.T) {
	s := newTestSearchService()

	doc := s.trickDocument(&entity.Trick{
		ID:          uuid.New(),
		Name:        "kickflip",
		Category:    "flip",
		Difficulty:  3,
		Description: `Flick the nose <img src=x onerror=alert(1)> off the edge`,
	})

	assert.Equal(t, "kickflip", doc["name"])
	assert.Equal(t, "Flick the nose  off the edge", doc["description"])
}
