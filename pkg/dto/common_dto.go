package dto

import (
	"time"

	"github.com/google/uuid"
)

// AuthorResponse is the display projection attached wherever a user shows
// up as an actor (feed items, comments, notifications).
type AuthorResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Role      string    `json:"role,omitempty"`
}

// CommentResponse carries a single non-tombstoned comment with its like state.
type CommentResponse struct {
	ID          uuid.UUID      `json:"id"`
	Author      AuthorResponse `json:"author"`
	Content     string         `json:"content"`
	CreatedAt   time.Time      `json:"created_at"`
	LikesCount  int64          `json:"likes_count"`
	ViewerLiked bool           `json:"viewer_liked"`
}

// ReactionSummary is the per-subject social rollup. Counts are derived from
// like edges and non-tombstoned comment rows, never incremented in place.
type ReactionSummary struct {
	LikesCount    int64             `json:"likes_count"`
	CommentsCount int64             `json:"comments_count"`
	ViewerLiked   bool              `json:"viewer_liked"`
	Comments      []CommentResponse `json:"comments"`
}

// PaginationMeta is the envelope metadata for plain paginated lists.
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}
