package dto

import (
	"time"

	"github.com/google/uuid"
	commonDto "ramplog.app/backend/pkg/dto"
)

const (
	TypeProgressStarted   = "progress_started"
	TypeProgressMastered  = "progress_mastered"
	TypeEventJoined       = "event_joined"
	TypeAchievementEarned = "achievement_earned"
)

// FeedItem is one merged activity row. ID is derived from the item's
// content, so the same underlying fact always maps to the same ID and a
// hide sticks across rebuilds.
type FeedItem struct {
	ID          string                    `json:"id"`
	Type        string                    `json:"type"`
	Actor       commonDto.AuthorResponse  `json:"actor"`
	SubjectType string                    `json:"subject_type"`
	SubjectID   uuid.UUID                 `json:"subject_id"`
	Title       string                    `json:"title"`
	OccurredAt  time.Time                 `json:"occurred_at"`
	Reactions   commonDto.ReactionSummary `json:"reactions"`
}

type FeedResponse struct {
	Items   []FeedItem `json:"items"`
	HasMore bool       `json:"has_more"`
}
