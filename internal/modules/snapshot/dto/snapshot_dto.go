package dto

import (
	"time"

	"github.com/google/uuid"
	"ramplog.app/backend/internal/entity"
	feedDto "ramplog.app/backend/internal/modules/feed/dto"
)

type Catalogs struct {
	Tricks   []entity.Trick   `json:"tricks"`
	Articles []entity.Article `json:"articles"`
	Products []entity.Product `json:"products"`
	Parks    []entity.Park    `json:"parks"`
}

// SnapshotResponse is the one-call boot payload. Token is the fingerprint
// the client echoes back on its next conditional request.
type SnapshotResponse struct {
	Token               string                `json:"token"`
	GeneratedAt         time.Time             `json:"generated_at"`
	ElapsedMs           int64                 `json:"elapsed_ms"`
	Catalogs            Catalogs              `json:"catalogs"`
	Progress            []entity.TrickProgress `json:"progress"`
	Registrations       []uuid.UUID           `json:"registrations"`
	Favorites           []uuid.UUID           `json:"favorites"`
	UnreadNotifications int64                 `json:"unread_notifications"`
	Feed                *feedDto.FeedResponse `json:"feed"`
}
