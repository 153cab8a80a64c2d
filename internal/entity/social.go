package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Favorite makes TargetUser part of the viewer's followed set.
type Favorite struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_pair,priority:1;index" json:"user_id"`
	User         User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	TargetUserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_pair,priority:2" json:"target_user_id"`
	TargetUser   User      `gorm:"foreignKey:TargetUserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// HiddenFeedItem stores the stable feed item ID the viewer dismissed.
// Stable IDs are content-derived, so the marker survives re-fetches.
type HiddenFeedItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_hidden_item,priority:1" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ItemID    string    `gorm:"size:255;not null;uniqueIndex:idx_hidden_item,priority:2" json:"item_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type ArticleRead struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_article_read,priority:1" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ArticleID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_article_read,priority:2" json:"article_id"`
	Article   Article   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User       User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ActorID    uuid.UUID `gorm:"type:uuid" json:"actor_id"`
	Actor      User      `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	EntityID   uuid.UUID `gorm:"type:uuid" json:"entity_id"`
	EntityType string    `gorm:"size:20" json:"entity_type"`
	Type       string    `gorm:"size:30;not null" json:"type"` // 'like', 'comment', 'achievement'
	Message    string    `gorm:"type:text;not null" json:"message"`
	IsRead     bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
