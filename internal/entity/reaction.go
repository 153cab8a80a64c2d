package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subject types a like or comment can attach to.
const (
	SubjectTrick       = "trick"
	SubjectArticle     = "article"
	SubjectProduct     = "product"
	SubjectEvent       = "event"
	SubjectAchievement = "achievement"
	SubjectComment     = "comment"
)

// ValidSubjectType reports whether t is a known reaction subject.
func ValidSubjectType(t string) bool {
	switch t {
	case SubjectTrick, SubjectArticle, SubjectProduct, SubjectEvent, SubjectAchievement, SubjectComment:
		return true
	}
	return false
}

// LikeEdge is the unique (subject, user) relation; its existence is "liked".
// Counts are always derived by counting edges, never stored arithmetic.
type LikeEdge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SubjectType string    `gorm:"size:20;not null;uniqueIndex:idx_like_edge,priority:1;index:idx_like_lookup,priority:1" json:"subject_type"`
	SubjectID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_like_edge,priority:2;index:idx_like_lookup,priority:2" json:"subject_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_like_edge,priority:3" json:"user_id"`
	User        User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (LikeEdge) TableName() string {
	return "like_edges"
}

// Comment is soft-deleted only: Deleted marks the tombstone, the row stays
// so like edges pointing at it keep their history.
type Comment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubjectType string    `gorm:"size:20;not null;index:idx_comment_subject,priority:1" json:"subject_type"`
	SubjectID   uuid.UUID `gorm:"type:uuid;not null;index:idx_comment_subject,priority:2" json:"subject_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	User        User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Deleted     bool      `gorm:"not null;default:false" json:"deleted"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// ReactionCounter is the denormalized mirror of derived counts. It is
// written through after every toggle/comment mutation and is never the
// source of truth.
type ReactionCounter struct {
	SubjectType   string    `gorm:"size:20;primaryKey" json:"subject_type"`
	SubjectID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"subject_id"`
	LikesCount    int64     `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int64     `gorm:"not null;default:0" json:"comments_count"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
