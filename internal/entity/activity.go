package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProgressStarted  = "started"
	ProgressMastered = "mastered"
)

// TrickProgress is one user's state on one trick. UpdatedAt is the event
// time the feed ranks by, and the per-user fingerprint signal.
type TrickProgress struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_trick,priority:1;index" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	TrickID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_trick,priority:2" json:"trick_id"`
	Trick     Trick     `gorm:"constraint:OnDelete:CASCADE" json:"trick,omitempty"`
	Status    string    `gorm:"size:20;not null" json:"status"` // 'started', 'mastered'
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index" json:"updated_at"`
}

type Event struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ParkID    *uuid.UUID `gorm:"type:uuid" json:"park_id,omitempty"`
	Park      *Park     `gorm:"constraint:OnDelete:SET NULL" json:"park,omitempty"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	StartsAt  time.Time `gorm:"not null" json:"starts_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index" json:"updated_at"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID, err = uuid.NewV7()
	}
	return
}

type EventRegistration struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_registration_user_event,priority:1;index" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_registration_user_event,priority:2" json:"event_id"`
	Event     Event     `gorm:"constraint:OnDelete:CASCADE" json:"event,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

type Achievement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (a *Achievement) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}

type UserAchievement struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement,priority:1;index" json:"user_id"`
	User          User        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AchievementID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement,priority:2" json:"achievement_id"`
	Achievement   Achievement `gorm:"constraint:OnDelete:CASCADE" json:"achievement,omitempty"`
	EarnedAt      time.Time   `gorm:"autoCreateTime;index" json:"earned_at"`
}
