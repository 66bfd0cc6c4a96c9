package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReactionType is the kind of reaction a user leaves on a memory
type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionHeart ReactionType = "heart"
	ReactionHaha  ReactionType = "haha"
	ReactionCare  ReactionType = "care"
	ReactionWow   ReactionType = "wow"
	ReactionSad   ReactionType = "sad"
	ReactionAngry ReactionType = "angry"
)

// ReactionTypes lists every valid reaction in display order
var ReactionTypes = []ReactionType{
	ReactionLike, ReactionHeart, ReactionHaha, ReactionCare,
	ReactionWow, ReactionSad, ReactionAngry,
}

// IsValid reports whether t is one of the fixed reaction types
func (t ReactionType) IsValid() bool {
	for _, known := range ReactionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Like is a typed reaction on a memory; at most one per (user, memory)
type Like struct {
	ID        string       `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	UserID    string       `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex:idx_likes_user_memory,priority:1" json:"userId"`
	MemoryID  string       `gorm:"column:memory_id;type:varchar(36);not null;uniqueIndex:idx_likes_user_memory,priority:2;index:idx_likes_memory" json:"memoryId"`
	Type      ReactionType `gorm:"column:type;type:varchar(16);not null;default:'like'" json:"type"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Like) TableName() string { return "likes" }

// BeforeCreate assigns a UUID primary key
func (l *Like) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// ReactorResponse is one reaction with the reacting user's identity
type ReactorResponse struct {
	ID   string       `json:"id"`
	Type ReactionType `json:"type"`
	User UserSummary  `json:"user"`
}

// ToReactor converts a like with its preloaded user
func (l *Like) ToReactor() ReactorResponse {
	s := l.User.Summary()
	if s.ID == "" {
		s.ID = l.UserID
	}
	return ReactorResponse{ID: l.ID, Type: l.Type, User: s}
}

// ReactionRequest is the optional body of POST /memories/:id/like.
// An empty type means the plain like/unlike toggle.
type ReactionRequest struct {
	Type string `json:"type" validate:"omitempty,reaction"`
}

// ReactionToggleResult is returned by a memory reaction toggle
type ReactionToggleResult struct {
	Reacted     bool              `json:"reacted"`
	CurrentType *ReactionType     `json:"currentType"`
	Reactors    []ReactorResponse `json:"reactors"`
	Count       int               `json:"likeCount"`
}

// ReactionListResult is the reactor list of a memory grouped by type
type ReactionListResult struct {
	Reactors []ReactorResponse   `json:"reactors"`
	Summary  map[ReactionType]int `json:"summary"`
	Count    int                  `json:"count"`
}

// SummarizeReactors counts reactors per type
func SummarizeReactors(reactors []ReactorResponse) map[ReactionType]int {
	summary := make(map[ReactionType]int)
	for _, r := range reactors {
		summary[r.Type]++
	}
	return summary
}
