package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a note on a memory. ParentID set means it is a reply;
// replies are one level deep only.
type Comment struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Text      string    `gorm:"column:text;type:text;not null" json:"text"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);not null;index" json:"userId"`
	MemoryID  string    `gorm:"column:memory_id;type:varchar(36);not null;index" json:"memoryId"`
	ParentID  *string   `gorm:"column:parent_id;type:varchar(36);index" json:"parentId"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	User      *User             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Replies   []Comment         `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
	Reactions []CommentReaction `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Comment) TableName() string { return "comments" }

// BeforeCreate assigns a UUID primary key
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsReply reports whether the comment has a parent
func (c *Comment) IsReply() bool {
	return c.ParentID != nil && *c.ParentID != ""
}

// CommentReaction is a binary reaction on a comment; at most one per (user, comment)
type CommentReaction struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex:idx_comment_reactions_user_comment,priority:1" json:"userId"`
	CommentID string    `gorm:"column:comment_id;type:varchar(36);not null;uniqueIndex:idx_comment_reactions_user_comment,priority:2;index:idx_comment_reactions_comment" json:"commentId"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (CommentReaction) TableName() string { return "comment_reactions" }

// BeforeCreate assigns a UUID primary key
func (r *CommentReaction) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// CommentReactionResponse is one comment reaction with the reacting user
type CommentReactionResponse struct {
	ID        string      `json:"id"`
	CommentID string      `json:"commentId"`
	User      UserSummary `json:"user"`
}

// CommentResponse is a comment with author, reactions and (for top-level
// comments) its replies
type CommentResponse struct {
	ID        string                    `json:"id"`
	Text      string                    `json:"text"`
	MemoryID  string                    `json:"memoryId"`
	ParentID  *string                   `json:"parentId"`
	User      UserSummary               `json:"user"`
	Reactions []CommentReactionResponse `json:"reactions"`
	Replies   []*CommentResponse        `json:"replies"`
	CreatedAt time.Time                 `json:"createdAt"`
	UpdatedAt time.Time                 `json:"updatedAt"`
}

// ToResponse converts a comment with its preloaded relations. Replies of
// replies are never expanded.
func (c *Comment) ToResponse() *CommentResponse {
	resp := &CommentResponse{
		ID:        c.ID,
		Text:      c.Text,
		MemoryID:  c.MemoryID,
		ParentID:  c.ParentID,
		User:      c.User.Summary(),
		Reactions: ToCommentReactionResponses(c.Reactions),
		Replies:   make([]*CommentResponse, 0, len(c.Replies)),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if resp.User.ID == "" {
		resp.User.ID = c.UserID
	}
	if !c.IsReply() {
		for i := range c.Replies {
			reply := c.Replies[i]
			reply.Replies = nil
			resp.Replies = append(resp.Replies, reply.ToResponse())
		}
	}
	return resp
}

// ToCommentReactionResponses converts preloaded comment reactions
func ToCommentReactionResponses(reactions []CommentReaction) []CommentReactionResponse {
	out := make([]CommentReactionResponse, len(reactions))
	for i, r := range reactions {
		s := r.User.Summary()
		if s.ID == "" {
			s.ID = r.UserID
		}
		out[i] = CommentReactionResponse{ID: r.ID, CommentID: r.CommentID, User: s}
	}
	return out
}

// CreateCommentRequest is the body of POST /memories/:id/comment
type CreateCommentRequest struct {
	Text     string  `json:"text" validate:"max=2000"`
	ParentID *string `json:"parentId" validate:"omitempty,max=36"`
}

// PatchCommentRequest is the body of PATCH /memories/:id/comment.
// With Text it edits the comment; without Text it toggles the caller's reaction.
type PatchCommentRequest struct {
	CommentID string  `json:"commentId" validate:"required,max=36"`
	Text      *string `json:"text" validate:"omitempty,max=2000"`
}

// DeleteCommentRequest is the body of DELETE /memories/:id/comment
type DeleteCommentRequest struct {
	CommentID string `json:"commentId" validate:"required,max=36"`
}

// CommentReactionResult is returned by a comment reaction toggle
type CommentReactionResult struct {
	Reacted   bool                      `json:"reacted"`
	Reactions []CommentReactionResponse `json:"reactions"`
}
