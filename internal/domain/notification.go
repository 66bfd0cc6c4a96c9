package domain

import "time"

// NotificationType identifies what happened to the recipient's content
type NotificationType string

const (
	NotificationMemoryReaction NotificationType = "memory_reaction"
	NotificationMemoryComment  NotificationType = "memory_comment"
	NotificationCommentReply   NotificationType = "comment_reply"
)

// Notification is pushed over the websocket to a memory's author.
// It is not persisted.
type Notification struct {
	Type         NotificationType `json:"type"`
	MemoryID     string           `json:"memoryId"`
	CommentID    string           `json:"commentId,omitempty"`
	ReactionType ReactionType     `json:"reactionType,omitempty"`
	Actor        UserSummary      `json:"actor"`
	CreatedAt    time.Time        `json:"createdAt"`
}
