package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Charltoon/Memory-Archive/internal/common"
	"github.com/Charltoon/Memory-Archive/internal/domain"
	"github.com/Charltoon/Memory-Archive/internal/middleware"
	"github.com/Charltoon/Memory-Archive/internal/service"
	"github.com/Charltoon/Memory-Archive/pkg/ginutil"
)

type CommentHandler struct {
	service   service.CommentService
	reactions service.ReactionService
}

func NewCommentHandler(service service.CommentService, reactions service.ReactionService) *CommentHandler {
	return &CommentHandler{service: service, reactions: reactions}
}

// ListComments handles GET /api/memories/:id/comment
func (h *CommentHandler) ListComments(c *gin.Context) {
	memoryID, ok := ginutil.ParamID(c, "id")
	if !ok {
		common.HandleError(c, common.ErrMemoryNotFound, "")
		return
	}

	comments, err := h.service.ListComments(c.Request.Context(), memoryID)
	if err != nil {
		common.HandleError(c, err, "Failed to fetch comments")
		return
	}

	common.SuccessResponse(c, comments, &common.Meta{Total: int64(len(comments))})
}

// CreateComment handles POST /api/memories/:id/comment
func (h *CommentHandler) CreateComment(c *gin.Context) {
	memoryID, ok := ginutil.ParamID(c, "id")
	if !ok {
		common.HandleError(c, common.ErrMemoryNotFound, "")
		return
	}

	var req domain.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validateRequest(&req); err != nil {
		common.HandleError(c, err, "")
		return
	}

	comment, err := h.service.CreateComment(c.Request.Context(), middleware.GetUserID(c), memoryID, &req)
	if err != nil {
		common.HandleError(c, err, "Failed to create comment")
		return
	}

	middleware.ObserveCommentCreated(comment.ParentID != nil)
	common.CreatedResponse(c, comment)
}

// PatchComment handles PATCH /api/memories/:id/comment.
// {commentId, text} edits the comment; {commentId} alone toggles the caller's reaction.
func (h *CommentHandler) PatchComment(c *gin.Context) {
	var req domain.PatchCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validateRequest(&req); err != nil {
		common.HandleError(c, err, "")
		return
	}

	userID := middleware.GetUserID(c)

	if req.Text == nil {
		result, err := h.reactions.ToggleCommentReaction(c.Request.Context(), userID, req.CommentID)
		if err != nil {
			common.HandleError(c, err, "Failed to toggle comment reaction")
			return
		}
		middleware.ObserveReactionToggle("comment", result.Reacted)
		common.SuccessResponse(c, result, nil)
		return
	}

	comment, err := h.service.EditComment(c.Request.Context(), userID, req.CommentID, *req.Text)
	if err != nil {
		common.HandleError(c, err, "Failed to update comment")
		return
	}

	common.SuccessResponse(c, comment, nil)
}

// DeleteComment handles DELETE /api/memories/:id/comment
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	var req domain.DeleteCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validateRequest(&req); err != nil {
		common.HandleError(c, err, "")
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), middleware.GetUserID(c), req.CommentID); err != nil {
		common.HandleError(c, err, "Failed to delete comment")
		return
	}

	common.SuccessResponse(c, gin.H{"success": true}, nil)
}
