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

// ReactionHandler handles memory reaction requests
type ReactionHandler struct {
	service service.ReactionService
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(service service.ReactionService) *ReactionHandler {
	return &ReactionHandler{service: service}
}

// ToggleReaction handles POST /api/memories/:id/like.
// The body is optional; without a type it is a plain like/unlike.
func (h *ReactionHandler) ToggleReaction(c *gin.Context) {
	memoryID, ok := ginutil.ParamID(c, "id")
	if !ok {
		common.HandleError(c, common.ErrMemoryNotFound, "")
		return
	}

	var req domain.ReactionRequest
	if err := ginutil.BindOptionalJSON(c, &req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validateRequest(&req); err != nil {
		common.HandleError(c, err, "")
		return
	}

	result, err := h.service.ToggleMemoryReaction(c.Request.Context(), middleware.GetUserID(c), memoryID, req.Type)
	if err != nil {
		common.HandleError(c, err, "Failed to toggle reaction")
		return
	}

	middleware.ObserveReactionToggle("memory", result.Reacted)
	common.SuccessResponse(c, result, nil)
}

// ListReactions handles GET /api/memories/:id/like
func (h *ReactionHandler) ListReactions(c *gin.Context) {
	memoryID, ok := ginutil.ParamID(c, "id")
	if !ok {
		common.HandleError(c, common.ErrMemoryNotFound, "")
		return
	}

	result, err := h.service.ListMemoryReactions(c.Request.Context(), memoryID)
	if err != nil {
		common.HandleError(c, err, "Failed to fetch reactions")
		return
	}

	common.SuccessResponse(c, result, &common.Meta{Total: int64(result.Count)})
}
