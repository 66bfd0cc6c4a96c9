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

type MemoryHandler struct {
	service service.MemoryService
}

func NewMemoryHandler(service service.MemoryService) *MemoryHandler {
	return &MemoryHandler{service: service}
}

// ListMemories handles GET /api/memories?category=&q=&sort=
func (h *MemoryHandler) ListMemories(c *gin.Context) {
	var req domain.ListMemoriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid query", err)
		return
	}
	if err := validateRequest(&req); err != nil {
		common.HandleError(c, err, "")
		return
	}

	memories, err := h.service.ListMemories(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		common.HandleError(c, err, "Failed to fetch memories")
		return
	}

	common.SuccessResponse(c, memories, &common.Meta{
		Total:    int64(len(memories)),
		Category: req.Category,
		Sort:     req.Sort,
		Query:    req.Search,
	})
}

// Stats handles GET /api/memories/stats
func (h *MemoryHandler) Stats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		common.HandleError(c, err, "Failed to fetch stats")
		return
	}

	common.SuccessResponse(c, stats, nil)
}

// GetMemory handles GET /api/memories/:id
func (h *MemoryHandler) GetMemory(c *gin.Context) {
	id, ok := ginutil.ParamID(c, "id")
	if !ok {
		common.HandleError(c, common.ErrMemoryNotFound, "")
		return
	}

	memory, err := h.service.GetMemory(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		common.HandleError(c, err, "Failed to fetch memory")
		return
	}

	common.SuccessResponse(c, memory, nil)
}

// CreateMemory handles POST /api/memories
func (h *MemoryHandler) CreateMemory(c *gin.Context) {
	var req domain.CreateMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validateRequest(&req); err != nil {
		common.HandleError(c, err, "")
		return
	}

	memory, err := h.service.CreateMemory(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		common.HandleError(c, err, "Failed to create memory")
		return
	}

	common.CreatedResponse(c, memory)
}

// UpdateMemory handles PATCH /api/memories/:id
func (h *MemoryHandler) UpdateMemory(c *gin.Context) {
	id, ok := ginutil.ParamID(c, "id")
	if !ok {
		common.HandleError(c, common.ErrMemoryNotFound, "")
		return
	}

	var req domain.UpdateMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validateRequest(&req); err != nil {
		common.HandleError(c, err, "")
		return
	}

	memory, err := h.service.UpdateMemory(c.Request.Context(), middleware.GetUserID(c), id, &req)
	if err != nil {
		common.HandleError(c, err, "Failed to update memory")
		return
	}

	common.SuccessResponse(c, memory, nil)
}

// DeleteMemory handles DELETE /api/memories/:id
func (h *MemoryHandler) DeleteMemory(c *gin.Context) {
	id, ok := ginutil.ParamID(c, "id")
	if !ok {
		common.HandleError(c, common.ErrMemoryNotFound, "")
		return
	}

	if err := h.service.DeleteMemory(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		common.HandleError(c, err, "Failed to delete memory")
		return
	}

	common.SuccessResponse(c, gin.H{"success": true}, nil)
}
