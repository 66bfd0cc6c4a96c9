package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Charltoon/Memory-Archive/internal/common"
	"github.com/Charltoon/Memory-Archive/internal/middleware"
	"github.com/Charltoon/Memory-Archive/internal/service"
)

// UploadHandler handles memory photo uploads
type UploadHandler struct {
	service  service.UploadService
	maxBytes int64
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(service service.UploadService, maxBytes int64) *UploadHandler {
	return &UploadHandler{service: service, maxBytes: maxBytes}
}

// UploadImage handles POST /api/uploads/image (multipart field "file")
func (h *UploadHandler) UploadImage(c *gin.Context) {
	if h.maxBytes > 0 {
		// room for the multipart envelope
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "file is required", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Failed to read file", err)
		return
	}
	defer file.Close()

	result, err := h.service.UploadImage(c.Request.Context(), middleware.GetUserID(c), fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		common.HandleError(c, err, "Failed to upload image")
		return
	}

	middleware.ObserveImageUpload(result.Size)
	common.CreatedResponse(c, result)
}
