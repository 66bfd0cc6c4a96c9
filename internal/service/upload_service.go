package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Charltoon/Memory-Archive/internal/common"
	"github.com/Charltoon/Memory-Archive/pkg/storage"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ObjectStorage is the part of storage.S3Client the upload service needs
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*storage.UploadResult, error)
}

// UploadService stores memory photos
type UploadService interface {
	UploadImage(ctx context.Context, userID, filename string, size int64, body io.Reader) (*storage.UploadResult, error)
}

type uploadService struct {
	store    ObjectStorage
	maxBytes int64
	now      func() time.Time
}

// NewUploadService creates a new UploadService. A nil store disables uploads.
func NewUploadService(store ObjectStorage, maxBytes int64) UploadService {
	return &uploadService{store: store, maxBytes: maxBytes, now: time.Now}
}

// UploadImage sniffs the content type instead of trusting the client header
func (s *uploadService) UploadImage(ctx context.Context, userID, filename string, size int64, body io.Reader) (*storage.UploadResult, error) {
	if userID == "" {
		return nil, common.ErrUnauthorized
	}
	if s.store == nil {
		return nil, common.ErrStorageDisabled
	}
	if size <= 0 || (s.maxBytes > 0 && size > s.maxBytes) {
		return nil, common.ErrInvalidImageFile
	}

	br := bufio.NewReaderSize(body, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(head)
	if !allowedImageTypes[contentType] {
		return nil, common.ErrInvalidImageFile
	}

	key := storage.GenerateKey("images/"+userID, filename, s.now().UTC())
	result, err := s.store.Upload(ctx, key, br, contentType, size)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	return result, nil
}
