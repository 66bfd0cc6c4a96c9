package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Charltoon/Memory-Archive/internal/common"
	"github.com/Charltoon/Memory-Archive/internal/domain"
	"github.com/Charltoon/Memory-Archive/internal/repository"
	"github.com/Charltoon/Memory-Archive/pkg/cache"
	pkglogger "github.com/Charltoon/Memory-Archive/pkg/logger"
)

// CommentService comment business logic
type CommentService interface {
	ListComments(ctx context.Context, memoryID string) ([]*domain.CommentResponse, error)
	CreateComment(ctx context.Context, userID, memoryID string, req *domain.CreateCommentRequest) (*domain.CommentResponse, error)
	EditComment(ctx context.Context, userID, commentID, text string) (*domain.CommentResponse, error)
	DeleteComment(ctx context.Context, userID, commentID string) error
}

type commentService struct {
	repo       repository.CommentRepository
	memoryRepo repository.MemoryRepository
	cache      cache.Service
	notifier   Notifier
}

// NewCommentService creates a new CommentService. cacheService and notifier may be nil.
func NewCommentService(repo repository.CommentRepository, memoryRepo repository.MemoryRepository, cacheService cache.Service, notifier Notifier) CommentService {
	if cacheService == nil {
		cacheService = cache.NewService(nil)
	}
	return &commentService{
		repo:       repo,
		memoryRepo: memoryRepo,
		cache:      cacheService,
		notifier:   notifier,
	}
}

// ListComments returns top-level comments oldest first with one level of replies
func (s *commentService) ListComments(ctx context.Context, memoryID string) ([]*domain.CommentResponse, error) {
	comments, err := s.repo.ListByMemory(ctx, memoryID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	out := make([]*domain.CommentResponse, len(comments))
	for i, c := range comments {
		out[i] = c.ToResponse()
	}
	return out, nil
}

func (s *commentService) CreateComment(ctx context.Context, userID, memoryID string, req *domain.CreateCommentRequest) (*domain.CommentResponse, error) {
	if userID == "" {
		return nil, common.ErrUnauthorized
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, common.ErrEmptyComment
	}

	memory, err := s.memoryRepo.FindByID(ctx, memoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrMemoryNotFound
		}
		return nil, fmt.Errorf("find memory: %w", err)
	}

	comment := &domain.Comment{
		Text:     text,
		UserID:   userID,
		MemoryID: memoryID,
	}

	var parent *domain.Comment
	if req.ParentID != nil && strings.TrimSpace(*req.ParentID) != "" {
		parent, err = s.validateParent(ctx, memoryID, strings.TrimSpace(*req.ParentID))
		if err != nil {
			return nil, err
		}
		comment.ParentID = &parent.ID
	}

	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.invalidate(ctx, memoryID)

	created, err := s.repo.FindWithRelations(ctx, comment.ID)
	if err != nil {
		return nil, fmt.Errorf("reload comment: %w", err)
	}
	resp := created.ToResponse()

	event := &domain.Notification{
		Type:      domain.NotificationMemoryComment,
		MemoryID:  memoryID,
		CommentID: created.ID,
		Actor:     resp.User,
		CreatedAt: time.Now().UTC(),
	}
	notify(s.notifier, memory.AuthorID, event)
	if parent != nil && parent.UserID != memory.AuthorID {
		reply := *event
		reply.Type = domain.NotificationCommentReply
		notify(s.notifier, parent.UserID, &reply)
	}

	return resp, nil
}

// validateParent only accepts top-level comments of the same memory
func (s *commentService) validateParent(ctx context.Context, memoryID, parentID string) (*domain.Comment, error) {
	parent, err := s.repo.FindByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrInvalidParentComment
		}
		return nil, fmt.Errorf("find parent comment: %w", err)
	}
	if parent.MemoryID != memoryID || parent.IsReply() {
		return nil, common.ErrInvalidParentComment
	}
	return parent, nil
}

func (s *commentService) EditComment(ctx context.Context, userID, commentID, text string) (*domain.CommentResponse, error) {
	if userID == "" {
		return nil, common.ErrUnauthorized
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, common.ErrEmptyComment
	}

	comment, err := s.authorize(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateText(ctx, commentID, text); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	s.invalidate(ctx, comment.MemoryID)

	updated, err := s.repo.FindWithRelations(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("reload comment: %w", err)
	}
	return updated.ToResponse(), nil
}

// DeleteComment removes the comment; a top-level comment takes its replies with it
func (s *commentService) DeleteComment(ctx context.Context, userID, commentID string) error {
	if userID == "" {
		return common.ErrUnauthorized
	}

	comment, err := s.authorize(ctx, userID, commentID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrCommentNotFound
		}
		return fmt.Errorf("delete comment: %w", err)
	}

	s.invalidate(ctx, comment.MemoryID)
	return nil
}

func (s *commentService) authorize(ctx context.Context, userID, commentID string) (*domain.Comment, error) {
	comment, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrCommentNotFound
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}
	if comment.UserID != userID {
		return nil, common.ErrForbidden
	}
	return comment, nil
}

func (s *commentService) invalidate(ctx context.Context, memoryID string) {
	if err := s.cache.InvalidateMemory(ctx, memoryID); err != nil {
		pkglogger.WithMemory(memoryID, "").Warn().Err(err).Msg("cache invalidation failed")
	}
}
