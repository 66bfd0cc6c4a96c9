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

// ReactionService toggles reactions on memories and comments
type ReactionService interface {
	// ToggleMemoryReaction adds, switches or removes the user's reaction.
	// An empty type is a plain like.
	ToggleMemoryReaction(ctx context.Context, userID, memoryID, reactionType string) (*domain.ReactionToggleResult, error)
	ListMemoryReactions(ctx context.Context, memoryID string) (*domain.ReactionListResult, error)
	ToggleCommentReaction(ctx context.Context, userID, commentID string) (*domain.CommentReactionResult, error)
}

type reactionService struct {
	repo        repository.ReactionRepository
	memoryRepo  repository.MemoryRepository
	commentRepo repository.CommentRepository
	cache       cache.Service
	notifier    Notifier
}

// NewReactionService creates a new ReactionService. cacheService and notifier may be nil.
func NewReactionService(
	repo repository.ReactionRepository,
	memoryRepo repository.MemoryRepository,
	commentRepo repository.CommentRepository,
	cacheService cache.Service,
	notifier Notifier,
) ReactionService {
	if cacheService == nil {
		cacheService = cache.NewService(nil)
	}
	return &reactionService{
		repo:        repo,
		memoryRepo:  memoryRepo,
		commentRepo: commentRepo,
		cache:       cacheService,
		notifier:    notifier,
	}
}

// ParseReactionType normalizes a requested type; empty means like
func ParseReactionType(raw string) (domain.ReactionType, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return domain.ReactionLike, nil
	}
	t := domain.ReactionType(raw)
	if !t.IsValid() {
		return "", common.ErrInvalidReactionType
	}
	return t, nil
}

func (s *reactionService) ToggleMemoryReaction(ctx context.Context, userID, memoryID, reactionType string) (*domain.ReactionToggleResult, error) {
	if userID == "" {
		return nil, common.ErrUnauthorized
	}

	requested, err := ParseReactionType(reactionType)
	if err != nil {
		return nil, err
	}

	memory, err := s.memoryRepo.FindByID(ctx, memoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrMemoryNotFound
		}
		return nil, fmt.Errorf("find memory: %w", err)
	}

	existing, err := s.repo.FindLike(ctx, userID, memoryID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find reaction: %w", err)
	}

	added := false
	switch {
	case existing == nil:
		created, err := s.repo.CreateLike(ctx, &domain.Like{UserID: userID, MemoryID: memoryID, Type: requested})
		if err != nil {
			return nil, fmt.Errorf("create reaction: %w", err)
		}
		// a concurrent duplicate loses the insert; the re-read below reports what won
		added = created
	case existing.Type == requested:
		if err := s.repo.DeleteLike(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("delete reaction: %w", err)
		}
	default:
		if err := s.repo.UpdateLikeType(ctx, existing.ID, requested); err != nil {
			return nil, fmt.Errorf("update reaction: %w", err)
		}
		added = true
	}

	s.invalidate(ctx, memoryID)

	likes, err := s.repo.ListLikes(ctx, memoryID)
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}

	result := &domain.ReactionToggleResult{
		Reactors: make([]domain.ReactorResponse, len(likes)),
		Count:    len(likes),
	}
	var actor domain.UserSummary
	for i := range likes {
		result.Reactors[i] = likes[i].ToReactor()
		if likes[i].UserID == userID {
			t := likes[i].Type
			result.Reacted = true
			result.CurrentType = &t
			actor = result.Reactors[i].User
		}
	}

	if added && result.Reacted {
		notify(s.notifier, memory.AuthorID, &domain.Notification{
			Type:         domain.NotificationMemoryReaction,
			MemoryID:     memoryID,
			ReactionType: *result.CurrentType,
			Actor:        actor,
			CreatedAt:    time.Now().UTC(),
		})
	}

	return result, nil
}

func (s *reactionService) ListMemoryReactions(ctx context.Context, memoryID string) (*domain.ReactionListResult, error) {
	exists, err := s.memoryRepo.Exists(ctx, memoryID)
	if err != nil {
		return nil, fmt.Errorf("find memory: %w", err)
	}
	if !exists {
		return nil, common.ErrMemoryNotFound
	}

	likes, err := s.repo.ListLikes(ctx, memoryID)
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}

	reactors := make([]domain.ReactorResponse, len(likes))
	for i := range likes {
		reactors[i] = likes[i].ToReactor()
	}

	return &domain.ReactionListResult{
		Reactors: reactors,
		Summary:  domain.SummarizeReactors(reactors),
		Count:    len(reactors),
	}, nil
}

// ToggleCommentReaction is binary: insert when absent, delete when present
func (s *reactionService) ToggleCommentReaction(ctx context.Context, userID, commentID string) (*domain.CommentReactionResult, error) {
	if userID == "" {
		return nil, common.ErrUnauthorized
	}

	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrCommentNotFound
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}

	existing, err := s.repo.FindCommentReaction(ctx, userID, commentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find comment reaction: %w", err)
	}

	if existing == nil {
		if _, err := s.repo.CreateCommentReaction(ctx, &domain.CommentReaction{UserID: userID, CommentID: commentID}); err != nil {
			return nil, fmt.Errorf("create comment reaction: %w", err)
		}
	} else if err := s.repo.DeleteCommentReaction(ctx, existing.ID); err != nil {
		return nil, fmt.Errorf("delete comment reaction: %w", err)
	}

	s.invalidate(ctx, comment.MemoryID)

	reactions, err := s.repo.ListCommentReactions(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("list comment reactions: %w", err)
	}

	result := &domain.CommentReactionResult{Reactions: domain.ToCommentReactionResponses(reactions)}
	for _, r := range reactions {
		if r.UserID == userID {
			result.Reacted = true
			break
		}
	}
	return result, nil
}

func (s *reactionService) invalidate(ctx context.Context, memoryID string) {
	if err := s.cache.InvalidateMemory(ctx, memoryID); err != nil {
		pkglogger.WithMemory(memoryID, "").Warn().Err(err).Msg("cache invalidation failed")
	}
}
