package repository

import (
	"context"

	"github.com/Charltoon/Memory-Archive/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepository handles memory likes and comment reactions
type ReactionRepository interface {
	FindLike(ctx context.Context, userID, memoryID string) (*domain.Like, error)
	// CreateLike reports false when a concurrent request already inserted the pair
	CreateLike(ctx context.Context, like *domain.Like) (bool, error)
	UpdateLikeType(ctx context.Context, id string, reactionType domain.ReactionType) error
	DeleteLike(ctx context.Context, id string) error
	// ListLikes returns a memory's reactions oldest first with the reacting user
	ListLikes(ctx context.Context, memoryID string) ([]domain.Like, error)

	FindCommentReaction(ctx context.Context, userID, commentID string) (*domain.CommentReaction, error)
	CreateCommentReaction(ctx context.Context, reaction *domain.CommentReaction) (bool, error)
	DeleteCommentReaction(ctx context.Context, id string) error
	ListCommentReactions(ctx context.Context, commentID string) ([]domain.CommentReaction, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new ReactionRepository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) FindLike(ctx context.Context, userID, memoryID string) (*domain.Like, error) {
	var like domain.Like
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND memory_id = ?", userID, memoryID).
		First(&like).Error
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *reactionRepository) CreateLike(ctx context.Context, like *domain.Like) (bool, error) {
	result := r.db.WithContext(ctx).
		Omit("User").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(like)
	return result.RowsAffected > 0, result.Error
}

func (r *reactionRepository) UpdateLikeType(ctx context.Context, id string, reactionType domain.ReactionType) error {
	return r.db.WithContext(ctx).Model(&domain.Like{}).
		Where("id = ?", id).
		Update("type", reactionType).Error
}

func (r *reactionRepository) DeleteLike(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Like{}).Error
}

func (r *reactionRepository) ListLikes(ctx context.Context, memoryID string) ([]domain.Like, error) {
	var likes []domain.Like
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("memory_id = ?", memoryID).
		Order("created_at ASC, id ASC").
		Find(&likes).Error
	return likes, err
}

func (r *reactionRepository) FindCommentReaction(ctx context.Context, userID, commentID string) (*domain.CommentReaction, error) {
	var reaction domain.CommentReaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		First(&reaction).Error
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

func (r *reactionRepository) CreateCommentReaction(ctx context.Context, reaction *domain.CommentReaction) (bool, error) {
	result := r.db.WithContext(ctx).
		Omit("User").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(reaction)
	return result.RowsAffected > 0, result.Error
}

func (r *reactionRepository) DeleteCommentReaction(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.CommentReaction{}).Error
}

func (r *reactionRepository) ListCommentReactions(ctx context.Context, commentID string) ([]domain.CommentReaction, error) {
	var reactions []domain.CommentReaction
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("comment_id = ?", commentID).
		Order("created_at ASC, id ASC").
		Find(&reactions).Error
	return reactions, err
}
