package repository

import (
	"context"

	"github.com/Charltoon/Memory-Archive/internal/domain"
	"gorm.io/gorm"
)

// CommentRepository comment data access
type CommentRepository interface {
	// ListByMemory returns top-level comments oldest first, each with its
	// author, reactions and replies (also oldest first) preloaded
	ListByMemory(ctx context.Context, memoryID string) ([]*domain.Comment, error)

	FindByID(ctx context.Context, id string) (*domain.Comment, error)

	// FindWithRelations loads one comment the way ListByMemory does
	FindWithRelations(ctx context.Context, id string) (*domain.Comment, error)

	Create(ctx context.Context, comment *domain.Comment) error

	UpdateText(ctx context.Context, id, text string) error

	// Delete removes the comment, its replies and every reaction on them
	Delete(ctx context.Context, id string) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func oldestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

func (r *commentRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Reactions", oldestFirst).
		Preload("Reactions.User").
		Preload("Replies", oldestFirst).
		Preload("Replies.User").
		Preload("Replies.Reactions", oldestFirst).
		Preload("Replies.Reactions.User")
}

func (r *commentRepository) ListByMemory(ctx context.Context, memoryID string) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	err := r.withRelations(r.db.WithContext(ctx)).
		Where("memory_id = ? AND parent_id IS NULL", memoryID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	var comment domain.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) FindWithRelations(ctx context.Context, id string) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.withRelations(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).
		Omit("User", "Replies", "Reactions").
		Create(comment).Error
}

func (r *commentRepository) UpdateText(ctx context.Context, id, text string) error {
	return r.db.WithContext(ctx).Model(&domain.Comment{}).
		Where("id = ?", id).
		Update("text", text).Error
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		thread := tx.Model(&domain.Comment{}).Select("id").Where("id = ? OR parent_id = ?", id, id)

		if err := tx.Where("comment_id IN (?)", thread).Delete(&domain.CommentReaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("parent_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&domain.Comment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
