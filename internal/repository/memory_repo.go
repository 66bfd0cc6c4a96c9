package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Charltoon/Memory-Archive/internal/domain"
	"gorm.io/gorm"
)

// MemoryRepository memory data access
type MemoryRepository interface {
	// List returns memories with author, friends, reactors and comment ids
	// preloaded, filtered and ordered by q. Ties fall back to newest first.
	List(ctx context.Context, q domain.MemoryListQuery) ([]*domain.Memory, error)

	// Stats aggregates counts over every memory
	Stats(ctx context.Context) (*domain.MemoryStats, error)

	// FindByID returns the bare memory row
	FindByID(ctx context.Context, id string) (*domain.Memory, error)

	// FindDetail returns the memory with the same relations as List
	FindDetail(ctx context.Context, id string) (*domain.Memory, error)

	Exists(ctx context.Context, id string) (bool, error)

	// Create inserts the memory and its friend tags in one transaction
	Create(ctx context.Context, memory *domain.Memory, friends []string) error

	// Update applies the column changes and replaces the friend tags in one transaction
	Update(ctx context.Context, id string, updates map[string]interface{}, friends []string) error

	// Delete removes the memory and everything hanging off it
	Delete(ctx context.Context, id string) error
}

type memoryRepository struct {
	db *gorm.DB
}

// NewMemoryRepository creates a new MemoryRepository
func NewMemoryRepository(db *gorm.DB) MemoryRepository {
	return &memoryRepository{db: db}
}

func (r *memoryRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Friends", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("Likes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Likes.User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "memory_id")
		})
}

func (r *memoryRepository) List(ctx context.Context, q domain.MemoryListQuery) ([]*domain.Memory, error) {
	var memories []*domain.Memory

	query := r.withRelations(r.db.WithContext(ctx)).Select("memories.*")
	if q.Category != "" {
		query = query.Where("memories.category = ?", q.Category)
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		query = query.Where(
			"(LOWER(memories.title) LIKE ? ESCAPE '!' OR LOWER(memories.description) LIKE ? ESCAPE '!' OR LOWER(memories.location) LIKE ? ESCAPE '!')",
			pattern, pattern, pattern,
		)
	}

	switch q.Sort {
	case domain.SortLikes:
		likeCounts := r.db.WithContext(ctx).Model(&domain.Like{}).
			Select("memory_id, COUNT(*) AS like_count").
			Group("memory_id")
		query = query.
			Joins("LEFT JOIN (?) AS lc ON lc.memory_id = memories.id", likeCounts).
			Order("COALESCE(lc.like_count, 0) DESC")
	case domain.SortDate:
		query = query.Order("memories.date DESC")
	case domain.SortTitle:
		query = query.Order("LOWER(memories.title) ASC")
	}

	err := query.Order("memories.created_at DESC, memories.id DESC").Find(&memories).Error
	return memories, err
}

func (r *memoryRepository) Stats(ctx context.Context) (*domain.MemoryStats, error) {
	db := r.db.WithContext(ctx)
	stats := &domain.MemoryStats{}

	if err := db.Model(&domain.Memory{}).Count(&stats.TotalMemories).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Like{}).Count(&stats.TotalLikes).Error; err != nil {
		return nil, err
	}

	var categories []string
	if err := db.Model(&domain.Memory{}).Distinct().Order("category ASC").Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	stats.Categories = make([]domain.Category, len(categories))
	for i, c := range categories {
		stats.Categories[i] = domain.Category(c)
	}

	stats.Locations = []string{}
	if err := db.Model(&domain.Memory{}).
		Where("location <> ''").
		Distinct().
		Order("location ASC").
		Pluck("location", &stats.Locations).Error; err != nil {
		return nil, err
	}

	stats.CategoriesCount = len(stats.Categories)
	stats.LocationsCount = len(stats.Locations)
	return stats, nil
}

// escapeLike escapes LIKE wildcards using '!' as the escape character, which
// needs no quoting in either MySQL or SQLite
func escapeLike(term string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(term)
}

func (r *memoryRepository) FindByID(ctx context.Context, id string) (*domain.Memory, error) {
	var memory domain.Memory
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&memory).Error; err != nil {
		return nil, err
	}
	return &memory, nil
}

func (r *memoryRepository) FindDetail(ctx context.Context, id string) (*domain.Memory, error) {
	var memory domain.Memory
	err := r.withRelations(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&memory).Error
	if err != nil {
		return nil, err
	}
	return &memory, nil
}

func (r *memoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Memory{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *memoryRepository) Create(ctx context.Context, memory *domain.Memory, friends []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Friends", "Likes", "Comments").Create(memory).Error; err != nil {
			return err
		}
		return createFriends(tx, memory.ID, friends)
	})
}

func (r *memoryRepository) Update(ctx context.Context, id string, updates map[string]interface{}, friends []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if updates == nil {
			updates = map[string]interface{}{}
		}
		updates["updated_at"] = time.Now()
		if err := tx.Model(&domain.Memory{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Where("memory_id = ?", id).Delete(&domain.Friend{}).Error; err != nil {
			return err
		}
		return createFriends(tx, id, friends)
	})
}

// Delete removes dependents explicitly as well, since SQLite does not
// enforce the foreign keys unless told to
func (r *memoryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&domain.Comment{}).Select("id").Where("memory_id = ?", id)

		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&domain.CommentReaction{}).Error; err != nil {
			return err
		}
		// replies first so the parent_id reference never dangles
		if err := tx.Where("memory_id = ? AND parent_id IS NOT NULL", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("memory_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("memory_id = ?", id).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("memory_id = ?", id).Delete(&domain.Friend{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&domain.Memory{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func createFriends(tx *gorm.DB, memoryID string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	friends := make([]domain.Friend, 0, len(names))
	for i, name := range names {
		friends = append(friends, domain.Friend{Name: name, Position: i, MemoryID: memoryID})
	}
	return tx.Create(&friends).Error
}
