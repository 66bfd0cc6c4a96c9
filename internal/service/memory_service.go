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

// accepted memory date layouts, tried in order
var memoryDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// MemoryService memory business logic
type MemoryService interface {
	ListMemories(ctx context.Context, viewerID string, req *domain.ListMemoriesRequest) ([]*domain.MemoryResponse, error)
	GetMemory(ctx context.Context, id, viewerID string) (*domain.MemoryDetailResponse, error)
	GetStats(ctx context.Context) (*domain.MemoryStats, error)
	CreateMemory(ctx context.Context, authorID string, req *domain.CreateMemoryRequest) (*domain.MemoryResponse, error)
	UpdateMemory(ctx context.Context, authorID, id string, req *domain.UpdateMemoryRequest) (*domain.MemoryResponse, error)
	DeleteMemory(ctx context.Context, authorID, id string) error
}

type memoryService struct {
	memoryRepo  repository.MemoryRepository
	commentRepo repository.CommentRepository
	cache       cache.Service
	now         func() time.Time
}

// NewMemoryService creates a new MemoryService. cacheService may be nil.
func NewMemoryService(memoryRepo repository.MemoryRepository, commentRepo repository.CommentRepository, cacheService cache.Service) MemoryService {
	if cacheService == nil {
		cacheService = cache.NewService(nil)
	}
	return &memoryService{
		memoryRepo:  memoryRepo,
		commentRepo: commentRepo,
		cache:       cacheService,
		now:         time.Now,
	}
}

// ListMemories returns the feed, newest first unless req.Sort says otherwise.
// Unsearched feeds are cached per category and sort; liked/myReaction are
// computed per request.
func (s *memoryService) ListMemories(ctx context.Context, viewerID string, req *domain.ListMemoriesRequest) ([]*domain.MemoryResponse, error) {
	if req == nil {
		req = &domain.ListMemoriesRequest{}
	}

	var q domain.MemoryListQuery
	if strings.TrimSpace(req.Category) != "" {
		parsed, ok := domain.ParseCategory(req.Category)
		if !ok {
			return nil, common.ErrInvalidCategory
		}
		q.Category = parsed
	}
	sort, ok := domain.ParseMemorySort(req.Sort)
	if !ok {
		return nil, common.ErrInvalidSort
	}
	q.Sort = sort
	q.Search = strings.TrimSpace(req.Search)

	cacheable := q.Search == ""
	variant := feedVariant(q)

	var feed []*domain.MemoryResponse
	if !cacheable || s.cache.GetFeed(ctx, variant, &feed) != nil {
		memories, err := s.memoryRepo.List(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("list memories: %w", err)
		}

		feed = make([]*domain.MemoryResponse, len(memories))
		for i, m := range memories {
			feed[i] = m.ToResponse()
		}

		if cacheable {
			if err := s.cache.SetFeed(ctx, variant, feed); err != nil {
				pkglogger.WithMemory("", viewerID).Warn().Err(err).Str("variant", variant).Msg("feed cache write failed")
			}
		}
	}

	out := make([]*domain.MemoryResponse, len(feed))
	for i, m := range feed {
		out[i] = m.WithViewer(viewerID)
	}
	return out, nil
}

// feedVariant is the cache key suffix of an unsearched feed
func feedVariant(q domain.MemoryListQuery) string {
	if q.Sort == domain.SortNewest {
		return string(q.Category)
	}
	return string(q.Category) + ":" + string(q.Sort)
}

// GetMemory returns the full detail including threaded comments
func (s *memoryService) GetMemory(ctx context.Context, id, viewerID string) (*domain.MemoryDetailResponse, error) {
	var detail domain.MemoryDetailResponse
	if err := s.cache.GetMemory(ctx, id, &detail); err == nil {
		return detail.WithViewer(viewerID), nil
	}

	memory, err := s.memoryRepo.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrMemoryNotFound
		}
		return nil, fmt.Errorf("get memory: %w", err)
	}

	comments, err := s.commentRepo.ListByMemory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	resp := &domain.MemoryDetailResponse{
		MemoryResponse: *memory.ToResponse(),
		Comments:       make([]*domain.CommentResponse, len(comments)),
	}
	for i, c := range comments {
		resp.Comments[i] = c.ToResponse()
	}

	if err := s.cache.SetMemory(ctx, id, resp); err != nil {
		pkglogger.WithMemory(id, viewerID).Warn().Err(err).Msg("memory cache write failed")
	}

	return resp.WithViewer(viewerID), nil
}

// GetStats returns archive-wide totals
func (s *memoryService) GetStats(ctx context.Context) (*domain.MemoryStats, error) {
	var stats domain.MemoryStats
	if err := s.cache.GetStats(ctx, &stats); err == nil {
		return &stats, nil
	}

	fresh, err := s.memoryRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("memory stats: %w", err)
	}

	if err := s.cache.SetStats(ctx, fresh); err != nil {
		pkglogger.WithMemory("", "").Warn().Err(err).Msg("stats cache write failed")
	}
	return fresh, nil
}

func (s *memoryService) CreateMemory(ctx context.Context, authorID string, req *domain.CreateMemoryRequest) (*domain.MemoryResponse, error) {
	if authorID == "" {
		return nil, common.ErrUnauthorized
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, common.ErrTitleRequired
	}

	category := domain.DefaultCategory
	if strings.TrimSpace(req.Category) != "" {
		parsed, ok := domain.ParseCategory(req.Category)
		if !ok {
			return nil, common.ErrInvalidCategory
		}
		category = parsed
	}

	date, err := s.parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	memory := &domain.Memory{
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Image:       strings.TrimSpace(req.Image),
		Date:        date,
		Location:    strings.TrimSpace(req.Location),
		Category:    category,
		AuthorID:    authorID,
	}

	if err := s.memoryRepo.Create(ctx, memory, normalizeFriends(req.Friends)); err != nil {
		return nil, fmt.Errorf("create memory: %w", err)
	}

	s.invalidate(ctx, memory.ID)
	return s.reload(ctx, memory.ID, authorID)
}

// UpdateMemory checks existence (404) before ownership (403); the column
// changes and the friend replacement are applied atomically
func (s *memoryService) UpdateMemory(ctx context.Context, authorID, id string, req *domain.UpdateMemoryRequest) (*domain.MemoryResponse, error) {
	if authorID == "" {
		return nil, common.ErrUnauthorized
	}
	if err := s.authorize(ctx, authorID, id); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, common.ErrTitleRequired
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Image != nil {
		updates["image"] = strings.TrimSpace(*req.Image)
	}
	if req.Location != nil {
		updates["location"] = strings.TrimSpace(*req.Location)
	}
	if req.Category != nil && strings.TrimSpace(*req.Category) != "" {
		parsed, ok := domain.ParseCategory(*req.Category)
		if !ok {
			return nil, common.ErrInvalidCategory
		}
		updates["category"] = parsed
	}
	if req.Date != nil && strings.TrimSpace(*req.Date) != "" {
		date, err := s.parseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		updates["date"] = date
	}

	if err := s.memoryRepo.Update(ctx, id, updates, normalizeFriends(req.Friends)); err != nil {
		return nil, fmt.Errorf("update memory: %w", err)
	}

	s.invalidate(ctx, id)
	return s.reload(ctx, id, authorID)
}

func (s *memoryService) DeleteMemory(ctx context.Context, authorID, id string) error {
	if authorID == "" {
		return common.ErrUnauthorized
	}
	if err := s.authorize(ctx, authorID, id); err != nil {
		return err
	}

	if err := s.memoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrMemoryNotFound
		}
		return fmt.Errorf("delete memory: %w", err)
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *memoryService) authorize(ctx context.Context, authorID, id string) error {
	memory, err := s.memoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrMemoryNotFound
		}
		return fmt.Errorf("find memory: %w", err)
	}
	if memory.AuthorID != authorID {
		return common.ErrForbidden
	}
	return nil
}

func (s *memoryService) reload(ctx context.Context, id, viewerID string) (*domain.MemoryResponse, error) {
	memory, err := s.memoryRepo.FindDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload memory: %w", err)
	}
	return memory.ToResponse().WithViewer(viewerID), nil
}

func (s *memoryService) invalidate(ctx context.Context, id string) {
	if err := s.cache.InvalidateMemory(ctx, id); err != nil {
		pkglogger.WithMemory(id, "").Warn().Err(err).Msg("cache invalidation failed")
	}
}

func (s *memoryService) parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.now().UTC(), nil
	}
	for _, layout := range memoryDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, common.ErrInvalidDate
}

// normalizeFriends trims names and drops blanks and duplicates, keeping order
func normalizeFriends(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
