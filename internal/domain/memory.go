package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups memories in the feed
type Category string

const (
	CategoryAdventure   Category = "Adventure"
	CategoryCelebration Category = "Celebration"
	CategoryTravel      Category = "Travel"
	CategoryFood        Category = "Food"
	CategorySports      Category = "Sports"
	CategoryOther       Category = "Other"
)

// DefaultCategory is used when a memory is created without one
const DefaultCategory = CategoryAdventure

// Categories lists every valid category in display order
var Categories = []Category{
	CategoryAdventure, CategoryCelebration, CategoryTravel,
	CategoryFood, CategorySports, CategoryOther,
}

// IsValid reports whether c is one of the known categories
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches a category name case-insensitively
func ParseCategory(raw string) (Category, bool) {
	raw = strings.TrimSpace(raw)
	for _, known := range Categories {
		if strings.EqualFold(raw, string(known)) {
			return known, true
		}
	}
	return "", false
}

// Memory is a user-authored post: a photo plus metadata
type Memory struct {
	ID          string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Title       string    `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Image       string    `gorm:"column:image;type:varchar(1000)" json:"image"`
	Date        time.Time `gorm:"column:date" json:"date"`
	Location    string    `gorm:"column:location;type:varchar(255)" json:"location"`
	Category    Category  `gorm:"column:category;type:varchar(32);index" json:"category"`
	AuthorID    string    `gorm:"column:author_id;type:varchar(36);not null;index" json:"authorId"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Author   *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Friends  []Friend  `gorm:"foreignKey:MemoryID;constraint:OnDelete:CASCADE" json:"-"`
	Likes    []Like    `gorm:"foreignKey:MemoryID;constraint:OnDelete:CASCADE" json:"-"`
	Comments []Comment `gorm:"foreignKey:MemoryID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Memory) TableName() string { return "memories" }

// BeforeCreate assigns a UUID primary key
func (m *Memory) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Friend is a free-text name tagged on a memory, not a linked account.
// Position keeps the order the author entered the names in.
type Friend struct {
	ID       string `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Name     string `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Position int    `gorm:"column:position;not null;default:0" json:"position"`
	MemoryID string `gorm:"column:memory_id;type:varchar(36);not null;index" json:"memoryId"`
}

func (Friend) TableName() string { return "friends" }

// BeforeCreate assigns a UUID primary key
func (f *Friend) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// CreateMemoryRequest is the body of POST /memories
type CreateMemoryRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Image       string   `json:"image" validate:"omitempty,max=1000"`
	Date        string   `json:"date"`
	Location    string   `json:"location" validate:"max=255"`
	Category    string   `json:"category" validate:"omitempty,category"`
	Friends     []string `json:"friends" validate:"max=50,dive,max=100"`
}

// UpdateMemoryRequest is the body of PATCH /memories/:id.
// Nil scalar fields are left unchanged; Friends always replaces the tag list.
type UpdateMemoryRequest struct {
	Title       *string  `json:"title" validate:"omitempty,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Image       *string  `json:"image" validate:"omitempty,max=1000"`
	Date        *string  `json:"date"`
	Location    *string  `json:"location" validate:"omitempty,max=255"`
	Category    *string  `json:"category" validate:"omitempty,category"`
	Friends     []string `json:"friends" validate:"max=50,dive,max=100"`
}

// MemorySort orders the feed
type MemorySort string

const (
	SortNewest MemorySort = ""      // created_at, newest first
	SortDate   MemorySort = "date"  // memory date, latest first
	SortLikes  MemorySort = "likes" // reaction count, most first
	SortTitle  MemorySort = "title" // title A-Z, case-insensitive
)

// ParseMemorySort accepts "", "newest", "date", "likes" and "title" in any case
func ParseMemorySort(raw string) (MemorySort, bool) {
	switch MemorySort(strings.ToLower(strings.TrimSpace(raw))) {
	case SortNewest, "newest":
		return SortNewest, true
	case SortDate:
		return SortDate, true
	case SortLikes:
		return SortLikes, true
	case SortTitle:
		return SortTitle, true
	}
	return "", false
}

// ListMemoriesRequest is the query string of GET /memories
type ListMemoriesRequest struct {
	Category string `form:"category"`
	Search   string `form:"q" validate:"max=100"`
	Sort     string `form:"sort"`
}

// MemoryListQuery is a parsed feed query. Search matches title, description
// and location case-insensitively.
type MemoryListQuery struct {
	Category Category
	Search   string
	Sort     MemorySort
}

// MemoryStats summarises the whole archive
type MemoryStats struct {
	TotalMemories   int64      `json:"totalMemories"`
	TotalLikes      int64      `json:"totalLikes"`
	CategoriesCount int        `json:"categoriesCount"`
	LocationsCount  int        `json:"locationsCount"`
	Categories      []Category `json:"categories"`
	Locations       []string   `json:"locations"`
}

// MemoryResponse is a memory as rendered in the feed
type MemoryResponse struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Image         string             `json:"image"`
	Date          time.Time          `json:"date"`
	Location      string             `json:"location"`
	Category      Category           `json:"category"`
	AuthorID      string             `json:"authorId"`
	Author        UserSummary        `json:"author"`
	Friends       []string           `json:"friends"`
	Reactions     []ReactorResponse  `json:"reactions"`
	ReactionCount int                `json:"reactionCount"`
	CommentCount  int                `json:"commentCount"`
	Liked         bool               `json:"liked"`
	MyReaction    *ReactionType      `json:"myReaction"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// MemoryDetailResponse is the single-memory view; comments are always present
type MemoryDetailResponse struct {
	MemoryResponse
	Comments []*CommentResponse `json:"comments"`
}

// ToResponse converts a memory with its preloaded relations.
// Viewer-specific fields are filled by WithViewer.
func (m *Memory) ToResponse() *MemoryResponse {
	friends := make([]string, len(m.Friends))
	for i, f := range m.Friends {
		friends[i] = f.Name
	}

	reactions := make([]ReactorResponse, len(m.Likes))
	for i := range m.Likes {
		reactions[i] = m.Likes[i].ToReactor()
	}

	return &MemoryResponse{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		Image:         m.Image,
		Date:          m.Date,
		Location:      m.Location,
		Category:      m.Category,
		AuthorID:      m.AuthorID,
		Author:        m.Author.Summary(),
		Friends:       friends,
		Reactions:     reactions,
		ReactionCount: len(reactions),
		CommentCount:  len(m.Comments),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// WithViewer returns a copy annotated with whether viewerID reacted, and how.
// An empty viewerID (anonymous) never counts as a reactor.
func (r *MemoryResponse) WithViewer(viewerID string) *MemoryResponse {
	out := *r
	out.Liked = false
	out.MyReaction = nil
	if viewerID == "" {
		return &out
	}
	for _, reactor := range r.Reactions {
		if reactor.User.ID == viewerID {
			t := reactor.Type
			out.Liked = true
			out.MyReaction = &t
			break
		}
	}
	return &out
}

// WithViewer returns a copy of the detail annotated for viewerID
func (d *MemoryDetailResponse) WithViewer(viewerID string) *MemoryDetailResponse {
	out := *d
	out.MemoryResponse = *d.MemoryResponse.WithViewer(viewerID)
	if out.Comments == nil {
		out.Comments = []*CommentResponse{}
	}
	return &out
}
