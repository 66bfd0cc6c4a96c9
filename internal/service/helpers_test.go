package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Charltoon/Memory-Archive/internal/domain"
	"github.com/Charltoon/Memory-Archive/internal/migration"
	"github.com/Charltoon/Memory-Archive/internal/repository"
)

// setupTestDB opens a private in-memory SQLite database with the full schema.
// One connection only: every new :memory: connection is a fresh database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, migration.Run(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) *domain.User {
	t.Helper()
	user := &domain.User{Email: name + "@example.com", Name: name, Password: "hash"}
	require.NoError(t, db.Create(user).Error)
	return user
}

type testServices struct {
	db        *gorm.DB
	memories  MemoryService
	reactions ReactionService
	comments  CommentService
	notifier  *recordingNotifier
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	db := setupTestDB(t)

	memoryRepo := repository.NewMemoryRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	notifier := &recordingNotifier{}

	return &testServices{
		db:        db,
		memories:  NewMemoryService(memoryRepo, commentRepo, nil),
		reactions: NewReactionService(reactionRepo, memoryRepo, commentRepo, nil, notifier),
		comments:  NewCommentService(commentRepo, memoryRepo, nil, notifier),
		notifier:  notifier,
	}
}

func (s *testServices) createMemory(t *testing.T, author *domain.User, title string, friends ...string) *domain.MemoryResponse {
	t.Helper()
	m, err := s.memories.CreateMemory(context.Background(), author.ID, &domain.CreateMemoryRequest{
		Title:    title,
		Category: "Travel",
		Date:     "2024-06-01",
		Friends:  friends,
	})
	require.NoError(t, err)
	return m
}

// pause keeps created_at strictly increasing between inserts
func pause() { time.Sleep(2 * time.Millisecond) }

type sentNotification struct {
	UserID string
	Event  domain.Notification
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(userID string, event *domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserID: userID, Event: *event})
}

func (n *recordingNotifier) all() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification(nil), n.sent...)
}
