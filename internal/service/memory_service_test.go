package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Charltoon/Memory-Archive/internal/common"
	"github.com/Charltoon/Memory-Archive/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestCreateMemory_Defaults(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")

	m, err := s.memories.CreateMemory(context.Background(), alice.ID, &domain.CreateMemoryRequest{
		Title:   "  Beach day  ",
		Friends: []string{"Bob", " ", "Sue", "Bob"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "Beach day", m.Title)
	assert.Equal(t, domain.CategoryAdventure, m.Category)
	assert.Equal(t, alice.ID, m.AuthorID)
	assert.Equal(t, "alice", m.Author.Name)
	assert.Equal(t, []string{"Bob", "Sue"}, m.Friends)
	assert.WithinDuration(t, time.Now(), m.Date, time.Minute)
	assert.Empty(t, m.Reactions)
	assert.False(t, m.Liked)
}

func TestCreateMemory_Validation(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")

	tests := []struct {
		name string
		req  domain.CreateMemoryRequest
		want error
	}{
		{"blank title", domain.CreateMemoryRequest{Title: "   "}, common.ErrTitleRequired},
		{"unknown category", domain.CreateMemoryRequest{Title: "x", Category: "Cooking"}, common.ErrInvalidCategory},
		{"bad date", domain.CreateMemoryRequest{Title: "x", Date: "yesterday"}, common.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := s.memories.CreateMemory(context.Background(), alice.ID, &req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var count int64
	s.db.Model(&domain.Memory{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateMemory_RequiresAuthor(t *testing.T) {
	s := newTestServices(t)

	_, err := s.memories.CreateMemory(context.Background(), "", &domain.CreateMemoryRequest{Title: "x"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestCreateMemory_ParsesDateAndCategory(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")

	m, err := s.memories.CreateMemory(context.Background(), alice.ID, &domain.CreateMemoryRequest{
		Title:    "Birthday",
		Category: "celebration",
		Date:     "2023-12-24",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryCelebration, m.Category)
	assert.Equal(t, time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC), m.Date.UTC())
}

func TestListMemories_NewestFirstWithViewerFlags(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")
	bob := createUser(t, s.db, "bob")

	first := s.createMemory(t, alice, "first")
	pause()
	second := s.createMemory(t, alice, "second")

	_, err := s.reactions.ToggleMemoryReaction(context.Background(), bob.ID, first.ID, "wow")
	require.NoError(t, err)

	list, err := s.memories.ListMemories(context.Background(), bob.ID, nil)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	assert.False(t, list[0].Liked)
	assert.Nil(t, list[0].MyReaction)
	assert.True(t, list[1].Liked)
	require.NotNil(t, list[1].MyReaction)
	assert.Equal(t, domain.ReactionWow, *list[1].MyReaction)
	assert.Equal(t, 1, list[1].ReactionCount)

	anon, err := s.memories.ListMemories(context.Background(), "", &domain.ListMemoriesRequest{})
	require.NoError(t, err)
	for _, m := range anon {
		assert.False(t, m.Liked)
		assert.Nil(t, m.MyReaction)
	}
}

func TestListMemories_CategoryFilter(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")

	s.createMemory(t, alice, "trip") // Travel
	_, err := s.memories.CreateMemory(context.Background(), alice.ID, &domain.CreateMemoryRequest{Title: "pizza", Category: "Food"})
	require.NoError(t, err)

	food, err := s.memories.ListMemories(context.Background(), "", &domain.ListMemoriesRequest{Category: "food"})
	require.NoError(t, err)
	require.Len(t, food, 1)
	assert.Equal(t, "pizza", food[0].Title)

	_, err = s.memories.ListMemories(context.Background(), "", &domain.ListMemoriesRequest{Category: "nope"})
	assert.ErrorIs(t, err, common.ErrInvalidCategory)
}

func TestListMemories_Search(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")

	create := func(title, description, location string) {
		t.Helper()
		_, err := s.memories.CreateMemory(context.Background(), alice.ID, &domain.CreateMemoryRequest{
			Title:       title,
			Description: description,
			Location:    location,
		})
		require.NoError(t, err)
		pause()
	}
	create("Beach Day", "", "")
	create("Hike", "sunrise over the BEACH", "")
	create("Dinner", "", "Beachside Grill")
	create("100% fun", "", "")
	create("1000 fun", "", "")
	create("snake_case", "", "")
	create("snakeXcase", "", "")

	titles := func(q string) []string {
		t.Helper()
		list, err := s.memories.ListMemories(context.Background(), "", &domain.ListMemoriesRequest{Search: q})
		require.NoError(t, err)
		out := make([]string, len(list))
		for i, m := range list {
			out[i] = m.Title
		}
		return out
	}

	assert.Equal(t, []string{"Dinner", "Hike", "Beach Day"}, titles("  beach "))
	assert.Equal(t, []string{"100% fun"}, titles("0%"))
	assert.Equal(t, []string{"snake_case"}, titles("e_c"))
	assert.Empty(t, titles("volcano"))
	assert.Len(t, titles(""), 7)
}

func TestListMemories_SearchWithinCategory(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")

	s.createMemory(t, alice, "pizza trip") // Travel
	_, err := s.memories.CreateMemory(context.Background(), alice.ID, &domain.CreateMemoryRequest{Title: "pizza night", Category: "Food"})
	require.NoError(t, err)

	list, err := s.memories.ListMemories(context.Background(), "", &domain.ListMemoriesRequest{Category: "Food", Search: "pizza"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "pizza night", list[0].Title)
}

func TestListMemories_Sort(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")
	bob := createUser(t, s.db, "bob")
	carol := createUser(t, s.db, "carol")

	create := func(title, date string) *domain.MemoryResponse {
		t.Helper()
		m, err := s.memories.CreateMemory(context.Background(), alice.ID, &domain.CreateMemoryRequest{Title: title, Date: date})
		require.NoError(t, err)
		pause()
		return m
	}
	banana := create("banana", "2021-05-01")
	apple := create("Apple", "2023-01-01")
	cherry := create("cherry", "2019-07-04")

	for _, user := range []*domain.User{bob, carol} {
		_, err := s.reactions.ToggleMemoryReaction(context.Background(), user.ID, cherry.ID, "")
		require.NoError(t, err)
	}
	_, err := s.reactions.ToggleMemoryReaction(context.Background(), bob.ID, banana.ID, "wow")
	require.NoError(t, err)

	ids := func(sort string) []string {
		t.Helper()
		list, err := s.memories.ListMemories(context.Background(), "", &domain.ListMemoriesRequest{Sort: sort})
		require.NoError(t, err)
		out := make([]string, len(list))
		for i, m := range list {
			out[i] = m.ID
		}
		return out
	}

	assert.Equal(t, []string{cherry.ID, apple.ID, banana.ID}, ids(""))
	assert.Equal(t, []string{cherry.ID, apple.ID, banana.ID}, ids("newest"))
	assert.Equal(t, []string{apple.ID, banana.ID, cherry.ID}, ids("date"))
	assert.Equal(t, []string{cherry.ID, banana.ID, apple.ID}, ids("likes"))
	assert.Equal(t, []string{apple.ID, banana.ID, cherry.ID}, ids("TITLE"))

	_, err = s.memories.ListMemories(context.Background(), "", &domain.ListMemoriesRequest{Sort: "random"})
	assert.ErrorIs(t, err, common.ErrInvalidSort)
}

func TestGetStats(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")
	bob := createUser(t, s.db, "bob")

	empty, err := s.memories.GetStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, empty.TotalMemories)
	assert.Zero(t, empty.TotalLikes)
	assert.Zero(t, empty.CategoriesCount)
	assert.Zero(t, empty.LocationsCount)
	assert.NotNil(t, empty.Categories)
	assert.NotNil(t, empty.Locations)

	for _, req := range []domain.CreateMemoryRequest{
		{Title: "a", Category: "Travel", Location: "Lisbon"},
		{Title: "b", Category: "Travel", Location: "Lisbon"},
		{Title: "c", Category: "Food", Location: "Porto"},
		{Title: "d", Category: "Food"},
	} {
		req := req
		m, err := s.memories.CreateMemory(context.Background(), alice.ID, &req)
		require.NoError(t, err)
		_, err = s.reactions.ToggleMemoryReaction(context.Background(), bob.ID, m.ID, "")
		require.NoError(t, err)
	}
	_, err = s.reactions.ToggleMemoryReaction(context.Background(), alice.ID, mustFirstID(t, s), "heart")
	require.NoError(t, err)

	stats, err := s.memories.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalMemories)
	assert.Equal(t, int64(5), stats.TotalLikes)
	assert.Equal(t, 2, stats.CategoriesCount)
	assert.Equal(t, []domain.Category{domain.CategoryFood, domain.CategoryTravel}, stats.Categories)
	assert.Equal(t, 2, stats.LocationsCount)
	assert.Equal(t, []string{"Lisbon", "Porto"}, stats.Locations)
}

func mustFirstID(t *testing.T, s *testServices) string {
	t.Helper()
	var memory domain.Memory
	require.NoError(t, s.db.Order("created_at ASC").First(&memory).Error)
	return memory.ID
}

func TestCreateMemory_KeepsFriendOrder(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")

	m := s.createMemory(t, alice, "order", "Sue", "Bob", "Ana")
	assert.Equal(t, []string{"Sue", "Bob", "Ana"}, m.Friends)

	updated, err := s.memories.UpdateMemory(context.Background(), alice.ID, m.ID, &domain.UpdateMemoryRequest{
		Friends: []string{"Zed", "Ana"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Zed", "Ana"}, updated.Friends)

	got, err := s.memories.GetMemory(context.Background(), m.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Zed", "Ana"}, got.Friends)

	list, err := s.memories.ListMemories(context.Background(), "", nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"Zed", "Ana"}, list[0].Friends)
}

func TestGetMemory_EmptyCommentsSerializeAsArray(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")
	m := s.createMemory(t, alice, "quiet")

	got, err := s.memories.GetMemory(context.Background(), m.ID, "")
	require.NoError(t, err)
	require.NotNil(t, got.Comments)

	raw, err := json.Marshal(got)
	require.NoError(t, err)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Contains(t, body, "comments")
	assert.JSONEq(t, `[]`, string(body["comments"]))
	assert.Contains(t, body, "title")
}

func TestGetMemory_DetailAndNotFound(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")
	bob := createUser(t, s.db, "bob")
	m := s.createMemory(t, alice, "detail", "Bob")

	_, err := s.comments.CreateComment(context.Background(), bob.ID, m.ID, &domain.CreateCommentRequest{Text: "nice"})
	require.NoError(t, err)
	_, err = s.reactions.ToggleMemoryReaction(context.Background(), bob.ID, m.ID, "")
	require.NoError(t, err)

	got, err := s.memories.GetMemory(context.Background(), m.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, got.Friends)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "nice", got.Comments[0].Text)
	assert.Equal(t, 1, got.CommentCount)
	require.Len(t, got.Reactions, 1)
	assert.Equal(t, bob.ID, got.Reactions[0].User.ID)
	assert.Equal(t, domain.ReactionLike, got.Reactions[0].Type)
	assert.False(t, got.Liked)

	_, err = s.memories.GetMemory(context.Background(), "missing", "")
	assert.ErrorIs(t, err, common.ErrMemoryNotFound)
}

func TestUpdateMemory_FriendReplacementKeepsReactions(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")
	bob := createUser(t, s.db, "bob")

	m := s.createMemory(t, alice, "party", "Bob", "Sue")
	_, err := s.reactions.ToggleMemoryReaction(context.Background(), bob.ID, m.ID, "heart")
	require.NoError(t, err)

	updated, err := s.memories.UpdateMemory(context.Background(), alice.ID, m.ID, &domain.UpdateMemoryRequest{
		Friends: []string{"Sue"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Sue"}, updated.Friends)
	assert.Equal(t, "party", updated.Title)
	require.Len(t, updated.Reactions, 1)
	assert.Equal(t, bob.ID, updated.Reactions[0].User.ID)
	assert.Equal(t, domain.ReactionHeart, updated.Reactions[0].Type)

	var friendRows int64
	s.db.Model(&domain.Friend{}).Where("memory_id = ?", m.ID).Count(&friendRows)
	assert.Equal(t, int64(1), friendRows)
}

func TestUpdateMemory_PartialFields(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")
	m := s.createMemory(t, alice, "old title", "Bob")

	updated, err := s.memories.UpdateMemory(context.Background(), alice.ID, m.ID, &domain.UpdateMemoryRequest{
		Description: strPtr("new description"),
		Category:    strPtr("Sports"),
		Friends:     []string{"Bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, "old title", updated.Title)
	assert.Equal(t, "new description", updated.Description)
	assert.Equal(t, domain.CategorySports, updated.Category)

	_, err = s.memories.UpdateMemory(context.Background(), alice.ID, m.ID, &domain.UpdateMemoryRequest{Title: strPtr(" ")})
	assert.ErrorIs(t, err, common.ErrTitleRequired)
}

func TestUpdateMemory_NonOwnerDoesNotMutate(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")
	mallory := createUser(t, s.db, "mallory")
	m := s.createMemory(t, alice, "mine", "Bob")

	_, err := s.memories.UpdateMemory(context.Background(), mallory.ID, m.ID, &domain.UpdateMemoryRequest{
		Title:   strPtr("hijacked"),
		Friends: []string{},
	})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = s.memories.UpdateMemory(context.Background(), mallory.ID, "missing", &domain.UpdateMemoryRequest{Title: strPtr("x")})
	assert.ErrorIs(t, err, common.ErrMemoryNotFound)

	got, err := s.memories.GetMemory(context.Background(), m.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)
	assert.Equal(t, []string{"Bob"}, got.Friends)
}

func TestDeleteMemory_OwnerOnlyAndCascades(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")
	bob := createUser(t, s.db, "bob")
	m := s.createMemory(t, alice, "doomed", "Sue")

	c, err := s.comments.CreateComment(context.Background(), bob.ID, m.ID, &domain.CreateCommentRequest{Text: "hi"})
	require.NoError(t, err)
	_, err = s.reactions.ToggleCommentReaction(context.Background(), alice.ID, c.ID)
	require.NoError(t, err)
	_, err = s.reactions.ToggleMemoryReaction(context.Background(), bob.ID, m.ID, "sad")
	require.NoError(t, err)

	assert.ErrorIs(t, s.memories.DeleteMemory(context.Background(), bob.ID, m.ID), common.ErrForbidden)
	_, err = s.memories.GetMemory(context.Background(), m.ID, "")
	require.NoError(t, err)

	require.NoError(t, s.memories.DeleteMemory(context.Background(), alice.ID, m.ID))

	_, err = s.memories.GetMemory(context.Background(), m.ID, "")
	assert.ErrorIs(t, err, common.ErrMemoryNotFound)

	for _, model := range []interface{}{&domain.Friend{}, &domain.Like{}, &domain.Comment{}, &domain.CommentReaction{}} {
		var count int64
		s.db.Model(model).Count(&count)
		assert.Zero(t, count, "%T", model)
	}

	assert.ErrorIs(t, s.memories.DeleteMemory(context.Background(), alice.ID, m.ID), common.ErrMemoryNotFound)
}

func TestFeedVariant(t *testing.T) {
	assert.Equal(t, "", feedVariant(domain.MemoryListQuery{}))
	assert.Equal(t, "Food", feedVariant(domain.MemoryListQuery{Category: domain.CategoryFood}))
	assert.Equal(t, ":likes", feedVariant(domain.MemoryListQuery{Sort: domain.SortLikes}))
	assert.Equal(t, "Food:title", feedVariant(domain.MemoryListQuery{Category: domain.CategoryFood, Sort: domain.SortTitle}))
}
