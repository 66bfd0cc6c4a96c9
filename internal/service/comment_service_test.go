package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Charltoon/Memory-Archive/internal/common"
	"github.com/Charltoon/Memory-Archive/internal/domain"
)

func TestCreateComment_ReplyThreading(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")
	bob := createUser(t, s.db, "bob")
	m := s.createMemory(t, alice, "thread")

	c1, err := s.comments.CreateComment(context.Background(), alice.ID, m.ID, &domain.CreateCommentRequest{Text: "C1"})
	require.NoError(t, err)
	pause()
	reply, err := s.comments.CreateComment(context.Background(), bob.ID, m.ID, &domain.CreateCommentRequest{Text: "reply", ParentID: &c1.ID})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, c1.ID, *reply.ParentID)
	assert.Equal(t, "bob", reply.User.Name)

	list, err := s.comments.ListComments(context.Background(), m.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c1.ID, list[0].ID)
	require.Len(t, list[0].Replies, 1)
	assert.Equal(t, reply.ID, list[0].Replies[0].ID)
	assert.Equal(t, bob.ID, list[0].Replies[0].User.ID)
}

func TestListComments_AscendingOrder(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")
	bob := createUser(t, s.db, "bob")
	m := s.createMemory(t, alice, "ordering")

	var top []string
	for _, text := range []string{"one", "two", "three"} {
		c, err := s.comments.CreateComment(context.Background(), alice.ID, m.ID, &domain.CreateCommentRequest{Text: text})
		require.NoError(t, err)
		top = append(top, c.ID)
		pause()
	}

	var replies []string
	for _, text := range []string{"r1", "r2", "r3"} {
		r, err := s.comments.CreateComment(context.Background(), bob.ID, m.ID, &domain.CreateCommentRequest{Text: text, ParentID: &top[1]})
		require.NoError(t, err)
		replies = append(replies, r.ID)
		pause()
	}

	_, err := s.reactions.ToggleCommentReaction(context.Background(), alice.ID, replies[0])
	require.NoError(t, err)

	list, err := s.comments.ListComments(context.Background(), m.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, c := range list {
		assert.Equal(t, top[i], c.ID)
		if i > 0 {
			assert.False(t, c.CreatedAt.Before(list[i-1].CreatedAt))
		}
	}

	got := list[1].Replies
	require.Len(t, got, 3)
	for i, r := range got {
		assert.Equal(t, replies[i], r.ID)
		assert.Empty(t, r.Replies)
	}
	require.Len(t, got[0].Reactions, 1)
	assert.Equal(t, alice.ID, got[0].Reactions[0].User.ID)
}

func TestCreateComment_Validation(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")
	m := s.createMemory(t, alice, "first")
	other := s.createMemory(t, alice, "second")

	top, err := s.comments.CreateComment(context.Background(), alice.ID, m.ID, &domain.CreateCommentRequest{Text: "top"})
	require.NoError(t, err)
	reply, err := s.comments.CreateComment(context.Background(), alice.ID, m.ID, &domain.CreateCommentRequest{Text: "reply", ParentID: &top.ID})
	require.NoError(t, err)
	missing := "missing"

	tests := []struct {
		name     string
		userID   string
		memoryID string
		req      domain.CreateCommentRequest
		want     error
	}{
		{"anonymous", "", m.ID, domain.CreateCommentRequest{Text: "x"}, common.ErrUnauthorized},
		{"blank text", alice.ID, m.ID, domain.CreateCommentRequest{Text: "  "}, common.ErrEmptyComment},
		{"unknown memory", alice.ID, "missing", domain.CreateCommentRequest{Text: "x"}, common.ErrMemoryNotFound},
		{"unknown parent", alice.ID, m.ID, domain.CreateCommentRequest{Text: "x", ParentID: &missing}, common.ErrInvalidParentComment},
		{"parent on other memory", alice.ID, other.ID, domain.CreateCommentRequest{Text: "x", ParentID: &top.ID}, common.ErrInvalidParentComment},
		{"reply to reply", alice.ID, m.ID, domain.CreateCommentRequest{Text: "x", ParentID: &reply.ID}, common.ErrInvalidParentComment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := s.comments.CreateComment(context.Background(), tt.userID, tt.memoryID, &req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var count int64
	s.db.Model(&domain.Comment{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestEditComment_OwnerOnly(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")
	bob := createUser(t, s.db, "bob")
	m := s.createMemory(t, alice, "edit")

	c, err := s.comments.CreateComment(context.Background(), bob.ID, m.ID, &domain.CreateCommentRequest{Text: "typo"})
	require.NoError(t, err)

	_, err = s.comments.EditComment(context.Background(), alice.ID, c.ID, "hijack")
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = s.comments.EditComment(context.Background(), bob.ID, "missing", "x")
	assert.ErrorIs(t, err, common.ErrCommentNotFound)

	_, err = s.comments.EditComment(context.Background(), bob.ID, c.ID, " ")
	assert.ErrorIs(t, err, common.ErrEmptyComment)

	edited, err := s.comments.EditComment(context.Background(), bob.ID, c.ID, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "fixed", edited.Text)
	assert.Equal(t, bob.ID, edited.User.ID)
}

func TestDeleteComment_RemovesRepliesAndReactions(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")
	bob := createUser(t, s.db, "bob")
	m := s.createMemory(t, alice, "delete")

	top, err := s.comments.CreateComment(context.Background(), alice.ID, m.ID, &domain.CreateCommentRequest{Text: "top"})
	require.NoError(t, err)
	reply, err := s.comments.CreateComment(context.Background(), bob.ID, m.ID, &domain.CreateCommentRequest{Text: "reply", ParentID: &top.ID})
	require.NoError(t, err)
	keep, err := s.comments.CreateComment(context.Background(), bob.ID, m.ID, &domain.CreateCommentRequest{Text: "keep"})
	require.NoError(t, err)

	_, err = s.reactions.ToggleCommentReaction(context.Background(), bob.ID, top.ID)
	require.NoError(t, err)
	_, err = s.reactions.ToggleCommentReaction(context.Background(), alice.ID, reply.ID)
	require.NoError(t, err)
	_, err = s.reactions.ToggleCommentReaction(context.Background(), alice.ID, keep.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, s.comments.DeleteComment(context.Background(), bob.ID, top.ID), common.ErrForbidden)
	require.NoError(t, s.comments.DeleteComment(context.Background(), alice.ID, top.ID))
	assert.ErrorIs(t, s.comments.DeleteComment(context.Background(), alice.ID, top.ID), common.ErrCommentNotFound)

	list, err := s.comments.ListComments(context.Background(), m.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)

	var comments, reactions int64
	s.db.Model(&domain.Comment{}).Count(&comments)
	s.db.Model(&domain.CommentReaction{}).Count(&reactions)
	assert.Equal(t, int64(1), comments)
	assert.Equal(t, int64(1), reactions)
}

func TestDeleteComment_ReplyLeavesParent(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")
	bob := createUser(t, s.db, "bob")
	m := s.createMemory(t, alice, "reply delete")

	top, err := s.comments.CreateComment(context.Background(), alice.ID, m.ID, &domain.CreateCommentRequest{Text: "top"})
	require.NoError(t, err)
	reply, err := s.comments.CreateComment(context.Background(), bob.ID, m.ID, &domain.CreateCommentRequest{Text: "reply", ParentID: &top.ID})
	require.NoError(t, err)

	require.NoError(t, s.comments.DeleteComment(context.Background(), bob.ID, reply.ID))

	list, err := s.comments.ListComments(context.Background(), m.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Replies)
}

func TestCreateComment_Notifications(t *testing.T) {
	s := newTestServices(t)
	alice := createUser(t, s.db, "alice")
	bob := createUser(t, s.db, "bob")
	carol := createUser(t, s.db, "carol")
	m := s.createMemory(t, alice, "notify")

	top, err := s.comments.CreateComment(context.Background(), bob.ID, m.ID, &domain.CreateCommentRequest{Text: "first"})
	require.NoError(t, err)
	_, err = s.comments.CreateComment(context.Background(), carol.ID, m.ID, &domain.CreateCommentRequest{Text: "reply", ParentID: &top.ID})
	require.NoError(t, err)

	sent := s.notifier.all()
	require.Len(t, sent, 3)
	assert.Equal(t, alice.ID, sent[0].UserID)
	assert.Equal(t, domain.NotificationMemoryComment, sent[0].Event.Type)
	assert.Equal(t, bob.ID, sent[0].Event.Actor.ID)

	assert.Equal(t, alice.ID, sent[1].UserID)
	assert.Equal(t, bob.ID, sent[2].UserID)
	assert.Equal(t, domain.NotificationCommentReply, sent[2].Event.Type)
	assert.Equal(t, carol.ID, sent[2].Event.Actor.ID)
}
