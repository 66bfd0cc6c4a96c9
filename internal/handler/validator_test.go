package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Charltoon/Memory-Archive/internal/common"
	"github.com/Charltoon/Memory-Archive/internal/domain"
)

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name string
		req  interface{}
		want error
	}{
		{"valid memory", &domain.CreateMemoryRequest{Title: "x", Category: "food"}, nil},
		{"missing title", &domain.CreateMemoryRequest{}, common.ErrTitleRequired},
		{"bad category", &domain.CreateMemoryRequest{Title: "x", Category: "Cooking"}, common.ErrInvalidCategory},
		{"valid reaction", &domain.ReactionRequest{Type: "HAHA"}, nil},
		{"empty reaction", &domain.ReactionRequest{}, nil},
		{"bad reaction", &domain.ReactionRequest{Type: "love"}, common.ErrInvalidReactionType},
		{"bad email", &domain.CredentialsRequest{Email: "nope", Password: "pw"}, common.ErrInvalidInput},
		{"missing comment id", &domain.DeleteCommentRequest{}, common.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(tt.req)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
