package post

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindQuestion   Kind = "QUESTION"
	KindSuggestion Kind = "SUGGESTION"
)

var ErrUnknownKind = errors.New("unknown post kind")

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindQuestion:
		return KindQuestion, nil
	case KindSuggestion:
		return KindSuggestion, nil
	default:
		return "", ErrUnknownKind
	}
}

type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreatePostRequest struct {
	Kind  string `json:"kind" binding:"required"`
	Title string `json:"title" binding:"required,min=3,max=150"`
	Body  string `json:"body" binding:"required,max=5000"`
}

type ListFilter struct {
	Kind  *Kind
	Limit int
}

func New(userID string, kind Kind, req CreatePostRequest) Post {
	return Post{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Title:     strings.TrimSpace(req.Title),
		Body:      strings.TrimSpace(req.Body),
		CreatedAt: time.Now().UTC(),
	}
}
