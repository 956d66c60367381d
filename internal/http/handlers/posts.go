package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/plantdoctor/internal/domain/post"
	"github.com/gin-gonic/gin"
)

const (
	defaultPostsLimit = 50
	maxPostsLimit     = 200
)

type PostStore interface {
	Create(ctx context.Context, p post.Post) error
	List(ctx context.Context, f post.ListFilter) ([]post.Post, error)
}

type PostsHandler struct {
	posts PostStore
}

func NewPostsHandler(posts PostStore) *PostsHandler {
	return &PostsHandler{posts: posts}
}

func (h *PostsHandler) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req post.CreatePostRequest
	if !BindJSON(ctx, &req) {
		return
	}

	kind, err := post.ParseKind(req.Kind)
	if err != nil {
		RespondBadRequest(ctx, "kind must be QUESTION or SUGGESTION", gin.H{"field": "kind"})
		return
	}

	cctx, cancel := requestCtx(ctx, 3*time.Second)
	defer cancel()

	p := post.New(userID, kind, req)
	if err := h.posts.Create(cctx, p); err != nil {
		RespondInternal(ctx, "Could not create post", err)
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

func (h *PostsHandler) List(ctx *gin.Context) {
	f := post.ListFilter{Limit: defaultPostsLimit}

	if raw := ctx.Query("kind"); raw != "" {
		kind, err := post.ParseKind(raw)
		if err != nil {
			RespondBadRequest(ctx, "kind must be QUESTION or SUGGESTION", gin.H{"field": "kind"})
			return
		}
		f.Kind = &kind
	}

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPostsLimit {
			RespondBadRequest(ctx, "limit must be between 1 and 200", gin.H{"field": "limit"})
			return
		}
		f.Limit = n
	}

	cctx, cancel := requestCtx(ctx, 2*time.Second)
	defer cancel()

	items, err := h.posts.List(cctx, f)
	if err != nil {
		RespondInternal(ctx, "Could not list posts", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}
