package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/plantdoctor/internal/cache"
	"github.com/geocoder89/plantdoctor/internal/domain/culture"
	"github.com/gin-gonic/gin"
)

const culturesCacheKey = "cultures:list:v1"

type CultureStore interface {
	List(ctx context.Context) ([]culture.Culture, error)
	ListForUser(ctx context.Context, userID string) ([]culture.Culture, error)
	ReplaceInterests(ctx context.Context, userID string, cultureIDs []string) ([]culture.Culture, error)
}

type CulturesHandler struct {
	cultures CultureStore
	cache    cache.Store
}

// NewCulturesHandler accepts a nil cache.
func NewCulturesHandler(cultures CultureStore, c cache.Store) *CulturesHandler {
	return &CulturesHandler{cultures: cultures, cache: c}
}

func (h *CulturesHandler) List(ctx *gin.Context) {
	cctx, cancel := requestCtx(ctx, 2*time.Second)
	defer cancel()

	items, err := h.catalog(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not list cultures", err)
		return
	}

	RespondCacheable(ctx, http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	}, culturesMaxAge)
}

// catalog reads through the cache. A corrupt entry is treated as a miss.
func (h *CulturesHandler) catalog(ctx context.Context) ([]culture.Culture, error) {
	if h.cache != nil {
		if b, ok := h.cache.Get(ctx, culturesCacheKey); ok {
			var items []culture.Culture
			if err := json.Unmarshal(b, &items); err == nil {
				return items, nil
			}
		}
	}

	items, err := h.cultures.List(ctx)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if b, err := json.Marshal(items); err == nil {
			h.cache.Set(ctx, culturesCacheKey, b)
		}
	}
	return items, nil
}

func (h *CulturesHandler) SetInterests(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req culture.SetInterestsRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx, 3*time.Second)
	defer cancel()

	items, err := h.cultures.ReplaceInterests(cctx, userID, req.CultureIDs)
	if err != nil {
		if errors.Is(err, culture.ErrUnknownCulture) {
			RespondBadRequest(ctx, "Unknown culture id", gin.H{"culture_ids": req.CultureIDs})
			return
		}
		RespondInternal(ctx, "Could not save cultures", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *CulturesHandler) Mine(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx, 2*time.Second)
	defer cancel()

	items, err := h.cultures.ListForUser(cctx, userID)
	if err != nil {
		RespondInternal(ctx, "Could not list cultures", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}
