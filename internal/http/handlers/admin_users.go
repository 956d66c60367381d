package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/plantdoctor/internal/domain/planting"
	"github.com/geocoder89/plantdoctor/internal/domain/user"
	"github.com/geocoder89/plantdoctor/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	defaultUsersLimit = 20
	maxUsersLimit     = 100
)

type AdminUserStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateRole(ctx context.Context, id string, role user.Role) (user.User, error)
	ListPage(ctx context.Context, limit int, after *utils.UserCursor) ([]user.User, *string, bool, error)
}

type UserHistoryReader interface {
	ListHistoryForUser(ctx context.Context, userID string) ([]planting.UserHistoryEvent, error)
}

type AdminUsersHandler struct {
	users   AdminUserStore
	history UserHistoryReader
}

func NewAdminUsersHandler(users AdminUserStore, history UserHistoryReader) *AdminUsersHandler {
	return &AdminUsersHandler{users: users, history: history}
}

// List pages through users oldest first, keyed on (created_at, id).
func (h *AdminUsersHandler) List(ctx *gin.Context) {
	limit := defaultUsersLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxUsersLimit {
			RespondBadRequest(ctx, "limit must be between 1 and 100", gin.H{"field": "limit"})
			return
		}
		limit = n
	}

	var after *utils.UserCursor
	if raw := ctx.Query("cursor"); raw != "" {
		c, err := utils.DecodeUserCursor(raw)
		if err != nil {
			RespondBadRequest(ctx, "invalid cursor", gin.H{"field": "cursor"})
			return
		}
		after = &c
	}

	cctx, cancel := requestCtx(ctx, 3*time.Second)
	defer cancel()

	items, next, hasMore, err := h.users.ListPage(cctx, limit, after)
	if err != nil {
		RespondInternal(ctx, "Could not list users", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items":      items,
		"count":      len(items),
		"nextCursor": next,
		"hasMore":    hasMore,
	})
}

func (h *AdminUsersHandler) UpdateRole(ctx *gin.Context) {
	var req user.UpdateRoleRequest
	if !BindJSON(ctx, &req) {
		return
	}

	role, err := user.ParseRole(req.Role)
	if err != nil {
		RespondBadRequest(ctx, "role must be COMMON or ADMIN", gin.H{"field": "role"})
		return
	}

	cctx, cancel := requestCtx(ctx, 3*time.Second)
	defer cancel()

	u, err := h.users.UpdateRole(cctx, req.UserID, role)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not update role", err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// History returns history events across every planting the user owns.
func (h *AdminUsersHandler) History(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id", "User not found")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx, 3*time.Second)
	defer cancel()

	if _, err := h.users.GetByID(cctx, id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not load user history", err)
		return
	}

	items, err := h.history.ListHistoryForUser(cctx, id)
	if err != nil {
		RespondInternal(ctx, "Could not load user history", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"userId": id,
		"items":  items,
		"count":  len(items),
	})
}
