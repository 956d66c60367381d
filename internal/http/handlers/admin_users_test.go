package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/geocoder89/plantdoctor/internal/domain/planting"
	"github.com/geocoder89/plantdoctor/internal/domain/user"
	"github.com/geocoder89/plantdoctor/internal/http/handlers"
	"github.com/geocoder89/plantdoctor/internal/utils"
	"github.com/gin-gonic/gin"
)

func TestAdminListUsersHandler(t *testing.T) {
	cursor, _ := utils.EncodeUserCursor(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), testUserID)

	var gotLimit int
	var gotAfter *utils.UserCursor
	users := &fakeUsers{
		listPageFn: func(ctx context.Context, limit int, after *utils.UserCursor) ([]user.User, *string, bool, error) {
			gotLimit, gotAfter = limit, after
			next := "next"
			return []user.User{{ID: testUserID}}, &next, true, nil
		},
	}
	h := handlers.NewAdminUsersHandler(users, &fakePlantings{})
	r := setupRouter(http.MethodGet, "/api/admin/users", testUserID, h.List)

	w := doRequest(r, http.MethodGet, "/api/admin/users?limit=5&cursor="+cursor, "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
	if gotLimit != 5 || gotAfter == nil || gotAfter.ID != testUserID {
		t.Fatalf("paging not forwarded: limit=%d after=%+v", gotLimit, gotAfter)
	}

	var resp struct {
		Count      int    `json:"count"`
		NextCursor string `json:"nextCursor"`
		HasMore    bool   `json:"hasMore"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 1 || resp.NextCursor != "next" || !resp.HasMore {
		t.Fatalf("unexpected page: %s", w.Body.String())
	}

	for _, q := range []string{"?limit=0", "?limit=101", "?cursor=garbage"} {
		w = doRequest(r, http.MethodGet, "/api/admin/users"+q, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: got status %d, want 400", q, w.Code)
		}
	}
}

func TestAdminUpdateRoleHandler(t *testing.T) {
	users := &fakeUsers{
		updateRoleFn: func(ctx context.Context, id string, role user.Role) (user.User, error) {
			if id != testUserID {
				return user.User{}, user.ErrNotFound
			}
			return user.User{ID: id, Role: role}, nil
		},
	}
	h := handlers.NewAdminUsersHandler(users, &fakePlantings{})
	r := setupRouter(http.MethodPut, "/api/admin/users", testUserID, h.UpdateRole)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"promote", `{"user_id":"` + testUserID + `","role":"ADMIN"}`, http.StatusOK},
		{"unknown role", `{"user_id":"` + testUserID + `","role":"ROOT"}`, http.StatusBadRequest},
		{"lowercase role", `{"user_id":"` + testUserID + `","role":"admin"}`, http.StatusBadRequest},
		{"unknown user", `{"user_id":"7d1f2a8e-0000-4000-8000-0000000000ff","role":"COMMON"}`, http.StatusNotFound},
		{"missing user id", `{"role":"COMMON"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPut, "/api/admin/users", tt.body)
			if w.Code != tt.want {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestAdminUserHistoryHandler(t *testing.T) {
	users := &fakeUsers{
		getFn: func(ctx context.Context, id string) (user.User, error) {
			if id != testUserID {
				return user.User{}, user.ErrNotFound
			}
			return user.User{ID: id}, nil
		},
	}
	plantings := &fakePlantings{
		forUserFn: func(ctx context.Context, userID string) ([]planting.UserHistoryEvent, error) {
			return []planting.UserHistoryEvent{{CultureName: "Milho"}}, nil
		},
	}
	h := handlers.NewAdminUsersHandler(users, plantings)
	r := setupRouter(http.MethodGet, "/api/admin/users/:id/history", testUserID, h.History)

	w := doRequest(r, http.MethodGet, "/api/admin/users/"+testUserID+"/history", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}
	var body gin.H
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["userId"] != testUserID {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}

	w = doRequest(r, http.MethodGet, "/api/admin/users/7d1f2a8e-0000-4000-8000-0000000000ff/history", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown user: got status %d", w.Code)
	}
}
