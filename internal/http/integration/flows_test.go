package integration_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const milhoID = "c0a80001-0000-4000-8000-000000000009"

type apiError struct {
	Message   string `json:"message"`
	Code      string `json:"code"`
	RequestID string `json:"requestId"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

type plantingResponse struct {
	ID                   string `json:"id"`
	CultureName          string `json:"culture_name"`
	PlantingDate         string `json:"planting_date"`
	PredictedHarvestDate string `json:"predicted_harvest_date"`
}

func TestGrowerJourney(t *testing.T) {
	a := newTestApp(t)

	a.register(t, "Ana", "ana@example.com", "secret123")

	w := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana Again", "email": "ana@example.com", "password": "other",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	var conflict apiError
	mustReadJSON(t, w, &conflict)
	assert.Equal(t, "email_taken", conflict.Code)
	assert.NotEmpty(t, conflict.RequestID)

	first := a.login(t, "ana@example.com", "secret123")
	assert.NotEmpty(t, first.Token)
	assert.False(t, first.HasCultures)
	assert.Equal(t, "COMMON", first.UserRole)

	w = a.do(http.MethodPut, "/api/user/profile", first.Token, map[string]string{"name": "Ana Souza"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/api/user/profile", first.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile map[string]any
	mustReadJSON(t, w, &profile)
	assert.Equal(t, "Ana Souza", profile["name"])
	assert.Equal(t, "ana@example.com", profile["email"])
	assert.NotContains(t, profile, "PasswordHash")

	w = a.do(http.MethodPost, "/api/user/cultures", first.Token, map[string][]string{
		"culture_ids": {milhoID},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	second := a.login(t, "ana@example.com", "secret123")
	assert.True(t, second.HasCultures)

	w = a.do(http.MethodGet, "/api/user/my-cultures", second.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine listResponse[struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}]
	mustReadJSON(t, w, &mine)
	require.Equal(t, 1, mine.Count)
	assert.Equal(t, "Milho", mine.Items[0].Name)

	w = a.do(http.MethodPost, "/api/planted-cultures", second.Token, map[string]string{
		"culture_id":    milhoID,
		"planting_date": "2024-03-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p plantingResponse
	mustReadJSON(t, w, &p)
	assert.Equal(t, "Milho", p.CultureName)
	assert.Equal(t, "2024-06-29", p.PredictedHarvestDate)

	w = a.do(http.MethodPost, "/api/planted-cultures/"+p.ID+"/history", second.Token, map[string]string{
		"event_type":  "irrigation",
		"event_date":  "2024-03-10",
		"description": "first watering",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/api/planted-cultures/"+p.ID+"/history", second.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var hist listResponse[map[string]any]
	mustReadJSON(t, w, &hist)
	assert.Equal(t, 1, hist.Count)

	w = a.do(http.MethodGet, "/api/planted-cultures", second.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var plantings listResponse[plantingResponse]
	mustReadJSON(t, w, &plantings)
	require.Equal(t, 1, plantings.Count)
	assert.Equal(t, p.ID, plantings.Items[0].ID)

	w = a.do(http.MethodDelete, "/api/planted-cultures/"+p.ID, second.Token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(http.MethodDelete, "/api/planted-cultures/"+p.ID, second.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/api/planted-cultures/"+p.ID+"/history", second.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlantingsAreScopedToOwner(t *testing.T) {
	a := newTestApp(t)
	a.register(t, "Ana", "ana@example.com", "secret123")
	a.register(t, "Bia", "bia@example.com", "secret123")
	ana := a.login(t, "ana@example.com", "secret123")
	bia := a.login(t, "bia@example.com", "secret123")

	w := a.do(http.MethodPost, "/api/planted-cultures", ana.Token, map[string]string{
		"culture_id":    milhoID,
		"planting_date": "2024-03-01",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var p plantingResponse
	mustReadJSON(t, w, &p)

	w = a.do(http.MethodDelete, "/api/planted-cultures/"+p.ID, bia.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/api/planted-cultures", bia.Token, nil)
	var list listResponse[plantingResponse]
	mustReadJSON(t, w, &list)
	assert.Equal(t, 0, list.Count)
}

func TestPasswordResetFlow(t *testing.T) {
	a := newTestApp(t)
	a.register(t, "Ana", "ana@example.com", "old-secret")

	w := a.do(http.MethodGet, "/api/auth/request-password-reset?email=ana@example.com", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// unknown addresses get the same answer
	w2 := a.do(http.MethodGet, "/api/auth/request-password-reset?email=ghost@example.com", "", nil)
	require.Equal(t, http.StatusOK, w2.Code)
	assert.JSONEq(t, w.Body.String(), w2.Body.String())

	token := a.outbox.lastResetToken(t, "ana@example.com")
	require.NotEmpty(t, token)

	body := map[string]string{"token": token, "new_password": "new-secret"}
	w = a.do(http.MethodPost, "/api/auth/reset-password", "", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/api/auth/reset-password", "", body)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	var e apiError
	mustReadJSON(t, w, &e)
	assert.Equal(t, "invalid_reset_token", e.Code)

	w = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "old-secret",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	a.login(t, "ana@example.com", "new-secret")
}

func TestPasswordResetTokenExpires(t *testing.T) {
	a := newTestApp(t)
	a.register(t, "Ana", "ana@example.com", "old-secret")

	w := a.do(http.MethodGet, "/api/auth/request-password-reset?email=ana@example.com", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	token := a.outbox.lastResetToken(t, "ana@example.com")

	a.advance(time.Hour + time.Second)

	w = a.do(http.MethodPost, "/api/auth/reset-password", "", map[string]string{
		"token": token, "new_password": "new-secret",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	a.login(t, "ana@example.com", "old-secret")
}

func TestConcurrentResetWithSameTokenSucceedsOnce(t *testing.T) {
	a := newTestApp(t)
	a.register(t, "Ana", "ana@example.com", "old-secret")
	a.do(http.MethodGet, "/api/auth/request-password-reset?email=ana@example.com", "", nil)
	token := a.outbox.lastResetToken(t, "ana@example.com")

	const n = 8
	codes := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := a.do(http.MethodPost, "/api/auth/reset-password", "", map[string]string{
				"token": token, "new_password": fmt.Sprintf("pass-%d", i),
			})
			codes <- w.Code
		}(i)
	}
	wg.Wait()
	close(codes)

	ok := 0
	for code := range codes {
		if code == http.StatusOK {
			ok++
			continue
		}
		assert.Equal(t, http.StatusUnauthorized, code)
	}
	assert.Equal(t, 1, ok)
}

func TestConcurrentRegisterSameEmail(t *testing.T) {
	a := newTestApp(t)

	const n = 10
	codes := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
				"name": "Ana", "email": "race@example.com", "password": "secret123",
			})
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)

	created := 0
	for code := range codes {
		if code == http.StatusCreated {
			created++
			continue
		}
		assert.Equal(t, http.StatusConflict, code)
	}
	assert.Equal(t, 1, created)
}

func TestAdminEndpoints(t *testing.T) {
	a := newTestApp(t)
	a.register(t, "Ana", "ana@example.com", "secret123")
	ana := a.login(t, "ana@example.com", "secret123")
	admin := a.login(t, adminEmail, adminPassword)
	assert.Equal(t, "ADMIN", admin.UserRole)

	w := a.do(http.MethodGet, "/api/admin/users", ana.Token, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodGet, "/api/admin/users", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodGet, "/api/admin/users", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var users listResponse[struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}]
	mustReadJSON(t, w, &users)
	require.Equal(t, 2, users.Count)

	var anaID string
	for _, u := range users.Items {
		if u.Email == "ana@example.com" {
			anaID = u.ID
		}
	}
	require.NotEmpty(t, anaID)

	w = a.do(http.MethodPost, "/api/planted-cultures", ana.Token, map[string]string{
		"culture_id":    milhoID,
		"planting_date": "2024-03-01",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var p plantingResponse
	mustReadJSON(t, w, &p)
	w = a.do(http.MethodPost, "/api/planted-cultures/"+p.ID+"/history", ana.Token, map[string]string{
		"event_type": "fertilizing",
		"event_date": "2024-04-01",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(http.MethodGet, "/api/admin/users/"+anaID+"/history", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var hist listResponse[map[string]any]
	mustReadJSON(t, w, &hist)
	require.Equal(t, 1, hist.Count)
	assert.Equal(t, "Milho", hist.Items[0]["culture_name"])

	w = a.do(http.MethodPut, "/api/admin/users", admin.Token, map[string]string{
		"user_id": anaID, "role": "ADMIN",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodPut, "/api/admin/users", admin.Token, map[string]string{
		"user_id": anaID, "role": "ROOT",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// the role lives in the token, so a fresh login picks up the promotion
	promoted := a.login(t, "ana@example.com", "secret123")
	assert.Equal(t, "ADMIN", promoted.UserRole)
	w = a.do(http.MethodGet, "/api/admin/users", promoted.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPublicCatalogsAndCommunity(t *testing.T) {
	a := newTestApp(t)

	w := a.do(http.MethodGet, "/api/cultures", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cultures listResponse[map[string]any]
	mustReadJSON(t, w, &cultures)
	assert.Equal(t, 11, cultures.Count)

	w = a.do(http.MethodGet, "/api/disease-info/Cafe_Ferrugem", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info struct {
		Success bool   `json:"success"`
		Disease string `json:"disease"`
	}
	mustReadJSON(t, w, &info)
	assert.True(t, info.Success)
	assert.Equal(t, "Cafe_Ferrugem", info.Disease)

	w = a.do(http.MethodGet, "/api/disease-info/Unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	a.register(t, "Ana", "ana@example.com", "secret123")
	ana := a.login(t, "ana@example.com", "secret123")

	w = a.do(http.MethodPost, "/api/posts", ana.Token, map[string]string{
		"kind": "QUESTION", "title": "Yellow leaves", "body": "What is wrong with my corn?",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/api/posts?kind=QUESTION", ana.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var posts listResponse[map[string]any]
	mustReadJSON(t, w, &posts)
	assert.Equal(t, 1, posts.Count)

	culture := milhoID
	w = a.do(http.MethodPost, "/api/diagnosis", ana.Token, map[string]any{
		"diagnosis_name": "Milho_Ferrugem_Comum",
		"culture_id":     culture,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/api/diagnosis/history", ana.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var diag listResponse[map[string]any]
	mustReadJSON(t, w, &diag)
	assert.Equal(t, 1, diag.Count)
}

func TestHealthAndMetrics(t *testing.T) {
	a := newTestApp(t)

	w := a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	a.do(http.MethodGet, "/api/cultures", "", nil)

	w = a.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
