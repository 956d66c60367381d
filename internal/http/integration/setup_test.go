package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/plantdoctor/internal/accounts"
	"github.com/geocoder89/plantdoctor/internal/auth"
	"github.com/geocoder89/plantdoctor/internal/cache"
	"github.com/geocoder89/plantdoctor/internal/config"
	"github.com/geocoder89/plantdoctor/internal/db"
	"github.com/geocoder89/plantdoctor/internal/diseases"
	apphttp "github.com/geocoder89/plantdoctor/internal/http"
	"github.com/geocoder89/plantdoctor/internal/http/handlers"
	"github.com/geocoder89/plantdoctor/internal/notifications"
	"github.com/geocoder89/plantdoctor/internal/observability"
	"github.com/geocoder89/plantdoctor/internal/repo/memory"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-pass"
	resetBase     = "https://app.example/reset"
)

type outbox struct {
	mu   sync.Mutex
	msgs []notifications.Message
}

func (o *outbox) Dispatch(msg notifications.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, msg)
}

// lastResetToken returns the token from the newest reset email sent to email.
func (o *outbox) lastResetToken(t *testing.T, email string) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()

	for i := len(o.msgs) - 1; i >= 0; i-- {
		m := o.msgs[i]
		if m.Kind != notifications.KindPasswordReset || m.To != email {
			continue
		}
		for _, field := range strings.Fields(m.Body) {
			if strings.HasPrefix(field, resetBase) {
				u, err := url.Parse(field)
				require.NoError(t, err)
				return u.Query().Get("token")
			}
		}
	}
	t.Fatalf("no reset email for %s", email)
	return ""
}

type testApp struct {
	router http.Handler
	store  *memory.Store
	outbox *outbox
	now    time.Time
	mu     sync.Mutex
}

func (a *testApp) clock() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.now
}

func (a *testApp) advance(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.now = a.now.Add(d)
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.Config{
		Env:           "test",
		JWTSecret:     "test-secret-key",
		JWTTTLHours:   1,
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
		AdminName:     "Test Admin",
		MaxBodyBytes:  1 << 20,
	}

	a := &testApp{
		store:  memory.New(),
		outbox: &outbox{},
		now:    time.Now().UTC(),
	}

	_, err := db.EnsureAdminUser(ctx, a.store.Users(), cfg)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	jwt := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())
	svc := accounts.New(a.store.Users(), a.store.ResetTokens(), jwt, a.outbox,
		accounts.WithClock(a.clock),
		accounts.WithResetTTL(time.Hour),
		accounts.WithResetURLBase(resetBase),
		accounts.WithLogger(log),
		accounts.WithProm(prom),
	)

	a.router = apphttp.NewRouter(apphttp.Deps{
		Config:        cfg,
		Log:           log,
		Prom:          prom,
		Gatherer:      reg,
		Tokens:        jwt,
		Accounts:      svc,
		Users:         a.store.Users(),
		Cultures:      a.store.Cultures(),
		Plantings:     a.store.Plantings(),
		Posts:         a.store.Posts(),
		Diagnoses:     a.store.Diagnoses(),
		Diseases:      diseases.Default(),
		Cache:         cache.NewMemory(time.Minute),
		Health:        map[string]handlers.Pinger{"store": a.store},
		AuthRateLimit: 1000,
	})

	return a
}

func (a *testApp) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

type loginResponse struct {
	Token       string `json:"token"`
	HasCultures bool   `json:"has_cultures"`
	UserRole    string `json:"user_role"`
}

func (a *testApp) register(t *testing.T, name, email, password string) {
	t.Helper()
	w := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func (a *testApp) login(t *testing.T, email, password string) loginResponse {
	t.Helper()
	w := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp loginResponse
	mustReadJSON(t, w, &resp)
	return resp
}
