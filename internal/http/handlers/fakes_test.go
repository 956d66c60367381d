package handlers_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/geocoder89/plantdoctor/internal/accounts"
	"github.com/geocoder89/plantdoctor/internal/domain/culture"
	"github.com/geocoder89/plantdoctor/internal/domain/planting"
	"github.com/geocoder89/plantdoctor/internal/domain/post"
	"github.com/geocoder89/plantdoctor/internal/domain/user"
	"github.com/geocoder89/plantdoctor/internal/http/middlewares"
	"github.com/geocoder89/plantdoctor/internal/utils"
	"github.com/gin-gonic/gin"
)

// Make sure gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAccounts struct {
	registerFn func(ctx context.Context, name, email, password string) (user.User, error)
	loginFn    func(ctx context.Context, email, password string) (accounts.LoginResult, error)
	requestFn  func(ctx context.Context, email string) error
	resetFn    func(ctx context.Context, token, newPassword string) error
}

func (f *fakeAccounts) Register(ctx context.Context, name, email, password string) (user.User, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, name, email, password)
	}
	return user.User{}, nil
}

func (f *fakeAccounts) Login(ctx context.Context, email, password string) (accounts.LoginResult, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, email, password)
	}
	return accounts.LoginResult{}, nil
}

func (f *fakeAccounts) RequestPasswordReset(ctx context.Context, email string) error {
	if f.requestFn != nil {
		return f.requestFn(ctx, email)
	}
	return nil
}

func (f *fakeAccounts) ResetPassword(ctx context.Context, token, newPassword string) error {
	if f.resetFn != nil {
		return f.resetFn(ctx, token, newPassword)
	}
	return nil
}

type fakeCultures struct {
	listFn    func(ctx context.Context) ([]culture.Culture, error)
	getFn     func(ctx context.Context, id string) (culture.Culture, error)
	mineFn    func(ctx context.Context, userID string) ([]culture.Culture, error)
	hasFn     func(ctx context.Context, userID string) (bool, error)
	replaceFn func(ctx context.Context, userID string, ids []string) ([]culture.Culture, error)
	listCalls int
}

func (f *fakeCultures) List(ctx context.Context) ([]culture.Culture, error) {
	f.listCalls++
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return culture.DefaultCatalog(), nil
}

func (f *fakeCultures) GetByID(ctx context.Context, id string) (culture.Culture, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return culture.Culture{}, culture.ErrNotFound
}

func (f *fakeCultures) ListForUser(ctx context.Context, userID string) ([]culture.Culture, error) {
	if f.mineFn != nil {
		return f.mineFn(ctx, userID)
	}
	return []culture.Culture{}, nil
}

func (f *fakeCultures) HasInterests(ctx context.Context, userID string) (bool, error) {
	if f.hasFn != nil {
		return f.hasFn(ctx, userID)
	}
	return false, nil
}

func (f *fakeCultures) ReplaceInterests(ctx context.Context, userID string, ids []string) ([]culture.Culture, error) {
	if f.replaceFn != nil {
		return f.replaceFn(ctx, userID, ids)
	}
	return []culture.Culture{}, nil
}

type fakePlantings struct {
	createFn      func(ctx context.Context, p planting.Planting) error
	listFn        func(ctx context.Context, userID string) ([]planting.Planting, error)
	deleteFn      func(ctx context.Context, userID, id string) error
	addHistoryFn  func(ctx context.Context, userID string, ev planting.HistoryEvent) error
	listHistoryFn func(ctx context.Context, userID, plantingID string) ([]planting.HistoryEvent, error)
	forUserFn     func(ctx context.Context, userID string) ([]planting.UserHistoryEvent, error)
}

func (f *fakePlantings) Create(ctx context.Context, p planting.Planting) error {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return nil
}

func (f *fakePlantings) ListByUser(ctx context.Context, userID string) ([]planting.Planting, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}
	return []planting.Planting{}, nil
}

func (f *fakePlantings) Delete(ctx context.Context, userID, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, userID, id)
	}
	return nil
}

func (f *fakePlantings) AddHistory(ctx context.Context, userID string, ev planting.HistoryEvent) error {
	if f.addHistoryFn != nil {
		return f.addHistoryFn(ctx, userID, ev)
	}
	return nil
}

func (f *fakePlantings) ListHistory(ctx context.Context, userID, plantingID string) ([]planting.HistoryEvent, error) {
	if f.listHistoryFn != nil {
		return f.listHistoryFn(ctx, userID, plantingID)
	}
	return []planting.HistoryEvent{}, nil
}

func (f *fakePlantings) ListHistoryForUser(ctx context.Context, userID string) ([]planting.UserHistoryEvent, error) {
	if f.forUserFn != nil {
		return f.forUserFn(ctx, userID)
	}
	return []planting.UserHistoryEvent{}, nil
}

type fakePosts struct {
	createFn func(ctx context.Context, p post.Post) error
	listFn   func(ctx context.Context, f post.ListFilter) ([]post.Post, error)
}

func (f *fakePosts) Create(ctx context.Context, p post.Post) error {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return nil
}

func (f *fakePosts) List(ctx context.Context, filter post.ListFilter) ([]post.Post, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return []post.Post{}, nil
}

type fakeUsers struct {
	getFn        func(ctx context.Context, id string) (user.User, error)
	updateNameFn func(ctx context.Context, id, name string) (user.User, error)
	updateRoleFn func(ctx context.Context, id string, role user.Role) (user.User, error)
	listPageFn   func(ctx context.Context, limit int, after *utils.UserCursor) ([]user.User, *string, bool, error)
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.User{ID: id}, nil
}

func (f *fakeUsers) UpdateName(ctx context.Context, id, name string) (user.User, error) {
	if f.updateNameFn != nil {
		return f.updateNameFn(ctx, id, name)
	}
	return user.User{ID: id, Name: name}, nil
}

func (f *fakeUsers) UpdateRole(ctx context.Context, id string, role user.Role) (user.User, error) {
	if f.updateRoleFn != nil {
		return f.updateRoleFn(ctx, id, role)
	}
	return user.User{ID: id, Role: role}, nil
}

func (f *fakeUsers) ListPage(ctx context.Context, limit int, after *utils.UserCursor) ([]user.User, *string, bool, error) {
	if f.listPageFn != nil {
		return f.listPageFn(ctx, limit, after)
	}
	return []user.User{}, nil, false, nil
}

// setupRouter mounts one handler. When userID is set the request is treated
// as already authenticated.
func setupRouter(method, path, userID string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.RequestID())
	if userID != "" {
		r.Use(func(c *gin.Context) {
			c.Set(middlewares.CtxUserID, userID)
			c.Next()
		})
	}

	r.Handle(method, path, h)

	return r
}

func doRequest(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
