package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/inkwell/backend/internal/config"
	"github.com/inkwell/backend/internal/model"
	"github.com/inkwell/backend/internal/service"
)

// fakeStore backs both the auth and essay services in handler tests.
type fakeStore struct {
	users      map[string]*model.User
	essays     map[string]*model.Essay
	nextUserID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      map[string]*model.User{},
		essays:     map[string]*model.Essay{},
		nextUserID: 1,
	}
}

func (f *fakeStore) CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error) {
	if _, ok := f.users[username]; ok {
		return nil, &pgconn.PgError{Code: "23505"}
	}
	user := &model.User{
		ID:           f.nextUserID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.nextUserID++
	f.users[username] = user
	return user, nil
}

func (f *fakeStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	for _, user := range f.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) deleteUser(username string) {
	delete(f.users, username)
}

func (f *fakeStore) usernameByID(id int64) string {
	for _, u := range f.users {
		if u.ID == id {
			return u.Username
		}
	}
	return ""
}

func (f *fakeStore) CreateEssay(ctx context.Context, id string, ownerID int64, title, content string) (*model.Essay, error) {
	if _, ok := f.essays[id]; ok {
		return nil, &pgconn.PgError{Code: "23505"}
	}
	e := &model.Essay{
		ID:        id,
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		Status:    model.StatusDraft,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.essays[id] = e
	out := *e
	return &out, nil
}

func (f *fakeStore) GetEssayByID(ctx context.Context, id string) (*model.Essay, error) {
	e, ok := f.essays[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *e
	out.Author = f.usernameByID(e.OwnerID)
	return &out, nil
}

func (f *fakeStore) EssayExists(ctx context.Context, id string) (bool, error) {
	_, ok := f.essays[id]
	return ok, nil
}

func (f *fakeStore) ListEssaysByOwner(ctx context.Context, ownerID int64) ([]model.EssayListItem, error) {
	list := []model.EssayListItem{}
	for _, e := range f.essays {
		if e.OwnerID == ownerID {
			list = append(list, f.listItem(e))
		}
	}
	return list, nil
}

func (f *fakeStore) ListPublishedEssays(ctx context.Context) ([]model.EssayListItem, error) {
	list := []model.EssayListItem{}
	for _, e := range f.essays {
		if e.Status == model.StatusPublished {
			list = append(list, f.listItem(e))
		}
	}
	return list, nil
}

func (f *fakeStore) UpdateEssayOwned(ctx context.Context, id string, ownerID int64, title, content *string) (*model.Essay, error) {
	e, ok := f.essays[id]
	if !ok || e.OwnerID != ownerID {
		return nil, pgx.ErrNoRows
	}
	if title != nil {
		e.Title = *title
	}
	if content != nil {
		e.Content = *content
	}
	e.UpdatedAt = time.Now()
	out := *e
	return &out, nil
}

func (f *fakeStore) SetEssayStatusOwned(ctx context.Context, id string, ownerID int64, status string) (*model.Essay, error) {
	e, ok := f.essays[id]
	if !ok || e.OwnerID != ownerID {
		return nil, pgx.ErrNoRows
	}
	e.Status = status
	e.UpdatedAt = time.Now()
	out := *e
	return &out, nil
}

func (f *fakeStore) DeleteEssayOwned(ctx context.Context, id string, ownerID int64) (int64, error) {
	e, ok := f.essays[id]
	if !ok || e.OwnerID != ownerID {
		return 0, nil
	}
	delete(f.essays, id)
	return 1, nil
}

func (f *fakeStore) listItem(e *model.Essay) model.EssayListItem {
	return model.EssayListItem{
		ID:        e.ID,
		Author:    f.usernameByID(e.OwnerID),
		Title:     e.Title,
		Status:    e.Status,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// newTestRouter wires the API the same way main does, on top of fakes.
// The fake store is returned so tests can manipulate rows directly.
func newTestRouter(t *testing.T, allowSignup string) (*gin.Engine, *fakeStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakeStore()
	authService, err := service.NewAuthService(store, config.AuthConfig{
		JWTSecret:       "test-secret",
		TokenTTLSeconds: "3600",
		AllowSignup:     allowSignup,
	})
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	essayService, err := service.NewEssayService(store, config.EssayConfig{
		MaxContentLength: "1000",
		MaxTitleLength:   "200",
	})
	if err != nil {
		t.Fatalf("NewEssayService: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authHandler := NewAuthHandler(authService, logger)
	essayHandler := NewEssayHandler(essayService, logger)

	router := gin.New()

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/config", authHandler.Config)
	auth.GET("/me", AuthMiddleware(authService), authHandler.Me)

	essays := api.Group("/essays")
	essays.GET("/public", essayHandler.ListPublic)
	essays.GET("/:id", OptionalAuthMiddleware(authService), essayHandler.Get)

	owned := api.Group("/essays", AuthMiddleware(authService))
	owned.GET("", essayHandler.ListMine)
	owned.POST("", essayHandler.Create)
	owned.PUT("/:id", essayHandler.Update)
	owned.PUT("/:id/publish", essayHandler.Publish)
	owned.PUT("/:id/unpublish", essayHandler.Unpublish)
	owned.DELETE("/:id", essayHandler.Delete)

	return router, store
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func registerUser(t *testing.T, router *gin.Engine, username, password string) string {
	t.Helper()
	w := doRequest(t, router, "POST", "/api/v1/auth/register", "", model.AuthRequest{
		Username: username,
		Password: password,
	})
	if w.Code != 200 {
		t.Fatalf("register %q: status %d body %s", username, w.Code, w.Body.String())
	}
	var res model.AuthResponse
	decodeBody(t, w, &res)
	if res.Token == "" {
		t.Fatalf("register %q: empty token", username)
	}
	return res.Token
}
