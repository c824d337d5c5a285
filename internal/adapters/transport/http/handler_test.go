package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/khattakbelt/community-api/internal/adapters/transport/http"
	authsvc "github.com/khattakbelt/community-api/internal/app/auth"
	newssvc "github.com/khattakbelt/community-api/internal/app/news"
	"github.com/khattakbelt/community-api/internal/domain/apperrors"
	"github.com/khattakbelt/community-api/internal/domain/model"
)

const testSecret = "handler-test-secret"

/* ──────────────────────────────── stubs ──────────────────────────────── */

type userRepoStub struct{ users map[uuid.UUID]model.User }

func (u *userRepoStub) CreateUser(_ context.Context, m model.User) (uuid.UUID, error) {
	for _, v := range u.users {
		if v.Email == m.Email {
			return uuid.Nil, &apperrors.ConflictError{Field: "email"}
		}
		if v.Username == m.Username {
			return uuid.Nil, &apperrors.ConflictError{Field: "username"}
		}
	}
	u.users[m.ID] = m
	return m.ID, nil
}

func (u *userRepoStub) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	for _, v := range u.users {
		if v.Email == email {
			return v, nil
		}
	}
	return model.User{}, apperrors.ErrNotFound
}

func (u *userRepoStub) GetUserByID(_ context.Context, id uuid.UUID) (model.User, error) {
	v, ok := u.users[id]
	if !ok {
		return model.User{}, apperrors.ErrNotFound
	}
	return v, nil
}

func (u *userRepoStub) GetUserByEmailOrUsername(_ context.Context, email, username string) (model.User, error) {
	for _, v := range u.users {
		if v.Email == email || v.Username == username {
			return v, nil
		}
	}
	return model.User{}, apperrors.ErrNotFound
}

func (u *userRepoStub) UpdateUser(_ context.Context, m model.User) error {
	u.users[m.ID] = m
	return nil
}

func (u *userRepoStub) DeleteUser(_ context.Context, id uuid.UUID) error {
	if _, ok := u.users[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(u.users, id)
	return nil
}

type newsRepoStub struct{ items map[uuid.UUID]model.News }

func (n *newsRepoStub) CreateNews(_ context.Context, item model.News) (uuid.UUID, error) {
	n.items[item.ID] = item
	return item.ID, nil
}

func (n *newsRepoStub) GetNewsByID(_ context.Context, id uuid.UUID) (model.News, error) {
	item, ok := n.items[id]
	if !ok {
		return model.News{}, apperrors.ErrNotFound
	}
	return item, nil
}

func (n *newsRepoStub) ListNews(_ context.Context, offset, limit int) ([]model.News, int64, error) {
	all := make([]model.News, 0, len(n.items))
	for _, item := range n.items {
		all = append(all, item)
	}
	if offset >= len(all) {
		return nil, int64(len(all)), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], int64(len(all)), nil
}

func (n *newsRepoStub) UpdateNews(_ context.Context, item model.News) error {
	n.items[item.ID] = item
	return nil
}

func (n *newsRepoStub) DeleteNews(_ context.Context, id uuid.UUID) error {
	if _, ok := n.items[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(n.items, id)
	return nil
}

/* ───────────────────────────── helpers ───────────────────────────── */

type env struct {
	router *gin.Engine
	users  *userRepoStub
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &userRepoStub{users: make(map[uuid.UUID]model.User)}
	items := &newsRepoStub{items: make(map[uuid.UUID]model.News)}

	issuer, err := authsvc.NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	v := validator.New()
	require.NoError(t, v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) >= 6
	}))

	auth := authsvc.New(users, issuer, v, nil, zap.NewNop())
	news := newssvc.New(items, nil, v, zap.NewNop())

	handler := httptransport.NewHandler(auth, news, zap.NewNop(), "", false, false)
	router := gin.New()
	handler.RegisterRoutes(router)

	return &env{router: router, users: users}
}

func (e *env) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var decoded map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

func (e *env) register(t *testing.T, username, email, password string) (string, map[string]any) {
	t.Helper()
	w, body := e.do(t, "POST", "/api/auth/register", "", gin.H{
		"username": username, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token, body
}

// expiredToken signs a token with the server's secret whose expiry already passed.
func expiredToken(t *testing.T, subject uuid.UUID) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

/* ───────────────────────────── tests ───────────────────────────── */

func TestRegister_Success(t *testing.T) {
	e := newEnv(t)

	w, body := e.do(t, "POST", "/api/auth/register", "", gin.H{
		"username": "alice", "email": "alice@example.com", "password": "Abc123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotEmpty(t, body["token"])

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "alice", user["username"])
	require.Equal(t, "user", user["role"])

	// the response must never carry the password in any form
	require.NotContains(t, w.Body.String(), "password")
	require.NotContains(t, w.Body.String(), "Abc123")
}

func TestRegister_ConflictNamesField(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "alice@example.com", "Abc123")

	w, body := e.do(t, "POST", "/api/auth/register", "", gin.H{
		"username": "bob", "email": "alice@example.com", "password": "Abc123",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	violations, ok := body["errors"].([]any)
	require.True(t, ok)
	require.Len(t, violations, 1)
	first := violations[0].(map[string]any)
	require.Equal(t, "email", first["field"])
}

func TestRegister_ValidationFailure(t *testing.T) {
	e := newEnv(t)

	w, body := e.do(t, "POST", "/api/auth/register", "", gin.H{
		"username": "al", "email": "not-an-email", "password": "x",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Validation failed", body["message"])
	require.NotEmpty(t, body["errors"])
}

func TestLogin_UniformFailure(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "alice@example.com", "Abc123")

	wWrong, bodyWrong := e.do(t, "POST", "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "Wrong1",
	})
	wUnknown, bodyUnknown := e.do(t, "POST", "/api/auth/login", "", gin.H{
		"email": "ghost@example.com", "password": "Abc123",
	})

	require.Equal(t, http.StatusUnauthorized, wWrong.Code)
	require.Equal(t, http.StatusUnauthorized, wUnknown.Code)
	require.Equal(t, bodyWrong["message"], bodyUnknown["message"])

	// validation failures remain distinguishable by status
	wBad, _ := e.do(t, "POST", "/api/auth/login", "", gin.H{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, wBad.Code)
}

func TestMe_TokenStates(t *testing.T) {
	e := newEnv(t)
	token, body := e.register(t, "alice", "alice@example.com", "Abc123")

	w, me := e.do(t, "GET", "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := me["user"].(map[string]any)
	require.Equal(t, "alice@example.com", user["email"])

	w, _ = e.do(t, "GET", "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	uid := uuid.MustParse(body["user"].(map[string]any)["id"].(string))
	w, _ = e.do(t, "GET", "/api/auth/me", expiredToken(t, uid), nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNews_OwnershipOverHTTP(t *testing.T) {
	e := newEnv(t)
	ownerToken, _ := e.register(t, "alice", "alice@example.com", "Abc123")
	strangerToken, _ := e.register(t, "bob", "bob@example.com", "Abc123")

	w, created := e.do(t, "POST", "/api/news", ownerToken, gin.H{
		"title": "headline", "excerpt": "short", "content": "body",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	newsID := created["id"].(string)

	// unauthenticated mutation is a 401
	w, _ = e.do(t, "DELETE", "/api/news/"+newsID, "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// authenticated non-owner is a 403, a different failure than 401
	w, _ = e.do(t, "DELETE", "/api/news/"+newsID, strangerToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	// the owner may delete
	w, _ = e.do(t, "DELETE", "/api/news/"+newsID, ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = e.do(t, "GET", "/api/news/"+newsID, "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestNews_AdminOverride(t *testing.T) {
	e := newEnv(t)
	ownerToken, _ := e.register(t, "alice", "alice@example.com", "Abc123")
	adminToken, adminBody := e.register(t, "root", "root@example.com", "Abc123")

	// promote the second account directly in the store
	adminID := uuid.MustParse(adminBody["user"].(map[string]any)["id"].(string))
	admin := e.users.users[adminID]
	admin.Role = model.RoleAdmin
	e.users.users[adminID] = admin

	w, created := e.do(t, "POST", "/api/news", ownerToken, gin.H{
		"title": "headline", "excerpt": "short", "content": "body",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = e.do(t, "DELETE", "/api/news/"+created["id"].(string), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestNews_PublicListing(t *testing.T) {
	e := newEnv(t)
	token, _ := e.register(t, "alice", "alice@example.com", "Abc123")

	for i := 0; i < 3; i++ {
		w, _ := e.do(t, "POST", "/api/news", token, gin.H{
			"title": "headline", "excerpt": "short", "content": "body",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, body := e.do(t, "GET", "/api/news?page=1&limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 3, body["total"])
	require.EqualValues(t, 2, body["pages"])
	require.Len(t, body["news"].([]any), 2)
}

func TestDeleteAccount_InvalidatesIdentity(t *testing.T) {
	e := newEnv(t)
	token, _ := e.register(t, "alice", "alice@example.com", "Abc123")

	w, _ := e.do(t, "DELETE", "/api/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// the token is structurally valid but its subject is gone
	w, _ = e.do(t, "GET", "/api/auth/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWelcomeAndNotFound(t *testing.T) {
	e := newEnv(t)

	w, body := e.do(t, "GET", "/api", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, body["success"])

	w, body = e.do(t, "GET", "/api/nowhere", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, false, body["success"])
}
