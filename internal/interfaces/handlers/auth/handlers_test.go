package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	authsvc "pesaguru-backend/internal/application/auth"
	"pesaguru-backend/internal/domain"
	"pesaguru-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserFinder struct {
	user *domain.User
	err  error
}

func (f *fakeUserFinder) FindByEmailAndPassword(_ context.Context, email, password string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user != nil && f.user.Email == email && password == "password123" {
		return f.user, nil
	}
	if f.user != nil && f.user.Email == email {
		return nil, authsvc.ErrIncorrectPassword
	}
	return nil, authsvc.ErrInvalidEmail
}

func setupAuthApp(t *testing.T, finder authsvc.UserFinder) (*fiber.App, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	h := &Handlers{UserFinder: finder, Rdb: rdb}
	app := fiber.New()
	app.Use(middleware.SessionWithClient(rdb))
	app.Post("/login", h.Login)
	app.Get("/me", h.Me)
	app.Delete("/logout", h.Logout)
	return app, rdb
}

func testUser() *domain.User {
	return &domain.User{UserID: uuid.New(), Email: "wanjiru@example.co.ke", Fullname: "Wanjiru Kariuki", Role: "user", RiskCategory: domain.RiskConservative}
}

func postLogin(t *testing.T, app *fiber.App, body interface{}) (*http.Response, []byte) {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func TestLogin_MissingCredentials(t *testing.T) {
	app, _ := setupAuthApp(t, &fakeUserFinder{})
	resp, _ := postLogin(t, app, map[string]string{"email": "a@b.com"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogin_BadCredentials(t *testing.T) {
	app, _ := setupAuthApp(t, &fakeUserFinder{user: testUser()})
	resp, _ := postLogin(t, app, map[string]string{"email": "nobody@example.com", "password": "x"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp, _ = postLogin(t, app, map[string]string{"email": "wanjiru@example.co.ke", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_NilUserFinder(t *testing.T) {
	app, _ := setupAuthApp(t, nil)
	resp, _ := postLogin(t, app, map[string]string{"email": "a@b.com", "password": "pass"})
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestLogin_MeLogout(t *testing.T) {
	u := testUser()
	app, rdb := setupAuthApp(t, &fakeUserFinder{user: u})
	ctx := context.Background()

	resp, body := postLogin(t, app, map[string]string{"email": u.Email, "password": "password123"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	data, _ := out["data"].(map[string]interface{})
	user, _ := data["user"].(map[string]interface{})
	assert.Equal(t, "conservative", user["risk_category"])

	cookies := resp.Header.Values("Set-Cookie")
	require.NotEmpty(t, cookies)
	assert.Contains(t, cookies[0], "pesaguru.sid=")
	members, err := rdb.SMembers(ctx, middleware.UserSessionsPrefix+u.UserID.String()).Result()
	require.NoError(t, err)
	require.Len(t, members, 1)
	sid := members[0]

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"=s:"+sid)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("DELETE", "/logout", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"=s:"+sid)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	n, err := rdb.Exists(ctx, middleware.SessionRedisPrefix+sid).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
	members, err = rdb.SMembers(ctx, middleware.UserSessionsPrefix+u.UserID.String()).Result()
	require.NoError(t, err)
	assert.Empty(t, members)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"=s:"+sid)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMe_NoSession(t *testing.T) {
	app, _ := setupAuthApp(t, &fakeUserFinder{})
	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
