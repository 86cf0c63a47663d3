package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/poll-service/internal/api/http"
	"github.com/spec-kit/poll-service/internal/api/http/handlers"
	"github.com/spec-kit/poll-service/internal/auth"
	"github.com/spec-kit/poll-service/internal/config"
	"github.com/spec-kit/poll-service/internal/domain"
	"github.com/spec-kit/poll-service/internal/observability"
	"github.com/spec-kit/poll-service/internal/service"
	"github.com/spec-kit/poll-service/internal/testutil"
)

const testCookie = "poll_session"

type testEnv struct {
	app      *fiber.App
	users    *testutil.UserRepo
	polls    *testutil.PollRepo
	sessions *testutil.SessionStore
	authSvc  *service.AuthService
	pollSvc  *service.PollService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := testutil.NewUserRepo()
	polls := testutil.NewPollRepo()
	sessions := testutil.NewSessionStore()

	authSvc := service.NewAuthService(config.AuthConfig{BcryptCost: 4}, service.AuthDependencies{
		UserRepo: users,
		Sessions: sessions,
	})
	pollSvc := service.NewPollService(service.PollDependencies{PollRepo: polls})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler("poll-service", "test", nil, nil),
		Auth:    handlers.NewAuthHandler(authSvc, testCookie, time.Hour, false),
		Polls:   handlers.NewPollsHandler(pollSvc),
		Session: auth.NewSessionMiddleware(authSvc, testCookie),
	})

	return &testEnv{
		app:      app,
		users:    users,
		polls:    polls,
		sessions: sessions,
		authSvc:  authSvc,
		pollSvc:  pollSvc,
	}
}

// register creates an account and an authenticated session, returning the
// user and a session token ready for a cookie.
func (e *testEnv) register(t *testing.T, username, password string) (*domain.User, string) {
	t.Helper()
	user, err := e.authSvc.Register(context.Background(), username, password)
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	token, err := e.sessions.Create(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("session for %s: %v", username, err)
	}
	return user, token
}

func formRequest(method, path string, form url.Values, sessionToken string) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: sessionToken})
	}
	return req
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	return resp
}

func assertStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status %d, want %d", resp.StatusCode, want)
	}
}

func assertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	assertStatus(t, resp, http.StatusFound)
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("redirected to %q, want %q", got, location)
	}
}
