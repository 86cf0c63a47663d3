package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	httptransport "github.com/spec-kit/poll-service/internal/api/http"
	"github.com/spec-kit/poll-service/internal/observability"
	apperrors "github.com/spec-kit/poll-service/pkg/util"
)

// Failing requests must be logged with the status the error middleware
// rendered, not the default 200 captured mid-chain.
func TestRequestLogCarriesRenderedStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.New(core), observability.NewMetrics(), time.Second)
	app.Get("/absent", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("poll")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/absent", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	var logged int64
	for _, entry := range logs.All() {
		if entry.Message != "request" {
			continue
		}
		if v, ok := entry.ContextMap()["status"].(int64); ok {
			logged = v
		}
	}
	if logged != http.StatusNotFound {
		t.Fatalf("request logged with status %d, want %d", logged, http.StatusNotFound)
	}
}
