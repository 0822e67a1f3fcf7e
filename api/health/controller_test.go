package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fooddelivery/config"

	"github.com/gin-gonic/gin"
)

func serve(t *testing.T, c *Controller, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	c.RegisterRoutes(r.Group(""))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s: %v", rec.Body, err)
	}
	return rec, body
}

func TestHealthReportsProbesAndGauges(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test", Version: "1.2.3"}}
	c := NewController(cfg,
		map[string]Checker{"database": func(context.Context) error { return nil }},
		map[string]Gauge{
			"outbox_pending": func(context.Context) (int64, error) { return 4, nil },
			"outbox_failed":  func(context.Context) (int64, error) { return 0, errors.New("table missing") },
		})

	rec, body := serve(t, c, "/health")
	if rec.Code != http.StatusOK || body["status"] != "healthy" || body["version"] != "1.2.3" {
		t.Fatalf("health = %d %v", rec.Code, body)
	}
	gauges, _ := body["gauges"].(map[string]any)
	if gauges["outbox_pending"] != float64(4) {
		t.Errorf("gauges = %v", gauges)
	}
	if _, ok := gauges["outbox_failed"]; ok {
		t.Error("unreadable gauge should be omitted")
	}
}

func TestFailingProbe(t *testing.T) {
	c := NewController(&config.Config{}, map[string]Checker{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}, nil)

	if rec, body := serve(t, c, "/health"); rec.Code != http.StatusServiceUnavailable || body["status"] != "unhealthy" {
		t.Errorf("health = %d %v", rec.Code, body)
	}
	rec, body := serve(t, c, "/health/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("ready = %d", rec.Code)
	}
	checks, _ := body["checks"].(map[string]any)
	redis, _ := checks["redis"].(map[string]any)
	if redis["ok"] != false || redis["error"] != "connection refused" {
		t.Errorf("redis probe = %v", redis)
	}
	if rec, _ := serve(t, c, "/health/live"); rec.Code != http.StatusOK {
		t.Errorf("live = %d", rec.Code)
	}
}
