package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/boardcut/boardcut/pkg/config"
)

func TestHealthCheck(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Environment = "test"
	rt := NewRouter(cfg, NewHighlightHandler(&stubService{}, zap.NewNop()), nil, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	if err := rt.healthCheck(e.NewContext(req, rec)); err != nil {
		t.Fatalf("healthCheck: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
	if body["environment"] != "test" {
		t.Errorf("environment field = %v, want test", body["environment"])
	}
}

func TestSetup_RegistersRoutes(t *testing.T) {
	cfg := &config.Config{}
	svc := &stubService{}
	rt := NewRouter(cfg,
		NewHighlightHandler(svc, zap.NewNop()),
		NewTranscriptWebhookHandler(svc, zap.NewNop()),
		nil,
	)

	e := echo.New()
	rt.Setup(e)

	want := map[string]string{
		"/health":                    http.MethodGet,
		"/v1/jobs":                   http.MethodPost,
		"/v1/jobs/:id":               http.MethodGet,
		"/v1/jobs/:id/segments":      http.MethodGet,
		"/v1/jobs/:id/segments/file": http.MethodGet,
		"/v1/jobs/:id/align":         http.MethodPost,
		"/v1/webhooks/assemblyai":    http.MethodPost,
	}
	registered := make(map[string]bool)
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for path, method := range want {
		if !registered[method+" "+path] {
			t.Errorf("route %s %s not registered", method, path)
		}
	}
}
