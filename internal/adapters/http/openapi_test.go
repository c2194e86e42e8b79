package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/acceptance-verifier/internal/config"
)

func TestOpenAPIDocumentCoversRoutes(t *testing.T) {
	doc, err := loadOpenAPIDocument(context.Background())
	if err != nil {
		t.Fatalf("loadOpenAPIDocument() error = %v", err)
	}

	routes := []struct{ method, path string }{
		{http.MethodGet, "/healthz"},
		{http.MethodPost, "/v1/verifications/stream"},
		{http.MethodPost, "/v1/verifications"},
		{http.MethodGet, "/v1/verifications"},
		{http.MethodGet, "/v1/verifications/{id}"},
		{http.MethodDelete, "/v1/verifications/{id}"},
		{http.MethodGet, "/v1/verifications/{id}/export"},
		{http.MethodPost, "/v1/uploads/cancel"},
	}
	for _, route := range routes {
		item := doc.Paths.Value(route.path)
		if item == nil {
			t.Fatalf("path %s missing from openapi document", route.path)
		}
		if item.GetOperation(route.method) == nil {
			t.Fatalf("%s %s missing from openapi document", route.method, route.path)
		}
	}
}

func TestOpenAPIEndpointServesJSON(t *testing.T) {
	spec, err := LoadOpenAPI(context.Background())
	if err != nil {
		t.Fatalf("LoadOpenAPI() error = %v", err)
	}
	_, deps := newTestRouter(config.Config{})
	handler := NewRouter(config.Config{}, deps.submitter, deps.streamer, deps.reader).WithOpenAPI(spec).Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode openapi json: %v", err)
	}
	if body["openapi"] != "3.0.3" {
		t.Fatalf("unexpected openapi version %v", body["openapi"])
	}
}
