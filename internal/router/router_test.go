package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/deppfellow/post-api/internal/config"
	"github.com/deppfellow/post-api/internal/handler"
	"github.com/deppfellow/post-api/internal/middleware"
	"github.com/deppfellow/post-api/internal/repository"
	"github.com/deppfellow/post-api/internal/server"
	"github.com/deppfellow/post-api/internal/service"
)

func newTestRouter(t *testing.T) (*echo.Echo, *repository.MemoryPostRepository) {
	t.Helper()

	logger := zerolog.Nop()
	obs := config.DefaultObservabilityConfig()
	obs.HealthChecks.Checks = []string{"database"}

	s := &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server:  config.ServerConfig{CORSAllowedOrigins: []string{"*"}},
			Observability: obs,
		},
		Logger: &logger,
	}

	repo := repository.NewMemoryPostRepository()
	services, err := service.NewServices(s, &repository.Repositories{Posts: repo})
	if err != nil {
		t.Fatalf("building services: %v", err)
	}

	return NewRouter(s, handler.NewHandlers(s, services)), repo
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return body
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rec.Code != status {
		t.Errorf("expected status %d, got %d (%s)", status, rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if len(body) != 1 {
		t.Errorf("expected only an error field, got %v", body)
	}
	if body["error"] != message {
		t.Errorf("expected error %q, got %q", message, body["error"])
	}
}

func TestCreateThenFind(t *testing.T) {
	e, repo := newTestRouter(t)

	rec := do(e, http.MethodPost, "/posts", `{"title":"Hello","summary":"World"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	created := decode(t, rec)
	id := created["post_id"]
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected a uuid post_id, got %q", id)
	}
	if repo.Len() != 1 {
		t.Errorf("expected one stored post, got %d", repo.Len())
	}

	for range 2 {
		rec = do(e, http.MethodGet, "/posts/"+id, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		got := decode(t, rec)
		if got["post_id"] != id || got["title"] != "Hello" || got["summary"] != "World" {
			t.Errorf("unexpected post %v", got)
		}
	}
}

func TestCreate_SuppliedID(t *testing.T) {
	e, _ := newTestRouter(t)

	id := "3f2504e0-4f89-11d3-9a0c-0305e82c3301"
	rec := do(e, http.MethodPost, "/posts", `{"id":"`+id+`","title":"Hello","summary":"World"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if decode(t, rec)["post_id"] != id {
		t.Errorf("expected supplied id echoed")
	}

	rec = do(e, http.MethodPost, "/posts", `{"id":"`+id+`","title":"Again","summary":"World"}`)
	expectError(t, rec, http.StatusBadRequest, "A Post with this identifier already exists")
}

func TestCreate_IllegalTitle(t *testing.T) {
	e, repo := newTestRouter(t)

	rec := do(e, http.MethodPost, "/posts", `{"title":"Qwertyabc","summary":"x"}`)
	expectError(t, rec, http.StatusBadRequest, "Title starts with an illegal word!!")

	rec = do(e, http.MethodPost, "/posts", `{"title":"qwerty"}`)
	expectError(t, rec, http.StatusBadRequest, "Title starts with an illegal word!!")

	if repo.Len() != 0 {
		t.Error("nothing should be stored")
	}
}

func TestCreate_IllegalTitleBeatsTypeErrors(t *testing.T) {
	e, repo := newTestRouter(t)

	for _, body := range []string{
		`{"title":"Qwertyabc","summary":5}`,
		`{"title":"QWERTY","id":7,"summary":"x"}`,
		`{"id":[],"title":"qwerty"}`,
	} {
		expectError(t, do(e, http.MethodPost, "/posts", body), http.StatusBadRequest, "Title starts with an illegal word!!")
	}

	if repo.Len() != 0 {
		t.Error("nothing should be stored")
	}
}

func TestCreate_TypeErrorsWithLegalTitle(t *testing.T) {
	e, _ := newTestRouter(t)

	tests := []struct {
		body  string
		field string
	}{
		{`{"title":"Hello","summary":5}`, "field=summary"},
		{`{"title":"Hello","id":7,"summary":"x"}`, "field=id"},
		{`{"title":42,"summary":"x"}`, "field=title"},
	}

	for _, tt := range tests {
		rec := do(e, http.MethodPost, "/posts", tt.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tt.body, rec.Code)
		}
		if msg := decode(t, rec)["error"]; !strings.Contains(msg, tt.field) {
			t.Errorf("%s: expected error naming %s, got %q", tt.body, tt.field, msg)
		}
	}
}

func TestCreate_TrailingData(t *testing.T) {
	e, repo := newTestRouter(t)

	rec := do(e, http.MethodPost, "/posts", `{"title":"Hello","summary":"World"} trailing`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodPost, "/posts", `{"title":"Hello","summary":"World"}{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a second value, got %d", rec.Code)
	}

	if repo.Len() != 0 {
		t.Error("nothing should be stored")
	}

	rec = do(e, http.MethodPost, "/posts", "{\"title\":\"Hello\",\"summary\":\"World\"}\n  ")
	if rec.Code != http.StatusOK {
		t.Errorf("trailing whitespace must be accepted, got %d", rec.Code)
	}
}

func TestCreate_ValidationErrors(t *testing.T) {
	e, repo := newTestRouter(t)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "title too long",
			body:    `{"title":"` + strings.Repeat("a", 21) + `","summary":"x"}`,
			message: "Validation failed: title must not exceed 20 characters",
		},
		{
			name:    "blank title",
			body:    `{"title":"   ","summary":"x"}`,
			message: "Validation failed: title must not be blank",
		},
		{
			name:    "summary too long",
			body:    `{"title":"Hello","summary":"` + strings.Repeat("s", 256) + `"}`,
			message: "Validation failed: summary must not exceed 255 characters",
		},
		{
			name:    "empty summary",
			body:    `{"title":"Hello","summary":""}`,
			message: "Validation failed: summary must not be blank",
		},
		{
			name:    "missing title",
			body:    `{"summary":"x"}`,
			message: "Validation failed: title is required",
		},
		{
			name:    "missing both",
			body:    `{}`,
			message: "Validation failed: title is required; summary is required",
		},
		{
			name:    "bad id",
			body:    `{"id":"nope","title":"Hello","summary":"World"}`,
			message: "Validation failed: id must be a valid UUID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, do(e, http.MethodPost, "/posts", tt.body), http.StatusBadRequest, tt.message)
		})
	}

	if repo.Len() != 0 {
		t.Error("nothing should be stored")
	}
}

func TestCreate_MalformedBody(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(e, http.MethodPost, "/posts", `{"title":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if decode(t, rec)["error"] == "" {
		t.Error("expected an error message")
	}

	rec = do(e, http.MethodPost, "/posts", `{"title":42,"summary":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for wrong field type, got %d", rec.Code)
	}
}

func TestFind_NotFound(t *testing.T) {
	e, _ := newTestRouter(t)

	id := "00000000-0000-0000-0000-000000000000"
	rec := do(e, http.MethodGet, "/posts/"+id, "")
	expectError(t, rec, http.StatusNotFound, "Post #"+id+" not found!!")
}

func TestFind_Malformed(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(e, http.MethodGet, "/posts/not-a-uuid", "")
	expectError(t, rec, http.StatusBadRequest, `Invalid UUID "not-a-uuid"`)
}

func TestFind_NonCanonicalUUID(t *testing.T) {
	e, _ := newTestRouter(t)

	for _, id := range []string{
		"urn:uuid:6f9619ff-8b86-d011-b42d-00cf4fc964ff",
		"6f9619ff8b86d011b42d00cf4fc964ff",
	} {
		expectError(t, do(e, http.MethodGet, "/posts/"+id, ""), http.StatusBadRequest, fmt.Sprintf("Invalid UUID %q", id))
	}

	rec := do(e, http.MethodPost, "/posts", `{"id":"6f9619ff8b86d011b42d00cf4fc964ff","title":"Hello","summary":"World"}`)
	expectError(t, rec, http.StatusBadRequest, "Validation failed: id must be a valid UUID")
}

func TestRequestIDHeader(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(e, http.MethodGet, "/posts/not-a-uuid", "")
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("expected X-Request-ID on error responses too")
	}
}

func TestUnknownRoute(t *testing.T) {
	e, _ := newTestRouter(t)

	expectError(t, do(e, http.MethodGet, "/nope", ""), http.StatusNotFound, "Route not found")
}

func TestStatus_DatabaseUnavailable(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(e, http.MethodGet, "/status", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a database, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "unhealthy" {
		t.Errorf("unexpected status %v", body["status"])
	}
}

func TestDocs(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(e, http.MethodGet, "/docs", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/static/openapi.json") {
		t.Errorf("unexpected docs response %d", rec.Code)
	}

	rec = do(e, http.MethodGet, "/static/openapi.json", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"/posts/{postId}"`) {
		t.Errorf("unexpected openapi.json response %d", rec.Code)
	}
}
