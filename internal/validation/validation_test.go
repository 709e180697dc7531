package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/post-api/internal/errs"
	"github.com/labstack/echo/v4"
)

type testPayload struct {
	Name *string `json:"name" validate:"required"`
	Note string  `json:"note" validate:"omitempty,notblank,max=5"`
}

func (p *testPayload) Validate() error {
	return Validator().Struct(p)
}

type rulePayload struct {
	Name string `json:"name"`
}

func (p *rulePayload) Validate() error {
	if p.Name == "forbidden" {
		return errs.NewBusinessRuleError("forbidden name")
	}
	return nil
}

func newContext(body string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestIsValidUUID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"00000000-0000-0000-0000-000000000000", true},
		{"6F9619FF-8B86-D011-B42D-00C04FC964FF", true},
		{"6f9619ff-8b86-d011-b42d-00c04fc964ff", true},
		{"6f9619ff8b86d011b42d00c04fc964ff", false},
		{"not-a-uuid", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidUUID(tt.in); got != tt.want {
			t.Errorf("IsValidUUID(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBindAndValidate_MalformedJSON(t *testing.T) {
	err := BindAndValidate(newContext(`{"name":`), &testPayload{})

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Code != errs.CodeMalformed || httpErr.Status != http.StatusBadRequest {
		t.Errorf("got code=%q status=%d", httpErr.Code, httpErr.Status)
	}
}

func TestBindAndValidate_MissingField(t *testing.T) {
	err := BindAndValidate(newContext(`{}`), &testPayload{})

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Message != "Validation failed: name is required" {
		t.Errorf("message = %q", httpErr.Message)
	}
}

func TestBindAndValidate_TagMessages(t *testing.T) {
	err := BindAndValidate(newContext(`{"name":"a","note":"   "}`), &testPayload{})
	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Message != "Validation failed: note must not be blank" {
		t.Errorf("blank note: got %v", err)
	}

	err = BindAndValidate(newContext(`{"name":"a","note":"toolong"}`), &testPayload{})
	if !errors.As(err, &httpErr) || httpErr.Message != "Validation failed: note must not exceed 5 characters" {
		t.Errorf("long note: got %v", err)
	}
}

func TestBindAndValidate_PassesThroughHTTPError(t *testing.T) {
	err := BindAndValidate(newContext(`{"name":"forbidden"}`), &rulePayload{})

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != errs.CodeBusinessRule {
		t.Errorf("expected business rule error, got %v", err)
	}
}

func TestBindAndValidate_OK(t *testing.T) {
	p := &testPayload{}
	if err := BindAndValidate(newContext(`{"name":"a","note":"hey"}`), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name == nil || *p.Name != "a" {
		t.Errorf("name not bound: %+v", p)
	}
}
