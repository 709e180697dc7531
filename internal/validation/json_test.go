package validation

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/post-api/internal/errs"
	"github.com/labstack/echo/v4"
)

func newStrictContext(body string) echo.Context {
	e := echo.New()
	e.JSONSerializer = JSONSerializer{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestJSONSerializer_Deserialize(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"single object", `{"name":"a"}`, false},
		{"trailing whitespace", "{\"name\":\"a\"}\n\t ", false},
		{"trailing text", `{"name":"a"} trailing`, true},
		{"second value", `{"name":"a"}{"name":"b"}`, true},
		{"syntax error", `{"name":`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload struct {
				Name string `json:"name"`
			}
			err := JSONSerializer{}.Deserialize(newStrictContext(tt.body), &payload)

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if payload.Name != "a" {
					t.Errorf("unexpected payload %+v", payload)
				}
				return
			}

			var httpErr *echo.HTTPError
			if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
				t.Errorf("expected a 400 echo error, got %v", err)
			}
		})
	}
}

func TestBindAndValidate_TrailingDataIsMalformed(t *testing.T) {
	err := BindAndValidate(newStrictContext(`{"name":"ok"} x`), &testPayload{})

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Code != errs.CodeMalformed || httpErr.Status != http.StatusBadRequest || !strings.Contains(httpErr.Message, "unexpected data") {
		t.Errorf("unexpected error %+v", httpErr)
	}
}

func TestDecodeField(t *testing.T) {
	fields, err := DecodeObject([]byte(`{"title":"Hello","summary":5}`))
	if err != nil {
		t.Fatalf("DecodeObject: %v", err)
	}

	var title, summary, missing *string
	if err := DecodeField(fields, "title", &title); err != nil || title == nil || *title != "Hello" {
		t.Errorf("title: %v %v", title, err)
	}
	if err := DecodeField(fields, "missing", &missing); err != nil || missing != nil {
		t.Errorf("missing: %v %v", missing, err)
	}

	err = DecodeField(fields, "summary", &summary)
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field != "summary" {
		t.Fatalf("expected a type error on summary, got %v", err)
	}
	if msg := DecodeErrorMessage(err); !strings.Contains(msg, "field=summary") || !strings.HasPrefix(msg, "Unmarshal type error") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestDecodeObject_Null(t *testing.T) {
	fields, err := DecodeObject([]byte(`null`))
	if err != nil || len(fields) != 0 {
		t.Errorf("expected empty fields, got %v %v", fields, err)
	}
}
