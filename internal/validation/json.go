package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// JSONSerializer is Echo's JSON codec with a stricter decoder: a body must
// hold exactly one JSON value, so trailing data after the object is
// rejected as malformed.
type JSONSerializer struct{}

var _ echo.JSONSerializer = JSONSerializer{}

func (JSONSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (JSONSerializer) Deserialize(c echo.Context, i any) error {
	dec := json.NewDecoder(c.Request().Body)

	if err := dec.Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, DecodeErrorMessage(err)).SetInternal(err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		err = fmt.Errorf("unexpected data after JSON value at offset %d", dec.InputOffset())
		return echo.NewHTTPError(http.StatusBadRequest, DecodeErrorMessage(err)).SetInternal(err)
	}

	return nil
}

// DecodeErrorMessage renders a JSON decoding error the way Echo does.
func DecodeErrorMessage(err error) string {
	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)

	switch {
	case errors.As(err, &typeErr):
		return fmt.Sprintf("Unmarshal type error: expected=%v, got=%v, field=%v, offset=%v",
			typeErr.Type, typeErr.Value, typeErr.Field, typeErr.Offset)
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("Syntax error: offset=%v, error=%v", syntaxErr.Offset, syntaxErr.Error())
	default:
		return err.Error()
	}
}

// DecodeObject splits a JSON object into its raw members so callers can
// decode fields one at a time, in the order they choose. A null body
// yields an empty map.
func DecodeObject(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// DecodeField decodes the member name of fields into dst. A missing member
// leaves dst untouched. Type errors carry the member name.
func DecodeField(fields map[string]json.RawMessage, name string, dst any) error {
	raw, ok := fields[name]
	if !ok {
		return nil
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			typeErr.Field = name
			return typeErr
		}
		return err
	}
	return nil
}
