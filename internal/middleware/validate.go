package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "storefront/internal/errors"
	"storefront/internal/validation"
)

// Validate checks the request against schema before the handler runs.
// Values are collected from the body, then the query string, then the path
// parameters; later sources win. The body stays readable for the handler.
func Validate(schema validation.Schema) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			values, err := requestValues(c)
			if err != nil {
				return apperrors.Validation("Invalid request body")
			}
			if failures := validation.Validate(schema, values); len(failures) > 0 {
				return apperrors.Validation("", failures...)
			}
			return next(c)
		}
	}
}

func requestValues(c echo.Context) (map[string]string, error) {
	values := map[string]string{}

	if err := bodyValues(c, values); err != nil {
		return nil, err
	}
	for k, v := range c.QueryParams() {
		if len(v) > 0 {
			values[k] = v[0]
		}
	}
	for i, name := range c.ParamNames() {
		values[name] = c.ParamValues()[i]
	}
	return values, nil
}

func bodyValues(c echo.Context, into map[string]string) error {
	req := c.Request()
	if req.Body == nil || req.ContentLength == 0 {
		return nil
	}

	ctype := req.Header.Get(echo.HeaderContentType)
	switch {
	case strings.HasPrefix(ctype, echo.MIMEApplicationJSON):
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			return err
		}
		req.Body = io.NopCloser(bytes.NewReader(raw))
		if len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}

		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var body map[string]interface{}
		if err := dec.Decode(&body); err != nil {
			return err
		}
		for k, v := range body {
			into[k] = stringify(v)
		}
	case strings.HasPrefix(ctype, echo.MIMEApplicationForm), strings.HasPrefix(ctype, echo.MIMEMultipartForm):
		form, err := c.FormParams()
		if err != nil {
			return err
		}
		for k, v := range form {
			if len(v) > 0 {
				into[k] = v[0]
			}
		}
	}
	return nil
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return fmt.Sprint(t)
	default:
		raw, _ := json.Marshal(t)
		return string(raw)
	}
}
