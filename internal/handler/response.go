// Package handler holds the HTTP handlers and the error funnel. Handlers are
// plain functions over explicit dependencies; they parse input, call one
// service operation and write the response envelope.
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
)

// Response is the JSON envelope shared by every endpoint.
type Response struct {
	Success    bool                   `json:"success"`
	Message    string                 `json:"message"`
	Data       interface{}            `json:"data,omitempty"`
	Errors     []apperrors.FieldError `json:"errors,omitempty"`
	Pagination *model.Pagination      `json:"pagination,omitempty"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondPage(c echo.Context, message string, data interface{}, p model.Pagination) error {
	return c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data, Pagination: &p})
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.MalformedID(err)
	}
	return id, nil
}

// pageFromQuery reads page and limit. Unparseable values fall back to the
// defaults.
func pageFromQuery(c echo.Context) model.Page {
	return model.NewPage(queryInt(c, "page", 1), queryInt(c, "limit", model.DefaultPageLimit))
}

func queryInt(c echo.Context, name string, def int) int {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func queryFloat(c echo.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.Validation("", apperrors.FieldError{Field: name, Message: name + " must be a number"})
	}
	return &v, nil
}

func bind(c echo.Context, into interface{}) error {
	if err := c.Bind(into); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	return nil
}
