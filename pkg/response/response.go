// Package response is the terminal formatting stage of every handler
// pipeline: it maps success-kind wrappers and domain errors onto wire HTTP
// responses. It never fails itself.
package response

import (
	"errors"
	"net/http"
	"reflect"

	"crm-service/pkg/apierror"
	"crm-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Success-kind discriminators returned in the body "type" field.
const (
	TypeFetch   = "FetchSuccess"
	TypePersist = "PersistSuccess"
	TypeDelete  = "DeleteSuccess"
)

// Body is the success envelope.
type Body struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Data    any    `json:"data,omitempty"`
}

type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Error   bool   `json:"error"`
}

// Fetch writes a read result: 200 with the payload, or 204 when the payload
// is nil or an empty collection.
func Fetch(c echo.Context, message string, data any) error {
	if isEmpty(data) {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, Body{Message: message, Type: TypeFetch, Data: data})
}

// Persist writes a created/updated result with status 201.
func Persist(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusCreated, Body{Message: message, Type: TypePersist, Data: data})
}

// Deleted writes a delete result as 204 with an empty body.
func Deleted(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func isEmpty(data any) bool {
	if data == nil {
		return true
	}
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

// ErrorHandler is echo's centralized error translator and the single place a
// handler error is caught. Domain errors map by kind (400/401/409/500);
// anything unkinded defaults to 500.
func ErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		ae := apierror.From(err)

		// Routing-level failures (unknown path, bad method) surface from
		// echo itself rather than a handler.
		var he *echo.HTTPError
		if errors.As(err, &he) {
			ae = &apierror.Error{Status: he.Code, Kind: apierror.KindBadRequest, Message: http.StatusText(he.Code)}
			if he.Code >= http.StatusInternalServerError {
				ae.Kind = apierror.KindInternal
			}
		}

		if ae.Status >= http.StatusInternalServerError {
			logger.FromContext(c).Error("Request failed", zap.String("type", ae.Kind), zap.Error(err))
		}

		if writeErr := c.JSON(ae.Status, errorBody{Message: ae.Message, Type: ae.Kind, Error: true}); writeErr != nil {
			logger.FromContext(c).Error("Failed to write error response", zap.Error(writeErr))
		}
	}
}
