// internal/api/handlers/response.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"container-yard-api-server/internal/apperr"
	"container-yard-api-server/internal/logger"
	"container-yard-api-server/internal/validation"
)

// respondError writes the {"error","code"} body for err. Anything that is not
// an application error is logged and reported as a 500.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).WithError(err).Error("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": apperr.Public(err), "code": apperr.Code(err)})
}

// bindJSON decodes and validates the request body. Every failure comes back
// as a validation error.
func bindJSON(c *gin.Context, obj any) error {
	return bindError(c.ShouldBindJSON(obj))
}

// bindOptionalJSON accepts a missing body, chunked or not: exits may be
// posted with no form data.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return bindError(err)
}

func bindError(err error) error {
	if err == nil {
		return nil
	}
	if translated := validation.Translate(err); errors.Is(translated, apperr.ErrValidation) {
		return translated
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var timeErr *time.ParseError
	switch {
	case errors.Is(err, io.EOF):
		return apperr.Validation("request body is required")
	case errors.As(err, &syntaxErr):
		return apperr.Validation("malformed JSON at offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		return apperr.Validation("%s has the wrong type", typeErr.Field)
	case errors.As(err, &timeErr):
		return apperr.Validation("dates must be RFC 3339, e.g. 2024-05-20T08:30:00Z")
	}
	return apperr.Validation("invalid request body: %v", err)
}
