// Package api holds the gin handlers for characters, images and attributes.
package api

import (
	stderrors "errors"
	"io"

	"character-image-generator/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the request body into dst. An empty body is allowed
// when optional is set.
func bindJSON(c *gin.Context, dst any, optional bool) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || (optional && stderrors.Is(err, io.EOF)) {
		return true
	}
	c.Error(errors.NewBadRequestError(errors.CodeInvalidRequest, "Request body must be valid JSON").
		WithDetails(err.Error()).WithCause(err))
	return false
}

// chain returns the middleware followed by the handler in a fresh slice.
func chain(middleware []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(middleware)+1)
	out = append(out, middleware...)
	return append(out, handler)
}
