package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bayleafwalker/bindery-graph/internal/registry"
	"github.com/bayleafwalker/bindery-graph/internal/resolver"
)

const (
	codeInvalidRequest    = "INVALID_REQUEST"
	codeUnknownTarget     = "UNKNOWN_TARGET"
	codeAmbiguousProvider = "AMBIGUOUS_PROVIDER"
	codeIgnoredTarget     = "IGNORED_TARGET"
	codeParseFailure      = "PARSE_FAILURE"
	codeCancelled         = "CANCELLED"
	codeInternal          = "INTERNAL"
)

// classify maps an error to a status and code. Errors that are neither
// target nor context errors get fallback.
func classify(err error, fallback int, fallbackCode string) (int, string) {
	switch {
	case errors.Is(err, resolver.ErrUnknownTarget):
		return http.StatusNotFound, codeUnknownTarget
	case errors.Is(err, resolver.ErrAmbiguousProvider):
		return http.StatusConflict, codeAmbiguousProvider
	case errors.Is(err, registry.ErrIgnoredTarget):
		return http.StatusUnprocessableEntity, codeIgnoredTarget
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, codeCancelled
	}
	return fallback, fallbackCode
}

func (s *Server) fail(c *gin.Context, err error, fallback int, fallbackCode string) {
	status, code := classify(err, fallback, fallbackCode)
	if status >= http.StatusInternalServerError {
		s.log.Error(err, "request failed", "path", c.FullPath(), "code", code)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   err.Error(),
		Code:    code,
		Reasons: registry.Reasons(err),
	})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: codeInvalidRequest})
}
