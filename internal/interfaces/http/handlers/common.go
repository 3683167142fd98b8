// Package handlers contains the gin handlers of the TCKDB HTTP API: species
// submission and lifecycle, coordinate tooling, and health probes.
package handlers

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"

	"github.com/tckdb/tckdb-go/pkg/errors"
	"github.com/tckdb/tckdb-go/pkg/types/common"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// respondError writes a structured error response, mapping the application
// error code to an HTTP status.  Server-side failures are masked so that
// internal detail never reaches clients; the full error is attached to the
// gin context for the logging middleware.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{
		Code:    string(code),
		Message: err.Error(),
	}
	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		resp.Message = ae.Message
		resp.Detail = ae.Detail
	}
	if errors.IsServerError(code) {
		resp.Message = "internal server error"
		resp.Detail = ""
	}
	c.AbortWithStatusJSON(status, resp)
}

// bindJSON decodes the request body into dest, responding with 400 on
// malformed input. Returns false when the request has already been answered.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

// parsePagination extracts page and page_size from query parameters and
// clamps them into bounds.
func parsePagination(c *gin.Context) common.PageRequest {
	var page common.PageRequest
	_ = c.ShouldBindQuery(&page)
	page.Normalize()
	return page
}

// requireParam returns the named path parameter, responding with 400 when it
// is empty.
func requireParam(c *gin.Context, name string) (string, bool) {
	v := c.Param(name)
	if v == "" {
		respondError(c, errors.Newf(errors.ErrCodeBadRequest, "missing path parameter %q", name))
		return "", false
	}
	return v, true
}
