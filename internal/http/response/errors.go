package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/platform/apierr"
)

var statusByCode = map[domainagg.ErrorCode]int{
	domainagg.CodeValidation:         http.StatusBadRequest,
	domainagg.CodeNotFound:           http.StatusNotFound,
	domainagg.CodeConflict:           http.StatusConflict,
	domainagg.CodeInvalidState:       http.StatusConflict,
	domainagg.CodeForbidden:          http.StatusForbidden,
	domainagg.CodeInvalidPass:        http.StatusUnprocessableEntity,
	domainagg.CodePreconditionFailed: http.StatusPreconditionFailed,
	domainagg.CodeRetryable:          http.StatusServiceUnavailable,
	domainagg.CodeInternal:           http.StatusInternalServerError,
}

// StatusForError maps a service error to its HTTP status and wire code.
func StatusForError(err error) (int, string) {
	var ae *apierr.Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status, ae.Code
	}
	if code := domainagg.CodeOf(err); code != "" {
		if status, ok := statusByCode[code]; ok {
			return status, string(code)
		}
	}
	return http.StatusInternalServerError, string(domainagg.CodeInternal)
}

// RespondDomainError writes err in the standard envelope. Internal failures
// never leak their cause to the client.
func RespondDomainError(c *gin.Context, err error) {
	status, code := StatusForError(err)
	msg := domainagg.MessageOf(err)
	var ae *apierr.Error
	if errors.As(err, &ae) && ae.Err != nil {
		msg = ae.Err.Error()
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}
