package server

import (
	"errors"
	"net/http"
	"strings"

	admindomain "github.com/evalworks/vendoreval/internal/admin/domain"
	authdomain "github.com/evalworks/vendoreval/internal/auth/domain"
	"github.com/evalworks/vendoreval/internal/authz"
	evaluationdomain "github.com/evalworks/vendoreval/internal/evaluation/domain"
	ledgerdomain "github.com/evalworks/vendoreval/internal/ledger/domain"
	reportdomain "github.com/evalworks/vendoreval/internal/report/domain"
	"github.com/gin-gonic/gin"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrSessionNotFound),
		errors.Is(err, authdomain.ErrSessionExpired):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, evaluationdomain.ErrDuplicateEvaluation):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "evaluation already submitted",
		}
	case errors.Is(err, ledgerdomain.ErrStorage):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "ledger storage unavailable",
		}
	case errors.Is(err, reportdomain.ErrInvalidVoteValue):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "ledger contains an invalid vote value",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, authdomain.ErrInvalidName),
		errors.Is(err, evaluationdomain.ErrInvalidUser),
		errors.Is(err, evaluationdomain.ErrUnknownSupplier),
		errors.Is(err, evaluationdomain.ErrUnknownQuestion),
		errors.Is(err, evaluationdomain.ErrIncompleteSubmission),
		errors.Is(err, evaluationdomain.ErrInvalidVote),
		errors.Is(err, admindomain.ErrEmptyRef):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	for _, sentinel := range []error{
		authdomain.ErrInvalidName,
		evaluationdomain.ErrInvalidUser,
		evaluationdomain.ErrUnknownSupplier,
		evaluationdomain.ErrUnknownQuestion,
		evaluationdomain.ErrIncompleteSubmission,
		evaluationdomain.ErrInvalidVote,
		admindomain.ErrEmptyRef,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "invalid_request"
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if code == "invalid_request" {
		return "request"
	}
	return ""
}

// classifyErrorForLog maps a handler error to (error_type, error_code) log
// fields without leaking internals into access logs.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	switch {
	case status >= 500:
		return "server_error", code
	case status >= 400:
		return "client_error", code
	default:
		return "", ""
	}
}
