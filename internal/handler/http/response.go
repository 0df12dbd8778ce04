package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domainErrors "github.com/clearpath/auth-service/internal/domain/errors"
	"github.com/clearpath/auth-service/internal/handler/http/middleware"
)

// Problem is the error document returned by every failing endpoint.
type Problem struct {
	Status    int                 `json:"status"`
	Title     string              `json:"title"`
	Detail    string              `json:"detail,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
}

var statusTitles = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Not Found",
	http.StatusConflict:            "Conflict",
	http.StatusUnprocessableEntity: "Unprocessable Entity",
	http.StatusTooManyRequests:     "Too Many Requests",
	http.StatusInternalServerError: "Internal Server Error",
}

// respondError translates a service error into a problem document. Unmapped
// errors become an opaque 500: internal details never reach the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusForError(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = "an unexpected error occurred"
		logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", middleware.RequestIDFromContext(c)),
			zap.Error(err),
		)
	}
	writeProblem(c, Problem{Status: status, Detail: detail})
}

// respondBindingError turns a request-body binding failure into either a 422
// with per-field messages or, for malformed JSON, a plain 400.
func respondBindingError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		writeProblem(c, Problem{
			Status: http.StatusBadRequest,
			Detail: "request body could not be parsed",
		})
		return
	}

	fieldErrors := make(map[string][]string, len(validationErrs))
	for _, fe := range validationErrs {
		field := toSnakeCase(fe.Field())
		fieldErrors[field] = append(fieldErrors[field], validationMessage(fe))
	}
	writeProblem(c, Problem{
		Status: http.StatusUnprocessableEntity,
		Detail: "one or more fields failed validation",
		Errors: fieldErrors,
	})
}

func writeProblem(c *gin.Context, p Problem) {
	if p.Title == "" {
		p.Title = statusTitles[p.Status]
	}
	p.RequestID = middleware.RequestIDFromContext(c)
	c.AbortWithStatusJSON(p.Status, p)
}

func statusForError(err error) int {
	switch {
	case domainErrors.IsBadRequest(err):
		return http.StatusBadRequest
	case domainErrors.IsUnauthorized(err):
		return http.StatusUnauthorized
	case domainErrors.IsForbidden(err):
		return http.StatusForbidden
	case domainErrors.IsNotFound(err):
		return http.StatusNotFound
	case domainErrors.IsConflict(err):
		return http.StatusConflict
	case errors.Is(err, domainErrors.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "strongpwd":
		return "must be at least 8 characters with a digit, an uppercase letter, a lowercase letter and a special character"
	default:
		return fmt.Sprintf("failed the %s rule", fe.Tag())
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
