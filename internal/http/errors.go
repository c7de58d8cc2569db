package http

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/mrlokans/bookshare/internal/errors"
	"github.com/mrlokans/bookshare/internal/logging"
)

const problemContentType = "application/problem+json"

// Problem is an RFC 7807 problem document.
type Problem struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

// ErrorHandler renders errors attached with c.Error as problem documents and
// turns panics into 500 responses. Handlers attach the error and return.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				c.Abort()
				writeProblem(c, apperrors.Unexpected(fmt.Errorf("panic: %v", r)))
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeProblem(c, c.Errors.Last().Err)
	}
}

func writeProblem(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = apperrors.Unexpected(err)
	}

	if appErr.Kind == apperrors.KindUnexpected {
		logging.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled error")
	}

	if appErr.RetryAfter > 0 {
		seconds := int(math.Ceil(appErr.RetryAfter.Seconds()))
		c.Header("Retry-After", strconv.Itoa(seconds))
	}

	// c.JSON keeps a content type that is already set.
	c.Header("Content-Type", problemContentType)
	status := appErr.HTTPStatus()
	c.JSON(status, Problem{
		Status: status,
		Title:  appErr.Kind.Title(),
		Type:   string(appErr.Kind),
		Detail: appErr.Detail(),
	})
}

// bindingError converts a request binding failure into a request error with
// one message per invalid field.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Request("Malformed request body").WithCause(err)
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fieldMessage(fe))
	}
	return apperrors.Request(messages...)
}

func fieldMessage(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
