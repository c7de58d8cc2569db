package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mrlokans/bookshare/internal/errors"
)

func serveWithErrorHandler(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(ErrorHandler())
	router.POST("/test", handler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", nil))
	return w
}

func TestErrorHandler_DomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantDetail string
	}{
		{
			name:       "request error joins messages",
			err:        apperrors.Request("Title is required", "Unknown category ids: 9"),
			wantStatus: http.StatusBadRequest,
			wantType:   "RequestError",
			wantDetail: "Title is required; Unknown category ids: 9",
		},
		{
			name:       "unauthorized",
			err:        apperrors.Unauthorized("Authentication required"),
			wantStatus: http.StatusUnauthorized,
			wantType:   "UnauthorizedError",
			wantDetail: "Authentication required",
		},
		{
			name:       "not found",
			err:        apperrors.NotFound("Book not found"),
			wantStatus: http.StatusNotFound,
			wantType:   "NotFoundError",
			wantDetail: "Book not found",
		},
		{
			name:       "plain errors are hidden",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantType:   "UnexpectedError",
			wantDetail: "An unexpected error occurred.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveWithErrorHandler(func(c *gin.Context) {
				_ = c.Error(tt.err)
			})

			assert.Equal(t, tt.wantStatus, w.Code)
			p := decodeProblem(t, w)
			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, tt.wantType, p.Type)
			assert.Equal(t, tt.wantDetail, p.Detail)
			assert.NotEmpty(t, p.Title)
		})
	}
}

func TestErrorHandler_RetryAfter(t *testing.T) {
	w := serveWithErrorHandler(func(c *gin.Context) {
		_ = c.Error(apperrors.RateLimited(90*time.Second+300*time.Millisecond, "Too many login attempts"))
	})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "91", w.Header().Get("Retry-After"))
	assert.Equal(t, "TooManyRequestsError", decodeProblem(t, w).Type)
}

func TestErrorHandler_RecoversPanics(t *testing.T) {
	w := serveWithErrorHandler(func(c *gin.Context) {
		panic("boom")
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "An unexpected error occurred.", decodeProblem(t, w).Detail)
}

func TestErrorHandler_LeavesWrittenResponses(t *testing.T) {
	w := serveWithErrorHandler(func(c *gin.Context) {
		c.JSON(http.StatusOK, MessageResponse{Message: "done"})
		_ = c.Error(errors.New("logged only"))
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"done"}`, w.Body.String())
}

func TestBindingError(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler())
	router.POST("/test", func(c *gin.Context) {
		var req struct {
			Name  string `json:"name" binding:"required"`
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, bindingError(err))
		}
	})

	send := func(body string) Problem {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
		return decodeProblem(t, w)
	}

	p := send(`{"email":"nope"}`)
	assert.Equal(t, "name is required; email must be a valid email address", p.Detail)

	p = send(`{not json`)
	assert.Equal(t, "Malformed request body", p.Detail)
}

func TestProblem_JSONFields(t *testing.T) {
	data, err := json.Marshal(Problem{Status: 404, Title: "Not Found", Type: "NotFoundError", Detail: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":404,"title":"Not Found","type":"NotFoundError","detail":"x"}`, string(data))
}
