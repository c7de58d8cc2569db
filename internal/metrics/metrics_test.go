package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveStorage(t *testing.T) {
	beforeOK := testutil.ToFloat64(StorageOperations.WithLabelValues("upload", OutcomeSuccess))
	beforeFail := testutil.ToFloat64(StorageOperations.WithLabelValues("upload", OutcomeFailure))

	ObserveStorage("upload", nil)
	ObserveStorage("upload", errors.New("boom"))
	ObserveStorage("upload", nil)

	assert.Equal(t, beforeOK+2, testutil.ToFloat64(StorageOperations.WithLabelValues("upload", OutcomeSuccess)))
	assert.Equal(t, beforeFail+1, testutil.ToFloat64(StorageOperations.WithLabelValues("upload", OutcomeFailure)))
}

func TestRecordEmail(t *testing.T) {
	before := testutil.ToFloat64(EmailsSent.WithLabelValues(OutcomeFailure))
	RecordEmail(errors.New("rejected"))
	assert.Equal(t, before+1, testutil.ToFloat64(EmailsSent.WithLabelValues(OutcomeFailure)))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/api/books/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/books/:id", "204"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/books/42", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/books/:id", "204")))
	assert.Equal(t, float64(0), testutil.ToFloat64(APIActiveRequests))
}

func TestHandler(t *testing.T) {
	RecordLogin("success")

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "bookshare_login_attempts_total"))
}
