package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshare/internal/auth"
	"github.com/mrlokans/bookshare/internal/database"
	apperrors "github.com/mrlokans/bookshare/internal/errors"
)

// MessageResponse is returned by endpoints that have nothing else to report.
type MessageResponse struct {
	Message string `json:"message"`
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// On failure a request error is attached and false is returned.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		_ = c.Error(apperrors.Requestf("invalid %s", paramName))
		return 0, false
	}
	return uint(id), true
}

// parsePage reads the page and pageSize query parameters. Missing values fall
// back to the defaults, out-of-range values are clamped.
func parsePage(c *gin.Context) (database.Page, bool) {
	number, ok := parseQueryInt(c, "page")
	if !ok {
		return database.Page{}, false
	}
	size, ok := parseQueryInt(c, "pageSize")
	if !ok {
		return database.Page{}, false
	}
	return database.NewPage(number, size), true
}

func parseQueryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		_ = c.Error(apperrors.Requestf("invalid %s", name))
		return 0, false
	}
	return n, true
}

// currentUserID returns the caller's ID on routes behind RequireUser.
func currentUserID(c *gin.Context) uint {
	id, _ := auth.GetUserID(c)
	return id
}

// fail attaches err for the error handler.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}
