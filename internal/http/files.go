package http

import (
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	apperrors "github.com/mrlokans/bookshare/internal/errors"
)

// FilesController serves files kept by the in-memory storage provider, so
// that its temporary links resolve during development.
type FilesController struct {
	files FileReader
}

func NewFilesController(files FileReader) *FilesController {
	return &FilesController{files: files}
}

// Get streams a stored file.
// GET /files/*path
func (fc *FilesController) Get(c *gin.Context) {
	p := strings.TrimPrefix(c.Param("path"), "/")

	data, ok := fc.files.Content(p)
	if !ok {
		fail(c, apperrors.NotFound("File not found"))
		return
	}
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}
