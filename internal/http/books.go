package http

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshare/internal/auth"
	apperrors "github.com/mrlokans/bookshare/internal/errors"
	"github.com/mrlokans/bookshare/internal/services"
)

// Multipart parts above this size are spooled to temporary files.
const multipartMemory = 8 << 20

type BooksController struct {
	books          Books
	maxUploadBytes int64
}

func NewBooksController(books Books, maxUploadBytes int64) *BooksController {
	return &BooksController{
		books:          books,
		maxUploadBytes: maxUploadBytes,
	}
}

// List returns a page of books, newest first.
// GET /api/books?page=&pageSize=
func (bc *BooksController) List(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}

	books, err := bc.books.List(c.Request.Context(), page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

// Create uploads a book from a multipart form.
// POST /api/books
func (bc *BooksController) Create(c *gin.Context) {
	in, release, err := bc.readForm(c)
	if err != nil {
		fail(c, err)
		return
	}
	defer release()

	book, err := bc.books.Create(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

// Get returns a book and records a view for authenticated callers.
// GET /api/books/:id
func (bc *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.books.Get(c.Request.Context(), id, auth.GetUserIDPtr(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// Update replaces a book's fields and files.
// PUT /api/books/:id
func (bc *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	in, release, err := bc.readForm(c)
	if err != nil {
		fail(c, err)
		return
	}
	defer release()

	book, err := bc.books.Update(c.Request.Context(), currentUserID(c), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// Delete removes a book and its stored files.
// DELETE /api/books/:id
func (bc *BooksController) Delete(c *gin.Context) {
	bc.withBook(c, bc.books.Delete)
}

// Like adds the caller's like.
// POST /api/books/:id/likes
func (bc *BooksController) Like(c *gin.Context) {
	bc.withBook(c, bc.books.Like)
}

// Unlike removes the caller's like.
// DELETE /api/books/:id/likes
func (bc *BooksController) Unlike(c *gin.Context) {
	bc.withBook(c, bc.books.Unlike)
}

// Download returns a temporary link to the book file.
// GET /api/books/:id/download
func (bc *BooksController) Download(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	link, err := bc.books.Download(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (bc *BooksController) withBook(c *gin.Context, action func(ctx context.Context, userID, bookID uint) error) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := action(c.Request.Context(), currentUserID(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// readForm parses a book multipart form. The returned release function closes
// the uploaded files and must be called once the input is consumed.
func (bc *BooksController) readForm(c *gin.Context) (services.BookInput, func(), error) {
	if bc.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, bc.maxUploadBytes)
	}

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return services.BookInput{}, nil, apperrors.Requestf("Upload exceeds the limit of %d bytes", tooLarge.Limit)
		}
		return services.BookInput{}, nil, apperrors.Request("Expected a multipart/form-data body").WithCause(err)
	}
	form := c.Request.MultipartForm

	categoryIDs, err := parseCategoryIDs(form.Value["categoryIds"])
	if err != nil {
		return services.BookInput{}, nil, err
	}

	var closers []io.Closer
	release := func() {
		for _, cl := range closers {
			cl.Close()
		}
		form.RemoveAll()
	}

	file, fileCloser, err := openUpload(form, "file")
	if err != nil {
		release()
		return services.BookInput{}, nil, err
	}
	if fileCloser != nil {
		closers = append(closers, fileCloser)
	}

	cover, coverCloser, err := openUpload(form, "cover")
	if err != nil {
		release()
		return services.BookInput{}, nil, err
	}
	if coverCloser != nil {
		closers = append(closers, coverCloser)
	}

	return services.BookInput{
		Title:       formValue(form, "title"),
		Description: formValue(form, "description"),
		CategoryIDs: categoryIDs,
		File:        file,
		Cover:       cover,
	}, release, nil
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// parseCategoryIDs accepts repeated fields, comma separated lists, or both.
func parseCategoryIDs(values []string) ([]uint, error) {
	var ids []uint
	for _, value := range values {
		for _, raw := range strings.Split(value, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			id, err := strconv.ParseUint(raw, 10, 32)
			if err != nil || id == 0 {
				return nil, apperrors.Requestf("invalid category id %q", raw)
			}
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}

func openUpload(form *multipart.Form, field string) (*services.Upload, io.Closer, error) {
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, nil, nil
	}

	f, err := headers[0].Open()
	if err != nil {
		return nil, nil, apperrors.Unexpected(err)
	}
	return &services.Upload{Name: headers[0].Filename, Content: f}, f, nil
}
