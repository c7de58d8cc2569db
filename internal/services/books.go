package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mrlokans/bookshare/internal/database"
	"github.com/mrlokans/bookshare/internal/entities"
	apperrors "github.com/mrlokans/bookshare/internal/errors"
	"github.com/mrlokans/bookshare/internal/filetype"
	"github.com/mrlokans/bookshare/internal/logging"
	"github.com/mrlokans/bookshare/internal/storage"
	"github.com/mrlokans/bookshare/internal/utils"
)

const (
	booksFolder  = "books"
	coversFolder = "covers"
)

// Upload is an uploaded file. Its name is informational only; the type is
// decided by sniffing Content.
type Upload struct {
	Name    string
	Content io.Reader
}

// BookInput holds the fields of a create or update request.
type BookInput struct {
	Title       string
	Description string
	CategoryIDs []uint
	File        *Upload
	Cover       *Upload // optional
}

// BookService manages books, their files, likes and views.
type BookService struct {
	store   Store
	storage Storage
	auditor Auditor
	// objectID makes every stored name unique. Sanitized titles can collide
	// and storage paths may be case-insensitive.
	objectID func() string
}

func NewBookService(store Store, storage Storage, auditor Auditor) *BookService {
	return &BookService{
		store:    store,
		storage:  storage,
		auditor:  auditorOrNop(auditor),
		objectID: uuid.NewString,
	}
}

// validatedUpload is an upload whose type has been confirmed.
type validatedUpload struct {
	path    string
	content io.Reader
}

// preparedBook is a BookInput that passed every check.
type preparedBook struct {
	title       string
	description string
	categoryIDs []uint
	file        validatedUpload
	cover       *validatedUpload
}

// prepare validates input against the database and sniffs the uploads.
// excludeID is the book being updated, or 0 on create.
func (s *BookService) prepare(repos *database.Repositories, in BookInput, excludeID uint) (*preparedBook, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperrors.Request("Title is required")
	}

	exists, err := repos.Books.TitleExists(title, excludeID)
	if err != nil {
		return nil, unexpected(err)
	}
	if exists {
		return nil, apperrors.Request("A book with this title already exists")
	}

	categoryIDs := dedupe(in.CategoryIDs)
	if len(categoryIDs) > 0 {
		found, err := repos.Categories.GetByIDs(categoryIDs)
		if err != nil {
			return nil, unexpected(err)
		}
		if len(found) != len(categoryIDs) {
			return nil, apperrors.Requestf("Unknown category ids: %s", joinIDs(missingIDs(categoryIDs, found)))
		}
	}

	if in.File == nil || in.File.Content == nil {
		return nil, apperrors.Request("A PDF file is required")
	}
	detected, content, err := filetype.Detect(in.File.Content)
	if err != nil {
		return nil, unexpected(err)
	}
	if !detected.IsPDF() {
		return nil, apperrors.Request("The book file must be a PDF document")
	}

	base := utils.SanitizeFilename(title) + "-" + s.objectID()
	prepared := &preparedBook{
		title:       title,
		description: strings.TrimSpace(in.Description),
		categoryIDs: categoryIDs,
		file:        validatedUpload{path: path.Join(booksFolder, base+".pdf"), content: content},
	}

	if in.Cover != nil && in.Cover.Content != nil {
		detected, content, err := filetype.Detect(in.Cover.Content)
		if err != nil {
			return nil, unexpected(err)
		}
		if !detected.IsCoverImage() {
			return nil, apperrors.Request("The cover must be a PNG or JPEG image")
		}
		prepared.cover = &validatedUpload{
			path:    path.Join(coversFolder, base+coverExtension(detected)),
			content: content,
		}
	}

	return prepared, nil
}

func coverExtension(d filetype.Detected) string {
	if d.MIME == filetype.MIMEPNG {
		return ".png"
	}
	return ".jpg"
}

// upload stores the prepared file and cover. On failure anything already
// uploaded by this call is removed again.
func (s *BookService) upload(ctx context.Context, p *preparedBook) error {
	if err := s.storage.Upload(ctx, p.file.path, p.file.content); err != nil {
		return apperrors.Unexpected(fmt.Errorf("upload book file: %w", err))
	}
	if p.cover != nil {
		if err := s.storage.Upload(ctx, p.cover.path, p.cover.content); err != nil {
			s.removeStored(ctx, p.file.path)
			return apperrors.Unexpected(fmt.Errorf("upload cover: %w", err))
		}
	}
	return nil
}

func (s *BookService) removeStored(ctx context.Context, paths ...string) {
	for _, p := range paths {
		if err := storage.DeleteIfExists(ctx, s.storage, p); err != nil {
			logging.Warn().Err(err).Str("path", p).Msg("Failed to remove stored file")
		}
	}
}

// Create validates and uploads a new book, then writes the book row and its
// category links in one unit of work.
func (s *BookService) Create(ctx context.Context, userID uint, in BookInput) (*BookResponse, error) {
	prepared, err := s.prepare(s.store.Repos(ctx), in, 0)
	if err != nil {
		return nil, err
	}

	if err := s.upload(ctx, prepared); err != nil {
		return nil, err
	}

	book := &entities.Book{
		Title:       prepared.title,
		Description: prepared.description,
		FileName:    prepared.file.path,
		UserID:      userID,
	}
	if prepared.cover != nil {
		book.CoverName = &prepared.cover.path
	}

	err = s.store.Transaction(ctx, func(r *database.Repositories) error {
		// Re-checked inside the unit of work in case of a concurrent create.
		exists, err := r.Books.TitleExists(book.Title, 0)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Request("A book with this title already exists")
		}
		if err := r.Books.Create(book); err != nil {
			return err
		}
		return r.Books.AddCategories(book.ID, prepared.categoryIDs)
	})
	if err != nil {
		s.removeStored(ctx, uploadedPaths(prepared)...)
		s.auditor.LogBook(userID, "book_create", 0, prepared.title, err)
		return nil, unexpected(err)
	}

	s.auditor.LogBook(userID, "book_create", book.ID, book.Title, nil)
	return s.detailed(ctx, s.store.Repos(ctx), book.ID)
}

// Get returns a book. An authenticated viewer who has not seen the book
// before is recorded as a view first.
func (s *BookService) Get(ctx context.Context, bookID uint, viewerID *uint) (*BookResponse, error) {
	var resp *BookResponse
	err := s.store.Transaction(ctx, func(r *database.Repositories) error {
		if _, err := r.Books.GetByID(bookID); err != nil {
			return lookupError(err, "Book not found")
		}

		if viewerID != nil {
			seen, err := r.Views.Exists(*viewerID, bookID)
			if err != nil {
				return err
			}
			if !seen {
				if err := r.Views.Create(viewerID, bookID); err != nil {
					return err
				}
			}
		}

		var err error
		resp, err = s.detailed(ctx, r, bookID)
		return err
	})
	if err != nil {
		return nil, unexpected(err)
	}
	return resp, nil
}

// Update replaces a book owned by userID. The file is required again and the
// cover is replaced or removed. New uploads get fresh names, so the old
// objects stay intact until the row points at the new ones.
func (s *BookService) Update(ctx context.Context, userID, bookID uint, in BookInput) (*BookResponse, error) {
	repos := s.store.Repos(ctx)

	book, err := repos.Books.GetByID(bookID)
	if err != nil {
		return nil, lookupError(err, "Book not found")
	}
	if book.UserID != userID {
		return nil, apperrors.Unauthorized("Only the owner can update this book")
	}

	prepared, err := s.prepare(repos, in, bookID)
	if err != nil {
		return nil, err
	}

	if err := s.upload(ctx, prepared); err != nil {
		return nil, err
	}

	stale := []string{book.FileName}
	if book.CoverName != nil {
		stale = append(stale, *book.CoverName)
	}

	book.Title = prepared.title
	book.Description = prepared.description
	book.FileName = prepared.file.path
	book.CoverName = nil
	if prepared.cover != nil {
		book.CoverName = &prepared.cover.path
	}

	var resp *BookResponse
	err = s.store.Transaction(ctx, func(r *database.Repositories) error {
		if err := r.Books.Update(book); err != nil {
			return err
		}
		if err := r.Books.ReplaceCategories(book.ID, prepared.categoryIDs); err != nil {
			return err
		}
		resp, err = s.detailed(ctx, r, book.ID)
		return err
	})
	if err != nil {
		s.removeStored(ctx, uploadedPaths(prepared)...)
		s.auditor.LogBook(userID, "book_update", book.ID, book.Title, err)
		return nil, unexpected(err)
	}

	s.removeStored(ctx, stale...)
	s.auditor.LogBook(userID, "book_update", book.ID, book.Title, nil)
	return resp, nil
}

// Delete removes a book owned by userID together with its stored file and cover.
func (s *BookService) Delete(ctx context.Context, userID, bookID uint) error {
	repos := s.store.Repos(ctx)

	book, err := repos.Books.GetByID(bookID)
	if err != nil {
		return lookupError(err, "Book not found")
	}
	if book.UserID != userID {
		return apperrors.Unauthorized("Only the owner can delete this book")
	}

	if err := storage.DeleteIfExists(ctx, s.storage, book.FileName); err != nil {
		return apperrors.Unexpected(fmt.Errorf("delete book file: %w", err))
	}
	if book.CoverName != nil {
		if err := storage.DeleteIfExists(ctx, s.storage, *book.CoverName); err != nil {
			return apperrors.Unexpected(fmt.Errorf("delete cover: %w", err))
		}
	}

	if err := repos.Books.Delete(book.ID); err != nil {
		return unexpected(err)
	}

	s.auditor.LogDelete(userID, "book", book.ID, book.Title)
	return nil
}

// Like records that userID likes the book. Liking twice is an error.
func (s *BookService) Like(ctx context.Context, userID, bookID uint) error {
	err := s.store.Transaction(ctx, func(r *database.Repositories) error {
		if _, err := r.Books.GetByID(bookID); err != nil {
			return lookupError(err, "Book not found")
		}
		liked, err := r.Likes.Exists(userID, bookID)
		if err != nil {
			return err
		}
		if liked {
			return apperrors.Request("You have already liked this book")
		}
		return r.Likes.Create(userID, bookID)
	})
	return unexpected(err)
}

// Unlike removes userID's like. Unliking a book that was not liked is an error.
func (s *BookService) Unlike(ctx context.Context, userID, bookID uint) error {
	err := s.store.Transaction(ctx, func(r *database.Repositories) error {
		if _, err := r.Books.GetByID(bookID); err != nil {
			return lookupError(err, "Book not found")
		}
		liked, err := r.Likes.Exists(userID, bookID)
		if err != nil {
			return err
		}
		if !liked {
			return apperrors.Request("You have not liked this book")
		}
		_, err = r.Likes.Delete(userID, bookID)
		return err
	})
	return unexpected(err)
}

// List returns a page of book summaries, newest first.
func (s *BookService) List(ctx context.Context, page database.Page) (*PagedResponse[BookSummary], error) {
	repos := s.store.Repos(ctx)

	books, total, err := repos.Books.List(page.Size, page.Offset())
	if err != nil {
		return nil, unexpected(err)
	}

	ids := make([]uint, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	views, err := repos.Views.CountByBooks(ids)
	if err != nil {
		return nil, unexpected(err)
	}

	items := make([]BookSummary, 0, len(books))
	for _, b := range books {
		summary := BookSummary{
			ID:         b.ID,
			Title:      b.Title,
			Author:     b.User.Name,
			TotalViews: views[b.ID],
		}
		if b.CoverName != nil {
			summary.CoverURL = storage.ResolveURL(ctx, s.storage, *b.CoverName)
		}
		items = append(items, summary)
	}

	return newPagedResponse(items, page, total), nil
}

// Download records a download by userID and returns a temporary link to the file.
func (s *BookService) Download(ctx context.Context, userID, bookID uint) (*DownloadResponse, error) {
	repos := s.store.Repos(ctx)

	book, err := repos.Books.GetByID(bookID)
	if err != nil {
		return nil, lookupError(err, "Book not found")
	}

	link, err := s.storage.TemporaryLink(ctx, book.FileName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NotFound("Book file not found")
		}
		return nil, apperrors.Unexpected(fmt.Errorf("resolve download link: %w", err))
	}

	if err := repos.Downloads.Create(userID, book.ID); err != nil {
		return nil, unexpected(err)
	}
	return &DownloadResponse{URL: link}, nil
}

// detailed loads a book with its associations and builds the full response.
func (s *BookService) detailed(ctx context.Context, r *database.Repositories, bookID uint) (*BookResponse, error) {
	book, err := r.Books.GetDetailed(bookID)
	if err != nil {
		return nil, lookupError(err, "Book not found")
	}

	categories := make([]CategoryResponse, 0, len(book.BookCategories))
	for _, bc := range book.BookCategories {
		categories = append(categories, CategoryResponse{ID: bc.Category.ID, Name: bc.Category.Name})
	}
	slices.SortFunc(categories, func(a, b CategoryResponse) int {
		return strings.Compare(a.Name, b.Name)
	})

	resp := &BookResponse{
		ID:          book.ID,
		Title:       book.Title,
		Description: book.Description,
		FileURL:     storage.ResolveURL(ctx, s.storage, book.FileName),
		Author:      AuthorResponse{ID: book.User.ID, Name: book.User.Name},
		Categories:  categories,
		LikesCount:  int64(len(book.Likes)),
		TotalViews:  int64(len(book.Views)),
		CreatedAt:   book.CreatedAt,
	}
	if book.CoverName != nil {
		resp.CoverURL = storage.ResolveURL(ctx, s.storage, *book.CoverName)
	}
	return resp, nil
}

func uploadedPaths(p *preparedBook) []string {
	paths := []string{p.file.path}
	if p.cover != nil {
		paths = append(paths, p.cover.path)
	}
	return paths
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingIDs(want []uint, found []entities.Category) []uint {
	have := make(map[uint]struct{}, len(found))
	for _, c := range found {
		have[c.ID] = struct{}{}
	}
	var missing []uint
	for _, id := range want {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ", ")
}
