package services

import (
	"bytes"
	"context"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/bookshare/internal/auth"
	"github.com/mrlokans/bookshare/internal/config"
	"github.com/mrlokans/bookshare/internal/database"
	"github.com/mrlokans/bookshare/internal/email"
	"github.com/mrlokans/bookshare/internal/entities"
	"github.com/mrlokans/bookshare/internal/storage/providers/memory"
)

var (
	pdfBytes  = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	textBytes = []byte("this is plain text pretending to be a pdf")
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []email.Message
}

func (m *recordingMailer) Send(ctx context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

var tokenParam = regexp.MustCompile(`https?://\S+`)

// confirmationToken extracts the token from the last confirmation email.
func (m *recordingMailer) confirmationToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)

	link := tokenParam.FindString(m.sent[len(m.sent)-1].Text)
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	return parsed.Query().Get("token")
}

type testEnv struct {
	db       *database.Database
	storage  *memory.Client
	mailer   *recordingMailer
	tokens   *auth.TokenIssuer
	accounts *AccountService
	books    *BookService
	comments *CommentService
}

func testAuthConfig() config.Auth {
	return config.Auth{
		JWTSecret:       strings.Repeat("s", 32),
		JWTIssuer:       "bookshare-test",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		BcryptCost:      bcrypt.MinCost,
	}
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		db:      db,
		storage: memory.NewClient("http://files.test"),
		mailer:  &recordingMailer{},
		tokens:  auth.NewTokenIssuer(testAuthConfig()),
	}
	env.accounts = NewAccountService(db, env.tokens, env.mailer, nil, nil, AccountConfig{
		BcryptCost: bcrypt.MinCost,
		PublicURL:  "http://api.test",
	})
	env.books = NewBookService(db, env.storage, nil)
	env.comments = NewCommentService(db, nil)
	return env
}

// createUser inserts a confirmed user directly.
func (e *testEnv) createUser(t *testing.T, name string) *entities.User {
	t.Helper()
	hash, err := auth.HashPassword("password123", bcrypt.MinCost)
	require.NoError(t, err)

	user := &entities.User{
		Name:           name,
		Email:          strings.ToLower(name) + "@example.com",
		PasswordHash:   hash,
		EmailConfirmed: true,
	}
	require.NoError(t, e.db.Repos(context.Background()).Users.Create(user))
	return user
}

func (e *testEnv) categoryIDs(t *testing.T, names ...string) []uint {
	t.Helper()
	repo := e.db.Repos(context.Background()).Categories
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		c, err := repo.GetByName(name)
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}
	return ids
}

func pdfUpload() *Upload {
	return &Upload{Name: "book.pdf", Content: bytes.NewReader(pdfBytes)}
}

func (e *testEnv) createBook(t *testing.T, owner *entities.User, title string) *BookResponse {
	t.Helper()
	resp, err := e.books.Create(context.Background(), owner.ID, BookInput{
		Title: title,
		File:  pdfUpload(),
	})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.DB.Model(model).Count(&n).Error)
	return n
}

// storedBook loads the book row to find where its file and cover are stored.
func (e *testEnv) storedBook(t *testing.T, id uint) *entities.Book {
	t.Helper()
	book, err := e.db.Repos(context.Background()).Books.GetByID(id)
	require.NoError(t, err)
	return book
}
