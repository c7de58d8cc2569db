package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/bookshare/internal/auth"
	"github.com/mrlokans/bookshare/internal/config"
	"github.com/mrlokans/bookshare/internal/database"
	"github.com/mrlokans/bookshare/internal/email"
	"github.com/mrlokans/bookshare/internal/entities"
	"github.com/mrlokans/bookshare/internal/services"
	"github.com/mrlokans/bookshare/internal/storage/providers/memory"
)

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
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

var linkPattern = regexp.MustCompile(`https?://\S+`)

// confirmationLink returns the path and query of the last confirmation link.
func (m *recordingMailer) confirmationLink(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)

	parsed, err := url.Parse(linkPattern.FindString(m.sent[len(m.sent)-1].Text))
	require.NoError(t, err)
	return parsed.RequestURI()
}

type testServer struct {
	router  *gin.Engine
	db      *database.Database
	storage *memory.Client
	mailer  *recordingMailer
	tokens  *auth.TokenIssuer
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	authCfg := config.Auth{
		JWTSecret:       strings.Repeat("k", 32),
		JWTIssuer:       "bookshare-test",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		BcryptCost:      bcrypt.MinCost,
	}
	limiter := auth.NewRateLimiter(auth.RateLimitConfig{MaxAttempts: 3})
	t.Cleanup(limiter.Stop)

	ts := &testServer{
		db:      db,
		storage: memory.NewClient("http://files.test"),
		mailer:  &recordingMailer{},
		tokens:  auth.NewTokenIssuer(authCfg),
	}

	accounts := services.NewAccountService(db, ts.tokens, ts.mailer, nil, limiter, services.AccountConfig{
		BcryptCost: bcrypt.MinCost,
		PublicURL:  "http://api.test",
	})
	ts.router = NewRouter(RouterConfig{
		Database:       db,
		Accounts:       accounts,
		Books:          services.NewBookService(db, ts.storage, nil),
		Comments:       services.NewCommentService(db, nil),
		Categories:     services.NewCategoryService(db),
		AuthMiddleware: auth.NewMiddleware(ts.tokens, accounts),
		Files:          ts.storage,
		MaxUploadBytes: 1 << 20,
		Version:        "test",
	})
	return ts
}

func (ts *testServer) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) doJSON(method, target string, body any, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.do(req, token)
}

// createUser inserts a confirmed user with password "password123".
func (ts *testServer) createUser(t *testing.T, name string) *entities.User {
	t.Helper()
	hash, err := auth.HashPassword("password123", bcrypt.MinCost)
	require.NoError(t, err)

	user := &entities.User{
		Name:           name,
		Email:          strings.ToLower(name) + "@example.com",
		PasswordHash:   hash,
		EmailConfirmed: true,
	}
	require.NoError(t, ts.db.Repos(context.Background()).Users.Create(user))
	return user
}

// login returns the token pair for a user created with createUser.
func (ts *testServer) login(t *testing.T, user *entities.User) services.TokenResponse {
	t.Helper()
	w := ts.doJSON(http.MethodPost, "/api/login", gin.H{"email": user.Email, "password": "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tokens services.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))
	return tokens
}

func (ts *testServer) accessToken(t *testing.T, name string) (*entities.User, string) {
	t.Helper()
	user := ts.createUser(t, name)
	return user, ts.login(t, user).AccessToken
}

type bookForm struct {
	title       string
	description string
	categoryIDs []string
	file        []byte
	cover       []byte
}

func (f bookForm) request(t *testing.T, method, target string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", f.title))
	if f.description != "" {
		require.NoError(t, mw.WriteField("description", f.description))
	}
	for _, id := range f.categoryIDs {
		require.NoError(t, mw.WriteField("categoryIds", id))
	}
	if f.file != nil {
		part, err := mw.CreateFormFile("file", "book.pdf")
		require.NoError(t, err)
		_, err = part.Write(f.file)
		require.NoError(t, err)
	}
	if f.cover != nil {
		part, err := mw.CreateFormFile("cover", "cover.png")
		require.NoError(t, err)
		_, err = part.Write(f.cover)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (ts *testServer) createBook(t *testing.T, token, title string) services.BookResponse {
	t.Helper()
	w := ts.do(bookForm{title: title, file: pdfBytes}.request(t, http.MethodPost, "/api/books"), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var book services.BookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
	return book
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) Problem {
	t.Helper()
	require.Equal(t, problemContentType, w.Header().Get("Content-Type"))

	var p Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	return p
}

// storedPath turns a memory storage link back into the object path.
func storedPath(t *testing.T, link string) string {
	t.Helper()
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	return strings.TrimPrefix(parsed.Path, "/files/")
}
