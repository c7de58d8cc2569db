package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshare/internal/database"
	"github.com/mrlokans/bookshare/internal/storage/providers/dropbox"
)

type fakeAuthorizer struct {
	gotCode     string
	gotVerifier string
	response    *dropbox.TokenResponse
	err         error
}

func (f *fakeAuthorizer) AuthURL() (string, string, error) {
	return "https://dropbox.test/authorize?client_id=key", "verifier", nil
}

func (f *fakeAuthorizer) Exchange(ctx context.Context, code, codeVerifier string) (*dropbox.TokenResponse, error) {
	f.gotCode = code
	f.gotVerifier = codeVerifier
	return f.response, f.err
}

func newTestAuthCommand(input string, auth *fakeAuthorizer) (*DropboxAuthCommand, *bytes.Buffer) {
	var out bytes.Buffer
	return &DropboxAuthCommand{
		AppKey:     "key",
		authorizer: auth,
		in:         strings.NewReader(input),
		out:        &out,
	}, &out
}

func TestDropboxAuthCommand_ParseFlags(t *testing.T) {
	t.Setenv("DROPBOX_APP_KEY", "")

	cmd := NewDropboxAuthCommand()
	assert.Error(t, cmd.ParseFlags(nil))

	require.NoError(t, cmd.ParseFlags([]string{"-app-key", "abc"}))
	assert.Equal(t, "abc", cmd.AppKey)

	t.Setenv("DROPBOX_APP_KEY", "from-env")
	cmd = NewDropboxAuthCommand()
	require.NoError(t, cmd.ParseFlags(nil))
	assert.Equal(t, "from-env", cmd.AppKey)
}

func TestDropboxAuthCommand_Run(t *testing.T) {
	t.Run("prints the refresh token", func(t *testing.T) {
		auth := &fakeAuthorizer{response: &dropbox.TokenResponse{AccessToken: "at", RefreshToken: "rt-123", AccountID: "dbid:1"}}
		cmd, out := newTestAuthCommand("  the-code \n", auth)

		require.NoError(t, cmd.Run())
		assert.Equal(t, "the-code", auth.gotCode)
		assert.Equal(t, "verifier", auth.gotVerifier)
		assert.Contains(t, out.String(), "https://dropbox.test/authorize")
		assert.Contains(t, out.String(), "rt-123")
	})

	t.Run("empty code", func(t *testing.T) {
		cmd, _ := newTestAuthCommand("\n", &fakeAuthorizer{})
		assert.Error(t, cmd.Run())
	})

	t.Run("exchange failure", func(t *testing.T) {
		cmd, _ := newTestAuthCommand("code\n", &fakeAuthorizer{err: errors.New("invalid_grant")})
		err := cmd.Run()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid_grant")
	})

	t.Run("missing refresh token", func(t *testing.T) {
		cmd, _ := newTestAuthCommand("code\n", &fakeAuthorizer{response: &dropbox.TokenResponse{AccessToken: "at"}})
		assert.Error(t, cmd.Run())
	})
}

func TestMigrateCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrated.db")

	cmd := NewMigrateCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-db", dbPath}))

	var out bytes.Buffer
	cmd.out = &out
	require.NoError(t, cmd.Run())
	assert.Contains(t, out.String(), "up to date")

	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	var categories int64
	require.NoError(t, db.DB.Table("categories").Count(&categories).Error)
	assert.Positive(t, categories)
}
