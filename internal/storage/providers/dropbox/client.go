// Package dropbox implements storage.Client on the Dropbox HTTP API.
package dropbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/mrlokans/bookshare/internal/storage"
)

const (
	dropboxAPIURL     = "https://api.dropboxapi.com/2"
	dropboxContentURL = "https://content.dropboxapi.com/2"
)

// Client implements storage.Client for Dropbox
type Client struct {
	tokenSource TokenSource
	httpClient  *http.Client
	apiURL      string
	contentURL  string
	rootPath    string
}

// Option configures a Client.
type Option func(*Client)

// WithRootPath stores every file below root, e.g. "/bookshare".
func WithRootPath(root string) Option {
	return func(c *Client) {
		c.rootPath = strings.TrimSuffix(root, "/")
	}
}

// WithBaseURLs overrides the API endpoints. Used by tests.
func WithBaseURLs(apiURL, contentURL string) Option {
	return func(c *Client) {
		c.apiURL = apiURL
		c.contentURL = contentURL
	}
}

// NewClient creates a new Dropbox storage client
func NewClient(tokenSource TokenSource, opts ...Option) *Client {
	c := &Client{
		tokenSource: tokenSource,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		apiURL:     dropboxAPIURL,
		contentURL: dropboxContentURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// fullPath maps a storage path to an absolute Dropbox path.
func (c *Client) fullPath(p string) string {
	return path.Join("/", c.rootPath, p)
}

type metadataResponse struct {
	Tag            string    `json:".tag"`
	Name           string    `json:"name"`
	PathDisplay    string    `json:"path_display"`
	ID             string    `json:"id"`
	ServerModified time.Time `json:"server_modified"`
	Size           int64     `json:"size"`
	ContentHash    string    `json:"content_hash"`
}

func (m metadataResponse) toFileInfo() *storage.FileInfo {
	return &storage.FileInfo{
		Name:        m.Name,
		Path:        m.PathDisplay,
		Size:        m.Size,
		ModifiedAt:  m.ServerModified,
		ID:          m.ID,
		ContentHash: m.ContentHash,
	}
}

func (c *Client) Upload(ctx context.Context, p string, content io.Reader) error {
	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	uploadArg := map[string]any{
		"path":            c.fullPath(p),
		"mode":            "overwrite",
		"autorename":      false,
		"mute":            true,
		"strict_conflict": false,
	}
	uploadArgBytes, err := json.Marshal(uploadArg)
	if err != nil {
		return fmt.Errorf("failed to marshal upload arg: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.contentURL+"/files/upload", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Dropbox-API-Arg", string(uploadArgBytes))
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, p string) error {
	return c.rpc(ctx, "/files/delete_v2", map[string]string{"path": c.fullPath(p)}, nil)
}

func (c *Client) Exists(ctx context.Context, p string) (bool, error) {
	_, err := c.GetMetadata(ctx, p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (c *Client) GetMetadata(ctx context.Context, p string) (*storage.FileInfo, error) {
	requestBody := map[string]any{
		"path":               c.fullPath(p),
		"include_media_info": false,
		"include_deleted":    false,
	}

	var metadata metadataResponse
	if err := c.rpc(ctx, "/files/get_metadata", requestBody, &metadata); err != nil {
		return nil, err
	}
	return metadata.toFileInfo(), nil
}

// TemporaryLink returns a link valid for four hours.
func (c *Client) TemporaryLink(ctx context.Context, p string) (string, error) {
	var linkResp struct {
		Link string `json:"link"`
	}
	if err := c.rpc(ctx, "/files/get_temporary_link", map[string]string{"path": c.fullPath(p)}, &linkResp); err != nil {
		return "", err
	}
	return linkResp.Link, nil
}

// rpc performs a JSON call against the API host and decodes the reply into out.
func (c *Client) rpc(ctx context.Context, endpoint string, body any, out any) error {
	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dropbox request %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// apiError converts a failed response into an error. Dropbox answers 409 with
// a "not_found" summary for missing paths.
func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusConflict && bytes.Contains(body, []byte("not_found")) {
		return storage.ErrNotFound
	}
	return fmt.Errorf("dropbox API error (status %d): %s", resp.StatusCode, string(body))
}
