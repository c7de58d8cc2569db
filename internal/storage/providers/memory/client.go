// Package memory provides an in-process storage.Client for development and tests.
package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/mrlokans/bookshare/internal/storage"
)

type object struct {
	data       []byte
	modifiedAt time.Time
}

// Client keeps uploaded files in memory.
type Client struct {
	mu      sync.RWMutex
	objects map[string]object
	baseURL string
}

// NewClient creates an empty store. Temporary links are built from baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		objects: make(map[string]object),
		baseURL: baseURL,
	}
}

func (c *Client) Upload(ctx context.Context, p string, content io.Reader) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	c.mu.Lock()
	c.objects[p] = object{data: data, modifiedAt: time.Now()}
	c.mu.Unlock()
	return nil
}

func (c *Client) Delete(ctx context.Context, p string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.objects[p]; !ok {
		return storage.ErrNotFound
	}
	delete(c.objects, p)
	return nil
}

func (c *Client) Exists(ctx context.Context, p string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.objects[p]
	return ok, nil
}

func (c *Client) GetMetadata(ctx context.Context, p string) (*storage.FileInfo, error) {
	c.mu.RLock()
	obj, ok := c.objects[p]
	c.mu.RUnlock()
	if !ok {
		return nil, storage.ErrNotFound
	}

	sum := sha256.Sum256(obj.data)
	return &storage.FileInfo{
		Name:        path.Base(p),
		Path:        p,
		Size:        int64(len(obj.data)),
		ModifiedAt:  obj.modifiedAt,
		ID:          p,
		ContentHash: hex.EncodeToString(sum[:]),
	}, nil
}

func (c *Client) TemporaryLink(ctx context.Context, p string) (string, error) {
	if ok, _ := c.Exists(ctx, p); !ok {
		return "", storage.ErrNotFound
	}
	return c.baseURL + "/files/" + (&url.URL{Path: p}).EscapedPath(), nil
}

// Content returns a copy of the stored bytes. Used by tests.
func (c *Client) Content(p string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	obj, ok := c.objects[p]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), obj.data...), true
}

// Len returns the number of stored files.
func (c *Client) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.objects)
}
