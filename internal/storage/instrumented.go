package storage

import (
	"context"
	"io"
)

// Observer is notified after every storage operation.
type Observer func(operation string, err error)

// Instrumented wraps a Client and reports each call to an Observer.
type Instrumented struct {
	next    Client
	observe Observer
}

// NewInstrumented wraps next so that observe sees every operation.
func NewInstrumented(next Client, observe Observer) *Instrumented {
	return &Instrumented{next: next, observe: observe}
}

func (i *Instrumented) Upload(ctx context.Context, path string, content io.Reader) error {
	err := i.next.Upload(ctx, path, content)
	i.observe("upload", err)
	return err
}

func (i *Instrumented) Delete(ctx context.Context, path string) error {
	err := i.next.Delete(ctx, path)
	i.observe("delete", err)
	return err
}

func (i *Instrumented) Exists(ctx context.Context, path string) (bool, error) {
	ok, err := i.next.Exists(ctx, path)
	i.observe("exists", err)
	return ok, err
}

func (i *Instrumented) GetMetadata(ctx context.Context, path string) (*FileInfo, error) {
	info, err := i.next.GetMetadata(ctx, path)
	i.observe("get_metadata", err)
	return info, err
}

func (i *Instrumented) TemporaryLink(ctx context.Context, path string) (string, error) {
	link, err := i.next.TemporaryLink(ctx, path)
	i.observe("temporary_link", err)
	return link, err
}
