// Package storage keeps uploaded purchase-order documents on local disk.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/contracthub/contracthub/internal/platform/httpx"
)

const sniffLen = 3072

var (
	ErrUnsupportedType = httpx.Invalid("file", "File must be a PDF, PNG or JPEG document")
	ErrTooLarge        = httpx.Invalid("file", "File exceeds the maximum upload size")
	ErrEmpty           = httpx.Invalid("file", "File is required")
)

// allowedTypes maps accepted content types onto the stored file extension.
var allowedTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
}

// Object describes a stored file.
type Object struct {
	Path        string
	Size        int64
	ContentType string
}

// Store saves and removes uploaded documents.
type Store interface {
	Save(ctx context.Context, r io.Reader) (Object, error)
	Remove(path string) error
}

// LocalStore writes files beneath a single directory using random names.
type LocalStore struct {
	dir      string
	maxBytes int64
}

// NewLocalStore creates dir when missing.
func NewLocalStore(dir string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, maxBytes: maxBytes}, nil
}

// Save sniffs the content type from the leading bytes, never trusting the
// client supplied name or header, then streams the file to disk. The returned
// path is relative to the store directory.
func (s *LocalStore) Save(ctx context.Context, r io.Reader) (Object, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Object{}, fmt.Errorf("storage: read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return Object{}, ErrEmpty
	}

	detected := mimetype.Detect(head)
	ext, ok := allowedTypes[baseType(detected.String())]
	if !ok {
		return Object{}, ErrUnsupportedType
	}

	name := uuid.NewString() + ext
	full := filepath.Join(s.dir, name)
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return Object{}, fmt.Errorf("storage: create file: %w", err)
	}

	src := io.MultiReader(bytes.NewReader(head), r)
	if s.maxBytes > 0 {
		src = io.LimitReader(src, s.maxBytes+1)
	}
	written, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		_ = os.Remove(full)
		return Object{}, fmt.Errorf("storage: write file: %w", copyErr)
	case closeErr != nil:
		_ = os.Remove(full)
		return Object{}, fmt.Errorf("storage: close file: %w", closeErr)
	case s.maxBytes > 0 && written > s.maxBytes:
		_ = os.Remove(full)
		return Object{}, ErrTooLarge
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(full)
		return Object{}, err
	}
	return Object{Path: name, Size: written, ContentType: baseType(detected.String())}, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *LocalStore) Remove(path string) error {
	clean := filepath.Base(path)
	if clean != path || strings.HasPrefix(clean, ".") {
		return fmt.Errorf("storage: refusing path %q", path)
	}
	if err := os.Remove(filepath.Join(s.dir, clean)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: remove: %w", err)
	}
	return nil
}

func baseType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(contentType)
}
