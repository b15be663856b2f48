package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pdfBody = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

func TestSaveSniffsContent(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, 1024)
	require.NoError(t, err)

	obj, err := store.Save(context.Background(), bytes.NewReader(pdfBody))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(obj.Path, ".pdf"))
	assert.Equal(t, int64(len(pdfBody)), obj.Size)
	assert.Equal(t, "application/pdf", obj.ContentType)

	stored, err := os.ReadFile(filepath.Join(dir, obj.Path))
	require.NoError(t, err)
	assert.Equal(t, pdfBody, stored)
}

func TestSaveRejectsUnsupportedContent(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), 1024)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), strings.NewReader("#!/bin/sh\necho hi\n"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = store.Save(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestSaveEnforcesSizeLimit(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, 64)
	require.NoError(t, err)

	big := append(append([]byte{}, pdfBody...), bytes.Repeat([]byte("x"), 128)...)
	_, err = store.Save(context.Background(), bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, 0)
	require.NoError(t, err)
	obj, err := store.Save(context.Background(), bytes.NewReader(pdfBody))
	require.NoError(t, err)

	require.NoError(t, store.Remove(obj.Path))
	require.NoError(t, store.Remove(obj.Path))
	assert.Error(t, store.Remove("../etc/passwd"))
}
