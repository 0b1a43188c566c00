package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/files")
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	return store
}

func TestLocalStoreUploadAndURL(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	url, err := store.Upload(ctx, "profileImages/42", strings.NewReader("image-bytes"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if url != "http://localhost:8080/files/profileImages/42" {
		t.Errorf("Upload() url = %q", url)
	}
	if url != store.URL("profileImages/42") {
		t.Errorf("URL() = %q, want %q", store.URL("profileImages/42"), url)
	}

	data, err := os.ReadFile(filepath.Join(store.Root(), "profileImages", "42"))
	if err != nil {
		t.Fatalf("reading stored blob: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("stored blob = %q, want %q", data, "image-bytes")
	}
}

func TestLocalStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Upload(ctx, "userFiles/7/doc.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if err := store.Delete(ctx, "userFiles/7/doc.txt"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "userFiles/7/doc.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() on missing blob = %v, want ErrNotFound", err)
	}
}

func TestLocalStoreList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	files := []string{"userFiles/7/a.txt", "userFiles/7/sub/b.txt", "userFiles/8/c.txt"}
	for _, key := range files {
		if _, err := store.Upload(ctx, key, strings.NewReader("x")); err != nil {
			t.Fatalf("Upload(%q) error = %v", key, err)
		}
	}

	keys, err := store.List(ctx, "userFiles/7/")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("List() returned %d keys, want 2: %v", len(keys), keys)
	}
	for _, key := range keys {
		if !strings.HasPrefix(key, "userFiles/7/") {
			t.Errorf("List() returned key outside prefix: %q", key)
		}
	}

	// missing prefix is not an error, just empty
	keys, err = store.List(ctx, "userFiles/999/")
	if err != nil {
		t.Fatalf("List() on missing prefix error = %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("List() on missing prefix = %v, want empty", keys)
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Upload(ctx, "../escape", strings.NewReader("x")); err == nil {
		t.Error("Upload() accepted path traversal key")
	}
	if err := store.Delete(ctx, "/etc/passwd"); err == nil {
		t.Error("Delete() accepted absolute key")
	}
}
