//go:build unit

package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	key := NewImageKey("Cover.PNG")

	if !strings.HasPrefix(key, "course_images/") || !strings.HasSuffix(key, ".png") {
		t.Errorf("unexpected key %q", key)
	}

	if err := store.Save(ctx, key, strings.NewReader("png-bytes"), 9, "image/png"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
	if string(got) != "png-bytes" {
		t.Errorf("unexpected content %q", got)
	}

	url, _ := store.URL(ctx, key)
	if url != "/media/"+key {
		t.Errorf("unexpected url %q", url)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Errorf("deleting a missing file should succeed, got %v", err)
	}
}

func TestFileStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"../secret", "/etc/passwd", ""} {
		if err := store.Save(context.Background(), key, strings.NewReader("x"), 1, "image/png"); err == nil {
			t.Errorf("expected key %q to be rejected", key)
		}
	}
}

func TestNewFileStore_RequiresPath(t *testing.T) {
	if _, err := NewFileStore("  "); err == nil {
		t.Error("expected an error for an empty base path")
	}
}
