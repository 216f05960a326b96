package services

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestUniqueBlobName(t *testing.T) {
	tests := []struct {
		in      string
		pattern string
	}{
		{in: "sunset.jpg", pattern: `^sunset-[0-9a-f]{12}\.jpg$`},
		{in: "My Trip.JPEG", pattern: `^My-Trip-[0-9a-f]{12}\.jpeg$`},
		{in: "../../etc/passwd", pattern: `^passwd-[0-9a-f]{12}$`},
		{in: `C:\photos\beach.png`, pattern: `^beach-[0-9a-f]{12}\.png$`},
		{in: "", pattern: `^photo-[0-9a-f]{12}$`},
		{in: "???.webp", pattern: `^photo-[0-9a-f]{12}\.webp$`},
		{in: strings.Repeat("日", 120) + ".jpg", pattern: `^日{33}-[0-9a-f]{12}\.jpg$`},
		{in: strings.Repeat("é", 51) + ".png", pattern: `^é{50}-[0-9a-f]{12}\.png$`},
		{in: "a." + strings.Repeat("x", 300), pattern: `^a-[0-9a-f]{12}\.x{15}$`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := uniqueBlobName(tt.in)
			if !regexp.MustCompile(tt.pattern).MatchString(got) {
				t.Errorf("uniqueBlobName(%q) = %q, want match %s", tt.in, got, tt.pattern)
			}
			if len(got) > 255 || !utf8.ValidString(got) {
				t.Errorf("uniqueBlobName(%q) = %q is not a valid name of at most 255 bytes", tt.in, got)
			}
		})
	}

	if uniqueBlobName("a.jpg") == uniqueBlobName("a.jpg") {
		t.Error("expected distinct names for the same upload name")
	}
}

func TestLocalBlobStorePut(t *testing.T) {
	store, err := NewLocalBlobStore(t.TempDir(), "/blobs/")
	if err != nil {
		t.Fatalf("NewLocalBlobStore: %v", err)
	}

	data := []byte("jpeg bytes")
	first, err := store.Put(context.Background(), "sunset.jpg", "image/jpeg", data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	second, err := store.Put(context.Background(), "sunset.jpg", "image/jpeg", data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if first == second {
		t.Fatalf("expected unique urls, both %q", first)
	}
	if !strings.HasPrefix(first, "/blobs/sunset-") {
		t.Fatalf("unexpected url %q", first)
	}

	got, err := os.ReadFile(filepath.Join(store.Root(), strings.TrimPrefix(first, "/blobs/")))
	if err != nil {
		t.Fatalf("read stored blob: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("stored bytes = %q", got)
	}

	leftovers, _ := os.ReadDir(filepath.Join(store.Root(), "tmp"))
	if len(leftovers) != 0 {
		t.Fatalf("expected tmp dir to be empty, found %d entries", len(leftovers))
	}
}

func TestLocalBlobStoreCanceledContext(t *testing.T) {
	store, err := NewLocalBlobStore(t.TempDir(), "/blobs")
	if err != nil {
		t.Fatalf("NewLocalBlobStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Put(ctx, "a.jpg", "image/jpeg", []byte("x")); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestNewLocalBlobStoreRequiresRoot(t *testing.T) {
	if _, err := NewLocalBlobStore("  ", "/blobs"); err == nil {
		t.Fatal("expected error for blank root")
	}
}
