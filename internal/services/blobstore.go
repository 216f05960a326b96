package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// LocalBlobStore writes images into a directory that the server exposes
// under a public URL prefix.
type LocalBlobStore struct {
	root    string
	baseURL string
}

func NewLocalBlobStore(root, baseURL string) (*LocalBlobStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("local blob root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, "tmp"), 0o755); err != nil {
		return nil, err
	}
	return &LocalBlobStore{root: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root is the directory blobs are written to.
func (s *LocalBlobStore) Root() string {
	return s.root
}

// Put writes data to a temp file and renames it into place so readers
// never observe a partial image.
func (s *LocalBlobStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Join(s.root, "tmp"), "put-*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", err
	}

	key := uniqueBlobName(name)
	if err := os.Rename(tmpPath, filepath.Join(s.root, key)); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}

	return s.baseURL + "/" + key, nil
}

// Byte caps keep names well under the 255-byte limit of common filesystems
// and object stores, whatever the script of the uploaded name.
const (
	maxBlobStemBytes = 100
	maxBlobExtBytes  = 16
)

// uniqueBlobName keeps a sanitized form of the uploaded name and appends a
// random suffix before the extension, e.g. "sunset-3f9c2a1b.jpg".
func uniqueBlobName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	stem = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r), r == '-', r == '_':
			return r
		case unicode.IsSpace(r), r == '.':
			return '-'
		default:
			return -1
		}
	}, stem)
	stem = strings.Trim(stem, "-")
	if stem == "" {
		stem = "photo"
	}
	stem = truncateBytes(stem, maxBlobStemBytes)

	ext = strings.Map(func(r rune) rune {
		if r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, ext)
	ext = truncateBytes(ext, maxBlobExtBytes)
	if ext == "." {
		ext = ""
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return stem + "-" + suffix + ext
}

// truncateBytes cuts s to at most n bytes without splitting a character.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
