package upload

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxFileSize is the upload ceiling, 5 MiB.
const MaxFileSize = 5 << 20

var (
	ErrTooLarge         = errors.New("file exceeds the size limit")
	ErrUnsupportedMedia = errors.New("not an image")
	ErrNotFound         = errors.New("file not found")
)

// Manager owns the flat upload directory. Stored names are generated, so
// concurrent writers cannot collide and the caller-supplied filename never
// reaches the filesystem (only its extension survives).
type Manager struct {
	Root   string
	Prefix string
	Log    *slog.Logger
}

func NewManager(root, prefix string, log *slog.Logger) (*Manager, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{Root: root, Prefix: prefix, Log: log}, nil
}

// Accept validates and stores one uploaded file, returning the generated
// artifact name.
func (m *Manager) Accept(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxFileSize {
		return "", ErrTooLarge
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		return "", ErrUnsupportedMedia
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := m.newName(fh.Filename)
	dst, err := os.Create(filepath.Join(m.Root, name))
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}

	// re-check the size while copying; fh.Size is client-declared
	n, err := io.Copy(dst, io.LimitReader(src, MaxFileSize+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		m.Remove(name)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if n > MaxFileSize {
		m.Remove(name)
		return "", ErrTooLarge
	}

	return name, nil
}

func (m *Manager) newName(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s-%d-%s%s", m.Prefix, time.Now().UnixMilli(), suffix, ext)
}

// Resolve maps an artifact name to its absolute path. Directory components
// are stripped from the requested name first, so a traversal attempt cannot
// escape the root.
func (m *Manager) Resolve(name string) (string, error) {
	safe := filepath.Base(filepath.Clean(name))
	if safe == "." || safe == ".." || safe == string(filepath.Separator) {
		return "", ErrNotFound
	}

	path := filepath.Join(m.Root, safe)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return filepath.Abs(path)
}

// Remove deletes an artifact best-effort. A missing file is not an error and
// I/O failures are logged, never propagated: the record row stays the source
// of truth and an undeletable file is a leak to reconcile out of band.
func (m *Manager) Remove(name string) {
	if name == "" {
		return
	}
	path := filepath.Join(m.Root, filepath.Base(name))
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		m.Log.Error("artifact cleanup failed", "file", name, "error", err)
	}
}
