package upload

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	m, err := NewManager(t.TempDir(), "worklog", nil)
	require.NoError(t, err)
	return m
}

func fileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="img"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	_, fh, err := req.FormFile("img")
	require.NoError(t, err)
	return fh
}

func TestAcceptStoresFile(t *testing.T) {
	m := newTestManager(t)

	name, err := m.Accept(fileHeader(t, "photo.JPG", "image/jpeg", []byte("jpeg-bytes")))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(name, "worklog-"))
	require.True(t, strings.HasSuffix(name, ".jpg"))
	require.NotContains(t, name, "photo")

	data, err := os.ReadFile(filepath.Join(m.Root, name))
	require.NoError(t, err)
	require.Equal(t, []byte("jpeg-bytes"), data)
}

func TestAcceptGeneratesUniqueNames(t *testing.T) {
	m := newTestManager(t)

	a, err := m.Accept(fileHeader(t, "x.png", "image/png", []byte("one")))
	require.NoError(t, err)
	b, err := m.Accept(fileHeader(t, "x.png", "image/png", []byte("two")))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestAcceptRejectsNonImage(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Accept(fileHeader(t, "notes.txt", "text/plain", []byte("hello")))
	require.ErrorIs(t, err, ErrUnsupportedMedia)

	entries, err := os.ReadDir(m.Root)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestAcceptRejectsTooLarge(t *testing.T) {
	m := newTestManager(t)

	big := bytes.Repeat([]byte("a"), MaxFileSize+1)
	_, err := m.Accept(fileHeader(t, "big.png", "image/png", big))
	require.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(m.Root)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestResolve(t *testing.T) {
	m := newTestManager(t)

	name, err := m.Accept(fileHeader(t, "p.png", "image/png", []byte("png")))
	require.NoError(t, err)

	path, err := m.Resolve(name)
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(path))

	_, err = m.Resolve("no-such-file.png")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolveStripsTraversal(t *testing.T) {
	m := newTestManager(t)

	outside := filepath.Join(filepath.Dir(m.Root), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o600))

	for _, attempt := range []string{
		"../secret.txt",
		"..%2Fsecret.txt",
		"/etc/passwd",
		"../../etc/passwd",
		".",
		"..",
	} {
		_, err := m.Resolve(attempt)
		require.Error(t, err, "traversal attempt %q", attempt)
	}
}

func TestResolveRejectsDirectories(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, os.Mkdir(filepath.Join(m.Root, "subdir"), 0o755))
	_, err := m.Resolve("subdir")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveIdempotent(t *testing.T) {
	m := newTestManager(t)

	name, err := m.Accept(fileHeader(t, "p.png", "image/png", []byte("png")))
	require.NoError(t, err)

	m.Remove(name)
	_, err = m.Resolve(name)
	require.ErrorIs(t, err, ErrNotFound)

	// absence is not an error
	m.Remove(name)
	m.Remove("never-existed.png")
	m.Remove("")
}
