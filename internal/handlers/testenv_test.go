package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/naruebet/worklog-api/internal/hash"
	"github.com/naruebet/worklog-api/internal/models"
	"github.com/naruebet/worklog-api/internal/store"
	"github.com/naruebet/worklog-api/internal/tokens"
	"github.com/naruebet/worklog-api/internal/upload"
)

type testEnv struct {
	DB      *gorm.DB
	Tokens  *tokens.Service
	Files   *upload.Manager
	Auth    *AuthHandler
	Worklog *WorklogHandler
	Gallery *GalleryHandler
	Echo    *echo.Echo
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Worklog{}, &models.GalleryImage{}))

	files, err := upload.NewManager(t.TempDir(), "worklog", nil)
	require.NoError(t, err)

	tokenSvc := tokens.New([]byte("test-secret"))

	return &testEnv{
		DB:     db,
		Tokens: tokenSvc,
		Files:  files,
		Auth:   &AuthHandler{DB: db, Tokens: tokenSvc},
		Worklog: &WorklogHandler{
			Store: &store.Owned[models.Worklog, *models.Worklog]{
				DB: db, Files: files, Order: "date DESC, start_time DESC",
			},
			Files: files,
		},
		Gallery: &GalleryHandler{
			Store: &store.Owned[models.GalleryImage, *models.GalleryImage]{
				DB: db, Files: files, Order: "created_at DESC",
			},
			Files: files,
		},
		Echo: echo.New(),
	}
}

func (env *testEnv) createUser(t *testing.T, username, email, password string) *models.User {
	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Firstname:    "Test",
		Lastname:     "User",
	}
	require.NoError(t, env.DB.Create(user).Error)
	return user
}

func (env *testEnv) jsonRequest(method, path string, payload interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return rec, env.Echo.NewContext(req, rec)
}

// asUser builds an echo context carrying a verified caller identity, the
// state the auth gate leaves behind.
func (env *testEnv) asUser(userID uint, method, path string, body io.Reader, contentType string) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := env.Echo.NewContext(req, rec)
	c.Set("userID", userID)
	return rec, c
}

type multipartBody struct {
	buf    bytes.Buffer
	writer *multipart.Writer
}

func newMultipart() *multipartBody {
	m := &multipartBody{}
	m.writer = multipart.NewWriter(&m.buf)
	return m
}

func (m *multipartBody) field(t *testing.T, name, value string) *multipartBody {
	require.NoError(t, m.writer.WriteField(name, value))
	return m
}

func (m *multipartBody) image(t *testing.T, field, filename string, content []byte) *multipartBody {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", "image/jpeg")
	part, err := m.writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	return m
}

func (m *multipartBody) done(t *testing.T) (io.Reader, string) {
	require.NoError(t, m.writer.Close())
	return &m.buf, m.writer.FormDataContentType()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, ck := range cookies {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
