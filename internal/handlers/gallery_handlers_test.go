package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/naruebet/worklog-api/internal/models"
)

func galleryUpload(t *testing.T, names ...string) *multipartBody {
	m := newMultipart()
	for _, name := range names {
		m.image(t, "img", name, []byte("img-"+name))
	}
	return m
}

func TestGalleryUpload(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@x.com", "Passw0rd!")

	body, ct := galleryUpload(t, "a.jpg", "b.jpg", "c.jpg").done(t)
	rec, c := env.asUser(user.ID, http.MethodPost, "/api/gallery/upload", body, ct)
	require.NoError(t, env.Gallery.Upload(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeBody(t, rec)
	require.Equal(t, float64(3), resp["count"])

	var images []models.GalleryImage
	require.NoError(t, env.DB.Find(&images).Error)
	require.Len(t, images, 3)
	for _, img := range images {
		require.Equal(t, user.ID, img.UserID)
		require.NotEmpty(t, img.Filename)
		require.NotEqual(t, img.OriginalName, img.Filename)
		_, err := env.Files.Resolve(img.Filename)
		require.NoError(t, err)
	}
}

func TestGalleryUploadLimits(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@x.com", "Passw0rd!")

	// empty batch
	body, ct := newMultipart().field(t, "unused", "x").done(t)
	_, c := env.asUser(user.ID, http.MethodPost, "/api/gallery/upload", body, ct)
	err := env.Gallery.Upload(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, he.Code)

	// over the batch ceiling
	names := make([]string, maxGalleryBatch+1)
	for i := range names {
		names[i] = fmt.Sprintf("img-%d.jpg", i)
	}
	body, ct = galleryUpload(t, names...).done(t)
	_, c = env.asUser(user.ID, http.MethodPost, "/api/gallery/upload", body, ct)
	err = env.Gallery.Upload(c)
	he, ok = err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGalleryListOwnerScoped(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", "alice@x.com", "Passw0rd!")
	bob := env.createUser(t, "bob", "bob@x.com", "Passw0rd!")

	body, ct := galleryUpload(t, "mine.jpg").done(t)
	_, c := env.asUser(alice.ID, http.MethodPost, "/api/gallery/upload", body, ct)
	require.NoError(t, env.Gallery.Upload(c))

	body, ct = galleryUpload(t, "theirs.jpg").done(t)
	_, c = env.asUser(bob.ID, http.MethodPost, "/api/gallery/upload", body, ct)
	require.NoError(t, env.Gallery.Upload(c))

	rec, c := env.asUser(alice.ID, http.MethodGet, "/api/gallery", nil, "")
	require.NoError(t, env.Gallery.List(c))

	resp := decodeBody(t, rec)
	data := resp["data"].([]interface{})
	require.Len(t, data, 1)
	item := data[0].(map[string]interface{})
	require.Equal(t, "mine.jpg", item["originalName"])
	require.NotEmpty(t, item["viewUrl"])
	require.NotEmpty(t, item["downloadUrl"])
}

func TestGalleryDeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@x.com", "Passw0rd!")

	body, ct := galleryUpload(t, "pic.jpg").done(t)
	_, c := env.asUser(user.ID, http.MethodPost, "/api/gallery/upload", body, ct)
	require.NoError(t, env.Gallery.Upload(c))

	var img models.GalleryImage
	require.NoError(t, env.DB.First(&img).Error)

	rec, c := env.asUser(user.ID, http.MethodDelete, "/api/gallery/1", nil, "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.Gallery.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.GalleryImage{}).Count(&count).Error)
	require.Zero(t, count)
	_, err := env.Files.Resolve(img.Filename)
	require.Error(t, err)
}

func TestGalleryDeleteOwnership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", "alice@x.com", "Passw0rd!")
	bob := env.createUser(t, "bob", "bob@x.com", "Passw0rd!")

	body, ct := galleryUpload(t, "pic.jpg").done(t)
	_, c := env.asUser(alice.ID, http.MethodPost, "/api/gallery/upload", body, ct)
	require.NoError(t, env.Gallery.Upload(c))

	_, c = env.asUser(bob.ID, http.MethodDelete, "/api/gallery/1", nil, "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	err := env.Gallery.Delete(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestGalleryViewPublic(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@x.com", "Passw0rd!")

	body, ct := galleryUpload(t, "pic.jpg").done(t)
	_, c := env.asUser(user.ID, http.MethodPost, "/api/gallery/upload", body, ct)
	require.NoError(t, env.Gallery.Upload(c))

	var img models.GalleryImage
	require.NoError(t, env.DB.First(&img).Error)

	// no user identity on the context: view stays open
	rec, c := env.asUser(0, http.MethodGet, "/api/gallery/image/x", nil, "")
	c.SetParamNames("filename")
	c.SetParamValues(img.Filename)
	require.NoError(t, env.Gallery.View(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "img-pic.jpg", rec.Body.String())

	_, c = env.asUser(0, http.MethodGet, "/api/gallery/image/x", nil, "")
	c.SetParamNames("filename")
	c.SetParamValues("missing.jpg")
	err := env.Gallery.View(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestGalleryDownload(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@x.com", "Passw0rd!")

	body, ct := galleryUpload(t, "pic.jpg").done(t)
	_, c := env.asUser(user.ID, http.MethodPost, "/api/gallery/upload", body, ct)
	require.NoError(t, env.Gallery.Upload(c))

	var img models.GalleryImage
	require.NoError(t, env.DB.First(&img).Error)

	rec, c := env.asUser(user.ID, http.MethodGet, "/api/gallery/download/x", nil, "")
	c.SetParamNames("filename")
	c.SetParamValues(img.Filename)
	require.NoError(t, env.Gallery.Download(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment")
}
