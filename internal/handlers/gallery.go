package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/naruebet/worklog-api/internal/events"
	"github.com/naruebet/worklog-api/internal/logging"
	authmw "github.com/naruebet/worklog-api/internal/middleware/auth"
	"github.com/naruebet/worklog-api/internal/models"
	"github.com/naruebet/worklog-api/internal/store"
	"github.com/naruebet/worklog-api/internal/upload"
)

const maxGalleryBatch = 10

type GalleryHandler struct {
	Store    *store.Owned[models.GalleryImage, *models.GalleryImage]
	Files    *upload.Manager
	Producer *events.Producer
}

type galleryResponse struct {
	ID           uint      `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mimeType"`
	ViewURL      string    `json:"viewUrl"`
	DownloadURL  string    `json:"downloadUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (h *GalleryHandler) view(c echo.Context, img *models.GalleryImage) galleryResponse {
	base := baseURL(c)
	return galleryResponse{
		ID:           img.ID,
		Filename:     img.Filename,
		OriginalName: img.OriginalName,
		Size:         img.Size,
		MimeType:     img.MimeType,
		ViewURL:      base + "/api/gallery/image/" + img.Filename,
		DownloadURL:  base + "/api/gallery/download/" + img.Filename,
		CreatedAt:    img.CreatedAt,
	}
}

// Upload accepts up to ten images in one multipart request, one row per
// stored file.
func (h *GalleryHandler) Upload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed upload")
	}
	files := form.File["img"]
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "please upload at least one image")
	}
	if len(files) > maxGalleryBatch {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("at most %d images per upload", maxGalleryBatch))
	}

	userID := authmw.UserID(c)
	data := make([]galleryResponse, 0, len(files))
	for _, fh := range files {
		img := &models.GalleryImage{
			UserID:       userID,
			OriginalName: fh.Filename,
			Size:         fh.Size,
			MimeType:     fh.Header.Get("Content-Type"),
		}
		if err := h.Store.Create(c.Request().Context(), img, fh); err != nil {
			return storeError(err, "image")
		}
		data = append(data, h.view(c, img))
	}

	h.publish(c, userID, "gallery_uploaded", len(data))

	return c.JSON(http.StatusCreated, echo.Map{
		"status": "success",
		"count":  len(data),
		"data":   data,
	})
}

func (h *GalleryHandler) List(c echo.Context) error {
	images, err := h.Store.ListMine(c.Request().Context(), authmw.UserID(c))
	if err != nil {
		return storeError(err, "image")
	}

	data := make([]galleryResponse, len(images))
	for i := range images {
		data[i] = h.view(c, &images[i])
	}
	return respond(c, http.StatusOK, data)
}

func (h *GalleryHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	userID := authmw.UserID(c)
	if err := h.Store.Delete(c.Request().Context(), id, userID); err != nil {
		return storeError(err, "image")
	}

	h.publish(c, userID, "gallery_deleted", 1)

	return respondMessage(c, http.StatusOK, "image deleted successfully")
}

// View serves the raw image bytes. Deliberately open to unauthenticated
// fetch so images can be embedded directly.
func (h *GalleryHandler) View(c echo.Context) error {
	path, err := h.Files.Resolve(c.Param("filename"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "image not found")
	}
	return c.File(path)
}

func (h *GalleryHandler) Download(c echo.Context) error {
	path, err := h.Files.Resolve(c.Param("filename"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "image not found")
	}
	return c.Attachment(path, filepath.Base(path))
}

func (h *GalleryHandler) publish(c echo.Context, userID uint, typ string, count int) {
	ctx := c.Request().Context()
	event := map[string]interface{}{
		"type":    typ,
		"user_id": userID,
		"count":   count,
	}
	if err := h.Producer.PublishEvent(ctx, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(ctx).Error("event publish failed", "error", err)
	}
}
