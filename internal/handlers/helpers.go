package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/naruebet/worklog-api/internal/store"
	"github.com/naruebet/worklog-api/internal/upload"
)

func respond(c echo.Context, code int, data interface{}) error {
	return c.JSON(code, echo.Map{"status": "success", "data": data})
}

func respondMessage(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"status": "success", "message": msg})
}

// optionalFile reads a multipart file field, treating absence as nil rather
// than an error.
func optionalFile(c echo.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "malformed upload")
	}
	return fh, nil
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

// storeError maps store and upload failures to HTTP errors. ErrNotOwner is
// deliberately answered as 404 so a caller cannot probe for the existence
// of another user's records.
func storeError(err error, what string) error {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrNotOwner):
		return echo.NewHTTPError(http.StatusNotFound, what+" not found")
	case errors.Is(err, upload.ErrTooLarge):
		return echo.NewHTTPError(http.StatusBadRequest, "file exceeds the 5 MB limit")
	case errors.Is(err, upload.ErrUnsupportedMedia):
		return echo.NewHTTPError(http.StatusBadRequest, "not an image! please upload only images")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "storage failure")
	}
}

func baseURL(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host
}
