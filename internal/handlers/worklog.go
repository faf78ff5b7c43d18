package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/naruebet/worklog-api/internal/events"
	"github.com/naruebet/worklog-api/internal/logging"
	authmw "github.com/naruebet/worklog-api/internal/middleware/auth"
	"github.com/naruebet/worklog-api/internal/models"
	"github.com/naruebet/worklog-api/internal/service/search"
	"github.com/naruebet/worklog-api/internal/store"
	"github.com/naruebet/worklog-api/internal/upload"
	"github.com/naruebet/worklog-api/internal/util"
)

type WorklogHandler struct {
	Store    *store.Owned[models.Worklog, *models.Worklog]
	Files    *upload.Manager
	Producer *events.Producer

	// ES is nil when search is disabled
	ES      *elasticsearch.Client
	ESIndex string
}

type worklogResponse struct {
	models.Worklog
	ImageURL string `json:"imageUrl,omitempty"`
}

func (h *WorklogHandler) view(c echo.Context, w *models.Worklog) worklogResponse {
	resp := worklogResponse{Worklog: *w}
	if w.ImagePath != "" {
		resp.ImageURL = baseURL(c) + "/api/worklogs/image/" + w.ImagePath
	}
	return resp
}

func (h *WorklogHandler) Create(c echo.Context) error {
	form := bindWorklogForm(c)
	if err := form.Validate(); err != nil {
		return err
	}
	file, err := optionalFile(c, "img")
	if err != nil {
		return err
	}

	w := &models.Worklog{
		UserID:    authmw.UserID(c),
		WeekNo:    form.Week(),
		Date:      form.Date,
		StartTime: form.StartTime,
		EndTime:   form.EndTime,
		Content:   form.Content,
	}
	if err := h.Store.Create(c.Request().Context(), w, file); err != nil {
		return storeError(err, "worklog")
	}

	h.index(c, w)
	h.publish(c, w.UserID, "worklog_created", w.ID)

	return respond(c, http.StatusCreated, h.view(c, w))
}

func (h *WorklogHandler) List(c echo.Context) error {
	logs, err := h.Store.ListMine(c.Request().Context(), authmw.UserID(c))
	if err != nil {
		return storeError(err, "worklog")
	}

	data := make([]worklogResponse, len(logs))
	for i := range logs {
		data[i] = h.view(c, &logs[i])
	}
	return respond(c, http.StatusOK, data)
}

func (h *WorklogHandler) GetOne(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	w, err := h.Store.Get(c.Request().Context(), id, authmw.UserID(c))
	if err != nil {
		return storeError(err, "worklog")
	}
	return respond(c, http.StatusOK, h.view(c, w))
}

func (h *WorklogHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	form := bindWorklogForm(c)
	if err := form.Validate(); err != nil {
		return err
	}
	file, err := optionalFile(c, "img")
	if err != nil {
		return err
	}
	deleteImage := c.FormValue("deleteImage") == "true"

	w, err := h.Store.Update(c.Request().Context(), id, authmw.UserID(c), func(w *models.Worklog) {
		w.WeekNo = form.Week()
		w.Date = form.Date
		w.StartTime = form.StartTime
		w.EndTime = form.EndTime
		w.Content = form.Content
	}, file, deleteImage)
	if err != nil {
		return storeError(err, "worklog")
	}

	h.index(c, w)

	return respond(c, http.StatusOK, h.view(c, w))
}

func (h *WorklogHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	userID := authmw.UserID(c)
	if err := h.Store.Delete(c.Request().Context(), id, userID); err != nil {
		return storeError(err, "worklog")
	}

	h.deindex(c, id)
	h.publish(c, userID, "worklog_deleted", id)

	return c.NoContent(http.StatusNoContent)
}

// Image serves a stored worklog image. Left open to unauthenticated fetch
// so entries can embed it directly.
func (h *WorklogHandler) Image(c echo.Context) error {
	path, err := h.Files.Resolve(c.Param("filename"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "image not found")
	}
	return c.File(path)
}

// Search runs a full-text query over the caller's own entries. Answers 503
// when the service runs without Elasticsearch.
func (h *WorklogHandler) Search(c echo.Context) error {
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not available")
	}
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Calculate(page, size)

	total, logs, err := search.Worklogs(c.Request().Context(), h.ES, h.ESIndex, authmw.UserID(c), q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	data := make([]worklogResponse, len(logs))
	for i := range logs {
		data[i] = h.view(c, &logs[i])
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "total": total, "data": data})
}

func (h *WorklogHandler) index(c echo.Context, w *models.Worklog) {
	if h.ES == nil {
		return
	}
	ctx := c.Request().Context()
	if err := search.IndexWorklog(ctx, h.ES, h.ESIndex, w); err != nil {
		logging.FromContext(ctx).Error("worklog indexing failed", "worklog_id", w.ID, "error", err)
	}
}

func (h *WorklogHandler) deindex(c echo.Context, id uint) {
	if h.ES == nil {
		return
	}
	ctx := c.Request().Context()
	if err := search.DeleteWorklog(ctx, h.ES, h.ESIndex, id); err != nil {
		logging.FromContext(ctx).Error("worklog deindexing failed", "worklog_id", id, "error", err)
	}
}

func (h *WorklogHandler) publish(c echo.Context, userID uint, typ string, worklogID uint) {
	ctx := c.Request().Context()
	event := map[string]interface{}{
		"type":       typ,
		"user_id":    userID,
		"worklog_id": worklogID,
	}
	if err := h.Producer.PublishEvent(ctx, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(ctx).Error("event publish failed", "error", err)
	}
}
