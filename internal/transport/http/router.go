package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/naruebet/worklog-api/internal/handlers"
	authmw "github.com/naruebet/worklog-api/internal/middleware/auth"
)

type Deps struct {
	Auth    *handlers.AuthHandler
	Worklog *handlers.WorklogHandler
	Gallery *handlers.GalleryHandler
	Gate    *authmw.Gate
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "Worklog API Ready") })
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/me", d.Auth.Me, d.Gate.RequireLogin)

	// image endpoints stay public so records can embed them directly
	api.GET("/worklogs/image/:filename", d.Worklog.Image)
	api.GET("/gallery/image/:filename", d.Gallery.View)

	worklogs := api.Group("/worklogs", d.Gate.RequireLogin)
	worklogs.POST("", d.Worklog.Create)
	worklogs.GET("", d.Worklog.List)
	worklogs.GET("/search", d.Worklog.Search)
	worklogs.GET("/:id", d.Worklog.GetOne)
	worklogs.PUT("/:id", d.Worklog.Update)
	worklogs.DELETE("/:id", d.Worklog.Delete)

	gallery := api.Group("/gallery", d.Gate.RequireLogin)
	gallery.POST("/upload", d.Gallery.Upload)
	gallery.GET("", d.Gallery.List)
	gallery.GET("/download/:filename", d.Gallery.Download)
	gallery.DELETE("/:id", d.Gallery.Delete)
}
