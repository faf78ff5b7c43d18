package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/naruebet/worklog-api/internal/events"
	"github.com/naruebet/worklog-api/internal/hash"
	"github.com/naruebet/worklog-api/internal/logging"
	authmw "github.com/naruebet/worklog-api/internal/middleware/auth"
	"github.com/naruebet/worklog-api/internal/models"
	"github.com/naruebet/worklog-api/internal/session"
	"github.com/naruebet/worklog-api/internal/tokens"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *tokens.Service
	Producer *events.Producer

	// RotateRefresh issues a fresh refresh token on every refresh call
	// instead of reusing the original until its 24h expiry.
	RotateRefresh bool
}

type userSummary struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

func summarize(u *models.User) userSummary {
	return userSummary{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	var existing models.User
	err := h.DB.WithContext(c.Request().Context()).
		Where("username = ? OR email = ?", req.Username, req.Email).
		First(&existing).Error
	if err == nil {
		return echo.NewHTTPError(http.StatusConflict, "username or email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "storage failure")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not hash password")
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: pwHash,
		Firstname:    req.Firstname,
		Lastname:     req.Lastname,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "storage failure")
	}

	h.publish(c, user.ID, map[string]interface{}{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return respond(c, http.StatusCreated, summarize(&user))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	var user models.User
	err := h.DB.WithContext(c.Request().Context()).
		Where("username = ? OR email = ?", req.Identifier, req.Identifier).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid login credentials")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "storage failure")
	}

	match, err := hash.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("stored hash unreadable", "user_id", user.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "storage failure")
	}
	if !match {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid login credentials")
	}

	access, refresh, err := h.Tokens.IssuePair(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create session")
	}
	session.Emit(c, access, refresh)

	h.publish(c, user.ID, map[string]interface{}{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return respond(c, http.StatusOK, summarize(&user))
}

// Refresh exchanges a valid refresh cookie for a new access cookie. Any
// verification failure clears both cookies so the client re-authenticates
// instead of retrying a dead token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw, ok := session.ReadRefresh(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	userID, err := h.Tokens.Verify(raw)
	if err != nil {
		session.Clear(c)
		return echo.NewHTTPError(http.StatusUnauthorized, "session expired, please login again")
	}

	// the subject must still exist; tokens outlive nothing else server-side
	var user models.User
	if err := h.DB.WithContext(c.Request().Context()).First(&user, userID).Error; err != nil {
		session.Clear(c)
		return echo.NewHTTPError(http.StatusUnauthorized, "session expired, please login again")
	}

	access, err := h.Tokens.IssueAccess(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create session")
	}
	session.EmitAccess(c, access)

	if h.RotateRefresh {
		refresh, err := h.Tokens.IssueRefresh(user.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "could not create session")
		}
		session.EmitRefresh(c, refresh)
	}

	return respondMessage(c, http.StatusOK, "token refreshed")
}

func (h *AuthHandler) Logout(c echo.Context) error {
	session.Clear(c)
	return respondMessage(c, http.StatusOK, "logged out successfully")
}

func (h *AuthHandler) Me(c echo.Context) error {
	var user models.User
	if err := h.DB.WithContext(c.Request().Context()).First(&user, authmw.UserID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "storage failure")
	}
	return respond(c, http.StatusOK, user)
}

func (h *AuthHandler) publish(c echo.Context, userID uint, event map[string]interface{}) {
	ctx := c.Request().Context()
	if err := h.Producer.PublishEvent(ctx, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(ctx).Error("event publish failed", "error", err)
	}
}
