package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/naruebet/worklog-api/internal/tokens"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// newCookie builds the transport cookie for a token. SameSite=None together
// with Secure is the deployed choice: the SPA lives on another origin, so
// every environment has to be served over HTTPS.
func newCookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Expires:  time.Now().Add(maxAge),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

// Emit sets both session cookies for a freshly issued token pair.
func Emit(c echo.Context, access, refresh string) {
	c.SetCookie(newCookie(AccessCookie, access, tokens.AccessTTL))
	c.SetCookie(newCookie(RefreshCookie, refresh, tokens.RefreshTTL))
}

// EmitAccess replaces only the access cookie, used on refresh.
func EmitAccess(c echo.Context, access string) {
	c.SetCookie(newCookie(AccessCookie, access, tokens.AccessTTL))
}

// EmitRefresh replaces only the refresh cookie, used when rotation is on.
func EmitRefresh(c echo.Context, refresh string) {
	c.SetCookie(newCookie(RefreshCookie, refresh, tokens.RefreshTTL))
}

// Clear removes both cookies, on logout and on failed refresh.
func Clear(c echo.Context) {
	c.SetCookie(newCookie(AccessCookie, "", -time.Hour))
	c.SetCookie(newCookie(RefreshCookie, "", -time.Hour))
}

// ReadAccess extracts the raw access token; validation is the token
// service's job.
func ReadAccess(c echo.Context) (string, bool) {
	return read(c, AccessCookie)
}

func ReadRefresh(c echo.Context) (string, bool) {
	return read(c, RefreshCookie)
}

func read(c echo.Context, name string) (string, bool) {
	ck, err := c.Cookie(name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}
