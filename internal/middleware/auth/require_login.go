package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/naruebet/worklog-api/internal/session"
	"github.com/naruebet/worklog-api/internal/tokens"
)

const userIDKey = "userID"

// Gate is the authentication boundary in front of every owned-resource
// route. It only inspects the access cookie; refresh is a separate,
// client-invoked endpoint and is never attempted here.
type Gate struct {
	Tokens *tokens.Service
}

func (g *Gate) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := session.ReadAccess(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "you are not logged in")
		}

		userID, err := g.Tokens.Verify(raw)
		if err != nil {
			// force the client back through login instead of letting it
			// loop on a dead token
			session.Clear(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "token invalid or expired")
		}

		c.Set(userIDKey, userID)
		return next(c)
	}
}

// UserID returns the verified caller identity set by RequireLogin.
func UserID(c echo.Context) uint {
	id, _ := c.Get(userIDKey).(uint)
	return id
}
