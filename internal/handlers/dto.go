package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/labstack/echo/v4"
)

const passwordSymbols = "!@#$%^&*"

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

func (r *RegisterRequest) Validate() error {
	if r.Username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid email format")
	}
	if r.Firstname == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "firstname is required")
	}
	if r.Lastname == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "lastname is required")
	}
	if !validPassword(r.Password) {
		return echo.NewHTTPError(http.StatusBadRequest,
			"password must be longer than 8 characters and contain at least 1 number and 1 special character")
	}
	return nil
}

// validPassword enforces the registration policy: at least 9 characters,
// at least one digit and one of !@#$%^&*, nothing outside latin letters,
// digits and those symbols.
func validPassword(p string) bool {
	if len(p) < 9 {
		return false
	}
	var hasDigit, hasSymbol bool
	for _, r := range p {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return hasDigit && hasSymbol
}

type LoginRequest struct {
	Identifier string `json:"identifier"` // username or email
	Password   string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r.Identifier == "" || r.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username/email and password are required")
	}
	return nil
}

// WorklogForm carries the multipart fields of a worklog create/update.
type WorklogForm struct {
	WeekNo    string
	Date      string
	StartTime string
	EndTime   string
	Content   string
}

func bindWorklogForm(c echo.Context) WorklogForm {
	return WorklogForm{
		WeekNo:    c.FormValue("weekNo"),
		Date:      c.FormValue("date"),
		StartTime: c.FormValue("startTime"),
		EndTime:   c.FormValue("endTime"),
		Content:   c.FormValue("content"),
	}
}

func (f *WorklogForm) Validate() error {
	if f.WeekNo == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "week number is required")
	}
	if _, err := strconv.Atoi(f.WeekNo); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "week number must be a number")
	}
	if f.Date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date is required")
	}
	if f.StartTime == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "start time is required")
	}
	// "Absent" marks a day off, the only case where end time may be empty
	if f.StartTime != "Absent" && f.EndTime == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "end time is required (unless absent)")
	}
	if f.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content is required")
	}
	return nil
}

func (f *WorklogForm) Week() int {
	n, _ := strconv.Atoi(f.WeekNo)
	return n
}
