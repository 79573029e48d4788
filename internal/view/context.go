package view

import (
	"conduitauth/internal/constants"
	"github.com/gofiber/fiber/v2"
)

// Context contains shared data needed by most templates. Page models embed it.
type Context struct {
	CsrfInputName string
	CsrfToken     string
	LoggedIn      bool
	Username      string
}

func NewContext(c *fiber.Ctx) Context {
	return Context{
		CsrfInputName: constants.CsrfInputName,
		CsrfToken:     GetCsrfToken(c),
		LoggedIn:      GetLoggedIn(c),
		Username:      GetUsername(c),
	}
}

func GetCsrfToken(c *fiber.Ctx) string {
	if csrfToken, ok := c.Locals(constants.CsrfTokenContextKey).(string); ok {
		return csrfToken
	}
	return ""
}

func GetLoggedIn(c *fiber.Ctx) bool {
	if loggedIn, ok := c.Locals(constants.LoggedInSessionKey).(bool); ok {
		return loggedIn
	}
	return false
}

func GetUsername(c *fiber.Ctx) string {
	if username, ok := c.Locals(constants.UsernameSessionKey).(string); ok {
		return username
	}
	return ""
}
