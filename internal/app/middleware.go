package app

import (
	"conduitauth/internal/constants"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// SetLoggedIn exposes the session's sign in state to handlers and templates.
func SetLoggedIn(sessionStore *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := sessionStore.Get(c)
		if err != nil {
			panic(err)
		}

		token, _ := sess.Get(constants.TokenSessionKey).(string)
		username, _ := sess.Get(constants.UsernameSessionKey).(string)

		c.Locals(constants.LoggedInSessionKey, token != "")
		c.Locals(constants.UsernameSessionKey, username)

		return c.Next()
	}
}

func RequireLoggedIn(c *fiber.Ctx) error {
	loggedIn := c.Locals(constants.LoggedInSessionKey).(bool)
	if !loggedIn {
		fiberlog.Debug("not logged in, redirecting to login")
		return c.Redirect("/login", fiber.StatusFound)
	}

	return c.Next()
}

func RedirectInternalIfLoggedIn(c *fiber.Ctx) error {
	loggedIn := c.Locals(constants.LoggedInSessionKey).(bool)
	if loggedIn {
		fiberlog.Debug("logged in, redirecting to home")
		return c.Redirect("/", fiber.StatusFound)
	}

	return c.Next()
}
