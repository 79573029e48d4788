package app

import (
	"errors"
	"net/http"
	"time"

	"conduitauth/internal/config"
	"conduitauth/internal/constants"
	"conduitauth/internal/view"
	"conduitauth/views"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
)

func New(config *config.Config) *fiber.App {
	fiberlog.Debug("Starting app with settings: ", config.Settings)

	renderer := view.MustNew(view.Config{
		CompileOnRender: config.Env == constants.EnvDevelopment,
		FS:              config.ViewsFS,
	})

	app := fiber.New(fiber.Config{
		AppName:      "Conduit Auth 0.1.0",
		ErrorHandler: newErrorHandler(renderer),
	})

	sessionStore := session.New(session.Config{
		Expiration:     24 * time.Hour * 30,
		KeyLookup:      "cookie:conduit_session_id",
		CookieSecure:   config.CookieSecure,
		CookieHTTPOnly: true,
		Storage:        config.SessionStorage,
	})

	app.Use(logger.New(logger.Config{
		DisableColors: config.DisableLogColors,
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: config.EnableStackTrace,
	}))
	app.Use(compress.New())
	app.Use(helmet.New())
	app.Use(favicon.New())
	if config.StaticFS != nil {
		app.Use("/static", filesystem.New(filesystem.Config{
			Root:       http.FS(config.StaticFS),
			PathPrefix: "static",
		}))
	}

	// Combine two CSRF extractors: use form field as default
	// so forms work without JS, with header as fallback.
	csrfFromForm := csrf.CsrfFromForm(constants.CsrfInputName)
	csrfFromHeader := csrf.CsrfFromHeader("X-CSRF-Token")

	app.Use(csrf.New(csrf.Config{
		CookieSecure: config.CookieSecure,
		Session:      sessionStore,
		Extractor: func(c *fiber.Ctx) (string, error) {
			token, err := csrfFromForm(c)
			if err == nil {
				return token, nil
			}

			if errors.Is(err, csrf.ErrMissingForm) {
				return csrfFromHeader(c)
			}

			// unexpected programmer error
			panic(err)
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			fiberlog.Error("CSRF error: ", err.Error())
			return renderer.RenderView(c, fiber.StatusForbidden, "errors/error", views.ErrorPage{
				Context: view.NewContext(c),
				Title:   "Forbidden",
				Code:    fiber.StatusForbidden,
				Message: "Forbidden",
			})
		},
		ContextKey: constants.CsrfTokenContextKey,
		CookieName: "conduit_csrf",
	}))

	app.Use(SetLoggedIn(sessionStore))

	login := AuthHandlers{
		renderer:     renderer,
		sessionStore: sessionStore,
		users:        config.Users,
	}

	app.Get("/", RequireLoggedIn, func(c *fiber.Ctx) error {
		return renderer.RenderView(c, fiber.StatusOK, "home/index", views.HomePage{
			Context: view.NewContext(c),
			Title:   "Home",
		})
	})

	for _, path := range []string{"/login", "/register"} {
		app.Get(path, RedirectInternalIfLoggedIn, login.Form)
		app.Post(path, RedirectInternalIfLoggedIn, login.Submit)
		app.Post(path+"/validate", login.Validate)
	}
	app.Post("/logout", login.Logout)

	return app
}
