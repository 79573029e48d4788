package app

import (
	"errors"
	"net/http"
	"strings"

	"conduitauth/internal/view"
	"conduitauth/views"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

func newErrorHandler(renderer *view.Engine) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		// Status code defaults to 500
		code := http.StatusInternalServerError
		msg := err.Error()

		// Retrieve the custom status code if it's a *fiber.Error
		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}

		// Parameter decoding errors indicate user input did not match the route, i.e. not found (but may also be bugs)
		if strings.HasPrefix(msg, "failed to decode:") {
			code = http.StatusNotFound
		}

		page := views.ErrorPage{
			Context: view.NewContext(c),
			Code:    code,
			Message: msg,
		}

		// Render a template for 404 errors
		if code == http.StatusNotFound {
			page.Title = "Not found"
			return renderer.RenderView(c, code, "errors/404", page)
		}

		// Client errors carry a message meant for the user
		if code < http.StatusInternalServerError {
			page.Title = http.StatusText(code)
			return renderer.RenderView(c, code, "errors/error", page)
		}

		// Log 500 errors and also render a default template
		fiberlog.Error(msg)
		page.Title = "Error"
		return renderer.RenderView(c, code, "errors/500", page)
	}
}
