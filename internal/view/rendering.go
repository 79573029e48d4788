package view

import (
	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
)

func RenderComponent(c *fiber.Ctx, status int, component templ.Component) error {
	c.Status(status).Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Context(), c)
}

// RenderView renders a named template of the engine as the response body.
func (e *Engine) RenderView(c *fiber.Ctx, status int, name string, data any) error {
	return RenderComponent(c, status, e.Component(name, data))
}
