package app

import (
	"context"
	"sort"
	"strings"
	"time"

	"conduitauth/internal/auth"
	"conduitauth/internal/constants"
	"conduitauth/internal/form"
	"conduitauth/internal/view"
	"conduitauth/views"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// AuthRequest is the submitted sign in / sign up form.
type AuthRequest struct {
	Email         string `form:"email"`
	Password      string `form:"password"`
	PasswordCheck string `form:"passwordCheck"`
	Username      string `form:"username"`
}

// values returns the submitted values for the controls the mode's form has.
func (r AuthRequest) values(mode auth.Mode) map[string]string {
	values := map[string]string{
		auth.FieldEmail:    r.Email,
		auth.FieldPassword: r.Password,
	}
	if mode == auth.Register {
		values[auth.FieldPasswordCheck] = r.PasswordCheck
		values[auth.FieldUsername] = r.Username
	}
	return values
}

type AuthHandlers struct {
	renderer     *view.Engine
	sessionStore *session.Store
	users        auth.UserService
}

// Form renders the empty sign in or sign up page, picked by the last path segment.
func (a *AuthHandlers) Form(c *fiber.Ctx) error {
	ctrl := auth.NewController(c.UserContext(), c.Path(), a.users, auth.NavigatorFunc(func(string) {}))
	defer ctrl.Destroy()

	return a.renderPage(c, fiber.StatusOK, ctrl, AuthRequest{}, false)
}

// Submit validates the form and, when it is valid, sends it to the user service. The
// controller lives as long as the request.
func (a *AuthHandlers) Submit(c *fiber.Ctx) error {
	var req AuthRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	users := &recordingUsers{next: a.users}
	var target string
	ctrl := auth.NewController(c.UserContext(), c.Path(), users, auth.NavigatorFunc(func(path string) {
		target = path
	}))
	defer ctrl.Destroy()

	if err := ctrl.Form().Patch(req.values(ctrl.Mode())); err != nil {
		return err
	}

	if !ctrl.Form().Valid() {
		return a.renderPage(c, fiber.StatusUnprocessableEntity, ctrl, req, true)
	}

	<-ctrl.SubmitForm()
	if err := ctrl.Err(); err != nil {
		return err
	}

	if target == "" {
		fiberlog.Debug("auth: ", ctrl.Mode(), " failed: ", ctrl.Errors().Messages())
		return a.renderPage(c, fiber.StatusUnprocessableEntity, ctrl, req, false)
	}

	if err := a.signIn(c, users.user); err != nil {
		return err
	}

	c.Set("HX-Location", target)
	return c.Redirect(target, fiber.StatusFound)
}

// Validate renders the validation fragment for the values typed so far. It runs on
// every change to the form.
func (a *AuthHandlers) Validate(c *fiber.Ctx) error {
	var req AuthRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	path := strings.TrimSuffix(c.Path(), "/validate")
	ctrl := auth.NewController(c.UserContext(), path, a.users, auth.NavigatorFunc(func(string) {}))
	defer ctrl.Destroy()

	if err := ctrl.Form().Patch(req.values(ctrl.Mode())); err != nil {
		return err
	}

	validation := validationOf(ctrl, true)
	validation.OOB = true

	return a.renderer.RenderView(c, fiber.StatusOK, "auth/_validation", validation)
}

func (a *AuthHandlers) Logout(c *fiber.Ctx) error {
	sess, err := a.sessionStore.Get(c)
	if err != nil {
		panic(err)
	}
	err = sess.Reset()
	if err != nil {
		panic(err)
	}

	c.Set("HX-Location", "/login")
	return c.Redirect("/login", fiber.StatusFound)
}

// signIn starts a fresh session for the user. Users without a token (e.g. awaiting
// email confirmation) are not signed in.
func (a *AuthHandlers) signIn(c *fiber.Ctx, user auth.User) error {
	if user.Token == "" {
		fiberlog.Debug("auth: no token for ", user.Email, ", not signing in")
		return nil
	}

	sess, err := a.sessionStore.Get(c)
	if err != nil {
		return err
	}

	if err = sess.Reset(); err != nil {
		return err
	}
	sess.Set(constants.UsernameSessionKey, user.Username)
	sess.Set(constants.TokenSessionKey, user.Token)
	if exp, ok := user.TokenExpiry(); ok {
		sess.SetExpiry(time.Until(exp))
	}
	return sess.Save()
}

func (a *AuthHandlers) renderPage(c *fiber.Ctx, status int, ctrl *auth.Controller, req AuthRequest, showValidation bool) error {
	page := views.AuthPage{
		Context:  view.NewContext(c),
		Title:    ctrl.Title(),
		Register: ctrl.Mode() == auth.Register,
		Action:   "/" + ctrl.Mode().String(),
		Values: views.AuthValues{
			Email:    req.Email,
			Username: req.Username,
		},
		Errors:     ctrl.Errors().Messages(),
		Validation: validationOf(ctrl, showValidation),
	}
	return a.renderer.RenderView(c, status, "auth/page", page)
}

func validationOf(ctrl *auth.Controller, withMessages bool) views.AuthValidation {
	validation := views.AuthValidation{
		Title:      ctrl.Title(),
		Valid:      ctrl.Form().Valid(),
		Submitting: ctrl.IsSubmitting(),
	}
	if withMessages {
		validation.Messages = validationMessages(ctrl.Form())
	}
	return validation
}

var fieldLabels = map[string]string{
	auth.FieldEmail:         "email",
	auth.FieldPassword:      "password",
	auth.FieldPasswordCheck: "password confirmation",
	auth.FieldUsername:      "username",
}

var errorMessages = map[string]string{
	"required": "can't be blank",
	"email":    "is invalid",
}

// validationMessages describes the local errors of the form, in control order.
func validationMessages(g *form.Group) []string {
	var messages []string
	for _, c := range g.Controls() {
		for _, kind := range sortedKinds(c.Errors()) {
			msg, ok := errorMessages[kind]
			if !ok {
				msg = "is invalid"
			}
			messages = append(messages, fieldLabels[c.Name()]+" "+msg)
		}
	}
	if g.Errors().Has("notMatch") {
		messages = append(messages, "passwords do not match")
	}
	return messages
}

func sortedKinds(errs form.Errors) []string {
	kinds := make([]string, 0, len(errs))
	for kind := range errs {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// recordingUsers keeps the user returned by a successful call so the handler can put
// it in the session once the controller has navigated.
type recordingUsers struct {
	next auth.UserService
	user auth.User
}

func (r *recordingUsers) Login(ctx context.Context, credentials auth.LoginCredentials) (auth.User, error) {
	user, err := r.next.Login(ctx, credentials)
	if err == nil {
		r.user = user
	}
	return user, err
}

func (r *recordingUsers) Register(ctx context.Context, credentials auth.RegisterCredentials) (auth.User, error) {
	user, err := r.next.Register(ctx, credentials)
	if err == nil {
		r.user = user
	}
	return user, err
}
