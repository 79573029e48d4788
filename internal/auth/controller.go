package auth

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"conduitauth/internal/form"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// RootPath is where a successful sign in or sign up navigates to.
const RootPath = "/"

// ErrServicePanic is reported by Err when the UserService panicked during a submission.
var ErrServicePanic = errors.New("auth: user service panicked")

// Controller drives one sign in or sign up form for its lifetime: it owns the form,
// submits credentials to the UserService and applies the outcome.
//
// The form is only touched from the goroutine that owns the controller. Submission
// outcomes arrive on another goroutine and are applied under mu, unless the
// controller was destroyed first.
type Controller struct {
	mode  Mode
	form  *form.Group
	users UserService
	nav   Navigator

	ctx      context.Context
	teardown context.CancelFunc
	once     sync.Once

	mu           sync.Mutex
	isSubmitting bool
	errors       Errors
	failure      error
}

// NewController builds a controller for the route path (or its last segment). The
// controller is torn down when ctx is done or Destroy is called.
func NewController(ctx context.Context, path string, users UserService, nav Navigator) *Controller {
	mode := ModeFromPath(path)
	ctx, cancel := context.WithCancel(ctx)

	return &Controller{
		mode:     mode,
		form:     NewForm(mode),
		users:    users,
		nav:      nav,
		ctx:      ctx,
		teardown: cancel,
		errors:   Errors{Errors: map[string][]string{}},
	}
}

func (c *Controller) Mode() Mode {
	return c.mode
}

func (c *Controller) Title() string {
	return c.mode.Title()
}

func (c *Controller) Form() *form.Group {
	return c.form
}

// Fields returns the current form values typed for the controller's mode.
func (c *Controller) Fields() Fields {
	return fieldsOf(c.mode, c.form)
}

func (c *Controller) IsSubmitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isSubmitting
}

// Errors returns a copy of the last remote error payload.
func (c *Controller) Errors() *Errors {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := &Errors{Errors: make(map[string][]string, len(c.errors.Errors))}
	for field, messages := range c.errors.Errors {
		out.Errors[field] = append([]string(nil), messages...)
	}
	return out
}

// Err returns the failure of the last submission that neither succeeded nor
// produced an error payload, i.e. a panic in the UserService or the Navigator.
// Callers hand it to their own error handling once SubmitForm's channel is closed.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure
}

// SubmitForm sends the current values to the UserService. The returned channel is
// closed once the outcome has been applied, or dropped because the controller was
// destroyed. Calling it again while a submission is pending starts another one.
func (c *Controller) SubmitForm() <-chan struct{} {
	c.mu.Lock()
	c.isSubmitting = true
	c.errors = Errors{Errors: map[string][]string{}}
	c.failure = nil
	c.mu.Unlock()

	fields := c.Fields()
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				fiberlog.Error("auth: submission panicked: ", r, "\n", string(debug.Stack()))
				c.mu.Lock()
				c.failure = fmt.Errorf("%w: %v", ErrServicePanic, r)
				c.mu.Unlock()
			}
		}()

		var err error
		switch f := fields.(type) {
		case RegisterFields:
			_, err = c.users.Register(c.ctx, f.Credentials())
		case LoginFields:
			_, err = c.users.Login(c.ctx, f.Credentials())
		}

		c.apply(err)
	}()

	return done
}

func (c *Controller) apply(err error) {
	if !c.record(err) {
		return
	}

	// The navigator runs without mu held so it may tear the controller down.
	c.nav.Navigate(RootPath)
}

// record stores a failed outcome and reports whether the caller should navigate.
// isSubmitting stays set on success: navigating away ends the controller's life.
func (c *Controller) record(err error) (navigate bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Err() != nil {
		fiberlog.Debug("auth: dropping submission outcome, controller torn down")
		return false
	}

	if err != nil {
		c.errors = AsErrors(err)
		c.isSubmitting = false
		return false
	}
	return true
}

// Destroy fires the teardown signal. Pending submissions are cancelled and their
// outcomes ignored. Calling it more than once is harmless.
func (c *Controller) Destroy() {
	c.once.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.teardown()
	})
}

// Done is closed once the controller has been torn down.
func (c *Controller) Done() <-chan struct{} {
	return c.ctx.Done()
}
