// Package conduit implements auth.UserService against a Conduit (RealWorld) API.
package conduit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"conduitauth/internal/auth"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

var ErrUnexpectedStatus = errors.New("conduit: unexpected response status")

// DefaultTimeout bounds requests when New is given no timeout.
const DefaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	timeout time.Duration
}

// New returns a client for the API rooted at baseURL, e.g. "https://api.realworld.io/api".
// A timeout that is not positive is replaced by DefaultTimeout: requests are always
// bounded, since a cancelled caller stops waiting but cannot abort the request.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

type loginRequest struct {
	User auth.LoginCredentials `json:"user"`
}

type registerRequest struct {
	User auth.RegisterCredentials `json:"user"`
}

// envelope is either a user or an error payload.
type envelope struct {
	User   *auth.User          `json:"user"`
	Errors map[string][]string `json:"errors"`
}

func (c *Client) Login(ctx context.Context, credentials auth.LoginCredentials) (auth.User, error) {
	return c.post(ctx, "/users/login", loginRequest{User: credentials})
}

func (c *Client) Register(ctx context.Context, credentials auth.RegisterCredentials) (auth.User, error) {
	return c.post(ctx, "/users", registerRequest{User: credentials})
}

type response struct {
	code int
	body envelope
	errs []error
}

func (c *Client) post(ctx context.Context, path string, payload any) (auth.User, error) {
	agent := fiber.Post(c.baseURL + path)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	agent.JSON(payload)
	agent.Timeout(c.timeout)

	// fasthttp requests take no context, so the caller stops waiting on cancellation
	// and the request runs out its own timeout.
	result := make(chan response, 1)
	go func() {
		var res response
		res.code, _, res.errs = agent.Struct(&res.body)
		result <- res
	}()

	var res response
	select {
	case <-ctx.Done():
		return auth.User{}, ctx.Err()
	case res = <-result:
	}

	// Struct only reports a status once the request went through; later errors are
	// from decoding the body.
	if res.code == 0 {
		return auth.User{}, fmt.Errorf("conduit: POST %s: %w", path, errors.Join(res.errs...))
	}

	fiberlog.Debugf("conduit: POST %s: %d", path, res.code)

	if res.code >= 200 && res.code < 300 {
		if len(res.errs) > 0 {
			return auth.User{}, fmt.Errorf("conduit: decode user: %w", errors.Join(res.errs...))
		}
		if res.body.User == nil {
			return auth.User{}, errors.New("conduit: decode user: no user in response")
		}
		return *res.body.User, nil
	}

	if len(res.errs) == 0 && len(res.body.Errors) > 0 {
		return auth.User{}, &auth.Errors{Errors: res.body.Errors}
	}

	return auth.User{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, res.code)
}
