package conduit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"conduitauth/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method string
	path   string
	body   map[string]map[string]string
}

func newServer(t *testing.T, status int, response string, got *captured) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got.body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLogin(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK,
		`{"user":{"email":"jake@jake.jake","token":"jwt.token.here","username":"jake","bio":"I work at statefarm","image":null}}`, &got)

	user, err := New(srv.URL+"/api/", time.Second).Login(context.Background(), auth.LoginCredentials{
		Email:    "jake@jake.jake",
		Password: "jakejake",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/users/login", got.path)
	assert.Equal(t, map[string]string{"email": "jake@jake.jake", "password": "jakejake"}, got.body["user"])

	assert.Equal(t, "jake", user.Username)
	assert.Equal(t, "jwt.token.here", user.Token)
	require.NotNil(t, user.Bio)
	assert.Equal(t, "I work at statefarm", *user.Bio)
	assert.Nil(t, user.Image)
}

func TestRegister(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusCreated, `{"user":{"email":"jake@jake.jake","token":"t","username":"jake"}}`, &got)

	user, err := New(srv.URL, time.Second).Register(context.Background(), auth.RegisterCredentials{
		Email:    "jake@jake.jake",
		Password: "jakejake",
		Username: "jake",
	})
	require.NoError(t, err)

	assert.Equal(t, "/users", got.path)
	assert.Equal(t, map[string]string{"email": "jake@jake.jake", "password": "jakejake", "username": "jake"}, got.body["user"])
	assert.Equal(t, "jake", user.Username)
}

func TestErrorPayloadReturnedVerbatim(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusUnprocessableEntity,
		`{"errors":{"email":["has already been taken"],"username":["has already been taken"]}}`, &got)

	_, err := New(srv.URL, time.Second).Register(context.Background(), auth.RegisterCredentials{})

	var payload *auth.Errors
	require.ErrorAs(t, err, &payload)
	assert.Equal(t, map[string][]string{
		"email":    {"has already been taken"},
		"username": {"has already been taken"},
	}, payload.Errors)
}

func TestUnexpectedStatus(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusInternalServerError, `oops`, &got)

	_, err := New(srv.URL, time.Second).Login(context.Background(), auth.LoginCredentials{})
	assert.ErrorIs(t, err, ErrUnexpectedStatus)

	var payload *auth.Errors
	assert.False(t, errors.As(err, &payload))
}

func TestContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL, 5*time.Second).Login(ctx, auth.LoginCredentials{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewAlwaysBoundsRequests(t *testing.T) {
	assert.Equal(t, DefaultTimeout, New("http://localhost", 0).timeout)
	assert.Equal(t, DefaultTimeout, New("http://localhost", -time.Second).timeout)
	assert.Equal(t, time.Second, New("http://localhost", time.Second).timeout)
}

func TestSuccessWithoutUser(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{}`, &got)

	_, err := New(srv.URL, time.Second).Login(context.Background(), auth.LoginCredentials{})
	assert.ErrorContains(t, err, "no user")
}

func TestSuccessWithMalformedBody(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `<html>`, &got)

	_, err := New(srv.URL, time.Second).Login(context.Background(), auth.LoginCredentials{})
	assert.ErrorContains(t, err, "decode user")
	assert.NotErrorIs(t, err, ErrUnexpectedStatus)
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).Login(context.Background(), auth.LoginCredentials{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "POST /users/login")
}
