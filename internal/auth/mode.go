package auth

import "strings"

// Mode is decided once from the route and never changes for a controller.
type Mode int

const (
	Login Mode = iota
	Register
)

// ModeFromPath picks the mode from the last segment of a route path. Only "register"
// selects Register; any other segment falls back to Login.
func ModeFromPath(path string) Mode {
	path = strings.TrimRight(path, "/")
	segment := path[strings.LastIndex(path, "/")+1:]
	if segment == "register" {
		return Register
	}
	return Login
}

func (m Mode) String() string {
	if m == Register {
		return "register"
	}
	return "login"
}

func (m Mode) Title() string {
	if m == Login {
		return "Sign in"
	}
	return "Sign up"
}
