// Package views holds the html templates and the models they render.
package views

import (
	"embed"

	"conduitauth/internal/view"
)

//go:embed all:layouts all:shared all:auth all:home all:errors
var FS embed.FS

// AuthPage is the sign in / sign up page.
type AuthPage struct {
	view.Context
	Title    string
	Register bool
	Action   string
	Values   AuthValues
	// Errors are the messages of the last failed submission.
	Errors     []string
	Validation AuthValidation
}

// AuthValues are echoed back into the form. Passwords never are.
type AuthValues struct {
	Email    string
	Username string
}

// AuthValidation is the live validation fragment and the state of the submit button.
type AuthValidation struct {
	Title      string
	Messages   []string
	Valid      bool
	Submitting bool
	// OOB marks a fragment response that also swaps the submit button.
	OOB bool
}

type HomePage struct {
	view.Context
	Title string
}

type ErrorPage struct {
	view.Context
	Title   string
	Code    int
	Message string
}
