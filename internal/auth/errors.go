package auth

import (
	"errors"
	"sort"
	"strings"
)

// ServerErrorKey holds the message of a failure that carried no error payload.
const ServerErrorKey = "server"

// Errors is the error payload of a failed remote call: field name to messages.
type Errors struct {
	Errors map[string][]string `json:"errors"`
}

func NewErrors(field string, messages ...string) *Errors {
	return &Errors{Errors: map[string][]string{field: messages}}
}

func (e *Errors) Error() string {
	return strings.Join(e.Messages(), "; ")
}

// Empty reports whether the payload carries no errors. A nil payload is empty.
func (e *Errors) Empty() bool {
	return e == nil || len(e.Errors) == 0
}

// Messages flattens the payload into "field message" lines, fields sorted by name.
func (e *Errors) Messages() []string {
	if e.Empty() {
		return []string{}
	}

	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		for _, msg := range e.Errors[field] {
			messages = append(messages, field+" "+msg)
		}
	}
	return messages
}

// AsErrors returns the payload carried by err, or wraps err's message under ServerErrorKey.
func AsErrors(err error) Errors {
	var payload *Errors
	if errors.As(err, &payload) && payload != nil {
		return *payload
	}
	return Errors{Errors: map[string][]string{ServerErrorKey: {err.Error()}}}
}
