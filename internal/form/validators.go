package form

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Required fails on empty and null values.
func Required(c *Control) Errors {
	if c.IsNull() || c.Value() == "" {
		return Errors{"required": true}
	}
	return nil
}

// Email fails on non-empty values that are not an email address. Empty values pass;
// combine with Required to reject them.
func Email(c *Control) Errors {
	if c.Value() == "" {
		return nil
	}
	if err := validate.Var(c.Value(), "email"); err != nil {
		return Errors{"email": true}
	}
	return nil
}
