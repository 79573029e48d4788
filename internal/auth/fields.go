package auth

import "conduitauth/internal/form"

// Control names shared by the form, the templates and the request parser.
const (
	FieldEmail         = "email"
	FieldPassword      = "password"
	FieldPasswordCheck = "passwordCheck"
	FieldUsername      = "username"
)

// Fields is the typed snapshot of the form: LoginFields or RegisterFields.
type Fields interface {
	Mode() Mode
}

type LoginFields struct {
	Email         string
	Password      string
	PasswordCheck *string
}

func (LoginFields) Mode() Mode { return Login }

func (f LoginFields) Credentials() LoginCredentials {
	return LoginCredentials{Email: f.Email, Password: f.Password}
}

type RegisterFields struct {
	LoginFields
	Username string
}

func (RegisterFields) Mode() Mode { return Register }

func (f RegisterFields) Credentials() RegisterCredentials {
	return RegisterCredentials{Email: f.Email, Password: f.Password, Username: f.Username}
}

type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// NewForm builds the form for a mode. The username control exists only in Register mode.
func NewForm(mode Mode) *form.Group {
	controls := []*form.Control{
		form.NewControl(FieldEmail, "", form.WithValidators(form.Required, form.Email)),
		form.NewControl(FieldPassword, "", form.WithValidators(form.Required)),
		form.NewControl(FieldPasswordCheck, "", form.Nullable()),
	}
	if mode == Register {
		controls = append(controls, form.NewControl(FieldUsername, "", form.WithValidators(form.Required)))
	}
	return form.NewGroup(controls, Match(mode, FieldPassword, FieldPasswordCheck))
}

func fieldsOf(mode Mode, g *form.Group) Fields {
	login := LoginFields{
		Email:    g.Get(FieldEmail).Value(),
		Password: g.Get(FieldPassword).Value(),
	}
	if check := g.Get(FieldPasswordCheck); !check.IsNull() {
		v := check.Value()
		login.PasswordCheck = &v
	}
	if mode == Register {
		return RegisterFields{LoginFields: login, Username: g.Get(FieldUsername).Value()}
	}
	return login
}
