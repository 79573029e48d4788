package constants

const (
	EnvDevelopment      = "development"
	EnvProduction       = "production"
	EnvTest             = "test"
	CsrfInputName       = "_csrf"
	CsrfTokenContextKey = "csrf.token"
	LoggedInSessionKey  = "auth.logged_in"
	UsernameSessionKey  = "auth.username"
	TokenSessionKey     = "auth.token"
)
