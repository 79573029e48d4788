package config

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"conduitauth/internal/auth"
	"conduitauth/internal/cognito"
	"conduitauth/internal/conduit"
	"conduitauth/internal/constants"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cognitoidp "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/postgres/v3"
)

const (
	ProviderConduit = "conduit"
	ProviderCognito = "cognito"
)

// Settings are read from the environment.
type Settings struct {
	Env             string        `env:"ENV" envDefault:"development"`
	Host            string        `env:"HOST"`
	Port            string        `env:"PORT" envDefault:"3000"`
	AuthProvider    string        `env:"AUTH_PROVIDER" envDefault:"conduit"`
	ConduitApiUrl   string        `env:"CONDUIT_API_URL" envDefault:"https://api.realworld.io/api"`
	ConduitTimeout  time.Duration `env:"CONDUIT_TIMEOUT" envDefault:"10s"`
	CognitoClientId string        `env:"COGNITO_CLIENT_ID"`
	DatabaseUrl     string        `env:"DATABASE_URL"`
	TestDatabaseUrl string        `env:"TEST_DATABASE_URL"`
}

// Config is the global config for the app router. Host and Port are needed for absolute URL generation.
type Config struct {
	Settings
	CookieSecure     bool
	DisableLogColors bool
	EnableStackTrace bool
	// Users is the remote authentication backend.
	Users auth.UserService
	// SessionStorage backs the session store; nil keeps sessions in memory.
	SessionStorage fiber.Storage
	StaticFS       fs.FS
	ViewsFS        fs.FS
}

func LoadSettings() (Settings, error) {
	settings, err := env.ParseAs[Settings]()
	if err != nil {
		return Settings{}, fmt.Errorf("config: %w", err)
	}
	if settings.ConduitTimeout <= 0 {
		return Settings{}, fmt.Errorf("config: CONDUIT_TIMEOUT must be positive, got %s", settings.ConduitTimeout)
	}
	if settings.Env == constants.EnvTest {
		settings.DatabaseUrl = settings.TestDatabaseUrl
	}
	return settings, nil
}

func NewConfigFromEnvironment(ctx context.Context, staticFS, viewsFS fs.FS) (Config, error) {
	settings, err := LoadSettings()
	if err != nil {
		return Config{}, err
	}

	users, err := NewUserService(ctx, settings)
	if err != nil {
		return Config{}, err
	}

	cfg := New(settings, users, staticFS, viewsFS)
	if settings.DatabaseUrl != "" {
		cfg.SessionStorage = postgres.New(postgres.Config{
			ConnectionURI: settings.DatabaseUrl,
		})
	}
	return cfg, nil
}

// New derives a Config from settings without touching the environment or the network.
func New(settings Settings, users auth.UserService, staticFS, viewsFS fs.FS) Config {
	return Config{
		Settings:         settings,
		CookieSecure:     settings.Env == constants.EnvProduction,
		DisableLogColors: settings.Env == constants.EnvProduction,
		EnableStackTrace: settings.Env == constants.EnvDevelopment,
		Users:            users,
		StaticFS:         staticFS,
		ViewsFS:          viewsFS,
	}
}

// NewTestConfig returns a config for tests: in-memory sessions and the given users.
func NewTestConfig(users auth.UserService, viewsFS fs.FS) *Config {
	cfg := New(Settings{Env: constants.EnvTest}, users, nil, viewsFS)
	return &cfg
}

func NewUserService(ctx context.Context, settings Settings) (auth.UserService, error) {
	switch settings.AuthProvider {
	case ProviderConduit:
		return conduit.New(settings.ConduitApiUrl, settings.ConduitTimeout), nil
	case ProviderCognito:
		if settings.CognitoClientId == "" {
			return nil, fmt.Errorf("config: COGNITO_CLIENT_ID is required for the %s provider", ProviderCognito)
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("config: load aws config: %w", err)
		}
		return cognito.New(cognitoidp.NewFromConfig(awsCfg), settings.CognitoClientId), nil
	default:
		return nil, fmt.Errorf("config: unknown AUTH_PROVIDER %q", settings.AuthProvider)
	}
}
