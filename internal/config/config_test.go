package config

import (
	"context"
	"os"
	"testing"
	"time"

	"conduitauth/internal/cognito"
	"conduitauth/internal/conduit"
	"conduitauth/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	for _, key := range []string{"ENV", "PORT", "AUTH_PROVIDER", "CONDUIT_TIMEOUT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	settings, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, constants.EnvDevelopment, settings.Env)
	assert.Equal(t, "3000", settings.Port)
	assert.Equal(t, ProviderConduit, settings.AuthProvider)
	assert.Equal(t, 10*time.Second, settings.ConduitTimeout)
}

func TestLoadSettingsTestDatabase(t *testing.T) {
	t.Setenv("ENV", constants.EnvTest)
	t.Setenv("DATABASE_URL", "postgres://prod")
	t.Setenv("TEST_DATABASE_URL", "postgres://test")

	settings, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "postgres://test", settings.DatabaseUrl)
}

func TestLoadSettingsBadTimeout(t *testing.T) {
	t.Setenv("CONDUIT_TIMEOUT", "soon")

	_, err := LoadSettings()
	assert.Error(t, err)
}

func TestLoadSettingsRejectsUnboundedTimeout(t *testing.T) {
	for _, timeout := range []string{"0", "0s", "-1s"} {
		t.Run(timeout, func(t *testing.T) {
			t.Setenv("CONDUIT_TIMEOUT", timeout)

			_, err := LoadSettings()
			assert.ErrorContains(t, err, "CONDUIT_TIMEOUT")
		})
	}
}

func TestNewDerivesFlags(t *testing.T) {
	prod := New(Settings{Env: constants.EnvProduction}, nil, nil, nil)
	assert.True(t, prod.CookieSecure)
	assert.True(t, prod.DisableLogColors)
	assert.False(t, prod.EnableStackTrace)

	dev := New(Settings{Env: constants.EnvDevelopment}, nil, nil, nil)
	assert.False(t, dev.CookieSecure)
	assert.True(t, dev.EnableStackTrace)
}

func TestNewUserService(t *testing.T) {
	users, err := NewUserService(context.Background(), Settings{AuthProvider: ProviderConduit, ConduitApiUrl: "http://localhost"})
	require.NoError(t, err)
	assert.IsType(t, &conduit.Client{}, users)

	_, err = NewUserService(context.Background(), Settings{AuthProvider: ProviderCognito})
	assert.ErrorContains(t, err, "COGNITO_CLIENT_ID")

	t.Setenv("AWS_REGION", "us-east-1")
	users, err = NewUserService(context.Background(), Settings{AuthProvider: ProviderCognito, CognitoClientId: "client"})
	require.NoError(t, err)
	assert.IsType(t, &cognito.Service{}, users)

	_, err = NewUserService(context.Background(), Settings{AuthProvider: "ldap"})
	assert.ErrorContains(t, err, "ldap")
}
