package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log"
	"os"

	"conduitauth/internal/app"
	"conduitauth/internal/config"
	"conduitauth/internal/constants"
	"conduitauth/views"
	"github.com/joho/godotenv"
)

//go:embed all:static
var staticFS embed.FS

func main() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg, err := config.NewConfigFromEnvironment(context.Background(), staticFS, views.FS)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.Env == constants.EnvDevelopment {
		// Templates are recompiled on every render in development, so read them from disk.
		cfg.ViewsFS = os.DirFS("views")
	}

	if err := serve(cfg); err != nil {
		log.Fatal(err)
	}
}

// serve runs the app until it stops listening, then releases the session storage.
func serve(cfg config.Config) error {
	if cfg.SessionStorage != nil {
		defer func() {
			if err := cfg.SessionStorage.Close(); err != nil {
				log.Printf("failed to close session storage: %+v", err)
			}
		}()
	}

	a := app.New(&cfg)

	return a.Listen(cfg.Host + ":" + cfg.Port)
}
