package config

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/novelbuilder/internal/logfields"
)

// envFiles are tried in order; the first one present is loaded.
var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads the first .env file found. Variables already present in
// the environment are kept. A missing file is not an error.
func loadEnvFile() error {
	for _, name := range envFiles {
		err := godotenv.Load(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		slog.Debug("Loaded environment file", logfields.File(name))
		return nil
	}
	return nil
}
