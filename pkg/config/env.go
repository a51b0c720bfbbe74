package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from a .env file.
// If the file doesn't exist, it silently continues (env vars may be set externally).
func LoadEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	if err := godotenv.Load(paths...); err != nil {
		log.Printf("[Config] No .env file found, using system environment variables")
	}
}

// ModelConfigPath resolves the model configuration file path. An explicit
// VITA_MODEL_CONFIG_PATH wins; otherwise models.yaml in the working
// directory is used.
func ModelConfigPath() string {
	if p := os.Getenv("VITA_MODEL_CONFIG_PATH"); p != "" {
		return p
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "models.yaml"
	}
	return filepath.Join(cwd, "models.yaml")
}
