// Package config loads runtime settings from an optional .env file and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/petasbytes/go-assistants/internal/apperr"
	"github.com/petasbytes/go-assistants/internal/provider"
)

// Credential environment variables, one per upstream family.
const (
	OpenAIKeyEnv    = "OPENAI_API_KEY"
	AnthropicKeyEnv = "ANTHROPIC_API_KEY"
)

type Config struct {
	RegistryPath      string
	ThreadFilesDir    string
	DefaultModel      string
	MaxTokens         int64
	CompletionTimeout time.Duration
	LogLevel          slog.Level
}

// Load reads the given .env files (".env" when none are named) into the
// environment without overriding variables already set, then builds a Config.
// Missing .env files are not an error; malformed values are.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load env file: %w", err)
	}

	cfg := Config{
		RegistryPath:   getEnv("AGT_REGISTRY_PATH", "assistants.json"),
		ThreadFilesDir: getEnv("AGT_THREAD_FILES_DIR", "thread_files"),
		DefaultModel:   getEnv("AGT_DEFAULT_MODEL", "gpt-4"),
	}

	maxTokens, err := getEnvAsInt("AGT_MAX_TOKENS", int(provider.DefaultMaxTokens))
	if err != nil {
		return Config{}, err
	}
	if maxTokens <= 0 {
		return Config{}, fmt.Errorf("config: AGT_MAX_TOKENS must be positive, got %d", maxTokens)
	}
	cfg.MaxTokens = int64(maxTokens)

	if v := getEnv("AGT_COMPLETION_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid AGT_COMPLETION_TIMEOUT %q: %w", v, err)
		}
		cfg.CompletionTimeout = d
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("AGT_LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("config: invalid AGT_LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

// CredentialEnv names the variable holding the credential for model.
func CredentialEnv(model string) string {
	if provider.IsAnthropicModel(model) {
		return AnthropicKeyEnv
	}
	return OpenAIKeyEnv
}

// CredentialFor returns the credential for model, or an
// apperr.ErrMissingCredential naming the variable to export.
func CredentialFor(model string) (string, error) {
	env := CredentialEnv(model)
	v := strings.TrimSpace(os.Getenv(env))
	if v == "" {
		return "", apperr.MissingCredential(env)
	}
	return v, nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, valueStr, err)
	}
	return value, nil
}
