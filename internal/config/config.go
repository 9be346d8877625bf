package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	AppName     = "recipe-suggester"
	EnvFileName = "config.env"

	// DefaultListenAddr is used when LISTEN_ADDR is not set.
	DefaultListenAddr = ":8080"
)

// RequiredEnvVars lists the environment variables that must be set before the
// application accepts any upload.
var RequiredEnvVars = []string{"GEMINI_API_KEY"}

// ErrMissingConfig is returned by Load when a required variable is unset.
var ErrMissingConfig = errors.New("missing required config")

// Config holds everything read from the environment at startup.
type Config struct {
	GeminiAPIKey string
	ListenAddr   string
	// BotToken enables the Telegram front end when non-empty.
	BotToken string
}

// LoadEnvFile loads environment variables from a .env file in the working
// directory and from the config file in the user's config directory.
// Variables already present in the environment are never overridden.
// Errors are ignored since the files may not exist.
func LoadEnvFile() {
	_ = godotenv.Load(".env")

	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configPath := filepath.Join(configBase, AppName, EnvFileName)
	_ = godotenv.Load(configPath)
}

// CheckRequiredConfig returns the names of required variables that getenv
// reports as empty.
func CheckRequiredConfig(getenv func(string) string) []string {
	var missing []string
	for _, v := range RequiredEnvVars {
		if strings.TrimSpace(getenv(v)) == "" {
			missing = append(missing, v)
		}
	}
	return missing
}

// Load builds a Config from getenv. It fails with ErrMissingConfig if any
// required variable is missing.
func Load(getenv func(string) string) (*Config, error) {
	if missing := CheckRequiredConfig(getenv); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}

	cfg := &Config{
		GeminiAPIKey: strings.TrimSpace(getenv("GEMINI_API_KEY")),
		ListenAddr:   getenv("LISTEN_ADDR"),
		BotToken:     strings.TrimSpace(getenv("BOT_TOKEN")),
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	return cfg, nil
}

// WaitOnWindows pauses execution on Windows so users can see error messages
// before the console window closes.
func WaitOnWindows() {
	if runtime.GOOS == "windows" {
		fmt.Println()
		fmt.Println("Press Enter to exit...")
		fmt.Scanln()
	}
}

// FatalWithWait logs a fatal error and waits on Windows before exiting.
func FatalWithWait(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Error().Msg(msg)
	WaitOnWindows()
	os.Exit(1)
}
