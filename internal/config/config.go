package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all terminal configuration. Values come from POTVRDE_*
// environment variables, normally provided by the systemd unit's
// EnvironmentFile on the appliance.
type Config struct {
	AppID    string
	AppTitle string

	// VarDir is the root for all persisted runtime data.
	VarDir  string
	JobsDir string
	LogsDir string

	TemplatePath    string
	PrinterName     string
	ReferenceNumber string

	// DatabaseURL selects an external postgres; empty means the
	// embedded appliance database under VarDir.
	DatabaseURL string

	SubprocessTimeout time.Duration
	ConvertTimeout    time.Duration
	PrintTimeout      time.Duration
	IdleTimeout       time.Duration

	SkipTutorial bool
	DebugMode    bool

	OpsListenAddr string
}

// Load reads configuration from the environment and prepares the
// runtime directories under VarDir.
func Load() (*Config, error) {
	// .env is a dev convenience; the appliance uses EnvironmentFile.
	_ = godotenv.Load()

	appID := getEnv("POTVRDE_APP_ID", "uvjerenja-terminal")

	varDir := getEnv("POTVRDE_VAR_DIR", filepath.Join("/var/lib", appID))
	cfg := &Config{
		AppID:             appID,
		AppTitle:          getEnv("POTVRDE_APP_TITLE", "Uvjerenja Terminal"),
		VarDir:            varDir,
		JobsDir:           filepath.Join(varDir, "jobs"),
		LogsDir:           filepath.Join(varDir, "logs"),
		TemplatePath:      getEnv("POTVRDE_TEMPLATE_PATH", "docs/template.docx"),
		PrinterName:       getEnv("POTVRDE_PRINTER_NAME", "Printer_Name"),
		ReferenceNumber:   getEnv("POTVRDE_DJELOVODNI_BROJ", "01-743/25"),
		DatabaseURL:       os.Getenv("POTVRDE_DATABASE_URL"),
		SubprocessTimeout: getEnvSeconds("POTVRDE_SUBPROCESS_TIMEOUT", 60),
		ConvertTimeout:    getEnvSeconds("POTVRDE_DOCX_CONVERT_TIMEOUT", 45),
		PrintTimeout:      getEnvSeconds("POTVRDE_PRINT_TIMEOUT", 30),
		IdleTimeout:       getEnvMillis("POTVRDE_IDLE_TIMEOUT_MS", 60_000),
		SkipTutorial:      getEnvBool("POTVRDE_SKIP_TUTORIAL", true),
		DebugMode:         getEnvBool("POTVRDE_DEBUG_MODE", false),
		OpsListenAddr:     getEnv("POTVRDE_OPS_LISTEN_ADDR", "127.0.0.1:8642"),
	}

	for _, dir := range []string{cfg.VarDir, cfg.JobsDir, cfg.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("prepare runtime dir %s: %w", dir, err)
		}
	}

	return cfg, nil
}

// getEnv returns an environment value or the default when unset/empty.
func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// getEnvSeconds parses an integer-seconds env var with a default.
func getEnvSeconds(name string, fallback int) time.Duration {
	return time.Duration(getEnvInt(name, fallback)) * time.Second
}

// getEnvMillis parses an integer-milliseconds env var with a default.
func getEnvMillis(name string, fallback int) time.Duration {
	return time.Duration(getEnvInt(name, fallback)) * time.Millisecond
}

func getEnvInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(name string, fallback bool) bool {
	switch os.Getenv(name) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}
