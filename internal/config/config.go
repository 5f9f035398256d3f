package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	coreconfig "github.com/go-core-fx/config"
)

const (
	defaultAPIBaseURL = "http://localhost:8080/api"
	sessionDirName    = ".orders-console"
	sessionFileName   = "session.json"
)

type Config struct {
	APIBaseURL  string        `koanf:"api_base_url"`
	SessionFile string        `koanf:"session_file"`
	Timeout     time.Duration `koanf:"timeout"`
	PageSize    int           `koanf:"page_size"`
	LogFile     string        `koanf:"log_file"`
	LogFileOnly bool          `koanf:"log_file_only"`
	Debug       bool          `koanf:"debug"`

	MockAddr      string `koanf:"mock_addr"`
	MockJWTSecret string `koanf:"mock_jwt_secret"`
	MockOrders    int    `koanf:"mock_orders"`
	MockEnvelope  string `koanf:"mock_envelope"`
}

func New() (Config, error) {
	cfg := Config{
		APIBaseURL:    defaultAPIBaseURL,
		SessionFile:   defaultSessionFile(),
		Timeout:       20 * time.Second,
		PageSize:      24,
		LogFile:       "./orders-console.log",
		LogFileOnly:   true,
		Debug:         false,
		MockAddr:      ":8080",
		MockJWTSecret: "orders-mock-secret",
		MockOrders:    1000,
		MockEnvelope:  "legacy",
	}

	if err := coreconfig.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}

	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	cfg.SessionFile = ExpandHome(cfg.SessionFile)

	return cfg, nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", sessionDirName, sessionFileName)
	}
	return filepath.Join(home, sessionDirName, sessionFileName)
}

func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
