package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/storage"
)

const (
	DefaultCatalogURL   = "https://launchermeta.mojang.com/mc/game/version_manifest.json"
	DefaultResourcesURL = "https://resources.download.minecraft.net"
	DefaultListenAddr   = "127.0.0.1:7878"
	DefaultConcurrency  = 16
)

// Config holds all application configuration
type Config struct {
	// Storage settings
	DataDir string
	DBPath  string

	// Remote endpoints
	CatalogURL   string
	ResourcesURL string

	// Scheduling settings
	Concurrency int
	Workers     int
	HTTPTimeout time.Duration

	// HTTP boundary settings
	ListenAddr string

	// Game launch settings
	JavaPath   string
	PlayerName string
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	dataDir := "synth_launcher"
	if home, err := storage.GetDataHome(); err == nil {
		dataDir = filepath.Join(home, "synth_launcher")
	}

	return &Config{
		DataDir:      dataDir,
		CatalogURL:   DefaultCatalogURL,
		ResourcesURL: DefaultResourcesURL,
		Concurrency:  DefaultConcurrency,
		Workers:      runtime.NumCPU(),
		HTTPTimeout:  60 * time.Second,
		ListenAddr:   DefaultListenAddr,
		JavaPath:     "java",
		PlayerName:   "Player",
	}
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() {
	if dataDir := os.Getenv("LAUNCHER_DATA_DIR"); dataDir != "" {
		c.DataDir = dataDir
	}

	if dbPath := os.Getenv("LAUNCHER_DB_PATH"); dbPath != "" {
		c.DBPath = dbPath
	}

	if catalogURL := os.Getenv("LAUNCHER_CATALOG_URL"); catalogURL != "" {
		c.CatalogURL = catalogURL
	}

	if resourcesURL := os.Getenv("LAUNCHER_RESOURCES_URL"); resourcesURL != "" {
		c.ResourcesURL = resourcesURL
	}

	if concurrency := os.Getenv("LAUNCHER_CONCURRENCY"); concurrency != "" {
		if n, err := strconv.Atoi(concurrency); err == nil {
			c.Concurrency = n
		}
	}

	if workers := os.Getenv("LAUNCHER_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			c.Workers = n
		}
	}

	if timeout := os.Getenv("LAUNCHER_HTTP_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.HTTPTimeout = d
		} else if s, err := strconv.Atoi(timeout); err == nil {
			c.HTTPTimeout = time.Duration(s) * time.Second
		}
	}

	if addr := os.Getenv("LAUNCHER_LISTEN_ADDR"); addr != "" {
		c.ListenAddr = addr
	}

	if javaPath := os.Getenv("LAUNCHER_JAVA_PATH"); javaPath != "" {
		c.JavaPath = javaPath
	}

	if name := os.Getenv("LAUNCHER_PLAYER_NAME"); name != "" {
		c.PlayerName = name
	}
}

// DatabasePath returns the task ledger location, defaulting into the data dir.
func (c *Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, "launcher.db")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	for name, raw := range map[string]string{"catalog": c.CatalogURL, "resources": c.ResourcesURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s URL must be absolute, got: %q", name, raw)
		}
	}

	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got: %d", c.Concurrency)
	}

	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got: %d", c.Workers)
	}

	if c.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP timeout must be non-negative, got: %s", c.HTTPTimeout)
	}

	if c.PlayerName == "" {
		return fmt.Errorf("player name cannot be empty")
	}

	return nil
}
