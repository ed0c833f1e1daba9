// Package config loads and validates the application configuration.
// Order: defaults -> yaml file -> environment overrides -> validate.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TransportKind selects the event feed transport.
const (
	TransportWebsocket = "websocket"
	TransportNATS      = "nats"
)

// Config holds the application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Filter    FilterConfig    `yaml:"filter"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig points at the upstream server's read API.
type ServerConfig struct {
	URL     string   `yaml:"url"`
	APIKey  string   `yaml:"api_key"`
	Timeout Duration `yaml:"timeout"`
}

// TransportConfig selects and configures the event feed transport.
type TransportConfig struct {
	Kind      string          `yaml:"kind"` // websocket or nats
	Buffer    int             `yaml:"buffer"`
	Websocket WebsocketConfig `yaml:"websocket"`
	NATS      NATSConfig      `yaml:"nats"`
}

// WebsocketConfig configures the websocket event feed.
type WebsocketConfig struct {
	URL string `yaml:"url"`
}

// NATSConfig configures the brokered event feed.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// FilterConfig holds the optional CEL drop-filter expression.
type FilterConfig struct {
	Expression string `yaml:"expression"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:     "http://localhost:6767",
			Timeout: Duration(10 * time.Second),
		},
		Transport: TransportConfig{
			Kind:   TransportWebsocket,
			Buffer: 64,
			Websocket: WebsocketConfig{
				URL: "ws://localhost:6767/api/socket",
			},
			NATS: NATSConfig{
				URL:     "nats://localhost:4222",
				Subject: "arrsync.events",
			},
		},
		Logging: DefaultLoggingConfig(),
	}
}

// Load reads configuration from path on top of defaults. A missing file is
// not an error; the defaults plus environment overrides apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.Logging.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ARRSYNC_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("ARRSYNC_API_KEY"); v != "" {
		c.Server.APIKey = v
	}
	if v := os.Getenv("ARRSYNC_SOCKET_URL"); v != "" {
		c.Transport.Websocket.URL = v
	}
	if v := os.Getenv("ARRSYNC_NATS_URL"); v != "" {
		c.Transport.NATS.URL = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server url cannot be empty")
	}

	switch c.Transport.Kind {
	case TransportWebsocket:
		if c.Transport.Websocket.URL == "" {
			return fmt.Errorf("websocket url cannot be empty")
		}
	case TransportNATS:
		if c.Transport.NATS.URL == "" {
			return fmt.Errorf("nats url cannot be empty")
		}
		if c.Transport.NATS.Subject == "" {
			return fmt.Errorf("nats subject cannot be empty")
		}
	default:
		return fmt.Errorf("invalid transport kind: %s (must be websocket or nats)", c.Transport.Kind)
	}

	return c.Logging.Validate()
}
