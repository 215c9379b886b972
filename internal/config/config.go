package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigRelPath = ".harsift/config.yaml"

// ExtractConfig tunes classification and file naming. The defaults
// match the extraction heuristics exactly; overriding them changes
// which entries count as API calls.
type ExtractConfig struct {
	BlockedExtensions []string `yaml:"blocked_extensions"`
	APIPathHints      []string `yaml:"api_path_hints"`
	WriteMethods      []string `yaml:"write_methods"`
	SlugMaxLen        int      `yaml:"slug_max_len"`
	IncludeNonJSON    bool     `yaml:"include_nonjson"`
}

type RedactConfig struct {
	BodyFields  []string `yaml:"body_fields"`
	Replacement string   `yaml:"replacement"`
}

type OutputConfig struct {
	Separator string `yaml:"separator"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Config struct {
	Extract ExtractConfig `yaml:"extract"`
	Redact  RedactConfig  `yaml:"redact"`
	Output  OutputConfig  `yaml:"output"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// Load loads YAML config, then applies .env and env overrides.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}
	cfg.SetDefaults()

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		configPath = filepath.Join(home, defaultConfigRelPath)
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	_ = godotenv.Load()
	applyEnvOverrides(cfg)

	if cfg.Storage.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.Storage.Path = filepath.Join(home, ".harsift", "harsift.db")
	}
	return cfg, nil
}

func (c *Config) SetDefaults() {
	if len(c.Extract.BlockedExtensions) == 0 {
		c.Extract.BlockedExtensions = []string{
			".js", ".css", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico",
			".woff", ".woff2", ".ttf", ".otf", ".map", ".mp4", ".webm", ".mp3",
			".wav", ".ogg", ".pdf", ".zip", ".gz", ".br", ".webp", ".avif",
			".heic", ".eot",
		}
	}
	if len(c.Extract.APIPathHints) == 0 {
		c.Extract.APIPathHints = []string{"/api/", "/v1/", "/v2/", "/graphql", "/wp-json/"}
	}
	if len(c.Extract.WriteMethods) == 0 {
		c.Extract.WriteMethods = []string{"POST", "PUT", "PATCH", "DELETE"}
	}
	if c.Extract.SlugMaxLen == 0 {
		c.Extract.SlugMaxLen = 60
	}
	if c.Redact.Replacement == "" {
		c.Redact.Replacement = "***REDACTED***"
	}
	if c.Output.Separator == "" {
		c.Output.Separator = "|"
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func applyEnvOverrides(c *Config) {
	setInt(&c.Extract.SlugMaxLen, "HARSIFT_EXTRACT_SLUG_MAX_LEN")
	setBool(&c.Extract.IncludeNonJSON, "HARSIFT_EXTRACT_INCLUDE_NONJSON")
	setString(&c.Redact.Replacement, "HARSIFT_REDACT_REPLACEMENT")
	setString(&c.Output.Separator, "HARSIFT_OUTPUT_SEPARATOR")
	setString(&c.Storage.Path, "HARSIFT_STORAGE_PATH")
	setString(&c.Server.Host, "HARSIFT_SERVER_HOST")
	setInt(&c.Server.Port, "HARSIFT_SERVER_PORT")
	setString(&c.Log.Level, "HARSIFT_LOG_LEVEL")
	setString(&c.Log.File, "HARSIFT_LOG_FILE")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
