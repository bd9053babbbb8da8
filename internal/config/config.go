package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Download contains settings shared with the external downloader.
type Download struct {
	DataPath string `toml:"data_path" yaml:"data_path"`
	// Offset is advanced by the downloader after each invocation.
	Offset int `toml:"offset" yaml:"offset"`
}

// Metadata contains the metadata index cache location.
type Metadata struct {
	CachePath string `toml:"cache_path" yaml:"cache_path"`
	// CatalogPath points at a local copy of the RDF catalog archive used to
	// rebuild the cache. Empty disables rebuilding.
	CatalogPath string `toml:"catalog_path" yaml:"catalog_path"`
}

// Database contains connection parameters for the corpus store.
type Database struct {
	Driver    string `toml:"driver" yaml:"driver"`
	Username  string `toml:"username" yaml:"username"`
	Password  string `toml:"password" yaml:"password"`
	Host      string `toml:"host" yaml:"host"`
	Port      int    `toml:"port" yaml:"port"`
	Database  string `toml:"database" yaml:"database"`
	BatchSize int    `toml:"batch_size" yaml:"batch_size"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" yaml:"format"`
	Level  string `toml:"level" yaml:"level"`
	// File, when set, receives a copy of every log line.
	File string `toml:"file" yaml:"file"`
}

// API contains configuration for the read-only query server.
type API struct {
	Bind string `toml:"bind" yaml:"bind"`
	// Token, when set, must be presented as a bearer token on every request.
	Token string `toml:"token" yaml:"token"`
}

// Config encapsulates all configuration values for gutencorpus.
//
// Configuration sections by subsystem:
//   - Download: raw data directory and pagination offset
//   - Metadata: metadata cache artifact and catalog source
//   - Database: store driver, credentials, and commit batch size
//   - Logging: log format, level, and optional log file
//   - API: query server bind address
type Config struct {
	Download Download `toml:"download" yaml:"download"`
	Metadata Metadata `toml:"metadata" yaml:"metadata"`
	Database Database `toml:"database" yaml:"database"`
	Logging  Logging  `toml:"logging" yaml:"logging"`
	API      API      `toml:"api" yaml:"api"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/gutencorpus/config.toml")
}

// Load starts from Default, merges the file at path over it when present, and
// returns the normalized, validated result together with the resolved path and
// whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := cfg.MergeFile(resolvedPath); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// MergeFile overrides c with every key present in the file at path. Keys the
// file does not mention keep their current values.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	switch formatFor(path) {
	case formatYAML:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	default:
		decoder := toml.NewDecoder(bytes.NewReader(data))
		if err := decoder.Decode(c); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	return nil
}

// Merge overlays every non-zero value of other onto c.
func (c *Config) Merge(other Config) {
	mergeString(&c.Download.DataPath, other.Download.DataPath)
	if other.Download.Offset != 0 {
		c.Download.Offset = other.Download.Offset
	}
	mergeString(&c.Metadata.CachePath, other.Metadata.CachePath)
	mergeString(&c.Metadata.CatalogPath, other.Metadata.CatalogPath)
	mergeString(&c.Database.Driver, other.Database.Driver)
	mergeString(&c.Database.Username, other.Database.Username)
	mergeString(&c.Database.Password, other.Database.Password)
	mergeString(&c.Database.Host, other.Database.Host)
	if other.Database.Port != 0 {
		c.Database.Port = other.Database.Port
	}
	mergeString(&c.Database.Database, other.Database.Database)
	if other.Database.BatchSize != 0 {
		c.Database.BatchSize = other.Database.BatchSize
	}
	mergeString(&c.Logging.Format, other.Logging.Format)
	mergeString(&c.Logging.Level, other.Logging.Level)
	mergeString(&c.Logging.File, other.Logging.File)
	mergeString(&c.API.Bind, other.API.Bind)
	mergeString(&c.API.Token, other.API.Token)
}

// Override merges other onto c, then normalizes and validates the result.
func (c *Config) Override(other Config) error {
	c.Merge(other)
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

func mergeString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// Write serializes c to path, choosing YAML or TOML from the file extension.
func (c *Config) Write(path string) error {
	var (
		data []byte
		err  error
	)
	switch formatFor(path) {
	case formatYAML:
		data, err = yaml.Marshal(c)
	default:
		data, err = toml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// CreateSample writes the default configuration to path. An existing file is
// kept unless overwrite is set; the error then wraps fs.ErrExist.
func CreateSample(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s: %w", path, fs.ErrExist)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat config: %w", err)
		}
	}
	cfg := Default()
	return cfg.Write(path)
}

// DSN returns the database/sql driver name and data source for the configured
// backend.
func (c *Config) DSN() (string, string, error) {
	db := c.Database
	switch db.Driver {
	case DriverSQLite:
		return "sqlite", db.Database, nil
	case DriverPostgres:
		u := url.URL{Scheme: "postgres", Path: "/" + db.Database}
		host := db.Host
		if host == "" {
			host = "localhost"
		}
		if db.Port > 0 {
			host = net.JoinHostPort(host, strconv.Itoa(db.Port))
		}
		u.Host = host
		switch {
		case db.Username != "" && db.Password != "":
			u.User = url.UserPassword(db.Username, db.Password)
		case db.Username != "":
			u.User = url.User(db.Username)
		}
		return "pgx", u.String(), nil
	default:
		return "", "", fmt.Errorf("database.driver: unsupported value %q", db.Driver)
	}
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Download.DataPath, filepath.Dir(c.Metadata.CachePath)}
	if c.Database.Driver == DriverSQLite {
		dirs = append(dirs, filepath.Dir(c.Database.Database))
	}
	if c.Logging.File != "" {
		dirs = append(dirs, filepath.Dir(c.Logging.File))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("gutencorpus.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

type fileFormat int

const (
	formatTOML fileFormat = iota
	formatYAML
)

func formatFor(path string) fileFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatTOML
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
