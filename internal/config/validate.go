package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Download.DataPath) == "" {
		return errors.New("download.data_path must be set")
	}
	if strings.TrimSpace(c.Metadata.CachePath) == "" {
		return errors.New("metadata.cache_path must be set")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	db := c.Database
	switch db.Driver {
	case DriverSQLite:
		if db.Database == "" {
			return errors.New("database.database must be set")
		}
	case DriverPostgres:
		if db.Database == "" {
			return errors.New("database.database must name the postgres database")
		}
		if db.Port < 0 || db.Port > 65535 {
			return fmt.Errorf("database.port out of range: %d", db.Port)
		}
	default:
		return fmt.Errorf("database.driver: unsupported value %q (use %q or %q)", db.Driver, DriverSQLite, DriverPostgres)
	}
	if db.BatchSize <= 0 {
		return errors.New("database.batch_size must be positive")
	}
	return nil
}
