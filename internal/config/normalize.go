package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDatabase(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.Token == "" {
		if value, ok := os.LookupEnv("GUTENCORPUS_API_TOKEN"); ok {
			c.API.Token = strings.TrimSpace(value)
		}
	}
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Download.DataPath) == "" {
		c.Download.DataPath = defaultDataPath
	}
	if c.Download.DataPath, err = expandPath(c.Download.DataPath); err != nil {
		return fmt.Errorf("download.data_path: %w", err)
	}
	if c.Download.Offset < 0 {
		c.Download.Offset = 0
	}
	if strings.TrimSpace(c.Metadata.CachePath) == "" {
		c.Metadata.CachePath = defaultMetadataCache
	}
	if c.Metadata.CachePath, err = expandPath(c.Metadata.CachePath); err != nil {
		return fmt.Errorf("metadata.cache_path: %w", err)
	}
	if c.Metadata.CatalogPath, err = expandPath(strings.TrimSpace(c.Metadata.CatalogPath)); err != nil {
		return fmt.Errorf("metadata.catalog_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeDatabase() error {
	db := &c.Database
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case "", "sqlite", "sqlite3":
		db.Driver = DriverSQLite
	case "postgres", "postgresql", "pgx":
		db.Driver = DriverPostgres
	default:
		db.Driver = strings.ToLower(strings.TrimSpace(db.Driver))
	}
	db.Username = strings.TrimSpace(db.Username)
	db.Host = strings.TrimSpace(db.Host)
	if db.Password == "" {
		if value, ok := os.LookupEnv("GUTENCORPUS_DB_PASSWORD"); ok {
			db.Password = value
		}
	}
	db.Database = strings.TrimSpace(db.Database)
	if db.BatchSize <= 0 {
		db.BatchSize = defaultBatchSize
	}

	if db.Driver == DriverSQLite {
		if db.Database == "" {
			db.Database = defaultDatabasePath
		}
		var err error
		if db.Database, err = expandPath(db.Database); err != nil {
			return fmt.Errorf("database.database: %w", err)
		}
	}
	if db.Driver == DriverPostgres && db.Port == 0 {
		db.Port = defaultPostgresPort
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
