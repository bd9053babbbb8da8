package config

import "path/filepath"

const (
	defaultBaseDir      = "ProjectGutenbergCorpus"
	defaultDriver       = DriverSQLite
	defaultBatchSize    = 100
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultAPIBind      = "127.0.0.1:7488"
	defaultPostgresPort = 5432
)

var (
	defaultDataPath      = filepath.Join(defaultBaseDir, "rawdata")
	defaultMetadataCache = filepath.Join(defaultBaseDir, "metadata.json.gz")
	defaultDatabasePath  = filepath.Join(defaultBaseDir, "gutenberg.db3")
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Download: Download{
			DataPath: defaultDataPath,
			Offset:   0,
		},
		Metadata: Metadata{
			CachePath: defaultMetadataCache,
		},
		Database: Database{
			Driver:    defaultDriver,
			Database:  defaultDatabasePath,
			BatchSize: defaultBatchSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		API: API{
			Bind: defaultAPIBind,
		},
	}
}
