// Package config loads, normalizes, and validates gutencorpus configuration.
//
// It supplies repository defaults, merges TOML or YAML files over them,
// expands user paths (including tilde shortcuts), and honours environment
// fallbacks such as GUTENCORPUS_DB_PASSWORD. The Config type groups the
// download, metadata, database, logging, and API settings that the CLI and
// ingestion pipeline need.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical driver names, and clear validation errors.
package config
