// Package store persists corpus records in a relational database and exposes
// the staged insert/commit interface the ingestion pipeline drives.
//
// SQLite (modernc.org/sqlite) is the default backend; PostgreSQL is reached
// through pgx's database/sql driver. The schema is an explicit value passed
// to Open and is created if absent, never altered or dropped. Inserts are
// staged in an open transaction until Commit makes them durable.
package store
