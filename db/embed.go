// Package db embeds the catalog schema and the default seed file.
package db

import _ "embed"

// Schema contains the DDL for the catalog tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// Seed is the default catalog seed document.
//
//go:embed seed/catalog.json
var Seed []byte
