// Package db embeds the goose SQL migrations.
package db

import "embed"

const MigrationsDir = "migrations"

//go:embed migrations/*.sql
var Migrations embed.FS
