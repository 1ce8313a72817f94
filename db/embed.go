// Package db holds the ledger schema migrations.
package db

import "embed"

// Migrations contains the SQL migration files under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS
