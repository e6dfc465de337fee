// Package migrations содержит SQL-схему хранилища регионов для goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
