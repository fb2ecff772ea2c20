// Package appfs holds files embedded into the binary: email templates
// and database migrations.
package appfs

import "embed"

//go:embed assets migrations
var FS embed.FS
