// Package migrations holds the SQL schema of the notebook database.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// FS holds the numbered NNN_name.up.sql and NNN_name.down.sql scripts.
//
//go:embed *.sql
var FS embed.FS

const upSuffix = ".up.sql"

// Migration is one forward schema step.
type Migration struct {
	Version int
	Name    string
	Script  string
}

// Pending returns the up migrations of fsys newer than current, oldest first.
// Files without a numeric prefix are ignored.
func Pending(fsys fs.FS, current int) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var out []Migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, upSuffix) {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version <= current {
			continue
		}
		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", name, err)
		}
		out = append(out, Migration{Version: version, Name: name, Script: string(script)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
