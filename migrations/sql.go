// Package migrations holds the schema for both storage backends: PocketBase
// collection migrations registered on import, and the PostgreSQL DDL.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// PostgresScript is one embedded SQL migration file
type PostgresScript struct {
	Name string
	SQL  string
}

// PostgresScripts returns the embedded SQL migrations in file name order
func PostgresScripts() ([]PostgresScript, error) {
	names, err := fs.Glob(sqlFiles, "sql/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	scripts := make([]PostgresScript, 0, len(names))
	for _, name := range names {
		data, err := sqlFiles.ReadFile(name)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, PostgresScript{Name: name, SQL: string(data)})
	}
	return scripts, nil
}
