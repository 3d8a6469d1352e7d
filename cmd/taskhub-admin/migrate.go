package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type migrationFile struct {
	version int
	name    string
	path    string
	kind    string // up or down
}

func newMigrateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or revert SQL migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			m := &migrator{db: db, fsys: os.DirFS(dir), out: cmd.OutOrStdout()}
			return m.run(cmd.Context(), args[0])
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "migrations", "directory holding *.sql migrations")
	return cmd
}

type migrator struct {
	db   *sql.DB
	fsys fs.FS
	out  io.Writer
}

func (m *migrator) run(ctx context.Context, mode string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations: %w", err)
	}
	files, err := loadMigrationFiles(m.fsys)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	switch strings.ToLower(mode) {
	case "up":
		if err := m.applyUp(ctx, files); err != nil {
			return fmt.Errorf("migration up failed: %w", err)
		}
		fmt.Fprintln(m.out, "Migration up completed successfully")
	case "down":
		if err := m.applyDown(ctx, files); err != nil {
			return fmt.Errorf("migration down failed: %w", err)
		}
		fmt.Fprintln(m.out, "Migration down completed successfully")
	default:
		return fmt.Errorf("unknown mode: %s", mode)
	}
	return nil
}

func (m *migrator) ensureSchemaMigrations(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	return err
}

// loadMigrationFiles lists NNN_name.up.sql / NNN_name.down.sql files sorted by version.
// A file without the .down suffix counts as an up migration.
func loadMigrationFiles(fsys fs.FS) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var files []migrationFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, ".sql") {
			continue
		}

		kind := "up"
		if strings.HasSuffix(lower, ".down.sql") {
			kind = "down"
		}

		ver, migName, err := parseVersionAndName(name)
		if err != nil {
			continue
		}
		files = append(files, migrationFile{version: ver, name: migName, path: name, kind: kind})
	}

	sort.SliceStable(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

// parseVersionAndName splits "000001_create_entities.up.sql" into 1 and "create_entities".
func parseVersionAndName(filename string) (int, string, error) {
	parts := strings.SplitN(filename, "_", 2)
	if len(parts) < 2 {
		return 0, "", errors.New("invalid filename")
	}
	ver, err := strconv.Atoi(parts[0])
	if err != nil || ver < 0 {
		return 0, "", errors.New("invalid version")
	}
	name := parts[1]
	for _, suffix := range []string{".up.sql", ".down.sql", ".sql"} {
		if strings.HasSuffix(strings.ToLower(name), suffix) {
			name = name[:len(name)-len(suffix)]
			break
		}
	}
	return ver, name, nil
}

func (m *migrator) alreadyApplied(ctx context.Context, version int) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)", version).Scan(&exists)
	return exists, err
}

func (m *migrator) applyUp(ctx context.Context, files []migrationFile) error {
	for _, f := range files {
		if f.kind != "up" {
			continue
		}
		applied, err := m.alreadyApplied(ctx, f.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		fmt.Fprintf(m.out, "Applying up %03d: %s\n", f.version, f.name)
		err = m.execFile(ctx, f, "INSERT INTO schema_migrations(version, name, applied_at) VALUES($1,$2,$3)",
			f.version, f.name, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed applying %s: %w", f.path, err)
		}
	}
	return nil
}

func (m *migrator) applyDown(ctx context.Context, files []migrationFile) error {
	var downs []migrationFile
	for _, f := range files {
		if f.kind == "down" {
			downs = append(downs, f)
		}
	}
	sort.SliceStable(downs, func(i, j int) bool { return downs[i].version > downs[j].version })

	for _, f := range downs {
		applied, err := m.alreadyApplied(ctx, f.version)
		if err != nil {
			return err
		}
		if !applied {
			continue
		}

		fmt.Fprintf(m.out, "Reverting down %03d: %s\n", f.version, f.name)
		if err := m.execFile(ctx, f, "DELETE FROM schema_migrations WHERE version=$1", f.version); err != nil {
			return fmt.Errorf("failed reverting %s: %w", f.path, err)
		}
	}
	return nil
}

// execFile runs the migration body and its bookkeeping statement in one transaction.
func (m *migrator) execFile(ctx context.Context, f migrationFile, bookkeeping string, args ...any) error {
	body, err := fs.ReadFile(m.fsys, path.Clean(f.path))
	if err != nil {
		return err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, args...); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
