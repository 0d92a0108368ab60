package migrate

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/example/court-booking/internal/db"
)

//go:embed *.sql
var fs embed.FS

// Files lists the embedded migrations in apply order.
func Files() ([]string, error) {
	entries, err := fs.ReadDir(".")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// lockKey serializes Up across instances sharing one database.
const lockKey = 7020_2026

// Up applies every pending migration. Each file and its schema_migrations
// row commit together, so a failed file leaves no version behind.
func Up(ctx context.Context, d *db.DB, log zerolog.Logger) error {
	files, err := Files()
	if err != nil {
		return err
	}
	if err := d.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("schema_migrations: %w", err)
	}

	applied := 0
	for _, f := range files {
		b, err := fs.ReadFile(f)
		if err != nil {
			return err
		}
		var ran bool
		err = d.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey); err != nil {
				return err
			}
			var done bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)`, f).Scan(&done); err != nil {
				return err
			}
			if done {
				return nil
			}
			if _, err := tx.Exec(ctx, string(b)); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations(version) VALUES ($1)`, f); err != nil {
				return err
			}
			ran = true
			return nil
		})
		if err != nil {
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if ran {
			applied++
			log.Info().Str("version", f).Msg("migration applied")
		}
	}
	log.Debug().Int("applied", applied).Int("total", len(files)).Msg("schema up to date")
	return nil
}
