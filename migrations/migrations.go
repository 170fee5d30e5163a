// Package migrations embeds the goose-format SQL migrations and applies their
// Up sections.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/uptrace/bun"
)

//go:embed *.sql
var files embed.FS

type rawExecutor interface {
	NewRaw(query string, args ...any) *bun.RawQuery
}

// Up applies every migration not yet recorded in schema_migrations, each in
// its own transaction.
func Up(ctx context.Context, db *bun.DB) ([]string, error) {
	if _, err := db.NewRaw(`CREATE TABLE IF NOT EXISTS schema_migrations (version text PRIMARY KEY, applied_at timestamptz NOT NULL DEFAULT now())`).Exec(ctx); err != nil {
		return nil, err
	}

	names, err := names()
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, name := range names {
		var done bool
		if err := db.NewRaw(`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)`, name).Scan(ctx, &done); err != nil {
			return applied, err
		}
		if done {
			continue
		}

		err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if err := applyFile(ctx, tx, name); err != nil {
				return err
			}
			_, err := tx.NewRaw(`INSERT INTO schema_migrations (version) VALUES (?)`, name).Exec(ctx)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("apply %s: %w", name, err)
		}
		applied = append(applied, name)
	}
	return applied, nil
}

// Apply runs every Up section against exec without version bookkeeping. Tests
// use it to build a throwaway schema inside a transaction.
func Apply(ctx context.Context, exec rawExecutor) error {
	names, err := names()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := applyFile(ctx, exec, name); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}

func names() ([]string, error) {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

func applyFile(ctx context.Context, exec rawExecutor, name string) error {
	b, err := files.ReadFile(name)
	if err != nil {
		return err
	}
	upSQL, err := extractGooseUp(string(b))
	if err != nil {
		return err
	}
	for _, stmt := range splitSQLStatements(upSQL) {
		if _, err := exec.NewRaw(stmt).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func extractGooseUp(sql string) (string, error) {
	upMarker := "-- +goose Up"
	downMarker := "-- +goose Down"

	upIdx := strings.Index(sql, upMarker)
	if upIdx < 0 {
		return "", fmt.Errorf("missing goose up marker")
	}
	afterUp := sql[upIdx+len(upMarker):]
	afterUp = strings.TrimLeft(afterUp, "\r\n")

	downIdx := strings.Index(afterUp, downMarker)
	if downIdx < 0 {
		return strings.TrimSpace(afterUp), nil
	}
	return strings.TrimSpace(afterUp[:downIdx]), nil
}

func splitSQLStatements(sql string) []string {
	parts := strings.Split(sql, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
