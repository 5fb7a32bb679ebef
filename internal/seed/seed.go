package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/weddingquote/internal/siteconfig"
	"github.com/Simplici0/weddingquote/internal/store"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(ctx, tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureSiteConfig(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(ctx context.Context, tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := store.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, hash); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

// ensureSiteConfig stores the built-in configuration on first start and
// replaces a stored document that no longer parses.
func ensureSiteConfig(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	var document string
	err := tx.QueryRowContext(ctx, `SELECT document FROM site_config WHERE id = 1`).Scan(&document)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO site_config (id, document, updated_at)
			VALUES (1, ?, ?)
		`, string(siteconfig.DefaultJSON()), now()); err != nil {
			return fmt.Errorf("insert default site config: %w", err)
		}
		stats.Inserts++
		return nil
	case err != nil:
		return fmt.Errorf("check site config existence: %w", err)
	}

	if _, err := siteconfig.Parse([]byte(document)); err == nil {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE site_config SET document = ?, updated_at = ? WHERE id = 1
	`, string(siteconfig.DefaultJSON()), now()); err != nil {
		return fmt.Errorf("reset invalid site config: %w", err)
	}
	stats.Updates++
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
