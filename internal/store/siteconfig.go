package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Simplici0/weddingquote/internal/siteconfig"
)

// SiteConfig loads and parses the stored configuration document.
func (s *Store) SiteConfig(ctx context.Context) (*siteconfig.AppConfig, error) {
	var document string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM site_config WHERE id = 1`).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query site config: %w", err)
	}

	cfg, err := siteconfig.Parse([]byte(document))
	if err != nil {
		return nil, fmt.Errorf("parse stored site config: %w", err)
	}
	return cfg, nil
}

// SaveSiteConfig validates cfg and replaces the stored document.
func (s *Store) SaveSiteConfig(ctx context.Context, cfg *siteconfig.AppConfig) error {
	if err := siteconfig.Validate(cfg); err != nil {
		return err
	}

	document, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal site config: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO site_config (id, document, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at
	`, string(document), formatTime(s.now())); err != nil {
		return fmt.Errorf("save site config: %w", err)
	}
	return nil
}
