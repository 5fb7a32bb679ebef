package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Simplici0/weddingquote/internal/lead"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// LeadFilter selects a page of leads. Query matches names, email and
// wedding location.
type LeadFilter struct {
	Query    string
	Page     int
	PageSize int
}

type LeadPage struct {
	Leads    []lead.Record `json:"leads"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

const leadColumns = `
	id, created_at, first_name, last_name, email, phone, wedding_location, locale,
	COALESCE(package_id, ''), is_custom, COALESCE(quote_id, ''), COALESCE(quote_snapshot, ''),
	COALESCE(additional_requests, ''), COALESCE(gdpr_accepted_at, '')`

// InsertLead stores rec, assigning an id and creation time when missing.
func (s *Store) InsertLead(ctx context.Context, rec lead.Record) (lead.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	if rec.Locale == "" {
		rec.Locale = "it"
	}

	var gdpr any
	if rec.GDPRAcceptedAt != nil {
		gdpr = formatTime(*rec.GDPRAcceptedAt)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO leads (
			id, created_at, first_name, last_name, email, phone, wedding_location, locale,
			package_id, is_custom, quote_id, quote_snapshot, additional_requests, gdpr_accepted_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, formatTime(rec.CreatedAt), rec.FirstName, rec.LastName, rec.Email, rec.Phone,
		rec.WeddingLocation, rec.Locale, nullString(rec.PackageID), rec.IsCustom,
		nullString(rec.QuoteID), nullString(string(rec.QuoteSnapshot)),
		nullString(rec.AdditionalRequests), gdpr,
	); err != nil {
		return lead.Record{}, fmt.Errorf("insert lead: %w", err)
	}
	return rec, nil
}

// ListLeads returns the newest leads first.
func (s *Store) ListLeads(ctx context.Context, f LeadFilter) (LeadPage, error) {
	query := strings.TrimSpace(f.Query)
	search := "%" + query + "%"
	page, size := normalizePage(f.Page, f.PageSize)

	const where = `
		WHERE (? = ''
			OR first_name LIKE ?
			OR last_name LIKE ?
			OR email LIKE ?
			OR wedding_location LIKE ?)`
	args := []any{query, search, search, search, search}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return LeadPage{}, fmt.Errorf("count leads: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads`+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, append(args, size, (page-1)*size)...)
	if err != nil {
		return LeadPage{}, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]lead.Record, 0)
	for rows.Next() {
		rec, err := scanLead(rows)
		if err != nil {
			return LeadPage{}, err
		}
		leads = append(leads, rec)
	}
	if err := rows.Err(); err != nil {
		return LeadPage{}, fmt.Errorf("iterate leads: %w", err)
	}

	return LeadPage{Leads: leads, Total: total, Page: page, PageSize: size}, nil
}

func (s *Store) GetLead(ctx context.Context, id string) (lead.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	rec, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return lead.Record{}, ErrNotFound
	}
	return rec, err
}

func (s *Store) DeleteLead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLead(row scanner) (lead.Record, error) {
	var (
		rec       lead.Record
		createdAt string
		snapshot  string
		gdpr      string
	)
	if err := row.Scan(
		&rec.ID, &createdAt, &rec.FirstName, &rec.LastName, &rec.Email, &rec.Phone,
		&rec.WeddingLocation, &rec.Locale, &rec.PackageID, &rec.IsCustom, &rec.QuoteID,
		&snapshot, &rec.AdditionalRequests, &gdpr,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lead.Record{}, err
		}
		return lead.Record{}, fmt.Errorf("scan lead: %w", err)
	}

	t, err := parseTime(createdAt)
	if err != nil {
		return lead.Record{}, fmt.Errorf("parse lead created_at: %w", err)
	}
	rec.CreatedAt = t
	if snapshot != "" {
		rec.QuoteSnapshot = json.RawMessage(snapshot)
	}
	if gdpr != "" {
		accepted, err := parseTime(gdpr)
		if err != nil {
			return lead.Record{}, fmt.Errorf("parse lead gdpr_accepted_at: %w", err)
		}
		rec.GDPRAcceptedAt = &accepted
	}
	return rec, nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
