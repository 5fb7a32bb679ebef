// Package lead maps the contact details of a quote request between the wire
// shape used in forms, URLs and caches and the storage shape persisted in
// the leads table.
package lead

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"github.com/Simplici0/weddingquote/internal/validation"
)

const minPhoneDigits = 6

// Payload is the wire shape of a lead.
type Payload struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required"`
	WeddingLocation string `json:"weddingLocation"`
}

// Meta is the request metadata stored alongside the contact fields.
type Meta struct {
	ID                 string
	CreatedAt          time.Time
	Locale             string
	PackageID          string
	IsCustom           bool
	QuoteID            string
	QuoteSnapshot      json.RawMessage
	AdditionalRequests string
	GDPRAcceptedAt     *time.Time
}

// Record is the storage shape of a lead.
type Record struct {
	ID                 string          `json:"id"`
	CreatedAt          time.Time       `json:"created_at"`
	FirstName          string          `json:"first_name"`
	LastName           string          `json:"last_name"`
	Email              string          `json:"email"`
	Phone              string          `json:"phone"`
	WeddingLocation    string          `json:"wedding_location"`
	Locale             string          `json:"locale"`
	PackageID          string          `json:"package_id,omitempty"`
	IsCustom           bool            `json:"is_custom"`
	QuoteID            string          `json:"quote_id,omitempty"`
	QuoteSnapshot      json.RawMessage `json:"quote_snapshot,omitempty"`
	AdditionalRequests string          `json:"additional_requests,omitempty"`
	GDPRAcceptedAt     *time.Time      `json:"gdpr_accepted_at,omitempty"`
}

// Payload returns the wire shape of r.
func (r Record) Payload() Payload {
	return Payload{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email,
		Phone:           r.Phone,
		WeddingLocation: r.WeddingLocation,
	}
}

type fieldKeys struct {
	wire    string
	storage string
	set     func(*Payload, string)
}

var fields = []fieldKeys{
	{"firstName", "first_name", func(p *Payload, v string) { p.FirstName = v }},
	{"lastName", "last_name", func(p *Payload, v string) { p.LastName = v }},
	{"email", "email", func(p *Payload, v string) { p.Email = v }},
	{"phone", "phone", func(p *Payload, v string) { p.Phone = v }},
	{"weddingLocation", "wedding_location", func(p *Payload, v string) { p.WeddingLocation = v }},
}

// ToWirePayload extracts the contact fields from a wire- or storage-shaped
// object. Wire keys win when both are present; blank and non-string values
// count as absent.
func ToWirePayload(src map[string]any) Payload {
	var p Payload
	for _, f := range fields {
		if v, ok := stringField(src, f.wire); ok {
			f.set(&p, v)
			continue
		}
		if v, ok := stringField(src, f.storage); ok {
			f.set(&p, v)
		}
	}
	return p
}

func stringField(src map[string]any, key string) (string, bool) {
	s, ok := src[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// FinalizeWirePayload trims p and checks it is complete enough to contact
// the couple. Every failing field is reported.
func FinalizeWirePayload(p Payload) (Payload, error) {
	out := Payload{
		FirstName:       strings.TrimSpace(p.FirstName),
		LastName:        strings.TrimSpace(p.LastName),
		Email:           strings.TrimSpace(p.Email),
		Phone:           strings.TrimSpace(p.Phone),
		WeddingLocation: strings.TrimSpace(p.WeddingLocation),
	}

	verr := &validation.Error{}
	if err := verr.Merge(validation.Struct(out)); err != nil {
		return Payload{}, err
	}
	if out.Phone != "" && countDigits(out.Phone) < minPhoneDigits {
		verr.Add("phone", "must contain at least %d digits", minPhoneDigits)
	}
	if err := verr.OrNil(); err != nil {
		return Payload{}, err
	}
	return out, nil
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// ToStorageRecord combines the contact fields with caller metadata.
func ToStorageRecord(p Payload, meta Meta) Record {
	return Record{
		ID:                 meta.ID,
		CreatedAt:          meta.CreatedAt,
		FirstName:          p.FirstName,
		LastName:           p.LastName,
		Email:              p.Email,
		Phone:              p.Phone,
		WeddingLocation:    p.WeddingLocation,
		Locale:             meta.Locale,
		PackageID:          meta.PackageID,
		IsCustom:           meta.IsCustom,
		QuoteID:            meta.QuoteID,
		QuoteSnapshot:      meta.QuoteSnapshot,
		AdditionalRequests: meta.AdditionalRequests,
		GDPRAcceptedAt:     meta.GDPRAcceptedAt,
	}
}
