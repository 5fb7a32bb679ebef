package lead

import (
	"net/url"
	"strings"
)

// Query keys. The legacy keys are still read but never written.
const (
	KeyFirstName       = "firstName"
	KeyLastName        = "lastName"
	KeyEmail           = "email"
	KeyPhone           = "phone"
	KeyWeddingLocation = "weddingLocation"

	legacyFirstName = "first_name"
	legacyLastName  = "last_name"
	legacyLocation  = "location"
)

type queryField struct {
	key    string
	legacy string
	get    func(Payload) string
	set    func(*Payload, string)
}

var queryFields = []queryField{
	{KeyFirstName, legacyFirstName, func(p Payload) string { return p.FirstName }, func(p *Payload, v string) { p.FirstName = v }},
	{KeyLastName, legacyLastName, func(p Payload) string { return p.LastName }, func(p *Payload, v string) { p.LastName = v }},
	{KeyEmail, "", func(p Payload) string { return p.Email }, func(p *Payload, v string) { p.Email = v }},
	{KeyPhone, "", func(p Payload) string { return p.Phone }, func(p *Payload, v string) { p.Phone = v }},
	{KeyWeddingLocation, legacyLocation, func(p Payload) string { return p.WeddingLocation }, func(p *Payload, v string) { p.WeddingLocation = v }},
}

// QueryKeys returns every key ReadFromQuery looks at.
func QueryKeys() []string {
	keys := make([]string, 0, len(queryFields)+3)
	for _, f := range queryFields {
		keys = append(keys, f.key)
		if f.legacy != "" {
			keys = append(keys, f.legacy)
		}
	}
	return keys
}

// ReadFromQuery returns the lead fields present in q. Current keys win over
// legacy ones; blank values are absent.
func ReadFromQuery(q url.Values) Payload {
	var p Payload
	for _, f := range queryFields {
		if v := q.Get(f.key); strings.TrimSpace(v) != "" {
			f.set(&p, v)
			continue
		}
		if f.legacy == "" {
			continue
		}
		if v := q.Get(f.legacy); strings.TrimSpace(v) != "" {
			f.set(&p, v)
		}
	}
	return p
}

// WriteToQuery sets the current key of every non-blank field of p. Other
// parameters in q are left alone.
func WriteToQuery(q url.Values, p Payload) {
	for _, f := range queryFields {
		if v := f.get(p); strings.TrimSpace(v) != "" {
			q.Set(f.key, v)
		}
	}
}

// IsZero reports whether no contact field is set.
func (p Payload) IsZero() bool {
	return p == Payload{}
}
