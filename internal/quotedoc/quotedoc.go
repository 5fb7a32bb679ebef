// Package quotedoc builds and reads the query string that fully describes a
// quote document: the pricing inputs plus the lead shown on the document.
// The PDF download and the print view share the exact same query string.
package quotedoc

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Simplici0/weddingquote/internal/adjustments"
	"github.com/Simplici0/weddingquote/internal/lead"
	"github.com/Simplici0/weddingquote/internal/pricing"
	"github.com/Simplici0/weddingquote/internal/siteconfig"
)

// Query keys that are never read as answers.
const (
	KeyPackageID   = siteconfig.QueryKeyPackageID
	KeyCustom      = siteconfig.QueryKeyCustom
	KeyRequests    = siteconfig.QueryKeyRequests
	KeyAdjustments = siteconfig.QueryKeyAdjustments
	KeyLocale      = siteconfig.QueryKeyLocale
)

const (
	ActionDownload = "download"
	ActionPrint    = "print"

	PDFPath   = "/quote/pdf"
	PrintPath = "/quote/print"
)

var (
	ErrUnknownAction  = errors.New("unknown document action")
	ErrUnknownPackage = errors.New("unknown package")
	ErrEmptyRequest   = errors.New("quote request names no package and is not custom")
)

// IsReserved reports whether key carries something other than an answer.
func IsReserved(key string) bool {
	return siteconfig.IsReservedQueryKey(key)
}

// Request is everything a quote document depends on.
type Request struct {
	PackageID          string
	IsCustom           bool
	Answers            pricing.Answers
	AdditionalRequests string
	Adjustments        []adjustments.Input
	Lead               lead.Payload
	Locale             string
}

// BuildSearchParams encodes r. False and blank answers are left out, as
// are answers whose id collides with a reserved key.
func BuildSearchParams(r Request) (url.Values, error) {
	q := url.Values{}
	if r.PackageID != "" {
		q.Set(KeyPackageID, r.PackageID)
	}
	if r.IsCustom {
		q.Set(KeyCustom, "true")
	}

	for id, answer := range r.Answers {
		if id == "" || IsReserved(id) {
			continue
		}
		switch {
		case answer.IsText:
			if strings.TrimSpace(answer.Text) != "" {
				q.Set(id, answer.Text)
			}
		case answer.Flag:
			q.Set(id, "1")
		}
	}

	if requests := strings.TrimSpace(r.AdditionalRequests); requests != "" {
		q.Set(KeyRequests, requests)
	}

	normalized, err := adjustments.Normalize(r.Adjustments)
	if err != nil {
		return nil, fmt.Errorf("normalize adjustments: %w", err)
	}
	token, err := adjustments.Serialize(normalized)
	if err != nil {
		return nil, err
	}
	if token != "" {
		q.Set(KeyAdjustments, token)
	}

	if r.Locale != "" {
		q.Set(KeyLocale, r.Locale)
	}
	lead.WriteToQuery(q, r.Lead)
	return q, nil
}

// Encode returns the canonical query string of r. Keys are sorted so equal
// requests always encode to the same string.
func Encode(r Request) (string, error) {
	q, err := BuildSearchParams(r)
	if err != nil {
		return "", err
	}
	return q.Encode(), nil
}

// ResolveAction returns the document path for action.
func ResolveAction(action string, r Request) (string, error) {
	var path string
	switch action {
	case ActionDownload:
		path = PDFPath
	case ActionPrint:
		path = PrintPath
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	qs, err := Encode(r)
	if err != nil {
		return "", err
	}
	return path + "?" + qs, nil
}

// Decoded is a request read back from a query string.
type Decoded struct {
	PackageID          string
	IsCustom           bool
	Answers            pricing.Answers
	AdditionalRequests string
	Adjustments        []adjustments.Adjustment
	Lead               lead.Payload
	Locale             string
}

// ParseQuery reads q back into a request. Every key outside the reserved
// set is an answer: "1" and "true" mean yes, anything else non-blank is
// kept as text.
func ParseQuery(q url.Values) (*Decoded, error) {
	d := &Decoded{
		PackageID:          strings.TrimSpace(q.Get(KeyPackageID)),
		IsCustom:           isTrue(q.Get(KeyCustom)),
		AdditionalRequests: strings.TrimSpace(q.Get(KeyRequests)),
		Locale:             q.Get(KeyLocale),
		Lead:               lead.ReadFromQuery(q),
		Answers:            pricing.Answers{},
	}

	inputs, err := adjustments.Deserialize(q.Get(KeyAdjustments))
	if err != nil {
		return nil, err
	}
	d.Adjustments, err = adjustments.Normalize(inputs)
	if err != nil {
		return nil, fmt.Errorf("normalize adjustments: %w", err)
	}

	for key := range q {
		if IsReserved(key) {
			continue
		}
		value := q.Get(key)
		switch {
		case isTrue(value):
			d.Answers[key] = pricing.Yes
		case strings.TrimSpace(value) != "":
			d.Answers[key] = pricing.TextAnswer(value)
		}
	}
	return d, nil
}

func isTrue(v string) bool {
	return v == "1" || v == "true"
}

// Request converts d back into a request that encodes to the same query.
func (d *Decoded) Request() Request {
	return Request{
		PackageID:          d.PackageID,
		IsCustom:           d.IsCustom,
		Answers:            d.Answers,
		AdditionalRequests: d.AdditionalRequests,
		Adjustments:        adjustments.Inputs(d.Adjustments),
		Lead:               d.Lead,
		Locale:             d.Locale,
	}
}

// Price runs the pricing engine for d. A package request that is not marked
// custom is priced as a fixed package.
func Price(cfg *siteconfig.AppConfig, d *Decoded) (*pricing.Result, error) {
	switch {
	case d.IsCustom:
		result, err := pricing.CalculateCustom(cfg, d.Answers, pricing.Options{
			AdditionalAdjustments: adjustments.Inputs(d.Adjustments),
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	case d.PackageID != "":
		result, ok := pricing.CalculateFixedPackage(cfg, d.PackageID)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPackage, d.PackageID)
		}
		return result, nil
	default:
		return nil, ErrEmptyRequest
	}
}

// SnapshotID identifies the pricing inputs of q. Lead fields and the
// locale do not change the quote and are left out of the hash.
func SnapshotID(q url.Values) string {
	pricingOnly := url.Values{}
	for key, values := range q {
		if key == KeyLocale || isLeadKey(key) {
			continue
		}
		pricingOnly[key] = values
	}
	sum := sha256.Sum256([]byte(pricingOnly.Encode()))
	return hex.EncodeToString(sum[:])[:20]
}

func isLeadKey(key string) bool {
	for _, k := range lead.QueryKeys() {
		if k == key {
			return true
		}
	}
	return false
}
