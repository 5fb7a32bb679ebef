// Package adjustments normalizes the ad-hoc charges and discounts an
// operator or client adds on top of a quote, and packs them into a single
// query-string token.
package adjustments

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/weddingquote/internal/validation"
)

// Input is an adjustment as typed in a form or decoded from a token. The
// delta may be a JSON number or a numeric string.
type Input struct {
	ID            string `json:"id,omitempty"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	PriceDeltaNet any    `json:"priceDeltaNet"`
}

// Adjustment is a normalized adjustment.
type Adjustment struct {
	ID            string  `json:"id" validate:"required,slug"`
	Title         string  `json:"title" validate:"max=200"`
	Description   string  `json:"description,omitempty" validate:"max=2000"`
	PriceDeltaNet float64 `json:"priceDeltaNet"`
}

// Normalize trims and coerces items, assigns positional ids and drops empty
// entries. Any surviving item that breaks the shape fails the whole call.
func Normalize(items []Input) ([]Adjustment, error) {
	out := make([]Adjustment, 0, len(items))
	verr := &validation.Error{}

	for i, item := range items {
		adj := Adjustment{
			ID:            strings.TrimSpace(item.ID),
			Title:         strings.TrimSpace(item.Title),
			Description:   strings.TrimSpace(item.Description),
			PriceDeltaNet: coerceDelta(item.PriceDeltaNet),
		}
		if adj.ID == "" {
			adj.ID = fmt.Sprintf("adj_%d", i+1)
		}
		if adj.Title == "" && adj.Description == "" && adj.PriceDeltaNet == 0 {
			continue
		}

		if err := validation.Struct(adj); err != nil {
			var itemErr *validation.Error
			if !errors.As(err, &itemErr) {
				return nil, err
			}
			for _, issue := range itemErr.Issues {
				verr.Add(fmt.Sprintf("[%d].%s", i, issue.Path), "%s", issue.Message)
			}
			continue
		}
		out = append(out, adj)
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// Inputs converts normalized adjustments back into inputs.
func Inputs(adjs []Adjustment) []Input {
	out := make([]Input, 0, len(adjs))
	for _, a := range adjs {
		out = append(out, Input{ID: a.ID, Title: a.Title, Description: a.Description, PriceDeltaNet: a.PriceDeltaNet})
	}
	return out
}

// Sum adds up the deltas.
func Sum(adjs []Adjustment) decimal.Decimal {
	total := decimal.Zero
	for _, a := range adjs {
		total = total.Add(decimal.NewFromFloat(a.PriceDeltaNet))
	}
	return total
}

// Serialize packs adjustments into a URL-safe token. An empty list is the
// empty string.
func Serialize(adjs []Adjustment) (string, error) {
	if len(adjs) == 0 {
		return "", nil
	}
	data, err := json.Marshal(adjs)
	if err != nil {
		return "", fmt.Errorf("marshal adjustments: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Deserialize unpacks a token produced by Serialize. The result still needs
// Normalize before use.
func Deserialize(token string) ([]Input, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return []Input{}, nil
	}

	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, &validation.ParseError{What: "adjustments", Err: err}
	}

	var items []Input
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &validation.ParseError{What: "adjustments", Err: err}
	}
	if items == nil {
		items = []Input{}
	}
	return items, nil
}

func coerceDelta(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
