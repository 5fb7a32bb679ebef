// Package pricing computes wedding quotes from the site configuration:
// fixed packages and the custom question flow.
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/weddingquote/internal/adjustments"
	"github.com/Simplici0/weddingquote/internal/siteconfig"
)

// QuestionAdjustment is a price delta applied by a question answer.
type QuestionAdjustment struct {
	QuestionID    string  `json:"questionId"`
	PriceDeltaNet float64 `json:"priceDeltaNet"`
}

// Result is a computed quote. PackageAdjustmentNet is the package discount
// for a fixed package, or every non line-item delta for a custom quote.
type Result struct {
	LineItems             []siteconfig.LineItem    `json:"lineItems"`
	SubtotalNet           float64                  `json:"subtotalNet"`
	PackageAdjustmentNet  float64                  `json:"packageAdjustmentNet"`
	TotalNet              float64                  `json:"totalNet"`
	VATRate               float64                  `json:"vatRate"`
	VATAmount             float64                  `json:"vatAmount"`
	TotalGross            float64                  `json:"totalGross"`
	QuestionAdjustments   []QuestionAdjustment     `json:"questionAdjustments,omitempty"`
	AdditionalAdjustments []adjustments.Adjustment `json:"additionalAdjustments,omitempty"`
	TextAnswers           map[string]string        `json:"textAnswers,omitempty"`
	PackageID             string                   `json:"packageId,omitempty"`
	IsCustom              bool                     `json:"isCustom"`
}

// Options carries the optional inputs of a custom quote.
type Options struct {
	AdditionalAdjustments []adjustments.Input
}

// CalculateFixedPackage prices the package with id. It reports false when
// the package does not exist.
func CalculateFixedPackage(cfg *siteconfig.AppConfig, packageID string) (*Result, bool) {
	pkg, ok := cfg.Package(packageID)
	if !ok {
		return nil, false
	}

	items := make([]siteconfig.LineItem, len(pkg.LineItems))
	copy(items, pkg.LineItems)

	subtotal := sumItems(items)
	adjustment := decimal.NewFromFloat(pkg.PackageAdjustmentNet)

	result := totals(subtotal, adjustment, cfg.VATRate)
	result.LineItems = items
	result.PackageID = pkg.ID
	return result, true
}

// CalculateCustom walks the question tree with answers and prices the
// resulting line items and adjustments. The only errors are a malformed
// question tree and malformed additional adjustments.
func CalculateCustom(cfg *siteconfig.AppConfig, answers Answers, opts Options) (*Result, error) {
	items := newItemSet()
	for _, item := range cfg.CustomFlow.BaseLineItems {
		items.upsert(item)
	}

	tree, err := siteconfig.BuildQuestionTree(cfg.CustomFlow.Questions)
	if err != nil {
		return nil, fmt.Errorf("build question tree: %w", err)
	}

	w := &walker{
		tree:     tree,
		answers:  answers,
		items:    items,
		visited:  make(map[string]bool),
		textVals: make(map[string]string),
		delta:    decimal.Zero,
	}
	for _, q := range tree.Roots() {
		w.visit(q)
	}

	additional, err := adjustments.Normalize(opts.AdditionalAdjustments)
	if err != nil {
		return nil, fmt.Errorf("normalize adjustments: %w", err)
	}

	lineItems := items.list()
	adjustment := w.delta.Add(adjustments.Sum(additional))

	result := totals(sumItems(lineItems), adjustment, cfg.VATRate)
	result.LineItems = lineItems
	result.IsCustom = true
	result.QuestionAdjustments = w.applied
	if len(additional) > 0 {
		result.AdditionalAdjustments = additional
	}
	if len(w.textVals) > 0 {
		result.TextAnswers = w.textVals
	}
	return result, nil
}

type walker struct {
	tree     *siteconfig.QuestionTree
	answers  Answers
	items    *itemSet
	visited  map[string]bool
	textVals map[string]string
	delta    decimal.Decimal
	applied  []QuestionAdjustment
}

func (w *walker) visit(q *siteconfig.Question) {
	if !q.Enabled || w.visited[q.ID] {
		return
	}
	w.visited[q.ID] = true

	answer, answered := w.answers[q.ID]
	if q.Type == siteconfig.TypeText && answered && answer.IsText {
		if text := strings.TrimSpace(answer.Text); text != "" {
			w.textVals[q.ID] = text
		}
	}

	yes := answered && answer.Truthy()
	effect := q.EffectsNo
	if yes {
		effect = q.EffectsYes
	}
	w.apply(q.ID, effect)

	for _, child := range w.tree.Children(q.ID) {
		if shows(child.ShowWhen, yes) {
			w.visit(child)
		}
	}
}

// apply upserts the effect's line items. The delta only counts for effects
// without line items.
func (w *walker) apply(questionID string, effect *siteconfig.QuestionEffect) {
	if effect == nil {
		return
	}
	if len(effect.AddLineItems) > 0 {
		for _, item := range effect.AddLineItems {
			w.items.upsert(item)
		}
		return
	}
	if effect.PriceDeltaNet == 0 {
		return
	}
	w.delta = w.delta.Add(decimal.NewFromFloat(effect.PriceDeltaNet))
	w.applied = append(w.applied, QuestionAdjustment{QuestionID: questionID, PriceDeltaNet: effect.PriceDeltaNet})
}

func shows(showWhen string, parentYes bool) bool {
	switch showWhen {
	case siteconfig.ShowYes:
		return parentYes
	case siteconfig.ShowNo:
		return !parentYes
	default:
		return true
	}
}

func totals(subtotal, adjustment decimal.Decimal, vatRate float64) *Result {
	totalNet := subtotal.Add(adjustment)
	if totalNet.IsNegative() {
		totalNet = decimal.Zero
	}
	rate := decimal.NewFromFloat(vatRate)
	vat := totalNet.Mul(rate)
	gross := totalNet.Add(vat)

	return &Result{
		SubtotalNet:          subtotal.InexactFloat64(),
		PackageAdjustmentNet: adjustment.InexactFloat64(),
		TotalNet:             totalNet.InexactFloat64(),
		VATRate:              vatRate,
		VATAmount:            vat.InexactFloat64(),
		TotalGross:           gross.InexactFloat64(),
	}
}

func sumItems(items []siteconfig.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.PriceNet))
	}
	return total
}

// itemSet is an insertion-ordered map of line items by id. Upserting an
// existing id replaces the item in place.
type itemSet struct {
	order []string
	byID  map[string]siteconfig.LineItem
}

func newItemSet() *itemSet {
	return &itemSet{byID: make(map[string]siteconfig.LineItem)}
}

func (s *itemSet) upsert(item siteconfig.LineItem) {
	if _, ok := s.byID[item.ID]; !ok {
		s.order = append(s.order, item.ID)
	}
	s.byID[item.ID] = item
}

func (s *itemSet) list() []siteconfig.LineItem {
	out := make([]siteconfig.LineItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}
