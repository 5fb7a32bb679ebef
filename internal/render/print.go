package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/weddingquote/internal/lead"
	"github.com/Simplici0/weddingquote/internal/pricing"
	"github.com/Simplici0/weddingquote/internal/siteconfig"
)

//go:embed templates/*.html
var templateFS embed.FS

var printTemplate = template.Must(template.ParseFS(templateFS, "templates/quote_print.html"))

var defaultLabels = map[string]siteconfig.LocalizedText{
	"subtotal":    {IT: "Imponibile", EN: "Subtotal"},
	"adjustments": {IT: "Adeguamenti", EN: "Adjustments"},
	"totalNet":    {IT: "Totale netto", EN: "Net total"},
	"vat":         {IT: "IVA", EN: "VAT"},
	"total":       {IT: "Totale", EN: "Total"},
	"customQuote": {IT: "Preventivo personalizzato", EN: "Custom quote"},
	"notes":       {IT: "Note", EN: "Notes"},
	"requests":    {IT: "Richieste aggiuntive", EN: "Additional requests"},
	"quote":       {IT: "Preventivo", EN: "Quote"},
}

// Document is a priced quote ready to be shown.
type Document struct {
	Config             *siteconfig.AppConfig
	Result             *pricing.Result
	Lead               lead.Payload
	Locale             string
	QuoteID            string
	AdditionalRequests string
	IssuedAt           time.Time
}

type row struct {
	Label  string
	Amount string
}

type note struct {
	Question string
	Answer   string
}

type printView struct {
	Lang          string
	StudioName    string
	ContactEmail  string
	ContactPhone  string
	Title         string
	QuoteLabel    string
	QuoteID       string
	IssuedAt      string
	Lead          lead.Payload
	Items         []row
	Adjustments   []row
	Notes         []note
	NotesLabel    string
	Requests      string
	RequestsLabel string
	Totals        []row
	Grand         row
	Terms         string
}

// WriteQuoteHTML renders the print view of doc.
func WriteQuoteHTML(w io.Writer, doc Document) error {
	if err := printTemplate.Execute(w, doc.view()); err != nil {
		return fmt.Errorf("render quote: %w", err)
	}
	return nil
}

func (d Document) label(key string) string {
	if t, ok := d.Config.Labels[key]; ok && t.IT != "" {
		return t.Text(d.Locale)
	}
	return defaultLabels[key].Text(d.Locale)
}

func (d Document) view() printView {
	cfg, res := d.Config, d.Result
	locale := d.Locale
	if locale != "en" {
		locale = "it"
	}

	v := printView{
		Lang:          locale,
		StudioName:    cfg.Site.StudioName,
		ContactEmail:  cfg.Site.ContactEmail,
		ContactPhone:  cfg.Site.ContactPhone,
		Title:         d.label("customQuote"),
		QuoteLabel:    d.label("quote"),
		QuoteID:       d.QuoteID,
		Lead:          d.Lead,
		NotesLabel:    d.label("notes"),
		Requests:      d.AdditionalRequests,
		RequestsLabel: d.label("requests"),
		Terms:         cfg.Legal.TermsOfService.Text(locale),
	}
	if !d.IssuedAt.IsZero() {
		v.IssuedAt = d.IssuedAt.Format("02/01/2006")
	}
	if pkg, ok := cfg.Package(res.PackageID); ok && !res.IsCustom {
		v.Title = pkg.Name.Text(locale)
	}

	for _, item := range res.LineItems {
		v.Items = append(v.Items, row{Label: item.Label.Text(locale), Amount: FormatEUR(item.PriceNet)})
	}

	for _, qa := range res.QuestionAdjustments {
		label := qa.QuestionID
		if q, ok := cfg.Question(qa.QuestionID); ok {
			label = q.QuestionText.Text(locale)
		}
		v.Adjustments = append(v.Adjustments, row{Label: label, Amount: FormatEUR(qa.PriceDeltaNet)})
	}
	for _, adj := range res.AdditionalAdjustments {
		label := adj.Title
		if label == "" {
			label = adj.Description
		}
		v.Adjustments = append(v.Adjustments, row{Label: label, Amount: FormatEUR(adj.PriceDeltaNet)})
	}

	ids := make([]string, 0, len(res.TextAnswers))
	for id := range res.TextAnswers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		question := id
		if q, ok := cfg.Question(id); ok {
			question = q.QuestionText.Text(locale)
		}
		v.Notes = append(v.Notes, note{Question: question, Answer: res.TextAnswers[id]})
	}

	v.Totals = []row{{Label: d.label("subtotal"), Amount: FormatEUR(res.SubtotalNet)}}
	if res.PackageAdjustmentNet != 0 {
		v.Totals = append(v.Totals, row{Label: d.label("adjustments"), Amount: FormatEUR(res.PackageAdjustmentNet)})
	}
	v.Totals = append(v.Totals,
		row{Label: d.label("totalNet"), Amount: FormatEUR(res.TotalNet)},
		row{Label: fmt.Sprintf("%s %s%%", d.label("vat"), percent(res.VATRate)), Amount: FormatEUR(res.VATAmount)},
	)
	v.Grand = row{Label: d.label("total"), Amount: FormatEUR(res.TotalGross)}
	return v
}

func percent(rate float64) string {
	return decimal.NewFromFloat(rate).Mul(decimal.NewFromInt(100)).String()
}
