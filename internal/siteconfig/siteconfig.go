// Package siteconfig defines the studio configuration document: packages,
// the custom-quote question tree, VAT and the site copy.
package siteconfig

import (
	"encoding/json"
	"fmt"
)

const (
	DefaultVATRate  = 0.22
	DefaultCurrency = "EUR"
)

// ShowWhen values gate a child question on its parent's branch.
const (
	ShowAlways = "always"
	ShowYes    = "yes"
	ShowNo     = "no"
)

// Question types.
const (
	TypeYesNo = "yes_no"
	TypeText  = "text"
)

var (
	defaultYesLabel = LocalizedText{IT: "Sì", EN: "Yes"}
	defaultNoLabel  = LocalizedText{IT: "No", EN: "No"}
)

// LocalizedText carries the Italian default and an optional English copy.
type LocalizedText struct {
	IT string `json:"it" validate:"required"`
	EN string `json:"en"`
}

// Text returns the copy for locale, falling back to Italian.
func (t LocalizedText) Text(locale string) string {
	if locale == "en" && t.EN != "" {
		return t.EN
	}
	return t.IT
}

// LineItem is one billable component.
type LineItem struct {
	ID       string        `json:"id" validate:"required,slug"`
	Label    LocalizedText `json:"label"`
	PriceNet float64       `json:"priceNet" validate:"gte=0"`
}

// Package is a pre-bundled offering with an optional flat adjustment.
type Package struct {
	ID                   string         `json:"id" validate:"required,slug"`
	Name                 LocalizedText  `json:"name"`
	Tagline              *LocalizedText `json:"tagline,omitempty"`
	Description          *LocalizedText `json:"description,omitempty"`
	LineItems            []LineItem     `json:"lineItems" validate:"dive"`
	PackageAdjustmentNet float64        `json:"packageAdjustmentNet"`
}

type EffectNotes struct {
	TriggersAdditionalRequestsBox bool `json:"triggersAdditionalRequestsBox,omitempty"`
}

// QuestionEffect is the pricing consequence of one answer branch.
type QuestionEffect struct {
	AddLineItems  []LineItem   `json:"addLineItems,omitempty" validate:"dive"`
	PriceDeltaNet float64      `json:"priceDeltaNet"`
	Notes         *EffectNotes `json:"notes,omitempty"`
}

type RequiredConditions struct {
	RequiresVideo bool `json:"requiresVideo,omitempty"`
}

// Question is a node of the custom flow. Questions form a forest through
// ParentID.
type Question struct {
	ID                 string              `json:"id" validate:"required,slug"`
	Enabled            bool                `json:"enabled"`
	Order              int                 `json:"order"`
	ParentID           string              `json:"parentId,omitempty" validate:"omitempty,slug"`
	ShowWhen           string              `json:"showWhen" validate:"oneof=always yes no"`
	Type               string              `json:"type" validate:"oneof=yes_no text"`
	QuestionText       LocalizedText       `json:"questionText"`
	YesLabel           LocalizedText       `json:"yesLabel"`
	NoLabel            LocalizedText       `json:"noLabel"`
	Required           bool                `json:"required"`
	Placeholder        *LocalizedText      `json:"placeholder,omitempty"`
	RequiredConditions *RequiredConditions `json:"requiredConditions,omitempty"`
	EffectsYes         *QuestionEffect     `json:"effectsYes,omitempty"`
	EffectsNo          *QuestionEffect     `json:"effectsNo,omitempty"`
}

// CustomFlow holds the items every custom quote starts from and the
// question tree that adds to them.
type CustomFlow struct {
	BaseLineItems []LineItem `json:"baseLineItems" validate:"dive"`
	Questions     []Question `json:"questions" validate:"dive"`
}

type GalleryImage struct {
	ID    string        `json:"id" validate:"required"`
	URL   string        `json:"url" validate:"required"`
	Alt   LocalizedText `json:"alt" validate:"-"`
	Order int           `json:"order"`
}

// Gallery accepts the legacy list of bare URLs as well as image objects.
type Gallery []GalleryImage

func (g *Gallery) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Gallery, 0, len(raw))
	for i, msg := range raw {
		var url string
		if err := json.Unmarshal(msg, &url); err == nil {
			out = append(out, GalleryImage{ID: fmt.Sprintf("img_%d", i+1), URL: url, Order: i})
			continue
		}

		var img GalleryImage
		if err := json.Unmarshal(msg, &img); err != nil {
			return fmt.Errorf("gallery[%d]: %w", i, err)
		}
		if img.ID == "" {
			img.ID = fmt.Sprintf("img_%d", i+1)
		}
		out = append(out, img)
	}
	*g = out
	return nil
}

type Legal struct {
	PrivacyPolicy  LocalizedText `json:"privacyPolicy" validate:"-"`
	TermsOfService LocalizedText `json:"termsOfService" validate:"-"`
	GDPRConsent    LocalizedText `json:"gdprConsent" validate:"-"`
}

type Site struct {
	StudioName   string        `json:"studioName"`
	ContactEmail string        `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone string        `json:"contactPhone"`
	HeroTitle    LocalizedText `json:"heroTitle" validate:"-"`
	HeroSubtitle LocalizedText `json:"heroSubtitle" validate:"-"`
	Gallery      Gallery       `json:"gallery" validate:"dive"`
}

// AppConfig is the whole configuration document. The pricing code reads it
// and never mutates it.
type AppConfig struct {
	VATRate    float64                  `json:"vatRate" validate:"gte=0,lte=1"`
	Currency   string                   `json:"currency" validate:"len=3"`
	Packages   []Package                `json:"packages" validate:"dive"`
	CustomFlow CustomFlow               `json:"customFlow"`
	Legal      Legal                    `json:"legal"`
	Site       Site                     `json:"site"`
	Labels     map[string]LocalizedText `json:"labels,omitempty" validate:"-"`
}

func (c *AppConfig) UnmarshalJSON(data []byte) error {
	type plain AppConfig
	p := plain{VATRate: DefaultVATRate, Currency: DefaultCurrency}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = AppConfig(p)
	return nil
}

// Package returns the package with id.
func (c *AppConfig) Package(id string) (*Package, bool) {
	for i := range c.Packages {
		if c.Packages[i].ID == id {
			return &c.Packages[i], true
		}
	}
	return nil, false
}

// Question returns the first question with id.
func (c *AppConfig) Question(id string) (*Question, bool) {
	for i := range c.CustomFlow.Questions {
		if c.CustomFlow.Questions[i].ID == id {
			return &c.CustomFlow.Questions[i], true
		}
	}
	return nil, false
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	for i := range cfg.CustomFlow.Questions {
		q := &cfg.CustomFlow.Questions[i]
		if q.ShowWhen == "" {
			q.ShowWhen = ShowAlways
		}
		if q.YesLabel == (LocalizedText{}) {
			q.YesLabel = defaultYesLabel
		}
		if q.NoLabel == (LocalizedText{}) {
			q.NoLabel = defaultNoLabel
		}
	}
	if cfg.Packages == nil {
		cfg.Packages = []Package{}
	}
	if cfg.CustomFlow.BaseLineItems == nil {
		cfg.CustomFlow.BaseLineItems = []LineItem{}
	}
	if cfg.CustomFlow.Questions == nil {
		cfg.CustomFlow.Questions = []Question{}
	}
	if cfg.Site.Gallery == nil {
		cfg.Site.Gallery = Gallery{}
	}
}
