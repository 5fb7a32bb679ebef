package siteconfig

import (
	"encoding/json"
	"fmt"

	"github.com/Simplici0/weddingquote/internal/validation"
)

// Parse decodes an untrusted configuration document, fills in defaults and
// validates it. Unreadable JSON yields a *validation.ParseError, a readable
// but non-conforming document a *validation.Error.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &validation.ParseError{What: "site config", Err: err}
	}
	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseValue parses an already-decoded value such as a map from a JSON
// column or another AppConfig.
func ParseValue(v any) (*AppConfig, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &validation.ParseError{What: "site config", Err: err}
	}
	return Parse(data)
}

// Validate checks struct rules and the cross-entity rules the struct tags
// cannot express: id uniqueness, reserved question ids, parent references
// and cycles.
func Validate(cfg *AppConfig) error {
	verr := &validation.Error{}
	if err := verr.Merge(validation.Struct(cfg)); err != nil {
		return err
	}

	packageIDs := make(map[string]int, len(cfg.Packages))
	for i, pkg := range cfg.Packages {
		path := fmt.Sprintf("packages[%d]", i)
		if first, dup := packageIDs[pkg.ID]; dup && pkg.ID != "" {
			verr.Add(path+".id", "duplicates packages[%d].id %q", first, pkg.ID)
		} else {
			packageIDs[pkg.ID] = i
		}
		checkLineItemIDs(verr, path+".lineItems", pkg.LineItems)
	}

	checkLineItemIDs(verr, "customFlow.baseLineItems", cfg.CustomFlow.BaseLineItems)

	questionIDs := make(map[string]int, len(cfg.CustomFlow.Questions))
	for i, q := range cfg.CustomFlow.Questions {
		if IsReservedQueryKey(q.ID) {
			verr.Add(fmt.Sprintf("customFlow.questions[%d].id", i), "%q is a reserved query key", q.ID)
		}
		if first, dup := questionIDs[q.ID]; dup && q.ID != "" {
			verr.Add(fmt.Sprintf("customFlow.questions[%d].id", i), "duplicates customFlow.questions[%d].id %q", first, q.ID)
			continue
		}
		questionIDs[q.ID] = i
	}
	for i, q := range cfg.CustomFlow.Questions {
		path := fmt.Sprintf("customFlow.questions[%d]", i)
		if q.ParentID != "" {
			if _, ok := questionIDs[q.ParentID]; !ok {
				verr.Add(path+".parentId", "references unknown question %q", q.ParentID)
			}
		}
		if q.EffectsYes != nil {
			checkLineItemIDs(verr, path+".effectsYes.addLineItems", q.EffectsYes.AddLineItems)
		}
		if q.EffectsNo != nil {
			checkLineItemIDs(verr, path+".effectsNo.addLineItems", q.EffectsNo.AddLineItems)
		}
	}

	if _, err := BuildQuestionTree(cfg.CustomFlow.Questions); err != nil {
		if err := verr.Merge(err); err != nil {
			return err
		}
	}

	return verr.OrNil()
}

func checkLineItemIDs(verr *validation.Error, path string, items []LineItem) {
	seen := make(map[string]int, len(items))
	for i, item := range items {
		if item.ID == "" {
			continue
		}
		if first, dup := seen[item.ID]; dup {
			verr.Add(fmt.Sprintf("%s[%d].id", path, i), "duplicates %s[%d].id %q", path, first, item.ID)
			continue
		}
		seen[item.ID] = i
	}
}
