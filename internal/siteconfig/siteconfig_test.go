package siteconfig

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/Simplici0/weddingquote/internal/validation"
)

func TestDefaultParses(t *testing.T) {
	cfg := Default()

	if cfg.VATRate != 0.22 {
		t.Fatalf("vatRate = %v, want 0.22", cfg.VATRate)
	}
	if _, ok := cfg.Package("pkg_photo_only"); !ok {
		t.Fatalf("expected pkg_photo_only in default config")
	}
	if len(cfg.CustomFlow.BaseLineItems) != 2 {
		t.Fatalf("base line items = %d, want 2", len(cfg.CustomFlow.BaseLineItems))
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"packages": [{"id": "p1", "name": {"it": "Uno"}, "lineItems": [{"id": "a", "label": {"it": "A"}, "priceNet": 10}]}],
		"customFlow": {
			"baseLineItems": [],
			"questions": [{"id": "q1", "enabled": true, "order": 1, "type": "yes_no", "questionText": {"it": "Domanda?"}}]
		}
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.VATRate != DefaultVATRate {
		t.Fatalf("vatRate = %v, want %v", cfg.VATRate, DefaultVATRate)
	}
	if cfg.Currency != "EUR" {
		t.Fatalf("currency = %q, want EUR", cfg.Currency)
	}
	if cfg.Packages[0].PackageAdjustmentNet != 0 {
		t.Fatalf("packageAdjustmentNet = %v, want 0", cfg.Packages[0].PackageAdjustmentNet)
	}

	q := cfg.CustomFlow.Questions[0]
	if q.ShowWhen != ShowAlways {
		t.Fatalf("showWhen = %q, want always", q.ShowWhen)
	}
	if q.YesLabel != (LocalizedText{IT: "Sì", EN: "Yes"}) || q.NoLabel != (LocalizedText{IT: "No", EN: "No"}) {
		t.Fatalf("labels = %+v / %+v", q.YesLabel, q.NoLabel)
	}
	if q.QuestionText.EN != "" {
		t.Fatalf("missing en should stay empty, got %q", q.QuestionText.EN)
	}
	if got := q.QuestionText.Text("en"); got != "Domanda?" {
		t.Fatalf("Text(en) = %q, want fallback to it", got)
	}
}

func TestParseKeepsExplicitZeroVAT(t *testing.T) {
	cfg, err := Parse([]byte(`{"vatRate": 0, "packages": [], "customFlow": {"baseLineItems": [], "questions": []}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.VATRate != 0 {
		t.Fatalf("vatRate = %v, want 0", cfg.VATRate)
	}
}

func TestParseNormalizesLegacyGallery(t *testing.T) {
	cfg, err := Parse([]byte(`{"site": {"gallery": ["/a.jpg", {"id": "hero", "url": "/b.jpg", "order": 7}, "/c.jpg"]}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := Gallery{
		{ID: "img_1", URL: "/a.jpg", Order: 0},
		{ID: "hero", URL: "/b.jpg", Order: 7},
		{ID: "img_3", URL: "/c.jpg", Order: 2},
	}
	if !reflect.DeepEqual(cfg.Site.Gallery, want) {
		t.Fatalf("gallery = %+v, want %+v", cfg.Site.Gallery, want)
	}
}

func TestParseIsIdempotent(t *testing.T) {
	first := Default()
	data, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	second, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-parsed config differs")
	}

	third, err := ParseValue(second)
	if err != nil {
		t.Fatalf("ParseValue: %v", err)
	}
	if !reflect.DeepEqual(second, third) {
		t.Fatalf("ParseValue changed an already valid config")
	}
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"packages": [`))
	var perr *validation.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %T (%v)", err, err)
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	_, err := Parse([]byte(`{"vatRate": 0.1} {"vatRate": 0.5} garbage`))
	var perr *validation.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %T (%v)", err, err)
	}
}

func TestValidateRejectsReservedQuestionIDs(t *testing.T) {
	for _, id := range []string{"location", "email", "lang", "custom", "packageId", "first_name"} {
		t.Run(id, func(t *testing.T) {
			_, err := Parse([]byte(`{
				"packages": [],
				"customFlow": {
					"baseLineItems": [],
					"questions": [{"id": "` + id + `", "enabled": true, "order": 1, "type": "yes_no", "questionText": {"it": "?"},
						"effectsYes": {"addLineItems": [{"id": "x", "label": {"it": "X"}, "priceNet": 300}]}}]
				}
			}`))

			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected *validation.Error, got %v", err)
			}
			if len(verr.Issues) != 1 || verr.Issues[0].Path != "customFlow.questions[0].id" {
				t.Fatalf("issues = %+v", verr.Issues)
			}
		})
	}
}

func TestIsReservedQueryKey(t *testing.T) {
	for _, key := range []string{"packageId", "custom", "requests", "adjustments", "lang", "firstName", "last_name", "weddingLocation", "location"} {
		if !IsReservedQueryKey(key) {
			t.Fatalf("IsReservedQueryKey(%q) = false, want true", key)
		}
	}
	if IsReservedQueryKey("q_video") {
		t.Fatalf("IsReservedQueryKey(q_video) = true, want false")
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	_, err := Parse([]byte(`{
		"vatRate": 1.5,
		"packages": [
			{"id": "dup", "name": {"it": "A"}, "lineItems": [{"id": "x", "label": {"it": "X"}, "priceNet": -1}, {"id": "x", "label": {"it": "X"}, "priceNet": 1}]},
			{"id": "dup", "name": {"it": "B"}, "lineItems": []}
		],
		"customFlow": {
			"baseLineItems": [],
			"questions": [
				{"id": "q1", "enabled": true, "order": 1, "type": "maybe", "questionText": {"it": "?"}},
				{"id": "q2", "enabled": true, "order": 2, "type": "yes_no", "parentId": "ghost", "questionText": {"it": "?"}}
			]
		}
	}`))

	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validation.Error, got %T (%v)", err, err)
	}

	paths := map[string]bool{}
	for _, issue := range verr.Issues {
		paths[issue.Path] = true
	}
	for _, want := range []string{
		"vatRate",
		"packages[0].lineItems[0].priceNet",
		"packages[0].lineItems[1].id",
		"packages[1].id",
		"customFlow.questions[0].type",
		"customFlow.questions[1].parentId",
	} {
		if !paths[want] {
			t.Fatalf("missing issue at %q; got %+v", want, verr.Issues)
		}
	}
}

func TestBuildQuestionTreeOrdersSiblings(t *testing.T) {
	questions := []Question{
		{ID: "b", Order: 2},
		{ID: "a", Order: 1},
		{ID: "b2", Order: 5, ParentID: "b"},
		{ID: "b1", Order: 1, ParentID: "b"},
		{ID: "c", Order: 1},
	}

	tree, err := BuildQuestionTree(questions)
	if err != nil {
		t.Fatalf("BuildQuestionTree: %v", err)
	}

	ids := func(list []*Question) string {
		out := make([]string, 0, len(list))
		for _, q := range list {
			out = append(out, q.ID)
		}
		return strings.Join(out, ",")
	}
	if got := ids(tree.Roots()); got != "a,c,b" {
		t.Fatalf("roots = %s, want a,c,b", got)
	}
	if got := ids(tree.Children("b")); got != "b1,b2" {
		t.Fatalf("children(b) = %s, want b1,b2", got)
	}
}

func TestBuildQuestionTreeRejectsCycles(t *testing.T) {
	tests := []struct {
		name      string
		questions []Question
	}{
		{
			name:      "self parent",
			questions: []Question{{ID: "a", ParentID: "a"}},
		},
		{
			name: "three node loop",
			questions: []Question{
				{ID: "root"},
				{ID: "a", ParentID: "c"},
				{ID: "b", ParentID: "a"},
				{ID: "c", ParentID: "b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildQuestionTree(tt.questions)
			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected *validation.Error, got %v", err)
			}
			if len(verr.Issues) != 1 || !strings.Contains(verr.Issues[0].Message, "cycle") {
				t.Fatalf("issues = %+v", verr.Issues)
			}
		})
	}
}
