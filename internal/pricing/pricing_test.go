package pricing

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/Simplici0/weddingquote/internal/adjustments"
	"github.com/Simplici0/weddingquote/internal/siteconfig"
	"github.com/Simplici0/weddingquote/internal/validation"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func itemIDs(items []siteconfig.LineItem) string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return strings.Join(ids, ",")
}

func item(id string, price float64) siteconfig.LineItem {
	return siteconfig.LineItem{ID: id, Label: siteconfig.LocalizedText{IT: id}, PriceNet: price}
}

func TestCalculateFixedPackage_PhotoOnly(t *testing.T) {
	result, ok := CalculateFixedPackage(siteconfig.Default(), "pkg_photo_only")
	if !ok {
		t.Fatalf("expected pkg_photo_only to exist")
	}

	nearlyEqual(t, "subtotalNet", result.SubtotalNet, 1100)
	nearlyEqual(t, "packageAdjustmentNet", result.PackageAdjustmentNet, 0)
	nearlyEqual(t, "totalNet", result.TotalNet, 1100)
	nearlyEqual(t, "vatAmount", result.VATAmount, 242)
	nearlyEqual(t, "totalGross", result.TotalGross, 1342)
	if result.IsCustom || result.PackageID != "pkg_photo_only" {
		t.Fatalf("packageId = %q, isCustom = %v", result.PackageID, result.IsCustom)
	}
	if got := itemIDs(result.LineItems); got != "photo_coverage,photo_editing" {
		t.Fatalf("lineItems = %s", got)
	}
}

func TestCalculateFixedPackage_Discount(t *testing.T) {
	result, ok := CalculateFixedPackage(siteconfig.Default(), "pkg_photo_video")
	if !ok {
		t.Fatalf("expected pkg_photo_video to exist")
	}

	nearlyEqual(t, "subtotalNet", result.SubtotalNet, 2300)
	nearlyEqual(t, "packageAdjustmentNet", result.PackageAdjustmentNet, -100)
	nearlyEqual(t, "totalNet", result.TotalNet, 2200)
	nearlyEqual(t, "vatAmount", result.VATAmount, 484)
	nearlyEqual(t, "totalGross", result.TotalGross, 2684)
}

func TestCalculateFixedPackage_NotFound(t *testing.T) {
	result, ok := CalculateFixedPackage(siteconfig.Default(), "pkg_missing")
	if ok || result != nil {
		t.Fatalf("expected not found, got %+v", result)
	}
}

func TestCalculateFixedPackage_ClampsToZero(t *testing.T) {
	cfg := siteconfig.Default()
	cfg.Packages[0].PackageAdjustmentNet = -5000

	result, _ := CalculateFixedPackage(cfg, "pkg_photo_only")
	nearlyEqual(t, "totalNet", result.TotalNet, 0)
	nearlyEqual(t, "vatAmount", result.VATAmount, 0)
	nearlyEqual(t, "totalGross", result.TotalGross, 0)
}

func TestCalculateCustom_BaseOnly(t *testing.T) {
	result, err := CalculateCustom(siteconfig.Default(), Answers{}, Options{})
	if err != nil {
		t.Fatalf("CalculateCustom: %v", err)
	}

	nearlyEqual(t, "subtotalNet", result.SubtotalNet, 1100)
	if !result.IsCustom {
		t.Fatalf("isCustom = false")
	}
	if got := itemIDs(result.LineItems); got != "photo_coverage,photo_editing" {
		t.Fatalf("lineItems = %s", got)
	}
}

func TestCalculateCustom_AdditiveEffect(t *testing.T) {
	result, err := CalculateCustom(siteconfig.Default(), Answers{"q_second_shooter": Yes, "q_album": Yes}, Options{})
	if err != nil {
		t.Fatalf("CalculateCustom: %v", err)
	}

	nearlyEqual(t, "subtotalNet", result.SubtotalNet, 1100+350+250)
	if got := itemIDs(result.LineItems); got != "photo_coverage,photo_editing,second_shooter,album" {
		t.Fatalf("lineItems = %s", got)
	}
	if len(result.QuestionAdjustments) != 0 {
		t.Fatalf("questionAdjustments = %+v, want none", result.QuestionAdjustments)
	}
}

func TestCalculateCustom_OverrideKeepsPosition(t *testing.T) {
	result, err := CalculateCustom(siteconfig.Default(), Answers{"q_full_day": Yes, "q_album": Yes}, Options{})
	if err != nil {
		t.Fatalf("CalculateCustom: %v", err)
	}

	if got := itemIDs(result.LineItems); got != "photo_coverage,photo_editing,album" {
		t.Fatalf("lineItems = %s", got)
	}
	nearlyEqual(t, "photo_coverage", result.LineItems[0].PriceNet, 1200)
	nearlyEqual(t, "subtotalNet", result.SubtotalNet, 1200+200+250)
}

func TestCalculateCustom_NegativeDeltaOnNo(t *testing.T) {
	result, err := CalculateCustom(siteconfig.Default(), Answers{"q_album": No}, Options{})
	if err != nil {
		t.Fatalf("CalculateCustom: %v", err)
	}

	if len(result.QuestionAdjustments) != 1 {
		t.Fatalf("questionAdjustments = %+v", result.QuestionAdjustments)
	}
	adj := result.QuestionAdjustments[0]
	if adj.QuestionID != "q_album" {
		t.Fatalf("questionId = %q, want q_album", adj.QuestionID)
	}
	nearlyEqual(t, "priceDeltaNet", adj.PriceDeltaNet, -50)
	nearlyEqual(t, "packageAdjustmentNet", result.PackageAdjustmentNet, -50)
	nearlyEqual(t, "totalNet", result.TotalNet, 1050)
}

func TestCalculateCustom_LineItemsTakePrecedenceOverDelta(t *testing.T) {
	cfg := &siteconfig.AppConfig{
		VATRate: 0.22,
		CustomFlow: siteconfig.CustomFlow{
			BaseLineItems: []siteconfig.LineItem{item("base", 1000)},
			Questions: []siteconfig.Question{{
				ID: "q_both", Enabled: true, Type: siteconfig.TypeYesNo, ShowWhen: siteconfig.ShowAlways,
				EffectsYes: &siteconfig.QuestionEffect{
					AddLineItems:  []siteconfig.LineItem{item("extra", 200)},
					PriceDeltaNet: 500,
				},
			}},
		},
	}

	result, err := CalculateCustom(cfg, Answers{"q_both": Yes}, Options{})
	if err != nil {
		t.Fatalf("CalculateCustom: %v", err)
	}

	nearlyEqual(t, "totalNet", result.TotalNet, 1200)
	nearlyEqual(t, "packageAdjustmentNet", result.PackageAdjustmentNet, 0)
	if len(result.QuestionAdjustments) != 0 {
		t.Fatalf("questionAdjustments = %+v, want none", result.QuestionAdjustments)
	}
}

func TestCalculateCustom_ChildrenFollowShowWhen(t *testing.T) {
	cfg := siteconfig.Default()

	withAlbum, err := CalculateCustom(cfg, Answers{"q_album": Yes, "q_parent_albums": Yes}, Options{})
	if err != nil {
		t.Fatalf("CalculateCustom: %v", err)
	}
	nearlyEqual(t, "subtotal with album", withAlbum.SubtotalNet, 1100+250+180)

	withoutAlbum, err := CalculateCustom(cfg, Answers{"q_album": No, "q_parent_albums": Yes}, Options{})
	if err != nil {
		t.Fatalf("CalculateCustom: %v", err)
	}
	nearlyEqual(t, "subtotal without album", withoutAlbum.SubtotalNet, 1100)

	noVideo, err := CalculateCustom(cfg, Answers{"q_drone": Yes, "q_album": Yes}, Options{})
	if err != nil {
		t.Fatalf("CalculateCustom: %v", err)
	}
	if strings.Contains(itemIDs(noVideo.LineItems), "drone_footage") {
		t.Fatalf("drone reached without its parent yes branch: %s", itemIDs(noVideo.LineItems))
	}
}

func TestCalculateCustom_RequiresVideoIsNotEnforced(t *testing.T) {
	cfg := &siteconfig.AppConfig{
		VATRate: 0.22,
		CustomFlow: siteconfig.CustomFlow{
			Questions: []siteconfig.Question{{
				ID: "q_drone", Enabled: true, Type: siteconfig.TypeYesNo, ShowWhen: siteconfig.ShowAlways,
				RequiredConditions: &siteconfig.RequiredConditions{RequiresVideo: true},
				EffectsYes:         &siteconfig.QuestionEffect{AddLineItems: []siteconfig.LineItem{item("drone", 300)}},
			}},
		},
	}

	result, err := CalculateCustom(cfg, Answers{"q_drone": Yes}, Options{})
	if err != nil {
		t.Fatalf("CalculateCustom: %v", err)
	}
	nearlyEqual(t, "subtotalNet", result.SubtotalNet, 300)
}

func TestCalculateCustom_SkipsDisabledSubtree(t *testing.T) {
	cfg := &siteconfig.AppConfig{
		VATRate: 0.22,
		CustomFlow: siteconfig.CustomFlow{
			Questions: []siteconfig.Question{
				{ID: "off", Enabled: false, Type: siteconfig.TypeYesNo, ShowWhen: siteconfig.ShowAlways,
					EffectsYes: &siteconfig.QuestionEffect{PriceDeltaNet: 100}},
				{ID: "child", Enabled: true, ParentID: "off", Type: siteconfig.TypeYesNo, ShowWhen: siteconfig.ShowAlways,
					EffectsYes: &siteconfig.QuestionEffect{PriceDeltaNet: 40}},
			},
		},
	}

	result, err := CalculateCustom(cfg, Answers{"off": Yes, "child": Yes}, Options{})
	if err != nil {
		t.Fatalf("CalculateCustom: %v", err)
	}
	nearlyEqual(t, "totalNet", result.TotalNet, 0)
	if len(result.QuestionAdjustments) != 0 {
		t.Fatalf("questionAdjustments = %+v", result.QuestionAdjustments)
	}
}

func TestCalculateCustom_TextAnswers(t *testing.T) {
	result, err := CalculateCustom(siteconfig.Default(), Answers{
		"q_notes": TextAnswer("  Cerimonia alle 11  "),
		"q_album": Yes,
	}, Options{})
	if err != nil {
		t.Fatalf("CalculateCustom: %v", err)
	}

	if got := result.TextAnswers["q_notes"]; got != "Cerimonia alle 11" {
		t.Fatalf("textAnswers[q_notes] = %q", got)
	}
	nearlyEqual(t, "subtotalNet", result.SubtotalNet, 1350)

	blank, err := CalculateCustom(siteconfig.Default(), Answers{"q_notes": TextAnswer("   ")}, Options{})
	if err != nil {
		t.Fatalf("CalculateCustom: %v", err)
	}
	if blank.TextAnswers != nil {
		t.Fatalf("blank text answer recorded: %+v", blank.TextAnswers)
	}
}

func TestCalculateCustom_AdditionalAdjustments(t *testing.T) {
	result, err := CalculateCustom(siteconfig.Default(), Answers{"q_album": Yes}, Options{
		AdditionalAdjustments: []adjustments.Input{
			{Title: "Trasferta", PriceDeltaNet: "200"},
			{Title: "Sconto", PriceDeltaNet: -100.0},
			{},
		},
	})
	if err != nil {
		t.Fatalf("CalculateCustom: %v", err)
	}

	nearlyEqual(t, "subtotalNet", result.SubtotalNet, 1350)
	nearlyEqual(t, "packageAdjustmentNet", result.PackageAdjustmentNet, 100)
	nearlyEqual(t, "totalNet", result.TotalNet, 1450)
	nearlyEqual(t, "vatAmount", result.VATAmount, 319)
	nearlyEqual(t, "totalGross", result.TotalGross, 1769)
	if len(result.AdditionalAdjustments) != 2 {
		t.Fatalf("additionalAdjustments = %+v", result.AdditionalAdjustments)
	}
	if result.AdditionalAdjustments[0].ID != "adj_1" || result.AdditionalAdjustments[1].ID != "adj_2" {
		t.Fatalf("ids = %q, %q", result.AdditionalAdjustments[0].ID, result.AdditionalAdjustments[1].ID)
	}
}

func TestCalculateCustom_ClampsToZero(t *testing.T) {
	result, err := CalculateCustom(siteconfig.Default(), Answers{}, Options{
		AdditionalAdjustments: []adjustments.Input{{Title: "Omaggio", PriceDeltaNet: -5000.0}},
	})
	if err != nil {
		t.Fatalf("CalculateCustom: %v", err)
	}

	nearlyEqual(t, "subtotalNet", result.SubtotalNet, 1100)
	nearlyEqual(t, "totalNet", result.TotalNet, 0)
	nearlyEqual(t, "vatAmount", result.VATAmount, 0)
	nearlyEqual(t, "totalGross", result.TotalGross, 0)
}

func TestCalculateCustom_Errors(t *testing.T) {
	cyclic := &siteconfig.AppConfig{
		VATRate: 0.22,
		CustomFlow: siteconfig.CustomFlow{Questions: []siteconfig.Question{
			{ID: "a", Enabled: true, ParentID: "b", Type: siteconfig.TypeYesNo},
			{ID: "b", Enabled: true, ParentID: "a", Type: siteconfig.TypeYesNo},
		}},
	}

	tests := []struct {
		name string
		cfg  *siteconfig.AppConfig
		opts Options
	}{
		{name: "cycle", cfg: cyclic},
		{
			name: "bad adjustment id",
			cfg:  siteconfig.Default(),
			opts: Options{AdditionalAdjustments: []adjustments.Input{{ID: "no spaces allowed", Title: "x"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateCustom(tt.cfg, Answers{}, tt.opts)
			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected *validation.Error, got %v", err)
			}
		})
	}
}

func TestCalculateCustom_IsRepeatable(t *testing.T) {
	cfg := siteconfig.Default()
	answers := Answers{"q_video": Yes, "q_drone": Yes, "q_full_day": Yes}

	first, err := CalculateCustom(cfg, answers, Options{})
	if err != nil {
		t.Fatalf("CalculateCustom: %v", err)
	}
	second, err := CalculateCustom(cfg, answers, Options{})
	if err != nil {
		t.Fatalf("CalculateCustom: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("results differ:\n%s\n%s", a, b)
	}
	nearlyEqual(t, "subtotalNet", first.SubtotalNet, 1200+200+1000+200+300)
	nearlyEqual(t, "totalNet", first.TotalNet, 2900-50)
}

func TestAnswerJSON(t *testing.T) {
	var answers Answers
	if err := json.Unmarshal([]byte(`{"q_video": true, "q_album": false, "q_notes": "ciao", "q_drone": null}`), &answers); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !answers["q_video"].Truthy() || answers["q_album"].Truthy() || answers["q_drone"].Truthy() {
		t.Fatalf("answers = %+v", answers)
	}
	if notes := answers["q_notes"]; !notes.IsText || notes.Text != "ciao" {
		t.Fatalf("q_notes = %+v", notes)
	}

	if err := json.Unmarshal([]byte(`{"q_video": 3}`), &answers); err == nil {
		t.Fatalf("expected error for numeric answer")
	}

	out, err := json.Marshal(Answers{"q_video": Yes, "q_notes": TextAnswer("ciao")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"q_notes":"ciao","q_video":true}` {
		t.Fatalf("marshal = %s", out)
	}
}

func TestAnswerTruthy(t *testing.T) {
	tests := []struct {
		name   string
		answer Answer
		want   bool
	}{
		{name: "yes", answer: Yes, want: true},
		{name: "no", answer: No, want: false},
		{name: "text", answer: TextAnswer("ciao"), want: true},
		{name: "text false", answer: TextAnswer("false"), want: true},
		{name: "text zero", answer: TextAnswer("0"), want: true},
		{name: "blank text", answer: TextAnswer("   "), want: false},
		{name: "empty text", answer: TextAnswer(""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.answer.Truthy(); got != tt.want {
				t.Fatalf("Truthy() = %v, want %v", got, tt.want)
			}
		})
	}
}
