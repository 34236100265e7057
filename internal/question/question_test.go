package question

import (
	"math"
	"reflect"
	"testing"

	"github.com/mlukic/formflow/internal/models"
)

func TestSplitChoices(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"A\nB, C", []string{"A", "B", "C"}},
		{"A\r\nB\r\nC", []string{"A", "B", "C"}},
		{"  A ,\n, B ", []string{"A", "B"}},
		{"A,A,A", []string{"A", "A", "A"}}, // duplicates are kept
		{"", []string{}},
		{" , ,\n", []string{}},
	}
	for _, c := range cases {
		got := SplitChoices(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("SplitChoices(%q) = %v; want %v", c.in, got, c.want)
		}
	}
}

func TestParseNumberList(t *testing.T) {
	got := ParseNumberList("1, 2.5, x, , 3")
	want := []float64{1, 2.5, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseNumberList = %v; want %v", got, want)
	}
	if got := ParseNumberList(""); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}

func TestParseRequiredCount(t *testing.T) {
	if rc := ParseRequiredCount(""); rc != nil {
		t.Errorf("empty input should omit required_count, got %v", *rc)
	}
	if rc := ParseRequiredCount("abc"); rc != nil {
		t.Errorf("unparseable input should omit required_count, got %v", *rc)
	}
	rc := ParseRequiredCount(" 2 ")
	if rc == nil || *rc != 2 {
		t.Errorf("ParseRequiredCount(\" 2 \") = %v; want 2", rc)
	}
}

func TestPayload_ChoiceTypes(t *testing.T) {
	d := Draft{
		Text:          "Pick some",
		Type:          models.MultiChoice,
		Required:      true,
		Choices:       "A\nB, C",
		RequiredCount: "2",
	}
	q := d.Payload()
	if q.Options == nil {
		t.Fatal("expected options payload")
	}
	if !reflect.DeepEqual(q.Options.Choices, []string{"A", "B", "C"}) {
		t.Errorf("choices = %v", q.Options.Choices)
	}
	if q.Options.RequiredCount == nil || *q.Options.RequiredCount != 2 {
		t.Errorf("required_count = %v; want 2", q.Options.RequiredCount)
	}

	// single_choice never carries required_count
	d.Type = models.SingleChoice
	q = d.Payload()
	if q.Options.RequiredCount != nil {
		t.Errorf("single_choice should not carry required_count")
	}
}

func TestPayload_NumericListPrecedence(t *testing.T) {
	d := Draft{
		Text:       "Rate",
		Type:       models.Numeric,
		NumberList: "1, 2, 3",
		Range:      &models.NumericRange{Start: 0, End: 10, Step: 1},
	}
	q := d.Payload()
	if q.Options == nil || q.Options.Range != nil {
		t.Fatalf("list must take precedence over range: %+v", q.Options)
	}
	if !reflect.DeepEqual(q.Options.List, []float64{1, 2, 3}) {
		t.Errorf("list = %v", q.Options.List)
	}
}

func TestPayload_NumericRangeVerbatim(t *testing.T) {
	// Reversed bounds and zero step are accepted verbatim; the fill
	// package resolves them to an empty domain.
	d := Draft{
		Text:  "Rate",
		Type:  models.Numeric,
		Range: &models.NumericRange{Start: 10, End: 0, Step: 0},
	}
	q := d.Payload()
	if q.Options == nil || q.Options.Range == nil {
		t.Fatal("expected range payload")
	}
	if *q.Options.Range != (models.NumericRange{Start: 10, End: 0, Step: 0}) {
		t.Errorf("range = %+v", q.Options.Range)
	}
}

func TestPayload_NumericNeverAuthored(t *testing.T) {
	q := Draft{Text: "n", Type: models.Numeric}.Payload()
	if q.Options != nil {
		t.Errorf("unauthored numeric should have null options, got %+v", q.Options)
	}
}

func TestSwitchTypeClearsOptions(t *testing.T) {
	d := Draft{
		Type:          models.SingleChoice,
		Choices:       "A\nB",
		RequiredCount: "1",
	}
	d.SwitchType(models.Numeric)
	q := d.Payload()
	if q.Type != models.Numeric {
		t.Errorf("type = %s", q.Type)
	}
	if q.Options != nil {
		t.Errorf("switching types must discard options, got %+v", q.Options)
	}
}

func TestNormalize_DropsNonFinite(t *testing.T) {
	q := models.Question{
		Type:    models.Numeric,
		Options: &models.Options{List: []float64{1, math.NaN(), 2, math.Inf(1)}},
	}
	got := Normalize(q)
	if !reflect.DeepEqual(got.Options.List, []float64{1, 2}) {
		t.Errorf("list = %v; want [1 2]", got.Options.List)
	}
}

func TestNormalize_UnknownType(t *testing.T) {
	q := models.Question{
		Type:    "matrix",
		Options: &models.Options{Choices: []string{"a"}},
	}
	got := Normalize(q)
	if got.Type != "matrix" {
		t.Errorf("unknown type must pass through, got %s", got.Type)
	}
	if got.Options != nil {
		t.Errorf("unknown type must carry null options, got %+v", got.Options)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	rc := 2
	oi := 3
	cases := []models.Question{
		{Text: "t", Type: models.ShortText, OrderIndex: &oi},
		{Text: "t", Type: models.SingleChoice, Options: &models.Options{Choices: []string{"a", "b"}}},
		{Text: "t", Type: models.MultiChoice, Options: &models.Options{Choices: []string{"a"}, RequiredCount: &rc}},
		{Text: "t", Type: models.Numeric, Options: &models.Options{List: []float64{1, 2}}},
		{Text: "t", Type: models.Numeric, Options: &models.Options{Range: &models.NumericRange{Start: 1, End: 5, Step: 2}}},
		{Text: "t", Type: models.Date},
	}
	for _, q := range cases {
		once := Normalize(q)
		twice := Normalize(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Normalize not idempotent for %s: %+v != %+v", q.Type, once, twice)
		}
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	opts := &models.Options{Choices: []string{"a", "b"}}
	q := models.Question{Type: models.SingleChoice, Options: opts}
	got := Normalize(q)
	got.Options.Choices[0] = "changed"
	if opts.Choices[0] != "a" {
		t.Error("Normalize must copy option slices")
	}
}

func TestNormalize_StripsLegacyKey(t *testing.T) {
	q := models.Question{
		Type:    models.SingleChoice,
		Options: &models.Options{LegacyChoices: []string{"old"}},
	}
	got := Normalize(q)
	if got.Options == nil || got.Options.LegacyChoices != nil {
		t.Errorf("legacy options key must not survive normalization: %+v", got.Options)
	}
	if len(got.Options.Choices) != 0 {
		t.Errorf("legacy choices are not migrated: %v", got.Options.Choices)
	}
}
