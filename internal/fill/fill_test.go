package fill

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mlukic/formflow/internal/models"
)

func TestControlFor(t *testing.T) {
	cases := []struct {
		q    models.Question
		want Control
	}{
		{models.Question{Type: models.ShortText}, ControlTextInput},
		{models.Question{Type: models.LongText}, ControlTextArea},
		{models.Question{Type: models.SingleChoice}, ControlRadioGroup},
		{models.Question{Type: models.MultiChoice}, ControlCheckboxGroup},
		{models.Question{Type: models.Numeric, Options: &models.Options{List: []float64{1}}}, ControlNumberSelect},
		{models.Question{Type: models.Numeric, Options: &models.Options{Range: &models.NumericRange{End: 5, Step: 1}}}, ControlNumberSelect},
		{models.Question{Type: models.Numeric}, ControlNumberInput},
		{models.Question{Type: models.Date}, ControlDateInput},
		{models.Question{Type: models.Time}, ControlTimeInput},
		{models.Question{Type: "matrix"}, ControlUnsupported},
	}
	for _, c := range cases {
		if got := ControlFor(&c.q); got != c.want {
			t.Errorf("ControlFor(%s) = %v; want %v", c.q.Type, got, c.want)
		}
	}
}

func TestRangeValues(t *testing.T) {
	cases := []struct {
		name string
		r    models.NumericRange
		want []float64
	}{
		{"simple", models.NumericRange{Start: 1, End: 5, Step: 1}, []float64{1, 2, 3, 4, 5}},
		{"step two inclusive end", models.NumericRange{Start: 0, End: 10, Step: 2}, []float64{0, 2, 4, 6, 8, 10}},
		{"end not on step", models.NumericRange{Start: 0, End: 5, Step: 2}, []float64{0, 2, 4}},
		{"single point", models.NumericRange{Start: 3, End: 3, Step: 1}, []float64{3}},
		{"zero step", models.NumericRange{Start: 0, End: 10, Step: 0}, []float64{}},
		{"negative step", models.NumericRange{Start: 0, End: 10, Step: -1}, []float64{}},
		{"reversed bounds", models.NumericRange{Start: 10, End: 0, Step: 1}, []float64{}},
	}
	for _, c := range cases {
		got := RangeValues(c.r)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("%s: RangeValues(%+v) = %v; want %v", c.name, c.r, got, c.want)
		}
	}
}

// A pathological range must terminate quickly instead of expanding
// forever.
func TestRangeValues_Capped(t *testing.T) {
	got := RangeValues(models.NumericRange{Start: 0, End: 1e12, Step: 1})
	if len(got) != rangeCap {
		t.Errorf("expected expansion cap %d, got %d values", rangeCap, len(got))
	}
}

func TestChoices_LegacyFallback(t *testing.T) {
	q := models.Question{
		Type:    models.SingleChoice,
		Options: &models.Options{LegacyChoices: []string{"old A", "old B"}},
	}
	if got := Choices(&q); !reflect.DeepEqual(got, []string{"old A", "old B"}) {
		t.Errorf("legacy options fallback failed: %v", got)
	}

	q.Options.Choices = []string{"new"}
	if got := Choices(&q); !reflect.DeepEqual(got, []string{"new"}) {
		t.Errorf("choices must win over legacy options: %v", got)
	}
}

func TestSatisfied(t *testing.T) {
	req := func(typ models.QuestionType) *models.Question {
		return &models.Question{Type: typ, Required: true}
	}

	cases := []struct {
		name string
		q    *models.Question
		v    any
		want bool
	}{
		{"missing", req(models.ShortText), nil, false},
		{"empty string", req(models.ShortText), "", false},
		{"whitespace", req(models.ShortText), "   ", false},
		{"text", req(models.ShortText), "hi", true},
		{"empty array", req(models.MultiChoice), []string{}, false},
		{"empty decoded array", req(models.MultiChoice), []any{}, false},
		{"one selection", req(models.MultiChoice), []string{"x"}, true},
		{"numeric zero counts as answered", req(models.Numeric), float64(0), true},
		{"false-like counts as answered", req(models.ShortText), false, true},
		{"optional empty", &models.Question{Type: models.ShortText}, nil, true},
		{"unknown type never blocks", &models.Question{Type: "matrix", Required: true}, nil, true},
	}
	for _, c := range cases {
		if got := Satisfied(c.q, c.v); got != c.want {
			t.Errorf("%s: Satisfied = %v; want %v", c.name, got, c.want)
		}
	}
}

func TestValidateRequired(t *testing.T) {
	qs := []models.Question{
		{ID: 1, Text: "name", Type: models.ShortText, Required: true},
		{ID: 2, Text: "tools", Type: models.MultiChoice, Required: true},
	}

	err := ValidateRequired(qs, Answers{1: "me", 2: []string{}})
	var re *RequiredError
	if !errors.As(err, &re) || re.Question.ID != 2 {
		t.Fatalf("expected RequiredError on question 2, got %v", err)
	}
	if re.Error() != `question "tools" is required` {
		t.Errorf("message = %q", re.Error())
	}

	if err := ValidateRequired(qs, Answers{1: "me", 2: []string{"x"}}); err != nil {
		t.Errorf("expected pass, got %v", err)
	}
}

func TestGate(t *testing.T) {
	form := &models.Form{
		ID:             7,
		AllowAnonymous: false,
		Questions: []models.Question{
			{ID: 1, Text: "q", Type: models.ShortText, Required: true},
		},
	}

	if err := Gate(form, "", Answers{1: "a"}); !errors.Is(err, ErrLoginRequired) {
		t.Errorf("anonymous submit on a non-anonymous form must be blocked, got %v", err)
	}

	form.AllowAnonymous = true
	form.IsLocked = true
	if err := Gate(form, "", Answers{1: "a"}); !errors.Is(err, ErrLocked) {
		t.Errorf("locked form must block submission, got %v", err)
	}

	form.IsLocked = false
	if err := Gate(form, "", Answers{}); err == nil {
		t.Error("missing required answer must block submission")
	}
	if err := Gate(form, "", Answers{1: "a"}); err != nil {
		t.Errorf("expected submit to proceed, got %v", err)
	}
}

func TestBuildSubmission(t *testing.T) {
	form := &models.Form{
		ID: 3,
		Questions: []models.Question{
			{ID: 10, Type: models.ShortText},
			{ID: 11, Type: models.Numeric},
			{ID: 12, Type: models.MultiChoice},
		},
	}
	a := Answers{12: []string{"x"}, 10: "hello"}

	sub := BuildSubmission(form, a)
	if sub.FormID != 3 {
		t.Errorf("form_id = %d", sub.FormID)
	}
	want := []models.Answer{
		{QuestionID: 10, Value: "hello"},
		{QuestionID: 12, Value: []string{"x"}},
	}
	if !reflect.DeepEqual(sub.Answers, want) {
		t.Errorf("answers = %+v; want %+v", sub.Answers, want)
	}
}
