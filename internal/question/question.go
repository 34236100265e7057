// Package question turns editor-side question drafts into the canonical
// wire payload expected by the forms service. All transformations are
// pure: malformed input degrades to empty lists or a null options
// payload, never to an error.
package question

import (
	"math"
	"strconv"
	"strings"

	"github.com/mlukic/formflow/internal/models"
)

// Draft is the free-form editor state of one question. Choice lists and
// numeric lists are kept as raw text the way the user typed them;
// Payload parses them into the canonical shape.
type Draft struct {
	Text     string
	Type     models.QuestionType
	Required bool
	// OrderIndex is nil for a question that has not been placed yet;
	// the forms service appends it at the end.
	OrderIndex *int
	ImageURL   string

	// Choices is a newline- or comma-separated choice list (choice
	// types only).
	Choices string
	// RequiredCount is the raw required_count input; "" omits the key.
	RequiredCount string
	// NumberList is a comma-separated number list (numeric only).
	NumberList string
	// Range is the numeric range input (numeric only). A non-empty
	// NumberList takes precedence.
	Range *models.NumericRange
}

// SwitchType changes the draft's type and discards any type-specific
// option state. There is no cross-type migration: switching from
// single_choice to numeric drops the choice list.
func (d *Draft) SwitchType(t models.QuestionType) {
	d.Type = t
	d.Choices = ""
	d.RequiredCount = ""
	d.NumberList = ""
	d.Range = nil
}

// Payload parses the draft's editor fields and returns the canonical
// wire payload for create or update calls.
func (d Draft) Payload() models.Question {
	q := models.Question{
		Text:       d.Text,
		Type:       d.Type,
		Required:   d.Required,
		OrderIndex: d.OrderIndex,
		ImageURL:   d.ImageURL,
	}

	switch d.Type {
	case models.SingleChoice, models.MultiChoice:
		q.Options = &models.Options{Choices: SplitChoices(d.Choices)}
		if d.Type == models.MultiChoice {
			q.Options.RequiredCount = ParseRequiredCount(d.RequiredCount)
		}
	case models.Numeric:
		if strings.TrimSpace(d.NumberList) != "" {
			q.Options = &models.Options{List: ParseNumberList(d.NumberList)}
		} else if d.Range != nil {
			r := *d.Range
			q.Options = &models.Options{Range: &r}
		}
	}

	return Normalize(q)
}

// Normalize rewrites a question record into its canonical shape:
// options_json is cleared for types that carry none, choice types keep
// choices plus an optional required_count (multi_choice only), and
// numeric keeps exactly one of list or range, with list taking
// precedence when both are present. Unknown types pass through with a
// null options payload. Normalize never mutates its input and is
// idempotent.
func Normalize(q models.Question) models.Question {
	out := models.Question{
		Text:       q.Text,
		Type:       q.Type,
		Required:   q.Required,
		OrderIndex: q.OrderIndex,
		ImageURL:   q.ImageURL,
	}

	switch q.Type {
	case models.SingleChoice, models.MultiChoice:
		opts := &models.Options{Choices: []string{}}
		if q.Options != nil && q.Options.Choices != nil {
			opts.Choices = append([]string{}, q.Options.Choices...)
		}
		if q.Type == models.MultiChoice && q.Options != nil && q.Options.RequiredCount != nil {
			rc := *q.Options.RequiredCount
			opts.RequiredCount = &rc
		}
		out.Options = opts
	case models.Numeric:
		if q.Options == nil {
			break
		}
		switch {
		case q.Options.List != nil:
			list := make([]float64, 0, len(q.Options.List))
			for _, n := range q.Options.List {
				if math.IsNaN(n) || math.IsInf(n, 0) {
					continue
				}
				list = append(list, n)
			}
			out.Options = &models.Options{List: list}
		case q.Options.Range != nil:
			// Copied verbatim: bounds are not validated here, a
			// degenerate range resolves to an empty domain at fill
			// time.
			r := *q.Options.Range
			out.Options = &models.Options{Range: &r}
		}
	}

	return out
}

// SplitChoices parses a free-text choice list: tokens are separated by
// newlines or commas, trimmed, empty tokens are dropped, order is
// preserved and duplicates are kept.
func SplitChoices(text string) []string {
	out := []string{}
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	}) {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// ParseNumberList parses a comma-separated number list, dropping empty
// tokens and anything that does not parse to a finite number.
func ParseNumberList(text string) []float64 {
	out := []float64{}
	for _, tok := range strings.Split(text, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// ParseRequiredCount coerces the raw required_count input to an
// integer. Empty or unparseable input yields nil, which omits the key
// from the payload entirely.
func ParseRequiredCount(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
