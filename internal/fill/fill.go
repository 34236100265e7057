// Package fill drives the fill-and-submit path: it maps questions to
// input controls, resolves each question's legal value domain and gates
// submission on required answers and form flags. Everything here is a
// pure function over the form record; the authoritative checks stay
// server-side.
package fill

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mlukic/formflow/internal/models"
)

// Control identifies the input widget used to answer a question.
type Control int

const (
	// ControlUnsupported is rendered for unrecognized question types.
	// Such questions never block submission.
	ControlUnsupported Control = iota
	ControlTextInput
	ControlTextArea
	ControlRadioGroup
	ControlCheckboxGroup
	ControlNumberSelect
	ControlNumberInput
	ControlDateInput
	ControlTimeInput
)

// rangeCap bounds range expansion so a huge or degenerate range can
// never hang the client.
const rangeCap = 10000

// ControlFor returns the input control for a question. Numeric
// questions with neither a list nor a range fall back to a free number
// input.
func ControlFor(q *models.Question) Control {
	switch q.Type {
	case models.ShortText:
		return ControlTextInput
	case models.LongText:
		return ControlTextArea
	case models.SingleChoice:
		return ControlRadioGroup
	case models.MultiChoice:
		return ControlCheckboxGroup
	case models.Numeric:
		if q.Options != nil && (q.Options.List != nil || q.Options.Range != nil) {
			return ControlNumberSelect
		}
		return ControlNumberInput
	case models.Date:
		return ControlDateInput
	case models.Time:
		return ControlTimeInput
	}
	return ControlUnsupported
}

// MaxLen returns the answer length limit for text questions, 0 for
// everything else.
func MaxLen(q *models.Question) int {
	switch q.Type {
	case models.ShortText:
		return 512
	case models.LongText:
		return 4096
	}
	return 0
}

// Choices returns the candidate options of a choice question, honoring
// the legacy "options" key of older records.
func Choices(q *models.Question) []string {
	return q.Options.ChoiceList()
}

// RangeValues expands a numeric range into its selectable set:
// start, start+step, ... up to and including end. A degenerate range
// (zero step, or a step whose direction disagrees with end-start)
// yields an empty set. Expansion is capped so it can never loop
// forever.
func RangeValues(r models.NumericRange) []float64 {
	if r.Step <= 0 || r.End < r.Start {
		return []float64{}
	}
	out := []float64{}
	for x := r.Start; x <= r.End && len(out) < rangeCap; x += r.Step {
		out = append(out, x)
	}
	return out
}

// Values returns the selectable numeric domain of a numeric question:
// the list verbatim, the expanded range, or nil when the question
// accepts free numeric input.
func Values(q *models.Question) []float64 {
	if q.Options == nil {
		return nil
	}
	if q.Options.List != nil {
		return q.Options.List
	}
	if q.Options.Range != nil {
		return RangeValues(*q.Options.Range)
	}
	return nil
}

// Answers holds the in-progress answer set of one fill session, keyed
// by question id. Values are strings, []string or numbers depending on
// the question type.
type Answers map[int64]any

// Set records an answer. Setting nil removes it.
func (a Answers) Set(questionID int64, v any) {
	if v == nil {
		delete(a, questionID)
		return
	}
	a[questionID] = v
}

// Satisfied reports whether the answer v satisfies a required
// question. Missing values, empty or whitespace-only strings and empty
// arrays fail; 0 and false count as answered. Unrecognized question
// types are always satisfied.
func Satisfied(q *models.Question, v any) bool {
	if !q.Required {
		return true
	}
	if !q.Type.Known() {
		return true
	}
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case []string:
		return len(val) > 0
	case []any:
		return len(val) > 0
	}
	return true
}

// RequiredError identifies the first unanswered required question.
type RequiredError struct {
	Question models.Question
}

func (e *RequiredError) Error() string {
	return fmt.Sprintf("question %q is required", e.Question.Text)
}

// ValidateRequired checks every required question against the answer
// set and returns a *RequiredError for the first unsatisfied one, in
// question order.
func ValidateRequired(questions []models.Question, a Answers) error {
	for i := range questions {
		q := &questions[i]
		if !Satisfied(q, a[q.ID]) {
			return &RequiredError{Question: *q}
		}
	}
	return nil
}

// Submission gate failures.
var (
	// ErrLocked means the form is locked and cannot be filled.
	ErrLocked = errors.New("form is locked and cannot be filled")
	// ErrLoginRequired means the form does not accept anonymous
	// responses and no token is held.
	ErrLoginRequired = errors.New("this form does not accept anonymous responses, log in to submit")
)

// Gate runs the pre-submit checks in order: anonymous access, lock
// flag, required answers. A nil return means the submission may be
// sent.
func Gate(form *models.Form, token string, a Answers) error {
	if !form.AllowAnonymous && token == "" {
		return ErrLoginRequired
	}
	if form.IsLocked {
		return ErrLocked
	}
	return ValidateRequired(form.Questions, a)
}

// BuildSubmission flushes the answer set into a submission payload,
// ordered by the form's question order. Unanswered questions are
// omitted.
func BuildSubmission(form *models.Form, a Answers) models.Submission {
	sub := models.Submission{FormID: form.ID, Answers: []models.Answer{}}
	for _, q := range form.Questions {
		if v, ok := a[q.ID]; ok {
			sub.Answers = append(sub.Answers, models.Answer{QuestionID: q.ID, Value: v})
		}
	}
	return sub
}
