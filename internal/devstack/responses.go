package devstack

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/mlukic/formflow/internal/fill"
	"github.com/mlukic/formflow/internal/middleware"
	"github.com/mlukic/formflow/internal/models"
)

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var sub models.Submission
	if err := render.DecodeJSON(r.Body, &sub); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	// The mounted /forms/{id}/submit route overrides the body's form id.
	if id, ok := urlID(r, "id"); ok {
		sub.FormID = id
	}

	form, ok := s.store.FormForSubmit(sub.FormID)
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if form.IsLocked {
		http.Error(w, "Form is locked", http.StatusLocked)
		return
	}
	email := middleware.GetUserFromContext(r.Context())
	if !form.AllowAnonymous && email == "" {
		http.Error(w, "Login required", http.StatusUnauthorized)
		return
	}
	if err := validateSubmission(form, sub); err != nil {
		writeErr(w, err)
		return
	}

	resp := models.Response{
		ID:        uuid.NewString(),
		FormID:    sub.FormID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Answers:   sub.Answers,
	}
	s.store.AddResponse(resp)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// validateSubmission applies the responses service's checks: every
// answer must target a known question, required questions must be
// answered, and values must fit the question's type and domain.
func validateSubmission(form models.Form, sub models.Submission) error {
	byID := make(map[int64]*models.Question, len(form.Questions))
	for i := range form.Questions {
		byID[form.Questions[i].ID] = &form.Questions[i]
	}

	answers := make(fill.Answers, len(sub.Answers))
	for _, a := range sub.Answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			return validationErr("unknown question id %d", a.QuestionID)
		}
		if err := validateAnswer(q, a.Value); err != nil {
			return err
		}
		answers[a.QuestionID] = a.Value
	}

	for i := range form.Questions {
		q := &form.Questions[i]
		if q.Required && !fill.Satisfied(q, answers[q.ID]) {
			return validationErr("question %q is required", q.Text)
		}
	}
	return nil
}

func validateAnswer(q *models.Question, v any) error {
	if v == nil {
		return nil
	}
	switch q.Type {
	case models.ShortText, models.LongText:
		s, ok := v.(string)
		if !ok {
			return validationErr("question %q expects text", q.Text)
		}
		if len([]rune(s)) > fill.MaxLen(q) {
			return validationErr("answer to %q exceeds %d characters", q.Text, fill.MaxLen(q))
		}
	case models.SingleChoice:
		s, ok := v.(string)
		if !ok || (s != "" && !containsString(fill.Choices(q), s)) {
			return validationErr("answer to %q is not one of the choices", q.Text)
		}
	case models.MultiChoice:
		picks, ok := asStrings(v)
		if !ok {
			return validationErr("question %q expects a list of choices", q.Text)
		}
		for _, p := range picks {
			if !containsString(fill.Choices(q), p) {
				return validationErr("answer to %q is not one of the choices", q.Text)
			}
		}
		if q.Options != nil && q.Options.RequiredCount != nil && len(picks) > 0 && len(picks) < *q.Options.RequiredCount {
			return validationErr("question %q needs at least %d picks", q.Text, *q.Options.RequiredCount)
		}
	case models.Numeric:
		n, ok := asNumber(v)
		if !ok {
			return validationErr("question %q expects a number", q.Text)
		}
		if domain := fill.Values(q); len(domain) > 0 && !containsFloat(domain, n) {
			return validationErr("answer to %q is outside the allowed values", q.Text)
		}
	case models.Date:
		s, ok := v.(string)
		if !ok {
			return validationErr("question %q expects a date", q.Text)
		}
		if s != "" {
			if _, err := time.Parse("2006-01-02", s); err != nil {
				return validationErr("answer to %q is not a valid date", q.Text)
			}
		}
	case models.Time:
		s, ok := v.(string)
		if !ok {
			return validationErr("question %q expects a time", q.Text)
		}
		if s != "" {
			if _, err := time.Parse("15:04", s); err != nil {
				return validationErr("answer to %q is not a valid time", q.Text)
			}
		}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsFloat(list []float64, n float64) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}

// asStrings accepts the list shapes a multi choice answer arrives in:
// []string straight from Go callers, []any from decoded JSON.
func asStrings(v any) ([]string, bool) {
	switch vv := v.(type) {
	case []string:
		return vv, true
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func (s *Server) handleListResponses(w http.ResponseWriter, r *http.Request) {
	email, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "invalid form id", http.StatusBadRequest)
		return
	}
	if err := s.store.ResponsesAccess(email, id); err != nil {
		writeErr(w, err)
		return
	}
	render.JSON(w, r, s.store.Responses(id))
}

// handleAggregate returns per-question value counts for choice and
// numeric questions plus the total response count. The shape is owned
// by this service; clients pass it through opaquely.
func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	email, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "invalid form id", http.StatusBadRequest)
		return
	}
	if err := s.store.ResponsesAccess(email, id); err != nil {
		writeErr(w, err)
		return
	}

	form, _ := s.store.FormForSubmit(id)
	responses := s.store.Responses(id)

	questions := make(map[string]map[string]int)
	for _, q := range form.Questions {
		switch q.Type {
		case models.SingleChoice, models.MultiChoice, models.Numeric:
			questions[strconv.FormatInt(q.ID, 10)] = map[string]int{}
		}
	}
	for _, resp := range responses {
		for _, a := range resp.Answers {
			counts, ok := questions[strconv.FormatInt(a.QuestionID, 10)]
			if !ok {
				continue
			}
			for _, key := range answerKeys(a.Value) {
				counts[key]++
			}
		}
	}

	render.JSON(w, r, map[string]any{
		"form_id":   id,
		"count":     len(responses),
		"questions": questions,
	})
}

// answerKeys flattens an answer value into countable keys.
func answerKeys(v any) []string {
	switch vv := v.(type) {
	case nil:
		return nil
	case string:
		if vv == "" {
			return nil
		}
		return []string{vv}
	case float64:
		return []string{strconv.FormatFloat(vv, 'f', -1, 64)}
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			out = append(out, answerKeys(item)...)
		}
		return out
	}
	return []string{fmt.Sprint(v)}
}

// handleExport streams the collected responses as a CSV download. The
// dev stack serves it without auth so the link can be opened in a
// browser directly.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "invalid form id", http.StatusBadRequest)
		return
	}
	form, ok := s.store.FormForSubmit(id)
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=form-%d-responses.csv", id))

	cw := csv.NewWriter(w)
	header := []string{"response_id", "created_at"}
	for _, q := range form.Questions {
		header = append(header, q.Text)
	}
	_ = cw.Write(header)

	for _, resp := range s.store.Responses(id) {
		byID := make(map[int64]any, len(resp.Answers))
		for _, a := range resp.Answers {
			byID[a.QuestionID] = a.Value
		}
		row := []string{resp.ID, resp.CreatedAt}
		for _, q := range form.Questions {
			row = append(row, strings.Join(answerKeys(byID[q.ID]), "; "))
		}
		_ = cw.Write(row)
	}
	cw.Flush()
}
