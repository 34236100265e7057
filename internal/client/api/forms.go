package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/mlukic/formflow/internal/models"
)

// Forms talks to the forms service.
type Forms struct {
	caller
}

// NewForms builds a forms client; hc may be nil.
func NewForms(baseURL string, hc *http.Client) *Forms {
	return &Forms{caller: newCaller(baseURL, hc)}
}

// Create persists a new form owned by the authenticated account.
func (c *Forms) Create(ctx context.Context, token string, form models.Form) (models.Form, error) {
	var out models.Form
	err := c.do(ctx, http.MethodPost, "/forms", token, form, &out)
	return sorted(out), err
}

// List returns the forms the account owns or collaborates on,
// optionally filtered by a name search.
func (c *Forms) List(ctx context.Context, token, q string) ([]models.Form, error) {
	var out []models.Form
	err := c.do(ctx, http.MethodGet, "/forms"+searchQuery(q), token, nil, &out)
	return out, err
}

// ListPublic returns the unauthenticated listing, which excludes
// locked forms.
func (c *Forms) ListPublic(ctx context.Context, q string) ([]models.Form, error) {
	var out []models.Form
	err := c.do(ctx, http.MethodGet, "/forms/public"+searchQuery(q), "", nil, &out)
	return out, err
}

// Search picks the private or public listing depending on whether a
// token is held.
func (c *Forms) Search(ctx context.Context, token, q string) ([]models.Form, error) {
	if token != "" {
		return c.List(ctx, token, q)
	}
	return c.ListPublic(ctx, q)
}

// Mine returns the account's own and shared forms.
func (c *Forms) Mine(ctx context.Context, token string) ([]models.Form, error) {
	var out []models.Form
	err := c.do(ctx, http.MethodGet, "/my/forms", token, nil, &out)
	return out, err
}

// Get fetches one form with its questions.
func (c *Forms) Get(ctx context.Context, token string, id int64) (models.Form, error) {
	var out models.Form
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/forms/%d", id), token, nil, &out)
	return sorted(out), err
}

// Meta fetches the unauthenticated single-form view used by fill
// pages. Locked forms are not served here.
func (c *Forms) Meta(ctx context.Context, id int64) (models.FormMeta, error) {
	var out models.FormMeta
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/forms/%d/meta", id), "", nil, &out)
	return out, err
}

// ForFill loads a form for the fill page: authenticated sessions use
// the private record, guests use the public meta view, and an auth
// failure on the private call falls back to meta.
func (c *Forms) ForFill(ctx context.Context, token string, id int64) (models.Form, error) {
	if token != "" {
		form, err := c.Get(ctx, token, id)
		if err == nil {
			return form, nil
		}
	}
	meta, err := c.Meta(ctx, id)
	if err != nil {
		return models.Form{}, err
	}
	form := models.Form{
		ID:             meta.ID,
		Name:           meta.Name,
		Description:    meta.Description,
		AllowAnonymous: meta.AllowAnonymous,
		IsLocked:       meta.IsLocked,
		Questions:      meta.Questions,
	}
	if form.Name == "" {
		form.Name = fmt.Sprintf("Form #%d", meta.ID)
	}
	return sorted(form), nil
}

// Update replaces the form's mutable fields. This is a full-document
// PUT on the wire; nil patch fields are left unchanged by the service.
func (c *Forms) Update(ctx context.Context, token string, id int64, patch models.FormPatch) (models.Form, error) {
	var out models.Form
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/forms/%d", id), token, patch, &out)
	return sorted(out), err
}

// Delete removes a form (owner only).
func (c *Forms) Delete(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/forms/%d", id), token, nil, nil)
}

// AddQuestion appends a question to a form.
func (c *Forms) AddQuestion(ctx context.Context, token string, formID int64, q models.Question) (models.Question, error) {
	var out models.Question
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/forms/%d/questions", formID), token, q, &out)
	return out, err
}

// UpdateQuestion replaces a question.
func (c *Forms) UpdateQuestion(ctx context.Context, token string, formID, questionID int64, q models.Question) (models.Question, error) {
	var out models.Question
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/forms/%d/questions/%d", formID, questionID), token, q, &out)
	return out, err
}

// DeleteQuestion removes a question.
func (c *Forms) DeleteQuestion(ctx context.Context, token string, formID, questionID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/forms/%d/questions/%d", formID, questionID), token, nil, nil)
}

// CloneQuestion duplicates a question at the end of the form.
func (c *Forms) CloneQuestion(ctx context.Context, token string, formID, questionID int64) (models.Question, error) {
	var out models.Question
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/forms/%d/questions/%d/clone", formID, questionID), token, nil, &out)
	return out, err
}

// Reorder sends the full ordered question id list and returns the
// form with its canonical order.
func (c *Forms) Reorder(ctx context.Context, token string, formID int64, order []int64) (models.Form, error) {
	var out models.Form
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/forms/%d/reorder", formID), token, order, &out)
	return sorted(out), err
}

// Collaborators lists a form's collaborators (owner only).
func (c *Forms) Collaborators(ctx context.Context, token string, formID int64) ([]models.Collaborator, error) {
	var out []models.Collaborator
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/forms/%d/collaborators", formID), token, nil, &out)
	return out, err
}

// AddCollaborator grants an account access to the form.
func (c *Forms) AddCollaborator(ctx context.Context, token string, formID int64, email, role string) (models.Collaborator, error) {
	var out models.Collaborator
	body := models.Collaborator{Email: email, Role: role}
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/forms/%d/collaborators", formID), token, body, &out)
	return out, err
}

// RemoveCollaborator revokes access.
func (c *Forms) RemoveCollaborator(ctx context.Context, token string, formID, collabID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/forms/%d/collaborators/%d", formID, collabID), token, nil, nil)
}

func searchQuery(q string) string {
	if q == "" {
		return ""
	}
	return "?q=" + url.QueryEscape(q)
}

// sorted returns form with its questions ordered ascending by
// order_index, nil sorting as 0. Every server round trip goes through
// here so the visible order is always the canonical one.
func sorted(form models.Form) models.Form {
	sort.SliceStable(form.Questions, func(i, j int) bool {
		return form.Questions[i].Order() < form.Questions[j].Order()
	})
	return form
}
