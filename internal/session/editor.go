package session

import (
	"context"
	"errors"
	"strings"

	"github.com/mlukic/formflow/internal/models"
	"github.com/mlukic/formflow/internal/question"
)

// ErrTextRequired is returned when a question is added or updated with
// empty text.
var ErrTextRequired = errors.New("question text is required")

// FormsAPI is the slice of the forms service the editor needs.
type FormsAPI interface {
	Update(ctx context.Context, token string, id int64, patch models.FormPatch) (models.Form, error)
	AddQuestion(ctx context.Context, token string, formID int64, q models.Question) (models.Question, error)
	UpdateQuestion(ctx context.Context, token string, formID, questionID int64, q models.Question) (models.Question, error)
	DeleteQuestion(ctx context.Context, token string, formID, questionID int64) error
	CloneQuestion(ctx context.Context, token string, formID, questionID int64) (models.Question, error)
	Reorder(ctx context.Context, token string, formID int64, order []int64) (models.Form, error)
}

// Editor drives a form-building session against the forms service.
// Every mutation checks the lock flag before touching the network, in
// addition to the same check inside the Session state methods.
type Editor struct {
	s     *Session
	api   FormsAPI
	token string
}

// NewEditor starts an editing session over a server form record.
func NewEditor(form models.Form, api FormsAPI, token string) *Editor {
	return &Editor{s: New(form), api: api, token: token}
}

// Session exposes the underlying state for reads (Form, Filter,
// OrderIDs).
func (e *Editor) Session() *Session { return e.s }

// Form returns a copy of the current form state.
func (e *Editor) Form() models.Form { return e.s.Form() }

// PatchForm applies a partial form update optimistically, sends it,
// and reconciles with the server's record. On failure the optimistic
// state is rolled back. Lock toggling goes through here, so patching
// is allowed on a locked form.
func (e *Editor) PatchForm(ctx context.Context, patch models.FormPatch) error {
	before := e.s.Form()
	e.s.ApplyPatch(patch)

	updated, err := e.api.Update(ctx, e.token, before.ID, patch)
	if err != nil {
		e.s.Reconcile(before)
		return err
	}
	e.s.Reconcile(updated)
	return nil
}

// SetLocked toggles the lock flag.
func (e *Editor) SetLocked(ctx context.Context, v bool) error {
	return e.PatchForm(ctx, models.FormPatch{IsLocked: &v})
}

// SetAllowAnonymous toggles anonymous filling.
func (e *Editor) SetAllowAnonymous(ctx context.Context, v bool) error {
	return e.PatchForm(ctx, models.FormPatch{AllowAnonymous: &v})
}

// AddQuestion normalizes a draft, creates it on the server and appends
// the created record. Locked forms and empty question text are
// rejected before any network call.
func (e *Editor) AddQuestion(ctx context.Context, d question.Draft) (models.Question, error) {
	if e.s.Locked() {
		return models.Question{}, ErrFormLocked
	}
	payload := d.Payload()
	if strings.TrimSpace(payload.Text) == "" {
		return models.Question{}, ErrTextRequired
	}

	created, err := e.api.AddQuestion(ctx, e.token, e.s.Form().ID, payload)
	if err != nil {
		return models.Question{}, err
	}
	return created, e.s.AddQuestion(created)
}

// UpdateQuestion normalizes the merged question record, sends it and
// replaces the local copy with the server's record.
func (e *Editor) UpdateQuestion(ctx context.Context, questionID int64, q models.Question) (models.Question, error) {
	if e.s.Locked() {
		return models.Question{}, ErrFormLocked
	}
	payload := question.Normalize(q)
	if strings.TrimSpace(payload.Text) == "" {
		return models.Question{}, ErrTextRequired
	}

	updated, err := e.api.UpdateQuestion(ctx, e.token, e.s.Form().ID, questionID, payload)
	if err != nil {
		return models.Question{}, err
	}
	return updated, e.s.ReplaceQuestion(questionID, updated)
}

// DeleteQuestion removes a question on the server and locally.
func (e *Editor) DeleteQuestion(ctx context.Context, questionID int64) error {
	if e.s.Locked() {
		return ErrFormLocked
	}
	if err := e.api.DeleteQuestion(ctx, e.token, e.s.Form().ID, questionID); err != nil {
		return err
	}
	return e.s.RemoveQuestion(questionID)
}

// CloneQuestion duplicates a question at the end of the form.
func (e *Editor) CloneQuestion(ctx context.Context, questionID int64) (models.Question, error) {
	if e.s.Locked() {
		return models.Question{}, ErrFormLocked
	}
	clone, err := e.api.CloneQuestion(ctx, e.token, e.s.Form().ID, questionID)
	if err != nil {
		return models.Question{}, err
	}
	return clone, e.s.AddQuestion(clone)
}

// MoveUp moves a question one position earlier, locally only.
func (e *Editor) MoveUp(questionID int64) error {
	return e.s.MoveLocal(questionID, Up)
}

// MoveDown moves a question one position later, locally only.
func (e *Editor) MoveDown(questionID int64) error {
	return e.s.MoveLocal(questionID, Down)
}

// CommitOrder sends the full ordered id list to the reorder operation
// and replaces local state with the server's canonical order.
func (e *Editor) CommitOrder(ctx context.Context) error {
	if e.s.Locked() {
		return ErrFormLocked
	}
	updated, err := e.api.Reorder(ctx, e.token, e.s.Form().ID, e.s.OrderIDs())
	if err != nil {
		return err
	}
	e.s.Reconcile(updated)
	return nil
}
