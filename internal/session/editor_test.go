package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlukic/formflow/internal/models"
	"github.com/mlukic/formflow/internal/question"
)

// fakeForms records calls so tests can assert that locked forms never
// reach the network.
type fakeForms struct {
	calls []string

	updateResult  models.Form
	addResult     models.Question
	updateQResult models.Question
	cloneResult   models.Question
	reorderResult models.Form
	err           error
}

func (f *fakeForms) Update(_ context.Context, _ string, _ int64, _ models.FormPatch) (models.Form, error) {
	f.calls = append(f.calls, "update")
	return f.updateResult, f.err
}

func (f *fakeForms) AddQuestion(_ context.Context, _ string, _ int64, q models.Question) (models.Question, error) {
	f.calls = append(f.calls, "addQuestion")
	if f.err != nil {
		return models.Question{}, f.err
	}
	return f.addResult, nil
}

func (f *fakeForms) UpdateQuestion(_ context.Context, _ string, _, _ int64, q models.Question) (models.Question, error) {
	f.calls = append(f.calls, "updateQuestion")
	return f.updateQResult, f.err
}

func (f *fakeForms) DeleteQuestion(_ context.Context, _ string, _, _ int64) error {
	f.calls = append(f.calls, "deleteQuestion")
	return f.err
}

func (f *fakeForms) CloneQuestion(_ context.Context, _ string, _, _ int64) (models.Question, error) {
	f.calls = append(f.calls, "cloneQuestion")
	return f.cloneResult, f.err
}

func (f *fakeForms) Reorder(_ context.Context, _ string, _ int64, order []int64) (models.Form, error) {
	f.calls = append(f.calls, "reorder")
	return f.reorderResult, f.err
}

func TestEditor_LockedIsNoOpWithoutNetwork(t *testing.T) {
	form := threeQuestions()
	form.IsLocked = true
	api := &fakeForms{}
	e := NewEditor(form, api, "tok")
	before := e.Form()

	_, err := e.AddQuestion(context.Background(), question.Draft{Text: "x", Type: models.ShortText})
	assert.ErrorIs(t, err, ErrFormLocked)

	_, err = e.UpdateQuestion(context.Background(), 10, models.Question{Text: "x", Type: models.ShortText})
	assert.ErrorIs(t, err, ErrFormLocked)

	assert.ErrorIs(t, e.DeleteQuestion(context.Background(), 10), ErrFormLocked)

	_, err = e.CloneQuestion(context.Background(), 10)
	assert.ErrorIs(t, err, ErrFormLocked)

	assert.ErrorIs(t, e.CommitOrder(context.Background()), ErrFormLocked)

	assert.Empty(t, api.calls, "no network call may be issued for a locked form")
	assert.Equal(t, before, e.Form(), "state must be unchanged")
}

func TestEditor_AddQuestion(t *testing.T) {
	api := &fakeForms{
		addResult: models.Question{ID: 40, Text: "new", Type: models.ShortText, OrderIndex: intp(3)},
	}
	e := NewEditor(threeQuestions(), api, "tok")

	created, err := e.AddQuestion(context.Background(), question.Draft{Text: "new", Type: models.ShortText})
	require.NoError(t, err)
	assert.Equal(t, int64(40), created.ID)
	assert.Equal(t, []string{"addQuestion"}, api.calls)
	assert.Equal(t, []int64{10, 20, 30, 40}, ids(e.Form().Questions))
}

func TestEditor_AddQuestionRequiresText(t *testing.T) {
	api := &fakeForms{}
	e := NewEditor(threeQuestions(), api, "tok")

	_, err := e.AddQuestion(context.Background(), question.Draft{Text: "   ", Type: models.ShortText})
	assert.Error(t, err)

	_, err = e.AddQuestion(context.Background(), question.Draft{Type: models.ShortText})
	assert.ErrorIs(t, err, ErrTextRequired)
	assert.Empty(t, api.calls)
}

func TestEditor_PatchFormReconciles(t *testing.T) {
	server := threeQuestions()
	server.AllowAnonymous = true
	api := &fakeForms{updateResult: server}
	e := NewEditor(threeQuestions(), api, "tok")

	v := true
	require.NoError(t, e.SetAllowAnonymous(context.Background(), v))
	assert.True(t, e.Form().AllowAnonymous)
	assert.Equal(t, []string{"update"}, api.calls)
}

func TestEditor_PatchFormRollsBackOnError(t *testing.T) {
	api := &fakeForms{err: errors.New("boom")}
	e := NewEditor(threeQuestions(), api, "tok")

	err := e.SetLocked(context.Background(), true)
	assert.Error(t, err)
	assert.False(t, e.Form().IsLocked, "optimistic patch must be rolled back")
}

func TestEditor_MoveThenCommitOrder(t *testing.T) {
	server := threeQuestions()
	api := &fakeForms{reorderResult: server}
	e := NewEditor(threeQuestions(), api, "tok")

	require.NoError(t, e.MoveUp(30))
	assert.Equal(t, []int64{10, 30, 20}, ids(e.Form().Questions))
	assert.Empty(t, api.calls, "moves are local until committed")

	require.NoError(t, e.CommitOrder(context.Background()))
	assert.Equal(t, []string{"reorder"}, api.calls)
	// server record wins after commit
	assert.Equal(t, []int64{10, 20, 30}, ids(e.Form().Questions))
}

func TestEditor_UpdateQuestionNormalizes(t *testing.T) {
	api := &fakeForms{updateQResult: models.Question{ID: 10, Text: "t", Type: models.ShortText}}
	e := NewEditor(threeQuestions(), api, "tok")

	// stale options from a previous type must not reach the wire
	_, err := e.UpdateQuestion(context.Background(), 10, models.Question{
		ID:      10,
		Text:    "t",
		Type:    models.ShortText,
		Options: &models.Options{Choices: []string{"stale"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"updateQuestion"}, api.calls)
}

func TestEditor_DeleteQuestion(t *testing.T) {
	api := &fakeForms{}
	e := NewEditor(threeQuestions(), api, "tok")

	require.NoError(t, e.DeleteQuestion(context.Background(), 20))
	assert.Equal(t, []int64{10, 30}, ids(e.Form().Questions))
}

func TestEditor_CloneQuestion(t *testing.T) {
	api := &fakeForms{
		cloneResult: models.Question{ID: 31, Text: "third", Type: models.ShortText, OrderIndex: intp(3)},
	}
	e := NewEditor(threeQuestions(), api, "tok")

	clone, err := e.CloneQuestion(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, int64(31), clone.ID)
	assert.Equal(t, []int64{10, 20, 30, 31}, ids(e.Form().Questions))
}
