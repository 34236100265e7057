package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlukic/formflow/internal/models"
)

func intp(n int) *int { return &n }

func threeQuestions() models.Form {
	return models.Form{
		ID:   1,
		Name: "f",
		Questions: []models.Question{
			{ID: 30, Text: "third", Type: models.ShortText, OrderIndex: intp(2)},
			{ID: 10, Text: "first", Type: models.ShortText, OrderIndex: intp(0)},
			{ID: 20, Text: "second", Type: models.ShortText, OrderIndex: intp(1)},
		},
	}
}

func ids(qs []models.Question) []int64 {
	out := make([]int64, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestNewSortsByOrderIndex(t *testing.T) {
	s := New(threeQuestions())
	assert.Equal(t, []int64{10, 20, 30}, ids(s.Form().Questions))
}

func TestNilOrderIndexSortsAsZero(t *testing.T) {
	s := New(models.Form{Questions: []models.Question{
		{ID: 1, OrderIndex: intp(1)},
		{ID: 2, OrderIndex: nil},
	}})
	assert.Equal(t, []int64{2, 1}, ids(s.Form().Questions))
}

func TestApplyPatch(t *testing.T) {
	s := New(threeQuestions())
	locked := true
	s.ApplyPatch(models.FormPatch{IsLocked: &locked})
	assert.True(t, s.Locked())

	// patching stays possible on a locked form (how it gets unlocked)
	locked = false
	s.ApplyPatch(models.FormPatch{IsLocked: &locked})
	assert.False(t, s.Locked())
}

func TestMoveLocal(t *testing.T) {
	s := New(threeQuestions())

	require.NoError(t, s.MoveLocal(20, Up))
	assert.Equal(t, []int64{20, 10, 30}, ids(s.Form().Questions))

	// order_index renumbered densely from 0
	for i, q := range s.Form().Questions {
		require.NotNil(t, q.OrderIndex)
		assert.Equal(t, i, *q.OrderIndex)
	}
}

func TestMoveLocal_OutOfBounds(t *testing.T) {
	s := New(threeQuestions())

	require.NoError(t, s.MoveLocal(10, Up))
	assert.Equal(t, []int64{10, 20, 30}, ids(s.Form().Questions), "moving the first question up is a no-op")

	require.NoError(t, s.MoveLocal(30, Down))
	assert.Equal(t, []int64{10, 20, 30}, ids(s.Form().Questions), "moving the last question down is a no-op")

	require.NoError(t, s.MoveLocal(999, Up))
	assert.Equal(t, []int64{10, 20, 30}, ids(s.Form().Questions), "unknown id is a no-op")
}

func TestFilterIsPureDerivedView(t *testing.T) {
	s := New(threeQuestions())

	got := s.Filter("SEC")
	require.Len(t, got, 1)
	assert.Equal(t, int64(20), got[0].ID)

	assert.Len(t, s.Filter(""), 3)
	assert.Empty(t, s.Filter("nope"))
	// stored state untouched
	assert.Equal(t, []int64{10, 20, 30}, ids(s.Form().Questions))
}

func TestLockedMutationsAreRejected(t *testing.T) {
	form := threeQuestions()
	form.IsLocked = true
	s := New(form)
	before := s.Form()

	assert.ErrorIs(t, s.AddQuestion(models.Question{ID: 40}), ErrFormLocked)
	assert.ErrorIs(t, s.ReplaceQuestion(10, models.Question{ID: 10}), ErrFormLocked)
	assert.ErrorIs(t, s.RemoveQuestion(10), ErrFormLocked)
	assert.ErrorIs(t, s.MoveLocal(20, Up), ErrFormLocked)

	assert.Equal(t, before, s.Form(), "locked mutations must leave state unchanged")
}

func TestAddReplaceRemove(t *testing.T) {
	s := New(threeQuestions())

	require.NoError(t, s.AddQuestion(models.Question{ID: 5, OrderIndex: intp(0)}))
	// equal keys keep insertion order (stable sort)
	assert.Equal(t, []int64{10, 5, 20, 30}, ids(s.Form().Questions))

	require.NoError(t, s.ReplaceQuestion(5, models.Question{ID: 5, Text: "renamed", OrderIndex: intp(9)}))
	got := s.Form().Questions
	assert.Equal(t, int64(5), got[len(got)-1].ID, "replaced question re-sorts to its new position")

	require.NoError(t, s.RemoveQuestion(5))
	assert.Equal(t, []int64{10, 20, 30}, ids(s.Form().Questions))
}
