// Package session holds one form and its ordered question list during
// an editing session: local reordering, optimistic patching and
// reconciliation with server records. The Editor in this package is
// the only mutation path and refuses every edit while the form is
// locked, before any network call is made.
package session

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/mlukic/formflow/internal/models"
)

// ErrFormLocked is returned by every mutation entry point while
// is_locked is set.
var ErrFormLocked = errors.New("form is locked, editing is disabled")

// Direction selects the neighbour a question is swapped with.
type Direction int

const (
	// Up swaps with the question one position earlier in the current
	// sort order.
	Up Direction = iota
	// Down swaps with the question one position later.
	Down
)

// Session is the in-memory state of one form. All reads return copies;
// the visible question list is re-sorted ascending by order_index
// (nil as 0) after every mutation and every server round trip.
type Session struct {
	mu   sync.Mutex
	form models.Form
}

// New starts a session over a server form record.
func New(form models.Form) *Session {
	s := &Session{form: form}
	s.sortQuestions()
	return s
}

// Form returns a copy of the current form state.
func (s *Session) Form() models.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Locked reports the form's lock flag.
func (s *Session) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.IsLocked
}

// Reconcile replaces local state with the server's canonical record.
func (s *Session) Reconcile(form models.Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = form
	s.sortQuestions()
}

// ApplyPatch merges a partial update into the form optimistically. The
// caller is expected to Reconcile with the server's returned record
// afterwards. Patching is how a locked form gets unlocked, so it is
// not gated on the lock flag.
func (s *Session) ApplyPatch(patch models.FormPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.Name != nil {
		s.form.Name = *patch.Name
	}
	if patch.Description != nil {
		s.form.Description = *patch.Description
	}
	if patch.AllowAnonymous != nil {
		s.form.AllowAnonymous = *patch.AllowAnonymous
	}
	if patch.IsLocked != nil {
		s.form.IsLocked = *patch.IsLocked
	}
}

// AddQuestion appends a server-created question and re-sorts.
func (s *Session) AddQuestion(q models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.IsLocked {
		return ErrFormLocked
	}
	s.form.Questions = append(s.form.Questions, q)
	s.sortQuestions()
	return nil
}

// ReplaceQuestion swaps the question with the given id for the
// server's updated record and re-sorts.
func (s *Session) ReplaceQuestion(id int64, q models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.IsLocked {
		return ErrFormLocked
	}
	for i := range s.form.Questions {
		if s.form.Questions[i].ID == id {
			s.form.Questions[i] = q
			break
		}
	}
	s.sortQuestions()
	return nil
}

// RemoveQuestion drops the question with the given id.
func (s *Session) RemoveQuestion(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.IsLocked {
		return ErrFormLocked
	}
	kept := s.form.Questions[:0]
	for _, q := range s.form.Questions {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	s.form.Questions = kept
	return nil
}

// MoveLocal swaps the question with its immediate neighbour in the
// current sort order and renumbers order_index densely from 0. This is
// a local-only optimistic renumbering; CommitOrder persists it.
// Unknown ids and out-of-bounds moves are no-ops.
func (s *Session) MoveLocal(id int64, dir Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.IsLocked {
		return ErrFormLocked
	}

	idx := -1
	for i := range s.form.Questions {
		if s.form.Questions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	swap := idx - 1
	if dir == Down {
		swap = idx + 1
	}
	if swap < 0 || swap >= len(s.form.Questions) {
		return nil
	}

	qs := s.form.Questions
	qs[idx], qs[swap] = qs[swap], qs[idx]
	for i := range qs {
		n := i
		qs[i].OrderIndex = &n
	}
	return nil
}

// OrderIDs returns the question ids in their current visible order,
// the payload of the reorder operation.
func (s *Session) OrderIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, len(s.form.Questions))
	for i, q := range s.form.Questions {
		ids[i] = q.ID
	}
	return ids
}

// Filter returns the questions whose text contains the search string,
// case-insensitively. It is a derived view and never mutates stored
// state.
func (s *Session) Filter(search string) []models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	form := s.snapshot()
	if search == "" {
		return form.Questions
	}
	needle := strings.ToLower(search)
	out := []models.Question{}
	for _, q := range form.Questions {
		if strings.Contains(strings.ToLower(q.Text), needle) {
			out = append(out, q)
		}
	}
	return out
}

// snapshot copies the form. Called with the lock held.
func (s *Session) snapshot() models.Form {
	form := s.form
	form.Questions = append([]models.Question{}, s.form.Questions...)
	return form
}

// sortQuestions re-sorts ascending by order_index, nil as 0. Called
// with the lock held.
func (s *Session) sortQuestions() {
	sort.SliceStable(s.form.Questions, func(i, j int) bool {
		return s.form.Questions[i].Order() < s.form.Questions[j].Order()
	})
}
