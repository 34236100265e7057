package devstack

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mlukic/formflow/internal/models"
)

// errValidation marks 422 responses.
type errValidation struct{ msg string }

func (e *errValidation) Error() string { return e.msg }

func validationErr(format string, args ...any) error {
	return &errValidation{msg: fmt.Sprintf(format, args...)}
}

var (
	errNotFound         = errors.New("Not found")
	errForbidden        = errors.New("Forbidden")
	errEmailTaken       = errors.New("Email already registered")
	errQuestionNotFound = errors.New("Question not found")
	errCollabNotFound   = errors.New("Collaborator not found")
	errOwnerOnly        = errors.New("Only the owner can do that")
	errOwnerCollab      = errors.New("Owner already has full access")
)

type user struct {
	ID       int64
	Email    string
	FullName string
	Password string
}

// Store is the in-memory state behind the dev stack. It stands in for
// the three services' databases and implements their semantics:
// ownership and collaborator checks, question payload validation,
// reordering and response collection.
type Store struct {
	mu        sync.Mutex
	users     map[string]*user
	forms     map[int64]*models.Form
	collabs   map[int64][]models.Collaborator
	responses map[int64][]models.Response
	nextID    int64
}

func NewStore() *Store {
	return &Store{
		users:     make(map[string]*user),
		forms:     make(map[int64]*models.Form),
		collabs:   make(map[int64][]models.Collaborator),
		responses: make(map[int64][]models.Response),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// ---- users ----

func (s *Store) CreateUser(email, fullName, password string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[email]; ok {
		return models.User{}, errEmailTaken
	}
	u := &user{ID: s.id(), Email: email, FullName: fullName, Password: password}
	s.users[email] = u
	return models.User{ID: u.ID, Email: u.Email, FullName: u.FullName}, nil
}

func (s *Store) Authenticate(email, password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	return ok && u.Password == password
}

func (s *Store) UserByEmail(email string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return models.User{}, false
	}
	return models.User{ID: u.ID, Email: u.Email, FullName: u.FullName}, true
}

// ---- access checks (called with the lock held) ----

func (s *Store) isOwner(f *models.Form, email string) bool {
	return email != "" && f.OwnerEmail == email
}

func (s *Store) canEdit(f *models.Form, email string) bool {
	if s.isOwner(f, email) {
		return true
	}
	for _, c := range s.collabs[f.ID] {
		if c.Email == email && c.Role == models.RoleEditor {
			return true
		}
	}
	return false
}

func (s *Store) canView(f *models.Form, email string) bool {
	if s.isOwner(f, email) {
		return true
	}
	if email != "" {
		for _, c := range s.collabs[f.ID] {
			if c.Email == email {
				return true
			}
		}
	}
	return f.AllowAnonymous
}

// validateQuestion applies the forms service's payload rules.
func validateQuestion(q *models.Question) error {
	switch q.Type {
	case models.SingleChoice, models.MultiChoice:
		if q.Options == nil || q.Options.Choices == nil {
			return validationErr("%s requires options_json.choices", q.Type)
		}
		if len(q.Options.Choices) == 0 {
			return validationErr("choices must be non-empty list")
		}
		if q.Type == models.MultiChoice && q.Options.RequiredCount != nil && *q.Options.RequiredCount < 0 {
			return validationErr("required_count must be >= 0")
		}
	case models.Numeric:
		if q.Options == nil || (q.Options.List == nil && q.Options.Range == nil) {
			return validationErr("numeric requires options_json.list or options_json.range")
		}
		if q.Options.List != nil && len(q.Options.List) == 0 {
			return validationErr("numeric list must be non-empty list")
		}
		if q.Options.Range != nil && q.Options.Range.Step == 0 {
			return validationErr("range.step must be non-zero number")
		}
	}
	return nil
}

// ---- forms ----

func (s *Store) CreateForm(owner string, in models.Form) (models.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := &models.Form{
		ID:             s.id(),
		OwnerEmail:     owner,
		Name:           in.Name,
		Description:    in.Description,
		AllowAnonymous: in.AllowAnonymous,
		IsLocked:       in.IsLocked,
		Questions:      []models.Question{},
	}
	for i, q := range in.Questions {
		if err := validateQuestion(&q); err != nil {
			return models.Form{}, err
		}
		q.ID = s.id()
		if q.OrderIndex == nil {
			n := i
			q.OrderIndex = &n
		}
		f.Questions = append(f.Questions, q)
	}
	s.forms[f.ID] = f
	return *f, nil
}

func (s *Store) ListForms(email, q string) []models.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Form{}
	for _, f := range s.sortedForms() {
		if !s.isOwner(f, email) && !s.isCollab(f.ID, email) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(f.Name), strings.ToLower(q)) {
			continue
		}
		out = append(out, *f)
	}
	return out
}

func (s *Store) ListPublicForms(q string) []models.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(q))
	out := []models.Form{}
	for _, f := range s.sortedForms() {
		if f.IsLocked {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(f.Name), needle) &&
			!strings.Contains(strings.ToLower(f.Description), needle) {
			continue
		}
		out = append(out, *f)
	}
	return out
}

func (s *Store) isCollab(formID int64, email string) bool {
	if email == "" {
		return false
	}
	for _, c := range s.collabs[formID] {
		if c.Email == email {
			return true
		}
	}
	return false
}

// sortedForms returns forms newest-first. Called with the lock held.
func (s *Store) sortedForms() []*models.Form {
	out := make([]*models.Form, 0, len(s.forms))
	for _, f := range s.forms {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *Store) GetForm(email string, id int64) (models.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[id]
	if !ok {
		return models.Form{}, errNotFound
	}
	if !s.canView(f, email) {
		return models.Form{}, errForbidden
	}
	return *f, nil
}

func (s *Store) FormMeta(id int64) (models.FormMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[id]
	if !ok || f.IsLocked {
		// locked forms are not served publicly
		return models.FormMeta{}, errNotFound
	}
	return models.FormMeta{
		ID:             f.ID,
		Name:           f.Name,
		Description:    f.Description,
		AllowAnonymous: f.AllowAnonymous,
		IsLocked:       f.IsLocked,
		Questions:      append([]models.Question{}, f.Questions...),
	}, nil
}

func (s *Store) UpdateForm(email string, id int64, patch models.FormPatch) (models.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[id]
	if !ok {
		return models.Form{}, errNotFound
	}
	if !s.canEdit(f, email) {
		return models.Form{}, errForbidden
	}
	if patch.Name != nil {
		f.Name = *patch.Name
	}
	if patch.Description != nil {
		f.Description = *patch.Description
	}
	if patch.AllowAnonymous != nil {
		f.AllowAnonymous = *patch.AllowAnonymous
	}
	if patch.IsLocked != nil {
		f.IsLocked = *patch.IsLocked
	}
	return *f, nil
}

func (s *Store) DeleteForm(email string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[id]
	if !ok {
		return errNotFound
	}
	if !s.isOwner(f, email) {
		return errOwnerOnly
	}
	delete(s.forms, id)
	delete(s.collabs, id)
	delete(s.responses, id)
	return nil
}

// ---- questions ----

func (s *Store) AddQuestion(email string, formID int64, q models.Question) (models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[formID]
	if !ok {
		return models.Question{}, errNotFound
	}
	if !s.canEdit(f, email) {
		return models.Question{}, errForbidden
	}
	if err := validateQuestion(&q); err != nil {
		return models.Question{}, err
	}

	q.ID = s.id()
	if q.OrderIndex == nil {
		n := maxOrder(f.Questions) + 1
		q.OrderIndex = &n
	}
	f.Questions = append(f.Questions, q)
	return q, nil
}

func (s *Store) UpdateQuestion(email string, formID, questionID int64, q models.Question) (models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[formID]
	if !ok {
		return models.Question{}, errNotFound
	}
	if !s.canEdit(f, email) {
		return models.Question{}, errForbidden
	}
	if err := validateQuestion(&q); err != nil {
		return models.Question{}, err
	}
	for i := range f.Questions {
		if f.Questions[i].ID == questionID {
			if q.OrderIndex == nil {
				q.OrderIndex = f.Questions[i].OrderIndex
			}
			q.ID = questionID
			f.Questions[i] = q
			return q, nil
		}
	}
	return models.Question{}, errQuestionNotFound
}

func (s *Store) DeleteQuestion(email string, formID, questionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[formID]
	if !ok {
		return errNotFound
	}
	if !s.canEdit(f, email) {
		return errForbidden
	}
	for i := range f.Questions {
		if f.Questions[i].ID == questionID {
			f.Questions = append(f.Questions[:i], f.Questions[i+1:]...)
			return nil
		}
	}
	return errQuestionNotFound
}

func (s *Store) CloneQuestion(email string, formID, questionID int64) (models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[formID]
	if !ok {
		return models.Question{}, errNotFound
	}
	if !s.canEdit(f, email) {
		return models.Question{}, errForbidden
	}
	for _, src := range f.Questions {
		if src.ID == questionID {
			clone := src
			clone.ID = s.id()
			n := maxOrder(f.Questions) + 1
			clone.OrderIndex = &n
			f.Questions = append(f.Questions, clone)
			return clone, nil
		}
	}
	return models.Question{}, errQuestionNotFound
}

func (s *Store) Reorder(email string, formID int64, order []int64) (models.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[formID]
	if !ok {
		return models.Form{}, errNotFound
	}
	if !s.canEdit(f, email) {
		return models.Form{}, errForbidden
	}
	for idx, qid := range order {
		for i := range f.Questions {
			if f.Questions[i].ID == qid {
				n := idx
				f.Questions[i].OrderIndex = &n
			}
		}
	}
	sort.SliceStable(f.Questions, func(i, j int) bool {
		return f.Questions[i].Order() < f.Questions[j].Order()
	})
	return *f, nil
}

func maxOrder(qs []models.Question) int {
	max := -1
	for _, q := range qs {
		if q.Order() > max {
			max = q.Order()
		}
	}
	return max
}

// ---- collaborators ----

func (s *Store) Collaborators(email string, formID int64) ([]models.Collaborator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[formID]
	if !ok {
		return nil, errNotFound
	}
	if !s.isOwner(f, email) {
		return nil, errOwnerOnly
	}
	return append([]models.Collaborator{}, s.collabs[formID]...), nil
}

func (s *Store) AddCollaborator(email string, formID int64, c models.Collaborator) (models.Collaborator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[formID]
	if !ok {
		return models.Collaborator{}, errNotFound
	}
	if !s.isOwner(f, email) {
		return models.Collaborator{}, errOwnerOnly
	}
	if c.Email == f.OwnerEmail {
		return models.Collaborator{}, errOwnerCollab
	}
	c.ID = s.id()
	s.collabs[formID] = append(s.collabs[formID], c)
	return c, nil
}

func (s *Store) RemoveCollaborator(email string, formID, collabID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[formID]
	if !ok {
		return errNotFound
	}
	if !s.isOwner(f, email) {
		return errOwnerOnly
	}
	cs := s.collabs[formID]
	for i := range cs {
		if cs[i].ID == collabID {
			s.collabs[formID] = append(cs[:i], cs[i+1:]...)
			return nil
		}
	}
	return errCollabNotFound
}

// ---- responses ----

// FormForSubmit fetches a form for submission checks, bypassing the
// view restrictions (those are applied by the submit handler itself).
func (s *Store) FormForSubmit(id int64) (models.Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[id]
	if !ok {
		return models.Form{}, false
	}
	return *f, true
}

// ResponsesAccess reports whether email may read a form's collected
// responses. Owners and collaborators of either role qualify.
func (s *Store) ResponsesAccess(email string, formID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[formID]
	if !ok {
		return errNotFound
	}
	if !s.isOwner(f, email) && !s.isCollab(formID, email) {
		return errForbidden
	}
	return nil
}

func (s *Store) AddResponse(resp models.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[resp.FormID] = append(s.responses[resp.FormID], resp)
}

func (s *Store) Responses(formID int64) []models.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Response{}, s.responses[formID]...)
}
