package devstack

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mlukic/formflow/internal/middleware"
	"github.com/mlukic/formflow/internal/models"
)

func urlID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

// requireUser resolves the authenticated email or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := middleware.GetUserFromContext(r.Context())
	if email == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return "", false
	}
	return email, true
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	email, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in models.Form
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	f, err := s.store.CreateForm(email, in)
	if err != nil {
		writeErr(w, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, f)
}

func (s *Server) handleListForms(w http.ResponseWriter, r *http.Request) {
	email, ok := requireUser(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, s.store.ListForms(email, r.URL.Query().Get("q")))
}

func (s *Server) handleListPublic(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.store.ListPublicForms(r.URL.Query().Get("q")))
}

func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "invalid form id", http.StatusBadRequest)
		return
	}
	email := middleware.GetUserFromContext(r.Context())
	f, err := s.store.GetForm(email, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	render.JSON(w, r, f)
}

func (s *Server) handleFormMeta(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "invalid form id", http.StatusBadRequest)
		return
	}
	meta, err := s.store.FormMeta(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	render.JSON(w, r, meta)
}

func (s *Server) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	email, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "invalid form id", http.StatusBadRequest)
		return
	}
	var patch models.FormPatch
	if err := render.DecodeJSON(r.Body, &patch); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	f, err := s.store.UpdateForm(email, id, patch)
	if err != nil {
		writeErr(w, err)
		return
	}
	render.JSON(w, r, f)
}

func (s *Server) handleDeleteForm(w http.ResponseWriter, r *http.Request) {
	email, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "invalid form id", http.StatusBadRequest)
		return
	}
	if err := s.store.DeleteForm(email, id); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	email, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "invalid form id", http.StatusBadRequest)
		return
	}
	var q models.Question
	if err := render.DecodeJSON(r.Body, &q); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	out, err := s.store.AddQuestion(email, id, q)
	if err != nil {
		writeErr(w, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, out)
}

func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	email, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok1 := urlID(r, "id")
	qid, ok2 := urlID(r, "qid")
	if !ok1 || !ok2 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var q models.Question
	if err := render.DecodeJSON(r.Body, &q); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	out, err := s.store.UpdateQuestion(email, id, qid, q)
	if err != nil {
		writeErr(w, err)
		return
	}
	render.JSON(w, r, out)
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	email, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok1 := urlID(r, "id")
	qid, ok2 := urlID(r, "qid")
	if !ok1 || !ok2 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := s.store.DeleteQuestion(email, id, qid); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCloneQuestion(w http.ResponseWriter, r *http.Request) {
	email, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok1 := urlID(r, "id")
	qid, ok2 := urlID(r, "qid")
	if !ok1 || !ok2 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	out, err := s.store.CloneQuestion(email, id, qid)
	if err != nil {
		writeErr(w, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, out)
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	email, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "invalid form id", http.StatusBadRequest)
		return
	}
	var order []int64
	if err := render.DecodeJSON(r.Body, &order); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	f, err := s.store.Reorder(email, id, order)
	if err != nil {
		writeErr(w, err)
		return
	}
	render.JSON(w, r, f)
}

func (s *Server) handleListCollaborators(w http.ResponseWriter, r *http.Request) {
	email, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "invalid form id", http.StatusBadRequest)
		return
	}
	cs, err := s.store.Collaborators(email, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	render.JSON(w, r, cs)
}

func (s *Server) handleAddCollaborator(w http.ResponseWriter, r *http.Request) {
	email, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "invalid form id", http.StatusBadRequest)
		return
	}
	var c models.Collaborator
	if err := render.DecodeJSON(r.Body, &c); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if c.Role != models.RoleViewer && c.Role != models.RoleEditor {
		http.Error(w, "role must be viewer or editor", http.StatusUnprocessableEntity)
		return
	}
	out, err := s.store.AddCollaborator(email, id, c)
	if err != nil {
		writeErr(w, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, out)
}

func (s *Server) handleRemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	email, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok1 := urlID(r, "id")
	cid, ok2 := urlID(r, "cid")
	if !ok1 || !ok2 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := s.store.RemoveCollaborator(email, id, cid); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
