// Package devstack runs an in-memory rendition of the three backend
// services (identity, forms, responses) on a single router. It backs
// local development and the end-to-end tests; the data lives for the
// lifetime of the process.
package devstack

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mlukic/formflow/internal/middleware"
)

// Server bundles the shared state behind the stack's HTTP handlers.
type Server struct {
	store *Store
	tok   tokens
	log   *zap.Logger
}

// New builds a dev stack signing tokens with secret. logger may be nil.
func New(secret string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store: NewStore(),
		tok:   tokens{secret: []byte(secret)},
		log:   logger,
	}
}

// Router constructs the HTTP handler serving all three services.
//
// Routes:
//
//	identity:  POST /register, POST /login, GET /me
//	forms:     /forms, /forms/public, /my/forms, questions,
//	           reorder, collaborators, meta
//	responses: POST /submit, /forms/{id}/submit, responses,
//	           aggregate, export
//
// Middleware chain (applied in order):
//  1. WithRequestLogging(logger) logs each request
//  2. BearerAuth(parse) resolves the bearer token to an email
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(s.log))
	r.Use(middleware.BearerAuth(s.tok.Parse))

	// identity
	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)
	r.Get("/me", s.handleMe)

	// forms
	r.Route("/forms", func(r chi.Router) {
		r.Post("/", s.handleCreateForm)
		r.Get("/", s.handleListForms)
		r.Get("/public", s.handleListPublic)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetForm)
			r.Put("/", s.handleUpdateForm)
			r.Delete("/", s.handleDeleteForm)
			r.Get("/meta", s.handleFormMeta)

			r.Post("/questions", s.handleAddQuestion)
			r.Put("/questions/{qid}", s.handleUpdateQuestion)
			r.Delete("/questions/{qid}", s.handleDeleteQuestion)
			r.Post("/questions/{qid}/clone", s.handleCloneQuestion)
			r.Post("/reorder", s.handleReorder)

			r.Get("/collaborators", s.handleListCollaborators)
			r.Post("/collaborators", s.handleAddCollaborator)
			r.Delete("/collaborators/{cid}", s.handleRemoveCollaborator)

			// responses
			r.Post("/submit", s.handleSubmit)
			r.Get("/responses", s.handleListResponses)
			r.Get("/aggregate", s.handleAggregate)
			r.Get("/export", s.handleExport)
		})
	})
	r.Get("/my/forms", s.handleListForms)
	r.Post("/submit", s.handleSubmit)

	return r
}

// writeErr maps store errors onto the service's status codes and
// writes the message as the response body.
func writeErr(w http.ResponseWriter, err error) {
	var ve *errValidation
	status := http.StatusBadRequest
	switch {
	case errors.As(err, &ve):
		status = http.StatusUnprocessableEntity
	case err == errNotFound, err == errQuestionNotFound, err == errCollabNotFound:
		status = http.StatusNotFound
	case err == errForbidden, err == errOwnerOnly:
		status = http.StatusForbidden
	case err == errOwnerCollab:
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}
