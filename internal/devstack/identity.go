package devstack

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/mlukic/formflow/internal/middleware"
	"github.com/mlukic/formflow/internal/models"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusUnprocessableEntity)
		return
	}

	u, err := s.store.CreateUser(req.Email, req.FullName, req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, u)
}

// handleLogin accepts credentials in any of the shapes clients are
// configured for: query parameters, a JSON body, or form-encoded
// username/password fields.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email, password := loginCredentials(r)
	email = strings.ToLower(strings.TrimSpace(email))

	if !s.store.Authenticate(email, password) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := s.tok.Issue(email)
	if err != nil {
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	render.JSON(w, r, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func loginCredentials(r *http.Request) (email, password string) {
	q := r.URL.Query()
	if q.Get("email") != "" {
		return q.Get("email"), q.Get("password")
	}

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return "", ""
		}
		return r.PostForm.Get("username"), r.PostForm.Get("password")
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		return "", ""
	}
	return body.Email, body.Password
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserFromContext(r.Context())
	if email == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	u, ok := s.store.UserByEmail(email)
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	render.JSON(w, r, u)
}
