// Package auth holds the client's session state: a bearer token or a
// guest flag, never both. The state is persisted to a JSON file so a
// new process starts in the same session class it left off in.
package auth

import (
	"encoding/json"
	"os"
	"sync"
)

// State is the session class the store is currently in.
type State int

const (
	// Unauthenticated is the default: no token, no guest flag.
	Unauthenticated State = iota
	// Guest is an anonymous session explicitly opted into browsing
	// without credentials.
	Guest
	// Authenticated holds a non-empty bearer token.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Guest:
		return "guest"
	case Authenticated:
		return "authenticated"
	}
	return "unauthenticated"
}

// fileState is the on-disk shape. The two keys are fixed names; at
// most one of them is ever set.
type fileState struct {
	Token string `json:"token,omitempty"`
	Guest bool   `json:"guest,omitempty"`
}

// Store is the process-wide session store. All mutations go through
// its setters, which enforce the token/guest exclusivity invariant in
// memory and on disk.
type Store struct {
	mu    sync.Mutex
	path  string
	token string
	guest bool
}

// Open loads the session state from path. A missing file starts an
// unauthenticated session. If a corrupted file carries both a token
// and the guest flag, the token wins and the guest flag is dropped.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	var fs fileState
	if err := json.Unmarshal(data, &fs); err != nil {
		return nil, err
	}
	s.token = fs.Token
	s.guest = fs.Guest && fs.Token == ""
	return s, nil
}

// Token returns the current bearer token, "" when none is held.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// IsGuest reports whether the session is an explicit guest session.
func (s *Store) IsGuest() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guest
}

// State returns the current session class.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.token != "":
		return Authenticated
	case s.guest:
		return Guest
	}
	return Unauthenticated
}

// SetToken stores a bearer token and clears the guest flag. An empty
// token drops back to the unauthenticated state and removes the token
// from storage.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.guest = false
	return s.save()
}

// SetGuest toggles the guest session. Entering guest mode discards any
// held token; leaving it reverts to whatever state the persisted token
// implies.
func (s *Store) SetGuest(v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v {
		s.guest = true
		s.token = ""
		return s.save()
	}

	s.guest = false
	s.token = s.persistedToken()
	return s.save()
}

// Logout unconditionally resets to the unauthenticated state, clearing
// both persisted keys.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.guest = false
	return s.save()
}

// persistedToken reads the token currently on disk. Called with the
// lock held.
func (s *Store) persistedToken() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	var fs fileState
	if err := json.Unmarshal(data, &fs); err != nil {
		return ""
	}
	return fs.Token
}

// save writes the current state. Called with the lock held.
func (s *Store) save() error {
	data, err := json.Marshal(fileState{Token: s.token, Guest: s.guest})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
