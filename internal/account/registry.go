package account

import (
	"encoding/json"
	"os"
	"sync"
)

// Registry is the locally remembered set of registered email
// addresses. It backs the "already registered" short-circuit and the
// registration degraded mode; the identity service remains the
// authority.
type Registry struct {
	mu     sync.Mutex
	path   string
	emails []string
}

// OpenRegistry loads the registry from path. Missing or unreadable
// files start an empty registry.
func OpenRegistry(path string) *Registry {
	r := &Registry{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return r
	}
	if err := json.Unmarshal(data, &r.emails); err != nil {
		r.emails = nil
	}
	return r
}

// Contains reports whether email was registered from this client
// before.
func (r *Registry) Contains(email string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.emails {
		if e == email {
			return true
		}
	}
	return false
}

// Add records an email and persists the registry.
func (r *Registry) Add(email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.emails {
		if e == email {
			return nil
		}
	}
	r.emails = append(r.emails, email)

	data, err := json.Marshal(r.emails)
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o600)
}
