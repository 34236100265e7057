package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

// checkExclusive asserts the store invariant: at most one of
// {token non-empty, guest set} holds.
func checkExclusive(t *testing.T, s *Store) {
	t.Helper()
	if s.Token() != "" && s.IsGuest() {
		t.Fatalf("invariant violated: token=%q guest=%v", s.Token(), s.IsGuest())
	}
}

func TestOpen_MissingFile(t *testing.T) {
	s := openTemp(t)
	if s.State() != Unauthenticated {
		t.Errorf("state = %v; want unauthenticated", s.State())
	}
}

func TestSetTokenClearsGuest(t *testing.T) {
	s := openTemp(t)
	if err := s.SetGuest(true); err != nil {
		t.Fatal(err)
	}
	if err := s.SetToken("abc"); err != nil {
		t.Fatal(err)
	}
	if s.Token() != "abc" || s.IsGuest() {
		t.Errorf("token=%q guest=%v; want abc/false", s.Token(), s.IsGuest())
	}
	if s.State() != Authenticated {
		t.Errorf("state = %v", s.State())
	}
	checkExclusive(t, s)
}

func TestSetGuestClearsToken(t *testing.T) {
	s := openTemp(t)
	if err := s.SetToken("abc"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetGuest(true); err != nil {
		t.Fatal(err)
	}
	if s.Token() != "" || !s.IsGuest() {
		t.Errorf("token=%q guest=%v; want \"\"/true", s.Token(), s.IsGuest())
	}
	checkExclusive(t, s)

	// leaving guest mode does not resurrect the discarded token
	if err := s.SetGuest(false); err != nil {
		t.Fatal(err)
	}
	if s.State() != Unauthenticated {
		t.Errorf("state = %v; want unauthenticated", s.State())
	}
}

func TestSetGuestFalseKeepsPersistedToken(t *testing.T) {
	s := openTemp(t)
	if err := s.SetToken("abc"); err != nil {
		t.Fatal(err)
	}
	// turning the guest flag off while authenticated keeps the session
	if err := s.SetGuest(false); err != nil {
		t.Fatal(err)
	}
	if s.State() != Authenticated || s.Token() != "abc" {
		t.Errorf("state=%v token=%q", s.State(), s.Token())
	}
}

func TestEmptyTokenDropsToUnauthenticated(t *testing.T) {
	s := openTemp(t)
	if err := s.SetToken("abc"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetToken(""); err != nil {
		t.Fatal(err)
	}
	if s.State() != Unauthenticated {
		t.Errorf("state = %v", s.State())
	}
}

func TestLogout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetToken("abc"); err != nil {
		t.Fatal(err)
	}
	if err := s.Logout(); err != nil {
		t.Fatal(err)
	}
	if s.State() != Unauthenticated {
		t.Errorf("state = %v", s.State())
	}

	// persisted state is cleared too
	again, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.State() != Unauthenticated {
		t.Errorf("reloaded state = %v", again.State())
	}
}

func TestPersistenceAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetToken("persisted"); err != nil {
		t.Fatal(err)
	}

	again, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Token() != "persisted" || again.State() != Authenticated {
		t.Errorf("token=%q state=%v", again.Token(), again.State())
	}
}

func TestExclusivityUnderAnySequence(t *testing.T) {
	s := openTemp(t)
	steps := []func() error{
		func() error { return s.SetGuest(true) },
		func() error { return s.SetToken("abc") },
		func() error { return s.SetGuest(true) },
		func() error { return s.SetGuest(false) },
		func() error { return s.SetToken("xyz") },
		func() error { return s.SetToken("") },
		func() error { return s.Logout() },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		checkExclusive(t, s)
	}
}

func TestOpen_CorruptedBothKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"token":"abc","guest":true}`), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	// token wins, guest flag dropped
	if s.State() != Authenticated || s.IsGuest() {
		t.Errorf("state=%v guest=%v", s.State(), s.IsGuest())
	}
	checkExclusive(t, s)
}
