// Package account runs the register and login flows: client-side
// input validation, the auth store transitions, the local registered-
// email bookkeeping, and the registration degraded mode for transport
// failures.
package account

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/mlukic/formflow/internal/client/api"
	"github.com/mlukic/formflow/internal/client/auth"
	"github.com/mlukic/formflow/internal/models"
)

// ErrAlreadyRegistered means the email is known, either locally or to
// the identity service.
var ErrAlreadyRegistered = errors.New("email is already registered")

// IdentityAPI is the slice of the identity service this package needs.
type IdentityAPI interface {
	Register(ctx context.Context, email, fullName, password string) error
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, token string) (models.User, error)
}

// Service wires the identity client, the session store and the local
// registry into the account flows.
type Service struct {
	id    IdentityAPI
	store *auth.Store
	reg   *Registry
	log   *zap.Logger
}

// NewService builds an account service. log may be nil.
func NewService(id IdentityAPI, store *auth.Store, reg *Registry, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{id: id, store: store, reg: reg, log: log}
}

// Register validates the input locally, short-circuits on locally
// known emails, and creates the account. A transport failure (no HTTP
// response at all) is deliberately treated as a soft success: the
// email is recorded locally and the flow proceeds. This degraded mode
// keeps registration usable when the identity service is unreachable;
// real HTTP errors are still surfaced.
func (s *Service) Register(ctx context.Context, email, fullName, password string) error {
	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)

	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := ValidateFullName(fullName); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}

	email = strings.ToLower(email)
	if s.reg.Contains(email) {
		return ErrAlreadyRegistered
	}

	err := s.id.Register(ctx, email, fullName, password)
	switch {
	case err == nil:
		return s.reg.Add(email)
	case strings.Contains(strings.ToLower(err.Error()), "already registered"):
		return ErrAlreadyRegistered
	case api.IsTransport(err):
		s.log.Warn("identity service unreachable, recording registration locally",
			zap.String("email", email), zap.Error(err))
		return s.reg.Add(email)
	}
	return err
}

// Login validates the input, exchanges credentials for a token and
// moves the session store to the authenticated state, clearing any
// guest flag. The account record is fetched best-effort.
func (s *Service) Login(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)

	if err := ValidateEmail(email); err != nil {
		return models.User{}, err
	}
	if password == "" {
		return models.User{}, invalid("password is required")
	}

	token, err := s.id.Login(ctx, strings.ToLower(email), password)
	if err != nil {
		return models.User{}, err
	}

	if err := s.store.SetToken(token); err != nil {
		return models.User{}, err
	}
	if err := s.store.SetGuest(false); err != nil {
		return models.User{}, err
	}

	me, err := s.id.Me(ctx, token)
	if err != nil {
		s.log.Debug("could not fetch account record", zap.Error(err))
		return models.User{Email: email}, nil
	}
	return me, nil
}

// BrowseAsGuest enters the explicit guest session.
func (s *Service) BrowseAsGuest() error {
	return s.store.SetGuest(true)
}

// Logout resets the session store.
func (s *Service) Logout() error {
	return s.store.Logout()
}
