package session

import (
	"context"
	"log/slog"

	apperrors "github.com/openmerce/storefront/pkg/errors"
)

// CredentialStore holds the opaque bearer token for the current session.
// Implementations must treat the token as a single durable slot: one
// credential per client, overwritten on login, removed on logout or expiry.
type CredentialStore interface {
	// Get returns the stored token. A missing token yields an error
	// matching apperrors.ErrNotFound.
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Navigator performs the redirects that flow outcomes trigger.
type Navigator interface {
	ToLogin()
	ToOrders()
}

// Notifier surfaces transient user-facing notifications.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Session carries the per-session collaborators: credential slot,
// navigation and notification surfaces. It is created once at application
// start and injected everywhere a flow needs it; nothing reads ambient
// global state.
type Session struct {
	creds  CredentialStore
	nav    Navigator
	notify Notifier
	logger *slog.Logger
}

// New creates a session context.
func New(creds CredentialStore, nav Navigator, notify Notifier, logger *slog.Logger) *Session {
	return &Session{
		creds:  creds,
		nav:    nav,
		notify: notify,
		logger: logger,
	}
}

// Token returns the stored credential, or false when none is available.
func (s *Session) Token(ctx context.Context) (string, bool) {
	token, err := s.creds.Get(ctx)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

// Login stores a new credential.
func (s *Session) Login(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.InvalidInput("token is required")
	}
	if err := s.creds.Set(ctx, token); err != nil {
		return apperrors.Wrap(err, "store credential")
	}
	return nil
}

// ExpireAuth tears the session down after a missing or rejected
// credential: the stored token is cleared and the user is sent back to
// login. This is the single recovery path for every unauthorized outcome;
// it is never surfaced as a generic error.
func (s *Session) ExpireAuth(ctx context.Context) {
	if err := s.creds.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to clear credential",
			slog.String("error", err.Error()),
		)
	}
	s.notify.Error("Please login first")
	s.nav.ToLogin()
}

// Fail routes an operation error to the right recovery: auth expiry runs
// the teardown above, anything else becomes a transient notification that
// prefers the backend-provided message over the fallback.
func (s *Session) Fail(ctx context.Context, err error, fallback string) {
	if apperrors.IsAuthExpired(err) {
		s.ExpireAuth(ctx)
		return
	}
	s.notify.Error(apperrors.UserMessage(err, fallback))
}

// Notifier returns the notification surface.
func (s *Session) Notifier() Notifier { return s.notify }

// Navigator returns the navigation surface.
func (s *Session) Navigator() Navigator { return s.nav }
