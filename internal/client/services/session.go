package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/ghosiportal/internal/client/models"
	"github.com/dmitrijs2005/ghosiportal/internal/client/state"
	"github.com/dmitrijs2005/ghosiportal/internal/client/validation"
	"github.com/dmitrijs2005/ghosiportal/internal/common"
)

const (
	msgSigningIn   = "Signing in..."
	msgLoginFailed = "Login failed. Please check your credentials."
	msgLoggedOut   = "Logged out successfully!"
)

var loginRules = validation.Rules{
	{Tag: "required", Message: "Email and password are required"},
}

// SessionService is the persisted session store.
//
// Contract:
//   - Login: authenticate, keep user and token, navigate to the dashboard.
//   - Logout: forget the session, including its persisted copy.
//   - RefreshToken: replace the token once; any failure logs the user out.
//   - CheckAuthStatus: re-derive IsAuthenticated from user and token.
//   - Establish: adopt a session obtained elsewhere (signup auto-login).
//   - Restore: load the persisted session; call once before first use.
//
// Login, Logout and RefreshToken never return errors; the outcome is in State.
type SessionService interface {
	Login(ctx context.Context, creds models.Credentials, navigate Navigate)
	Logout(ctx context.Context, navigate Navigate)
	RefreshToken(ctx context.Context)
	RefreshIfExpired(ctx context.Context) bool
	CheckAuthStatus() bool
	Establish(ctx context.Context, s models.Session, success string)
	Restore(ctx context.Context) error

	State() models.AuthState
	Token() string
	TokenExpiry() (time.Time, error)
	Subscribe(fn state.Listener[models.AuthState]) (unsubscribe func())
}

type sessionService struct {
	deps  Deps
	store *state.Store[models.AuthState]
}

// NewSessionService builds a SessionService and starts mirroring its
// persisted fields into deps.Storage.
func NewSessionService(ctx context.Context, deps Deps) SessionService {
	deps = deps.withDefaults()
	s := &sessionService{
		deps:  deps,
		store: state.New(models.AuthState{}),
	}
	state.Persist(ctx, s.store, deps.Storage, AuthStorageKey, storageVersion,
		models.AuthState.Persisted, deps.Logger.With("store", AuthStorageKey))
	return s
}

func (s *sessionService) State() models.AuthState { return s.store.Get() }

func (s *sessionService) Token() string { return s.store.Get().Token }

func (s *sessionService) Subscribe(fn state.Listener[models.AuthState]) func() {
	return s.store.Subscribe(fn)
}

func (s *sessionService) Login(ctx context.Context, creds models.Credentials, navigate Navigate) {
	id := s.deps.Notifier.Loading(ctx, msgSigningIn)
	defer s.deps.Notifier.Dismiss(ctx, id)

	s.store.Update(func(st models.AuthState) models.AuthState {
		st.Loading, st.Error, st.Success = true, "", ""
		return st
	})
	defer s.store.Update(func(st models.AuthState) models.AuthState {
		st.Loading = false
		return st
	})

	creds.Email = strings.TrimSpace(creds.Email)
	if err := s.deps.Validator.Struct(creds, loginRules); err != nil {
		s.fail(ctx, "login", err, msgLoginFailed)
		return
	}

	sess, err := s.deps.Client.Login(ctx, creds)
	if err != nil {
		s.fail(ctx, "login", err, msgLoginFailed)
		return
	}

	msg := fmt.Sprintf("Welcome back, %s!", sess.User.Name)
	s.commit(*sess, msg)
	s.deps.Logger.Info(ctx, "logged in", "user_id", sess.User.ID)
	s.deps.Notifier.Success(ctx, msg)
	navigate.to(RouteDashboard)
}

func (s *sessionService) Establish(ctx context.Context, sess models.Session, success string) {
	s.commit(sess, success)
	s.deps.Logger.Info(ctx, "session established", "user_id", sess.User.ID)
}

func (s *sessionService) commit(sess models.Session, success string) {
	user := sess.User
	s.store.Update(func(st models.AuthState) models.AuthState {
		st.User = &user
		st.Token = sess.Token
		st.IsAuthenticated = st.Authenticated()
		st.Error = ""
		st.Success = success
		return st
	})
}

func (s *sessionService) fail(ctx context.Context, action string, err error, fallback string) {
	msg := errorMessage(err, fallback)
	s.store.Update(func(st models.AuthState) models.AuthState {
		st.Error = msg
		return st
	})
	s.deps.Logger.Warn(ctx, action+" failed", "error", err)
	s.deps.Notifier.Error(ctx, msg)
}

// Logout clears the in-memory session and deletes its persisted copy.
func (s *sessionService) Logout(ctx context.Context, navigate Navigate) {
	s.store.Set(models.AuthState{Success: msgLoggedOut})
	if err := s.deps.Storage.Delete(ctx, AuthStorageKey); err != nil {
		s.deps.Logger.Warn(ctx, "clear persisted session", "error", err)
	}
	s.deps.Notifier.Success(ctx, msgLoggedOut)
	navigate.to(RouteLogin)
}

func (s *sessionService) RefreshToken(ctx context.Context) {
	old := s.store.Get().Token
	if old == "" {
		return
	}

	tok, err := s.deps.Client.RefreshToken(ctx, old)
	if err != nil || tok == "" {
		s.deps.Logger.Warn(ctx, "token refresh failed, logging out", "error", err)
		s.Logout(ctx, nil)
		return
	}

	s.store.Update(func(st models.AuthState) models.AuthState {
		st.Token = tok
		st.IsAuthenticated = st.Authenticated()
		return st
	})
}

// RefreshIfExpired refreshes the token when its exp claim has passed and
// reports whether a refresh was attempted. Tokens that are not JWTs are
// left alone.
func (s *sessionService) RefreshIfExpired(ctx context.Context) bool {
	_, err := s.TokenExpiry()
	if !errors.Is(err, common.ErrTokenExpired) {
		if err != nil {
			s.deps.Logger.Debug(ctx, "token expiry unknown", "error", err)
		}
		return false
	}
	s.RefreshToken(ctx)
	return true
}

// TokenExpiry decodes the exp claim of the current token without verifying
// its signature. The zero time means no token or no exp claim. An expired
// token yields its expiry together with common.ErrTokenExpired.
func (s *sessionService) TokenExpiry() (time.Time, error) {
	tok := s.store.Get().Token
	if tok == "" {
		return time.Time{}, nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	if !s.deps.Now().Before(exp.Time) {
		return exp.Time, common.ErrTokenExpired
	}
	return exp.Time, nil
}

func (s *sessionService) CheckAuthStatus() bool {
	st := s.store.Update(func(st models.AuthState) models.AuthState {
		st.IsAuthenticated = st.Authenticated()
		return st
	})
	return st.IsAuthenticated
}

func (s *sessionService) Restore(ctx context.Context) error {
	p, found, err := state.Rehydrate[models.PersistedAuth](ctx, s.deps.Storage, AuthStorageKey, storageVersion)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if found {
		s.store.Update(func(st models.AuthState) models.AuthState {
			st.User = p.User
			st.Token = p.Token
			st.IsAuthenticated = p.IsAuthenticated
			return st
		})
	}
	s.CheckAuthStatus()
	return nil
}
