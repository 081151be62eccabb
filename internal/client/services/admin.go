package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/ghosiportal/internal/client/client"
	"github.com/dmitrijs2005/ghosiportal/internal/client/models"
	"github.com/dmitrijs2005/ghosiportal/internal/client/state"
	"github.com/dmitrijs2005/ghosiportal/internal/client/validation"
)

const (
	msgAdminSigningIn   = "Signing in..."
	msgAdminLoggedIn    = "Login successful!"
	msgAdminLoginFailed = "Login failed. Please try again."
	msgAdminLoggedOut   = "Logged out successfully!"
)

var adminLoginRules = validation.Rules{
	{Tag: "required", Message: "Email and password are required"},
}

// AdminService is the admin dashboard session. Its token is separate from
// the member session and only authorizes the dashboard endpoints.
type AdminService interface {
	Login(ctx context.Context, email, password string, navigate Navigate)
	Logout(ctx context.Context, navigate Navigate)

	// ListMemberships returns the membership applications. Without an admin
	// token it fails with client.ErrLocalDataNotAvailable.
	ListMemberships(ctx context.Context) ([]models.MembershipSubmission, error)

	State() models.AdminState
	Restore(ctx context.Context) error
}

type adminService struct {
	deps  Deps
	store *state.Store[models.AdminState]
}

func NewAdminService(ctx context.Context, deps Deps) AdminService {
	deps = deps.withDefaults()
	a := &adminService{
		deps:  deps,
		store: state.New(models.AdminState{}),
	}
	state.Persist(ctx, a.store, deps.Storage, AdminStorageKey, storageVersion,
		models.AdminState.Persisted, deps.Logger.With("store", AdminStorageKey))
	return a
}

func (a *adminService) State() models.AdminState { return a.store.Get() }

func (a *adminService) Login(ctx context.Context, email, password string, navigate Navigate) {
	id := a.deps.Notifier.Loading(ctx, msgAdminSigningIn)
	defer a.deps.Notifier.Dismiss(ctx, id)

	a.store.Update(func(st models.AdminState) models.AdminState {
		st.Loading, st.Error, st.Success = true, "", ""
		return st
	})
	defer a.store.Update(func(st models.AdminState) models.AdminState {
		st.Loading = false
		return st
	})

	creds := models.Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := a.deps.Validator.Struct(creds, adminLoginRules); err != nil {
		a.fail(ctx, err)
		return
	}

	tok, err := a.deps.Client.AdminLogin(ctx, creds.Email, creds.Password)
	if err != nil {
		a.fail(ctx, err)
		return
	}

	a.store.Update(func(st models.AdminState) models.AdminState {
		st.Token = tok
		st.Email = creds.Email
		st.Success = msgAdminLoggedIn
		return st
	})
	a.deps.Logger.Info(ctx, "admin logged in", "email", creds.Email)
	a.deps.Notifier.Success(ctx, msgAdminLoggedIn)
	navigate.to(RouteAdminDashboard)
}

func (a *adminService) fail(ctx context.Context, err error) {
	msg := errorMessage(err, msgAdminLoginFailed)
	a.store.Update(func(st models.AdminState) models.AdminState {
		st.Error = msg
		return st
	})
	a.deps.Logger.Warn(ctx, "admin login failed", "error", err)
	a.deps.Notifier.Error(ctx, msg)
}

func (a *adminService) Logout(ctx context.Context, navigate Navigate) {
	a.store.Set(models.AdminState{Success: msgAdminLoggedOut})
	if err := a.deps.Storage.Delete(ctx, AdminStorageKey); err != nil {
		a.deps.Logger.Warn(ctx, "clear persisted admin session", "error", err)
	}
	a.deps.Notifier.Success(ctx, msgAdminLoggedOut)
	navigate.to(RouteAdminLogin)
}

func (a *adminService) ListMemberships(ctx context.Context) ([]models.MembershipSubmission, error) {
	tok := a.store.Get().Token
	if tok == "" {
		return nil, client.ErrLocalDataNotAvailable
	}
	subs, err := a.deps.Client.ListMemberships(ctx, tok)
	if err != nil {
		a.deps.Logger.Warn(ctx, "list memberships failed", "error", err)
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return subs, nil
}

func (a *adminService) Restore(ctx context.Context) error {
	p, found, err := state.Rehydrate[models.PersistedAdmin](ctx, a.deps.Storage, AdminStorageKey, storageVersion)
	if err != nil {
		return fmt.Errorf("restore admin session: %w", err)
	}
	if found {
		a.store.Update(func(st models.AdminState) models.AdminState {
			st.Token = p.AdminToken
			st.Email = p.AdminEmail
			return st
		})
	}
	return nil
}
