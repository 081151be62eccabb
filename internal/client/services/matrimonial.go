package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ghosiportal/internal/client/models"
	"github.com/dmitrijs2005/ghosiportal/internal/client/state"
	"github.com/dmitrijs2005/ghosiportal/internal/client/validation"
)

const (
	msgCreatingProfile = "Creating matrimonial profile..."
	msgProfileCreated  = "Matrimonial profile created successfully!"
	msgCreateFailed    = "Failed to create profile. Please try again."

	msgUpdatingProfile = "Updating matrimonial profile..."
	msgProfileUpdated  = "Profile updated successfully!"
	msgUpdateFailed    = "Failed to update profile. Please try again."

	msgDeletingProfile = "Deleting matrimonial profile..."
	msgProfileDeleted  = "Profile deletion scheduled successfully!"
	msgDeleteFailed    = "Failed to delete profile. Please try again."

	msgMatchesFailed = "Failed to fetch matches. Please try again."
)

var profileRules = validation.Rules{
	{Field: "user_id", Message: "User ID is required"},
	{Field: "dateOfBirth", Tag: "required", Message: "Date of birth is required"},
	{Field: "gender", Message: "Please select a gender"},
	{Field: "contactNumber", Message: "Please enter a valid 10-digit mobile number"},
	{Field: "maritalStatus", Message: "Please select a marital status"},
}

// MatrimonialService manages the user's matrimonial profile, their match
// list and the searchable candidate directory.
type MatrimonialService interface {
	CreateProfile(ctx context.Context, p models.MatrimonialProfile, navigate Navigate)
	UpdateProfile(ctx context.Context, p models.ProfileUpdate, navigate Navigate)
	DeleteProfile(ctx context.Context, navigate Navigate)

	// GetMatches never fails: on error it records the message, empties the
	// cached list and returns an empty slice.
	GetMatches(ctx context.Context, userID int) []models.MatchCandidate

	// LoadCandidates fetches the directory on first use and caches it.
	LoadCandidates(ctx context.Context) ([]models.MatchCandidate, error)
	Search(f models.SearchFilter) []models.MatchCandidate

	State() models.MatrimonialState
	Restore(ctx context.Context) error

	// Reset forgets the profile, matches and candidates, including the
	// persisted profile.
	Reset(ctx context.Context)
}

type matrimonialService struct {
	deps  Deps
	store *state.Store[models.MatrimonialState]
}

func NewMatrimonialService(ctx context.Context, deps Deps) MatrimonialService {
	deps = deps.withDefaults()
	m := &matrimonialService{
		deps:  deps,
		store: state.New(models.MatrimonialState{}),
	}
	state.Persist(ctx, m.store, deps.Storage, MatrimonialStorageKey, storageVersion,
		models.MatrimonialState.Persisted, deps.Logger.With("store", MatrimonialStorageKey))
	return m
}

func (m *matrimonialService) State() models.MatrimonialState { return m.store.Get() }

func (m *matrimonialService) begin(ctx context.Context, loading string) func() {
	id := ""
	if loading != "" {
		id = m.deps.Notifier.Loading(ctx, loading)
	}
	m.store.Update(func(st models.MatrimonialState) models.MatrimonialState {
		st.Loading, st.Error, st.Success = true, "", ""
		return st
	})
	return func() {
		m.store.Update(func(st models.MatrimonialState) models.MatrimonialState {
			st.Loading = false
			return st
		})
		if id != "" {
			m.deps.Notifier.Dismiss(ctx, id)
		}
	}
}

func (m *matrimonialService) fail(ctx context.Context, action string, err error, fallback string) {
	msg := errorMessage(err, fallback)
	m.store.Update(func(st models.MatrimonialState) models.MatrimonialState {
		st.Error = msg
		return st
	})
	m.deps.Logger.Warn(ctx, action+" failed", "error", err)
	m.deps.Notifier.Error(ctx, msg)
}

func (m *matrimonialService) CreateProfile(ctx context.Context, p models.MatrimonialProfile, navigate Navigate) {
	defer m.begin(ctx, msgCreatingProfile)()

	if err := m.deps.Validator.Struct(p, profileRules); err != nil {
		m.fail(ctx, "create profile", err, msgCreateFailed)
		return
	}

	saved, err := m.deps.Client.CreateProfile(ctx, p)
	if err != nil {
		m.fail(ctx, "create profile", err, msgCreateFailed)
		return
	}
	if saved == nil {
		saved = &p
	}

	m.setProfile(saved, msgProfileCreated)
	m.deps.Notifier.Success(ctx, msgProfileCreated)
	navigate.to(RouteProfile)
}

func (m *matrimonialService) UpdateProfile(ctx context.Context, p models.ProfileUpdate, navigate Navigate) {
	defer m.begin(ctx, msgUpdatingProfile)()

	if err := m.deps.Validator.Struct(p, profileRules); err != nil {
		m.fail(ctx, "update profile", err, msgUpdateFailed)
		return
	}

	saved, err := m.deps.Client.UpdateProfile(ctx, p)
	if err != nil {
		m.fail(ctx, "update profile", err, msgUpdateFailed)
		return
	}
	if saved == nil {
		saved = m.store.Get().Profile
	}

	m.setProfile(saved, msgProfileUpdated)
	m.deps.Notifier.Success(ctx, msgProfileUpdated)
	navigate.to(RouteProfile)
}

func (m *matrimonialService) setProfile(p *models.MatrimonialProfile, success string) {
	m.store.Update(func(st models.MatrimonialState) models.MatrimonialState {
		st.Profile = p
		st.Success = success
		return st
	})
}

func (m *matrimonialService) DeleteProfile(ctx context.Context, navigate Navigate) {
	defer m.begin(ctx, msgDeletingProfile)()

	if err := m.deps.Client.DeleteProfile(ctx); err != nil {
		m.fail(ctx, "delete profile", err, msgDeleteFailed)
		return
	}

	m.setProfile(nil, msgProfileDeleted)
	m.deps.Notifier.Success(ctx, msgProfileDeleted)
	navigate.to(RouteMatrimonial)
}

func (m *matrimonialService) GetMatches(ctx context.Context, userID int) []models.MatchCandidate {
	defer m.begin(ctx, "")()

	err := m.deps.Validator.Var("user_id", userID, "gt=0", profileRules)
	var matches []models.MatchCandidate
	if err == nil {
		matches, err = m.deps.Client.GetMatches(ctx, userID)
	}
	if err != nil {
		m.store.Update(func(st models.MatrimonialState) models.MatrimonialState {
			st.Matches = []models.MatchCandidate{}
			return st
		})
		m.fail(ctx, "get matches", err, msgMatchesFailed)
		return []models.MatchCandidate{}
	}
	if matches == nil {
		matches = []models.MatchCandidate{}
	}

	m.store.Update(func(st models.MatrimonialState) models.MatrimonialState {
		st.Matches = matches
		return st
	})
	return matches
}

func (m *matrimonialService) LoadCandidates(ctx context.Context) ([]models.MatchCandidate, error) {
	if c := m.store.Get().Candidates; c != nil {
		return c, nil
	}

	all, err := m.deps.Client.ListCandidates(ctx)
	if err != nil {
		m.deps.Logger.Error(ctx, "fetch candidates", "error", err)
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}
	if all == nil {
		all = []models.MatchCandidate{}
	}
	m.store.Update(func(st models.MatrimonialState) models.MatrimonialState {
		st.Candidates = all
		return st
	})
	return all, nil
}

// Search filters the cached candidate directory. Call LoadCandidates first.
func (m *matrimonialService) Search(f models.SearchFilter) []models.MatchCandidate {
	return models.FilterCandidates(m.store.Get().Candidates, f)
}

func (m *matrimonialService) Restore(ctx context.Context) error {
	p, found, err := state.Rehydrate[models.PersistedMatrimonial](ctx, m.deps.Storage, MatrimonialStorageKey, storageVersion)
	if err != nil {
		return fmt.Errorf("restore matrimonial: %w", err)
	}
	if !found {
		return nil
	}
	m.store.Update(func(st models.MatrimonialState) models.MatrimonialState {
		st.Profile = p.Profile
		return st
	})
	return nil
}

func (m *matrimonialService) Reset(ctx context.Context) {
	m.store.Set(models.MatrimonialState{})
	if err := m.deps.Storage.Delete(ctx, MatrimonialStorageKey); err != nil {
		m.deps.Logger.Warn(ctx, "clear persisted matrimonial data", "error", err)
	}
}

// FollowSession resets m when the session's user logs out or is replaced
// by another user.
func FollowSession(ctx context.Context, session SessionService, m MatrimonialService) (unsubscribe func()) {
	return session.Subscribe(func(prev, next models.AuthState) {
		if was := sessionUserID(prev); was != "" && was != sessionUserID(next) {
			m.Reset(ctx)
		}
	})
}

func sessionUserID(st models.AuthState) string {
	if st.User == nil {
		return ""
	}
	return st.User.ID
}
