package services

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/ghosiportal/internal/client/models"
	"github.com/dmitrijs2005/ghosiportal/internal/client/notify"
	"github.com/dmitrijs2005/ghosiportal/internal/client/repositories/metadata"

	_ "modernc.org/sqlite"
)

// ---- storage ----

func sqliteStorage(t *testing.T) metadata.Store {
	t.Helper()
	s, err := metadata.Open(context.Background(), afero.NewMemMapFs(), metadata.BackendSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fileStorage(t *testing.T) metadata.Store {
	t.Helper()
	return metadata.NewFileStore(afero.NewMemMapFs(), "/portal")
}

// ---- fake client ----

// fakeClient implements client.PortalClient for service tests.
type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	SendOTPErr    error
	VerifyOTPErr  error
	SignupRet     *models.Session
	SignupErr     error
	LoginRet      *models.Session
	LoginErr      error
	RefreshRet    string
	RefreshErr    error
	CreateRet     *models.MatrimonialProfile
	CreateErr     error
	UpdateRet     *models.MatrimonialProfile
	UpdateErr     error
	DeleteErr     error
	MatchesRet    []models.MatchCandidate
	MatchesErr    error
	CandidatesRet []models.MatchCandidate
	CandidatesErr error
	MembershipErr error
	HelpErr       error
	AdminTokenRet string
	AdminLoginErr error
	SubmissionRet []models.MembershipSubmission
	SubmissionErr error

	LastSendOTPEmail   string
	LastVerifyEmail    string
	LastVerifyOTP      string
	LastSignup         models.SignupRequest
	LastLogin          models.Credentials
	LastRefreshToken   string
	LastCreate         models.MatrimonialProfile
	LastUpdate         models.ProfileUpdate
	LastMatchesUser    int
	LastMembership     models.MembershipForm
	LastHelp           models.HelpForm
	LastAdminEmail     string
	LastAdminListToken string
}

func newFakeClient() *fakeClient { return &fakeClient{calls: map[string]int{}} }

func (f *fakeClient) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeClient) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeClient) SendOTP(_ context.Context, email string) (string, error) {
	f.hit("SendOTP")
	f.LastSendOTPEmail = email
	return "sent", f.SendOTPErr
}

func (f *fakeClient) VerifyOTP(_ context.Context, email, otp string) error {
	f.hit("VerifyOTP")
	f.LastVerifyEmail, f.LastVerifyOTP = email, otp
	return f.VerifyOTPErr
}

func (f *fakeClient) Signup(_ context.Context, req models.SignupRequest) (*models.Session, error) {
	f.hit("Signup")
	f.LastSignup = req
	if f.SignupErr != nil {
		return nil, f.SignupErr
	}
	return f.SignupRet, nil
}

func (f *fakeClient) Login(_ context.Context, c models.Credentials) (*models.Session, error) {
	f.hit("Login")
	f.LastLogin = c
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	return f.LoginRet, nil
}

func (f *fakeClient) RefreshToken(_ context.Context, token string) (string, error) {
	f.hit("RefreshToken")
	f.LastRefreshToken = token
	return f.RefreshRet, f.RefreshErr
}

func (f *fakeClient) CreateProfile(_ context.Context, p models.MatrimonialProfile) (*models.MatrimonialProfile, error) {
	f.hit("CreateProfile")
	f.LastCreate = p
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	return f.CreateRet, nil
}

func (f *fakeClient) UpdateProfile(_ context.Context, p models.ProfileUpdate) (*models.MatrimonialProfile, error) {
	f.hit("UpdateProfile")
	f.LastUpdate = p
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	return f.UpdateRet, nil
}

func (f *fakeClient) DeleteProfile(context.Context) error {
	f.hit("DeleteProfile")
	return f.DeleteErr
}

func (f *fakeClient) GetMatches(_ context.Context, userID int) ([]models.MatchCandidate, error) {
	f.hit("GetMatches")
	f.LastMatchesUser = userID
	if f.MatchesErr != nil {
		return nil, f.MatchesErr
	}
	return f.MatchesRet, nil
}

func (f *fakeClient) ListCandidates(context.Context) ([]models.MatchCandidate, error) {
	f.hit("ListCandidates")
	return f.CandidatesRet, f.CandidatesErr
}

func (f *fakeClient) SubmitMembership(_ context.Context, m models.MembershipForm) error {
	f.hit("SubmitMembership")
	f.LastMembership = m
	return f.MembershipErr
}

func (f *fakeClient) SubmitHelpRequest(_ context.Context, h models.HelpForm) error {
	f.hit("SubmitHelpRequest")
	f.LastHelp = h
	return f.HelpErr
}

func (f *fakeClient) AdminLogin(_ context.Context, email, _ string) (string, error) {
	f.hit("AdminLogin")
	f.LastAdminEmail = email
	return f.AdminTokenRet, f.AdminLoginErr
}

func (f *fakeClient) ListMemberships(_ context.Context, token string) ([]models.MembershipSubmission, error) {
	f.hit("ListMemberships")
	f.LastAdminListToken = token
	return f.SubmissionRet, f.SubmissionErr
}

// ---- notifier ----

// recorder keeps every notification and tracks loading ids not yet dismissed.
type recorder struct {
	mu     sync.Mutex
	seq    int
	events []notify.Notification
	open   map[string]bool
}

func newRecorder() *recorder { return &recorder{open: map[string]bool{}} }

func (r *recorder) add(kind notify.Kind, id, text string) {
	r.events = append(r.events, notify.Notification{ID: id, Kind: kind, Text: text})
}

func (r *recorder) Loading(_ context.Context, text string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := strconv.Itoa(r.seq)
	r.open[id] = true
	r.add(notify.KindLoading, id, text)
	return id
}

func (r *recorder) Success(_ context.Context, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(notify.KindSuccess, "", text)
}

func (r *recorder) Error(_ context.Context, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(notify.KindError, "", text)
}

func (r *recorder) Dismiss(_ context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.open, id)
	r.add(notify.KindDismiss, id, "")
}

// Texts returns the texts of notifications of kind, in order.
func (r *recorder) Texts(kind notify.Kind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e.Text)
		}
	}
	return out
}

func (r *recorder) Open() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.open)
}

// ---- misc ----

type routes []string

func (r *routes) navigate(path string) { *r = append(*r, path) }

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func testDeps(c *fakeClient, s metadata.Store, n *recorder) Deps {
	return Deps{
		Client:   c,
		Storage:  s,
		Notifier: n,
		Now:      func() time.Time { return fixedNow },
	}
}

// failingStore fails every write.
type failingStore struct {
	metadata.Store
	err error
}

func (s *failingStore) Set(context.Context, string, []byte) error { return s.err }
