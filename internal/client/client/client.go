package client

import (
	"context"

	"github.com/dmitrijs2005/ghosiportal/internal/client/models"
)

// PortalClient is the typed backend API used by the services.
type PortalClient interface {
	SendOTP(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, email, otp string) error
	Signup(ctx context.Context, req models.SignupRequest) (*models.Session, error)
	Login(ctx context.Context, creds models.Credentials) (*models.Session, error)
	RefreshToken(ctx context.Context, token string) (string, error)

	CreateProfile(ctx context.Context, p models.MatrimonialProfile) (*models.MatrimonialProfile, error)
	UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*models.MatrimonialProfile, error)
	DeleteProfile(ctx context.Context) error
	GetMatches(ctx context.Context, userID int) ([]models.MatchCandidate, error)
	ListCandidates(ctx context.Context) ([]models.MatchCandidate, error)

	SubmitMembership(ctx context.Context, f models.MembershipForm) error
	SubmitHelpRequest(ctx context.Context, f models.HelpForm) error

	AdminLogin(ctx context.Context, email, password string) (string, error)
	ListMemberships(ctx context.Context, adminToken string) ([]models.MembershipSubmission, error)
}
