package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/ghosiportal/internal/client/models"
	"github.com/dmitrijs2005/ghosiportal/internal/common"
)

// Backend paths, relative to the configured base URL.
const (
	PathSendOTP       = "/auth/sendotp"
	PathVerifyOTP     = "/auth/verify-otp"
	PathSignup        = "/auth/signup"
	PathLogin         = "/auth/login"
	PathRefreshToken  = "/auth/refresh-token"
	PathCreateProfile = "/createProfile"
	PathUpdateProfile = "/updateProfile"
	PathDeleteProfile = "/deleteProfile"
	PathMatches       = "/matches"
	PathUsers         = "/users"
	PathBecomeMember  = "/become-a-member"
	PathHelpForm      = "/help-form"
	PathAdminLogin    = "/admin"
	PathMemberships   = "/become-member"
)

// HTTPClient implements PortalClient over the JSON REST backend.
type HTTPClient struct {
	r *Requester
}

func NewHTTPClient(r *Requester) *HTTPClient {
	return &HTTPClient{r: r}
}

func (c *HTTPClient) SendOTP(ctx context.Context, email string) (string, error) {
	body := map[string]any{"email": email, "checkUserPresent": true}

	var data struct {
		Message string `json:"message"`
	}
	env, err := c.r.Post(ctx, PathSendOTP, body, &data)
	if err != nil {
		return "", err
	}
	if data.Message != "" {
		return data.Message, nil
	}
	return env.Message, nil
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, email, otp string) error {
	_, err := c.r.Post(ctx, PathVerifyOTP, map[string]string{"email": email, "otp": otp}, nil)
	return err
}

func (c *HTTPClient) Signup(ctx context.Context, req models.SignupRequest) (*models.Session, error) {
	return c.session(ctx, PathSignup, req)
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	return c.session(ctx, PathLogin, creds)
}

func (c *HTTPClient) session(ctx context.Context, path string, body any) (*models.Session, error) {
	var s models.Session
	if _, err := c.r.Post(ctx, path, body, &s); err != nil {
		return nil, err
	}
	if s.Token == "" || s.User.ID == "" {
		return nil, fmt.Errorf("%w: %s: missing user or token", ErrMalformedResponse, path)
	}
	return &s, nil
}

func (c *HTTPClient) RefreshToken(ctx context.Context, token string) (string, error) {
	var data struct {
		Token string `json:"token"`
	}
	if _, err := c.r.Post(ctx, PathRefreshToken, map[string]string{"token": token}, &data); err != nil {
		return "", err
	}
	if data.Token == "" {
		return "", fmt.Errorf("%w: refresh: missing token", ErrMalformedResponse)
	}
	return data.Token, nil
}

func (c *HTTPClient) CreateProfile(ctx context.Context, p models.MatrimonialProfile) (*models.MatrimonialProfile, error) {
	var data struct {
		Profile *models.MatrimonialProfile `json:"profile"`
	}
	if _, err := c.r.Post(ctx, PathCreateProfile, p, &data); err != nil {
		return nil, err
	}
	return data.Profile, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*models.MatrimonialProfile, error) {
	var data struct {
		ProfileDetails *models.MatrimonialProfile `json:"profileDetails"`
	}
	if _, err := c.r.Put(ctx, PathUpdateProfile, p, &data); err != nil {
		return nil, err
	}
	return data.ProfileDetails, nil
}

func (c *HTTPClient) DeleteProfile(ctx context.Context) error {
	_, err := c.r.Delete(ctx, PathDeleteProfile, nil)
	return err
}

func (c *HTTPClient) GetMatches(ctx context.Context, userID int) ([]models.MatchCandidate, error) {
	matches := []models.MatchCandidate{}
	if _, err := c.r.Get(ctx, PathMatches+"/"+strconv.Itoa(userID), nil, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// ListCandidates fetches the searchable directory. The endpoint may answer
// with a bare array or with the usual envelope.
func (c *HTTPClient) ListCandidates(ctx context.Context) ([]models.MatchCandidate, error) {
	var raw json.RawMessage
	if _, err := c.r.Do(ctx, Request{Method: http.MethodGet, Path: PathUsers, Raw: true}, &raw); err != nil {
		return nil, err
	}

	out := []models.MatchCandidate{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return out, nil
	}
	if _, err := DecodeEnvelope(http.StatusOK, trimmed, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) SubmitMembership(ctx context.Context, f models.MembershipForm) error {
	_, err := c.r.Post(ctx, PathBecomeMember, f, nil)
	return err
}

func (c *HTTPClient) SubmitHelpRequest(ctx context.Context, f models.HelpForm) error {
	_, err := c.r.Post(ctx, PathHelpForm, f, nil)
	return err
}

// AdminLogin checks admin credentials. The endpoint answers with a bare
// {token}; an enveloped {data: {token}} is accepted as well.
func (c *HTTPClient) AdminLogin(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		Token   string `json:"token"`
		Message string `json:"message"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	body := map[string]string{"email": email, "password": password}
	if _, err := c.r.Do(ctx, Request{Method: http.MethodPost, Path: PathAdminLogin, Body: body, Raw: true}, &resp); err != nil {
		return "", err
	}

	token := resp.Token
	if token == "" {
		token = resp.Data.Token
	}
	if token == "" {
		return "", &APIError{Status: http.StatusOK, Message: resp.Message}
	}
	return token, nil
}

func (c *HTTPClient) ListMemberships(ctx context.Context, adminToken string) ([]models.MembershipSubmission, error) {
	if adminToken == "" {
		return nil, ErrLocalDataNotAvailable
	}
	h := http.Header{}
	h.Set(common.AuthorizationHeaderName, common.BearerPrefix+adminToken)

	out := []models.MembershipSubmission{}
	if _, err := c.r.Do(ctx, Request{Method: http.MethodGet, Path: PathMemberships, Header: h}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
