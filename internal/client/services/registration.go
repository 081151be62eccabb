package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/ghosiportal/internal/client/models"
	"github.com/dmitrijs2005/ghosiportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/ghosiportal/internal/client/state"
	"github.com/dmitrijs2005/ghosiportal/internal/client/validation"
)

const (
	msgSendingOTP    = "Sending OTP..."
	msgOTPSent       = "OTP sent successfully! Please check your email."
	msgSendOTPFailed = "Failed to send OTP. Please try again."

	msgVerifyingOTP    = "Verifying OTP..."
	msgOTPVerified     = "OTP verified successfully!"
	msgVerifyOTPFailed = "OTP verification failed. Please try again."

	msgCreatingAccount = "Creating account..."
	msgRegistered      = "Registration successful! Welcome aboard!"
	msgRegisterFailed  = "Registration failed. Please try again."
)

var registrationRules = validation.Rules{
	{Tag: "required", Message: "All fields are required"},
	{Field: "email", Tag: "email", Message: "Please enter a valid email address"},
	{Field: "password", Tag: "min", Message: "Password must be at least 8 characters"},
	{Field: "confirmPassword", Tag: "eqfield", Message: "Passwords do not match"},
}

var otpRules = validation.Rules{
	{Message: "Please enter the 6-digit code sent to your email"},
}

// RegistrationService drives the OTP signup flow:
// Idle -> OtpRequested -> OtpVerified -> Registered.
//
// The signup fields live in one pending record between the steps, so the
// flow survives a restart until the record expires. A step that fails
// keeps the record and can be retried.
type RegistrationService interface {
	RequestOTP(ctx context.Context, form models.RegistrationForm, navigate Navigate)
	VerifyOTP(ctx context.Context, email, code string, navigate Navigate)
	CompleteRegistration(ctx context.Context, otp string, navigate Navigate)
	Abandon(ctx context.Context)
	Resume(ctx context.Context) error
	Status() models.RegistrationStatus
}

type registrationService struct {
	deps    Deps
	session SessionService
	ttl     time.Duration
	store   *state.Store[models.RegistrationStatus]
}

// NewRegistrationService builds a RegistrationService. A successful signup
// is handed to session; pending records expire after ttl.
func NewRegistrationService(deps Deps, session SessionService, ttl time.Duration) RegistrationService {
	return &registrationService{
		deps:    deps.withDefaults(),
		session: session,
		ttl:     ttl,
		store:   state.New(models.RegistrationStatus{}),
	}
}

func (r *registrationService) Status() models.RegistrationStatus { return r.store.Get() }

// begin marks the flow busy and returns the function that ends the action.
func (r *registrationService) begin(ctx context.Context, loading string) func() {
	id := r.deps.Notifier.Loading(ctx, loading)
	r.store.Update(func(st models.RegistrationStatus) models.RegistrationStatus {
		st.Loading, st.Error, st.Success = true, "", ""
		return st
	})
	return func() {
		r.store.Update(func(st models.RegistrationStatus) models.RegistrationStatus {
			st.Loading = false
			return st
		})
		r.deps.Notifier.Dismiss(ctx, id)
	}
}

func (r *registrationService) fail(ctx context.Context, action string, err error, fallback string, reset bool) {
	msg := errorMessage(err, fallback)
	r.store.Update(func(st models.RegistrationStatus) models.RegistrationStatus {
		if reset {
			st.State = models.RegistrationIdle
			st.Email = ""
		}
		st.Error = msg
		return st
	})
	r.deps.Logger.Warn(ctx, action+" failed", "error", err)
	r.deps.Notifier.Error(ctx, msg)
}

func (r *registrationService) succeed(ctx context.Context, next models.RegistrationState, email, msg string) {
	r.store.Update(func(st models.RegistrationStatus) models.RegistrationStatus {
		st.State = next
		st.Email = email
		st.Error = ""
		st.Success = msg
		return st
	})
	r.deps.Notifier.Success(ctx, msg)
}

func (r *registrationService) RequestOTP(ctx context.Context, form models.RegistrationForm, navigate Navigate) {
	defer r.begin(ctx, msgSendingOTP)()

	form.Email = strings.TrimSpace(form.Email)
	if err := r.deps.Validator.Struct(form, registrationRules); err != nil {
		r.fail(ctx, "request otp", err, msgSendOTPFailed, false)
		return
	}

	if _, err := r.deps.Client.SendOTP(ctx, form.Email); err != nil {
		r.fail(ctx, "request otp", err, msgSendOTPFailed, false)
		return
	}

	p := models.NewPendingRegistration(form, r.deps.Now(), r.ttl)
	if err := savePending(ctx, r.deps.Storage, p); err != nil {
		r.fail(ctx, "request otp", err, msgSendOTPFailed, false)
		return
	}

	r.succeed(ctx, models.RegistrationOtpRequested, p.Email, msgOTPSent)
	navigate.to(RouteRegisterOTP)
}

// VerifyOTP checks code against the backend. An empty email means the
// address of the pending record.
func (r *registrationService) VerifyOTP(ctx context.Context, email, code string, navigate Navigate) {
	defer r.begin(ctx, msgVerifyingOTP)()

	code = strings.TrimSpace(code)
	if err := r.deps.Validator.Var("otp", code, "required,otp", otpRules); err != nil {
		r.fail(ctx, "verify otp", err, msgVerifyOTPFailed, false)
		return
	}

	email = strings.TrimSpace(email)
	if email == "" {
		p, err := r.loadPending(ctx)
		if err != nil {
			r.fail(ctx, "verify otp", err, msgVerifyOTPFailed, true)
			return
		}
		email = p.Email
	}

	if err := r.deps.Client.VerifyOTP(ctx, email, code); err != nil {
		r.fail(ctx, "verify otp", err, msgVerifyOTPFailed, false)
		return
	}

	err := r.deps.Storage.Atomic(ctx, func(ctx context.Context, repo metadata.Repository) error {
		p, err := getPending(ctx, repo, r.deps.Now())
		if err != nil {
			return err
		}
		p.OTPVerified = true
		p.OTP = code
		return savePending(ctx, repo, p)
	})
	if err != nil {
		r.fail(ctx, "verify otp", err, msgVerifyOTPFailed, isPendingNotFound(err))
		return
	}

	r.succeed(ctx, models.RegistrationOtpVerified, email, msgOTPVerified)
	navigate.to(RouteRegisterComplete)
}

// CompleteRegistration creates the account from the pending record. A
// non-empty otp overrides the verified one. Without a usable record it
// fails without calling the backend.
func (r *registrationService) CompleteRegistration(ctx context.Context, otp string, navigate Navigate) {
	defer r.begin(ctx, msgCreatingAccount)()

	p, err := r.loadPending(ctx)
	if err != nil {
		r.fail(ctx, "complete registration", err, msgRegisterFailed, true)
		return
	}

	if otp = strings.TrimSpace(otp); otp == "" {
		otp = p.OTP
	}
	sess, err := r.deps.Client.Signup(ctx, models.SignupRequest{
		Name:     p.Name,
		Email:    p.Email,
		Password: p.Password,
		OTP:      otp,
	})
	if err != nil {
		r.fail(ctx, "complete registration", err, msgRegisterFailed, false)
		return
	}

	r.session.Establish(ctx, *sess, msgRegistered)
	if err := r.deps.Storage.Delete(ctx, PendingKey); err != nil {
		r.deps.Logger.Warn(ctx, "delete pending registration", "error", err)
	}

	r.succeed(ctx, models.RegistrationRegistered, p.Email, msgRegistered)
	navigate.to(RouteDashboard)
}

func (r *registrationService) Abandon(ctx context.Context) {
	if err := r.deps.Storage.Delete(ctx, PendingKey); err != nil {
		r.deps.Logger.Warn(ctx, "delete pending registration", "error", err)
	}
	r.store.Set(models.RegistrationStatus{})
}

// Resume derives the flow state from a surviving pending record. Orphaned
// records are deleted and leave the flow Idle.
func (r *registrationService) Resume(ctx context.Context) error {
	p, err := r.loadPending(ctx)
	if isPendingNotFound(err) {
		r.store.Set(models.RegistrationStatus{})
		return nil
	}
	if err != nil {
		return fmt.Errorf("resume registration: %w", err)
	}
	r.store.Set(models.RegistrationStatus{State: p.State(), Email: p.Email})
	return nil
}

// loadPending returns the usable pending record, deleting an orphaned one.
func (r *registrationService) loadPending(ctx context.Context) (models.PendingRegistration, error) {
	p, err := getPending(ctx, r.deps.Storage, r.deps.Now())
	if isPendingNotFound(err) {
		if derr := r.deps.Storage.Delete(ctx, PendingKey); derr != nil {
			r.deps.Logger.Warn(ctx, "delete orphaned pending registration", "error", derr)
		}
	}
	return p, err
}

// getPending reads the pending record. Absent, undecodable, expired and
// incomplete records all report ErrPendingNotFound.
func getPending(ctx context.Context, repo metadata.Repository, now time.Time) (models.PendingRegistration, error) {
	var p models.PendingRegistration

	b, err := repo.Get(ctx, PendingKey)
	if err != nil {
		return p, fmt.Errorf("load pending registration: %w", err)
	}
	if b == nil {
		return p, ErrPendingNotFound
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrPendingNotFound, err)
	}
	if !p.Usable(now) {
		return p, ErrPendingNotFound
	}
	return p, nil
}

func savePending(ctx context.Context, repo metadata.Repository, p models.PendingRegistration) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode pending registration: %w", err)
	}
	if err := repo.Set(ctx, PendingKey, b); err != nil {
		return fmt.Errorf("save pending registration: %w", err)
	}
	return nil
}
