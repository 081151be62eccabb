package models

import (
	"strings"
	"time"
)

// RegistrationState is the step the signup flow is in.
type RegistrationState int

const (
	RegistrationIdle RegistrationState = iota
	RegistrationOtpRequested
	RegistrationOtpVerified
	RegistrationRegistered
)

func (s RegistrationState) String() string {
	switch s {
	case RegistrationIdle:
		return "idle"
	case RegistrationOtpRequested:
		return "otp-requested"
	case RegistrationOtpVerified:
		return "otp-verified"
	case RegistrationRegistered:
		return "registered"
	default:
		return "unknown"
	}
}

// RegistrationForm is what the user enters on the signup page.
type RegistrationForm struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// FullName joins first and last name the way the backend expects "name".
func (f RegistrationForm) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(f.FirstName) + " " + strings.TrimSpace(f.LastName))
}

// PendingRegistrationVersion is bumped whenever the record layout changes;
// records with another version are discarded.
const PendingRegistrationVersion = 1

// PendingRegistration holds the signup fields between the OTP request and
// account creation. It is stored as a single record with an expiry.
type PendingRegistration struct {
	Version     int       `json:"version"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Password    string    `json:"password"`
	OTPVerified bool      `json:"otpVerified"`
	OTP         string    `json:"otp,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func NewPendingRegistration(f RegistrationForm, now time.Time, ttl time.Duration) PendingRegistration {
	return PendingRegistration{
		Version:   PendingRegistrationVersion,
		Email:     strings.TrimSpace(f.Email),
		Name:      f.FullName(),
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Password:  f.Password,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Usable reports whether the record can still finish a registration.
// Records from another layout version, past their expiry or missing the
// signup payload are orphaned.
func (p PendingRegistration) Usable(now time.Time) bool {
	if p.Version != PendingRegistrationVersion {
		return false
	}
	if p.Email == "" || p.Password == "" {
		return false
	}
	return p.ExpiresAt.IsZero() || now.Before(p.ExpiresAt)
}

// State derives the flow step a usable record stands for.
func (p PendingRegistration) State() RegistrationState {
	if p.OTPVerified {
		return RegistrationOtpVerified
	}
	return RegistrationOtpRequested
}

// SignupRequest is the body of the final signup call.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	OTP      string `json:"otp,omitempty"`
}

// RegistrationStatus is the observable state of the registration flow.
type RegistrationStatus struct {
	State   RegistrationState
	Email   string
	Loading bool
	Error   string
	Success string
}
