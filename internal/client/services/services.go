package services

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/ghosiportal/internal/client/client"
	"github.com/dmitrijs2005/ghosiportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/ghosiportal/internal/client/notify"
	"github.com/dmitrijs2005/ghosiportal/internal/client/validation"
	"github.com/dmitrijs2005/ghosiportal/internal/common"
	"github.com/dmitrijs2005/ghosiportal/internal/logging"
)

// Storage keys of the persisted stores.
const (
	AuthStorageKey        = "auth-storage"
	PendingKey            = "pending-registration"
	MatrimonialStorageKey = "matrimonial-storage"
	MemberFormStorageKey  = "member-form-storage"
	HelpFormStorageKey    = "help-form-storage"
	AdminStorageKey       = "admin-storage"
)

// storageVersion is the version written with every persisted store.
const storageVersion = 0

// Routes passed to Navigate after a successful action.
const (
	RouteLogin            = "/login"
	RouteDashboard        = "/dashboard"
	RouteRegisterOTP      = "/matrimonial/register/otp"
	RouteRegisterComplete = "/matrimonial/register/complete"
	RouteMatrimonial      = "/matrimonial"
	RouteProfile          = "/matrimonial/profile"
	RouteAdminLogin       = "/admin/login"
	RouteAdminDashboard   = "/admin/dashboard"
)

var (
	ErrPendingNotFound = errors.New("pending registration not found")
	ErrUnknownField    = errors.New("unknown form field")
)

const msgPendingNotFound = "Signup data not found. Please register again."

// Navigate is called with the route to show after a successful action.
// A nil Navigate is allowed.
type Navigate func(path string)

func (n Navigate) to(path string) {
	if n != nil {
		n(path)
	}
}

// Deps are the collaborators shared by every service. Zero-valued
// Notifier, Validator, Logger and Now are replaced with working defaults.
type Deps struct {
	Client    client.PortalClient
	Storage   metadata.Store
	Notifier  notify.Notifier
	Validator *validation.Validator
	Logger    logging.Logger
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}
	if d.Validator == nil {
		d.Validator = validation.New()
	}
	if d.Logger == nil {
		d.Logger = logging.Nop{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// errorMessage is the text shown to the user when an action fails: local
// validation and pending-record errors carry their own message, backend
// rejections carry the server's, everything else gets fallback.
func errorMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, ErrPendingNotFound):
		return msgPendingNotFound
	case errors.Is(err, common.ErrValidation):
		return err.Error()
	}
	return client.Message(err, fallback)
}

func isPendingNotFound(err error) bool { return errors.Is(err, ErrPendingNotFound) }
