package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/dmitrijs2005/ghosiportal/internal/client/client"
	"github.com/dmitrijs2005/ghosiportal/internal/client/config"
	"github.com/dmitrijs2005/ghosiportal/internal/client/models"
	"github.com/dmitrijs2005/ghosiportal/internal/client/notify"
	"github.com/dmitrijs2005/ghosiportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/ghosiportal/internal/client/services"
	"github.com/dmitrijs2005/ghosiportal/internal/client/validation"
	"github.com/dmitrijs2005/ghosiportal/internal/logging"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	storage metadata.Store
	bus     *notify.Bus

	session      services.SessionService
	registration services.RegistrationService
	matrimonial  services.MatrimonialService
	member       *services.FormStore[models.MembershipForm]
	help         *services.FormStore[models.HelpForm]
	admin        services.AdminService

	route  string
	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens local storage and builds every service against the backend
// at c.APIBaseURL.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	storage, err := metadata.Open(ctx, afero.NewOsFs(), c.StorageBackend, c.StoragePath)
	if err != nil {
		log.Error(ctx, "error initializing storage", "error", err)
		return nil, err
	}

	a := &App{
		config:  c,
		log:     log,
		storage: storage,
		bus:     notify.NewBus(log),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}

	requester := client.NewRequester(c.APIBaseURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithTokenSource(a.token),
		client.WithLogger(log.With("component", "requester")),
	)
	a.wire(ctx, client.NewHTTPClient(requester))
	return a, nil
}

// wire builds the services on top of api. Split from NewApp for tests.
func (a *App) wire(ctx context.Context, api client.PortalClient) {
	v := validation.New()
	deps := services.Deps{
		Client:    api,
		Storage:   a.storage,
		Notifier:  a.bus,
		Validator: v,
		Logger:    a.log,
	}

	a.session = services.NewSessionService(ctx, deps)
	a.registration = services.NewRegistrationService(deps, a.session, a.config.PendingTTL)
	a.matrimonial = services.NewMatrimonialService(ctx, deps)
	services.FollowSession(ctx, a.session, a.matrimonial)
	a.member = services.NewFormStore(ctx, deps, services.MemberFormStorageKey,
		models.DefaultMembershipForm(), services.NewMembershipSubmitter(api, v))
	a.help = services.NewFormStore(ctx, deps, services.HelpFormStorageKey,
		models.DefaultHelpForm(), services.NewHelpSubmitter(a.config.HelpFormMode, a.config.HelpMockDelay, api, v))
	a.admin = services.NewAdminService(ctx, deps)
}

// token feeds the session token to the requester; the session does not
// exist yet while the requester is built.
func (a *App) token() string {
	if a.session == nil {
		return ""
	}
	return a.session.Token()
}

// Restore loads every persisted store. A store that fails to load starts
// empty; the failure is logged.
func (a *App) Restore(ctx context.Context) {
	restorers := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"session", a.session.Restore},
		{"registration", a.registration.Resume},
		{"matrimonial", a.matrimonial.Restore},
		{"member form", a.member.Restore},
		{"help form", a.help.Restore},
		{"admin", a.admin.Restore},
	}
	for _, r := range restorers {
		if err := r.fn(ctx); err != nil {
			a.log.Warn(ctx, "restore failed", "store", r.name, "error", err)
		}
	}
}

// Run restores state, refreshes an expired session and blocks in the REPL
// until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.bus.Subscribe(ctx, a.printNotification); err != nil {
		return fmt.Errorf("subscribe to notifications: %w", err)
	}

	a.Restore(ctx)
	if a.session.RefreshIfExpired(ctx) {
		a.log.Info(ctx, "stored session token had expired")
	}

	printlnFn("Welcome to the community portal CLI (type 'help' for commands)")
	if st := a.registration.Status(); st.State != models.RegistrationIdle {
		printlnFn(fmt.Sprintf("Registration for %s in progress (%s)", st.Email, st.State))
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
	return nil
}

func (a *App) Close() {
	if err := a.bus.Close(); err != nil {
		a.log.Warn(context.Background(), "close notification bus", "error", err)
	}
	if err := a.storage.Close(); err != nil {
		a.log.Warn(context.Background(), "close storage", "error", err)
	}
}

func (a *App) printNotification(_ context.Context, n notify.Notification) error {
	switch n.Kind {
	case notify.KindLoading:
		fmt.Fprintf(a.out, "... %s\n", n.Text)
	case notify.KindSuccess:
		fmt.Fprintf(a.out, "[ok] %s\n", n.Text)
	case notify.KindError:
		fmt.Fprintf(a.out, "[error] %s\n", n.Text)
	}
	return nil
}

// navigate records the route a service moved to.
func (a *App) navigate(path string) {
	a.route = path
	fmt.Fprintf(a.out, "-> %s\n", path)
}

func (a *App) isLoggedIn() bool {
	return a.session.State().IsAuthenticated
}

func (a *App) getStatus() string {
	s := ""
	if u := a.session.State().User; u != nil && a.isLoggedIn() {
		s = u.Name
		if s == "" {
			s = u.Email
		}
	}
	if a.admin.State().Token != "" {
		if s != "" {
			s += " "
		}
		s += "admin"
	}
	if a.route != "" {
		if s != "" {
			s += " "
		}
		s += a.route
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

var errNotLoggedIn = errors.New("not logged in")

// requireLogin prints a hint and returns errNotLoggedIn when no session is
// active.
func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		printlnFn("Please log in first")
		return errNotLoggedIn
	}
	return nil
}
