package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ghosiportal/internal/client/models"
	"github.com/dmitrijs2005/ghosiportal/internal/common"
)

// getSimpleText, getPassword, getMultiline and getFieldValues are
// indirections used to facilitate testing. They point to interactive input
// helpers and can be swapped in tests.
var (
	getSimpleText  = GetSimpleText
	getPassword    = GetPassword
	getMultiline   = GetMultiline
	getFieldValues = GetFieldValues
)

// Login prompts for credentials and signs in. The outcome is printed by the
// notification subscriber; a failed login is returned as an error carrying
// the same message.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	a.session.Login(ctx, models.Credentials{Email: email, Password: string(password)}, a.navigate)
	if st := a.session.State(); st.Error != "" {
		return errors.New(st.Error)
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx, a.navigate)
	return nil
}

// Refresh replaces the session token. A rejected refresh logs the user out.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	a.session.RefreshToken(ctx)
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	printlnFn("Token refreshed")
	return nil
}

// Status prints a summary of every store.
func (a *App) Status(ctx context.Context) error {
	sess := a.session.State()
	if sess.IsAuthenticated && sess.User != nil {
		fmt.Fprintf(a.out, "Logged in as %s <%s>\n", sess.User.Name, sess.User.Email)
		if exp, err := a.session.TokenExpiry(); err == nil && !exp.IsZero() {
			fmt.Fprintf(a.out, "Token expires %s\n", exp.Local().Format("2006-01-02 15:04"))
		}
	} else {
		fmt.Fprintln(a.out, "Not logged in")
	}

	if reg := a.registration.Status(); reg.State != models.RegistrationIdle {
		fmt.Fprintf(a.out, "Registration: %s (%s)\n", reg.State, reg.Email)
	}

	mat := a.matrimonial.State()
	if mat.Profile != nil {
		fmt.Fprintf(a.out, "Matrimonial profile: %s, %s\n", mat.Profile.Gender, mat.Profile.Location())
	}
	if len(mat.Matches) > 0 {
		fmt.Fprintf(a.out, "Cached matches: %d\n", len(mat.Matches))
	}

	if adm := a.admin.State(); adm.Token != "" {
		fmt.Fprintf(a.out, "Admin: %s\n", adm.Email)
	}
	return nil
}
