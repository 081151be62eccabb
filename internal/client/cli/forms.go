package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/ghosiportal/internal/client/models"
	"github.com/dmitrijs2005/ghosiportal/internal/client/services"
	"github.com/dmitrijs2005/ghosiportal/internal/common"
)

// draft is the part of a FormStore the form commands need.
type draft interface {
	UpdateField(name, value string) error
	Fields() []string
	Submit(ctx context.Context) bool
}

// Member fills in the membership application and submits it.
func (a *App) Member(ctx context.Context) error {
	if err := a.fillDraft(a.member, "Membership application"); err != nil {
		return err
	}
	if !a.member.Submit(ctx) {
		return errors.New(a.member.State().Error)
	}
	return nil
}

// Helpdesk fills in a help-desk ticket and submits it. The description is
// read as multi-line text when not given as a field.
func (a *App) Helpdesk(ctx context.Context) error {
	if err := a.fillDraft(a.help, "Help request"); err != nil {
		return err
	}
	if strings.TrimSpace(a.help.State().Data.Description) == "" {
		text, err := getMultiline(a.reader, "Describe the issue", a.out)
		if err != nil {
			return err
		}
		if err := a.help.UpdateField("description", text); err != nil {
			return err
		}
	}
	if !a.help.Submit(ctx) {
		return errors.New(a.help.State().Error)
	}
	return nil
}

// fillDraft reads name=value lines into d. Values already in the draft are
// kept unless overwritten; unknown names are reported and skipped.
func (a *App) fillDraft(d draft, title string) error {
	prompt := fmt.Sprintf("%s\nFields: %s", title, strings.Join(d.Fields(), ", "))
	values, rejected, err := getFieldValues(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	for _, r := range rejected {
		printlnFn("Ignoring line:", r)
	}
	for name, value := range values {
		if err := d.UpdateField(name, value); err != nil {
			if errors.Is(err, services.ErrUnknownField) {
				printlnFn("Unknown field:", name)
				continue
			}
			return err
		}
	}
	return nil
}

// Admin dispatches "admin login|logout|dashboard".
func (a *App) Admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: admin login|logout|dashboard")
		return errUsage
	}

	switch args[0] {
	case "login":
		email, err := getSimpleText(a.reader, "Enter admin email", a.out)
		if err != nil {
			return err
		}
		password, err := getPassword(a.out)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(password)

		a.admin.Login(ctx, email, string(password), a.navigate)
		if st := a.admin.State(); st.Error != "" {
			return errors.New(st.Error)
		}
		return nil

	case "logout":
		a.admin.Logout(ctx, a.navigate)
		return nil

	case "dashboard":
		subs, err := a.admin.ListMemberships(ctx)
		if err != nil {
			printlnFn("Could not load memberships:", err)
			return err
		}
		a.printSubmissions(subs)
		return nil

	default:
		printlnFn("Usage: admin login|logout|dashboard")
		return errUsage
	}
}

func (a *App) printSubmissions(subs []models.MembershipSubmission) {
	if len(subs) == 0 {
		fmt.Fprintln(a.out, "No membership applications")
		return
	}
	for _, s := range subs {
		created := ""
		if !s.CreatedAt.IsZero() {
			created = s.CreatedAt.Local().Format("2006-01-02")
		}
		fmt.Fprintf(a.out, "%-10s %-24s %-12s %-28s %s\n", created, s.FullName, s.Mobile, s.Email, s.District)
	}
}
