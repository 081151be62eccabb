package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ghosiportal/internal/client/models"
	"github.com/dmitrijs2005/ghosiportal/internal/common"
)

// Register prompts for the signup form and requests an OTP for the email.
func (a *App) Register(ctx context.Context) error {
	var form models.RegistrationForm
	prompts := []struct {
		text string
		dst  *string
	}{
		{"Enter first name", &form.FirstName},
		{"Enter last name", &form.LastName},
		{"Enter email", &form.Email},
	}
	for _, p := range prompts {
		v, err := getSimpleText(a.reader, p.text, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	fmt.Fprintln(a.out, "Confirm password")
	confirm, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	form.Password, form.ConfirmPassword = string(password), string(confirm)

	a.registration.RequestOTP(ctx, form, a.navigate)
	return a.registrationError()
}

// Verify checks the emailed code; it is prompted for when not given.
func (a *App) Verify(ctx context.Context, args []string) error {
	code := ""
	if len(args) > 0 {
		code = args[0]
	} else {
		v, err := getSimpleText(a.reader, "Enter the 6-digit code from your email", a.out)
		if err != nil {
			return err
		}
		code = v
	}

	a.registration.VerifyOTP(ctx, "", code, a.navigate)
	return a.registrationError()
}

// Complete creates the account from the pending signup. An optional code
// overrides the verified one.
func (a *App) Complete(ctx context.Context, args []string) error {
	code := ""
	if len(args) > 0 {
		code = args[0]
	}
	a.registration.CompleteRegistration(ctx, code, a.navigate)
	return a.registrationError()
}

func (a *App) Abandon(ctx context.Context) error {
	a.registration.Abandon(ctx)
	printlnFn("Signup discarded")
	return nil
}

func (a *App) registrationError() error {
	if st := a.registration.Status(); st.Error != "" {
		return errors.New(st.Error)
	}
	return nil
}
