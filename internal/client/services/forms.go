package services

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/ghosiportal/internal/client/client"
	"github.com/dmitrijs2005/ghosiportal/internal/client/config"
	"github.com/dmitrijs2005/ghosiportal/internal/client/models"
	"github.com/dmitrijs2005/ghosiportal/internal/client/state"
	"github.com/dmitrijs2005/ghosiportal/internal/client/validation"
)

const (
	msgSubmitting      = "Submitting form..."
	msgFormSubmitted   = "Form submitted successfully!"
	msgMockSubmitted   = "Form submitted successfully! (Mock mode)"
	msgHelpSubmitted   = "Thank you! Your request has been submitted."
	msgFormReset       = "Form reset successfully"
	msgFormSubmitFails = "Failed to submit form. Please try again."
)

var membershipRules = validation.Rules{
	{Tag: "required", Message: "Please fill in all required fields"},
	{Field: "email", Tag: "email", Message: "Please enter a valid email address"},
	{Field: "mobile", Tag: "mobile", Message: "Please enter a valid 10-digit mobile number"},
}

var helpRules = validation.Rules{
	{Field: "name", Tag: "required", Message: "Full name is required"},
	{Field: "phone", Tag: "required", Message: "Phone number is required"},
	{Field: "phone", Tag: "mobile", Message: "Please enter a valid 10-digit phone number"},
	{Field: "email", Tag: "email", Message: "Please enter a valid email address"},
}

// Submitter delivers a completed form and returns the success text.
type Submitter[F any] interface {
	Submit(ctx context.Context, form F) (string, error)
}

// RealSubmitter validates the form locally, then sends it.
type RealSubmitter[F any] struct {
	Validator *validation.Validator
	Rules     validation.Rules
	Send      func(ctx context.Context, form F) error
	Success   string
}

func (s RealSubmitter[F]) Submit(ctx context.Context, form F) (string, error) {
	if err := s.Validator.Struct(form, s.Rules); err != nil {
		return "", err
	}
	if err := s.Send(ctx, form); err != nil {
		return "", err
	}
	return s.Success, nil
}

// MockSubmitter accepts every form after Delay without contacting anyone.
type MockSubmitter[F any] struct {
	Delay   time.Duration
	Success string
}

func (s MockSubmitter[F]) Submit(ctx context.Context, _ F) (string, error) {
	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.C:
		}
	}
	return s.Success, nil
}

// NewMembershipSubmitter posts membership applications to the backend.
func NewMembershipSubmitter(c client.PortalClient, v *validation.Validator) Submitter[models.MembershipForm] {
	return RealSubmitter[models.MembershipForm]{
		Validator: v,
		Rules:     membershipRules,
		Send:      c.SubmitMembership,
		Success:   msgFormSubmitted,
	}
}

// NewHelpSubmitter returns the help-desk submitter for mode: live posts to
// the backend, anything else simulates a submission taking delay.
func NewHelpSubmitter(mode string, delay time.Duration, c client.PortalClient, v *validation.Validator) Submitter[models.HelpForm] {
	if mode == config.HelpFormLive {
		return RealSubmitter[models.HelpForm]{
			Validator: v,
			Rules:     helpRules,
			Send:      c.SubmitHelpRequest,
			Success:   msgHelpSubmitted,
		}
	}
	return MockSubmitter[models.HelpForm]{Delay: delay, Success: msgMockSubmitted}
}

// FormStore holds the draft of one form. Fields are addressed by their JSON
// name.
type FormStore[F any] struct {
	deps      Deps
	key       string
	defaults  F
	submitter Submitter[F]
	names     []string
	store     *state.Store[models.FormState[F]]
}

// NewFormStore builds a FormStore whose draft starts at defaults and is
// persisted under key.
func NewFormStore[F any](ctx context.Context, deps Deps, key string, defaults F, submitter Submitter[F]) *FormStore[F] {
	deps = deps.withDefaults()
	f := &FormStore[F]{
		deps:      deps,
		key:       key,
		defaults:  defaults,
		submitter: submitter,
		names:     fieldNames(reflect.TypeOf(defaults)),
		store:     state.New(models.FormState[F]{Data: defaults}),
	}
	state.Persist(ctx, f.store, deps.Storage, key, storageVersion,
		func(st models.FormState[F]) models.PersistedForm[F] {
			return models.PersistedForm[F]{FormData: st.Data}
		},
		deps.Logger.With("store", key))
	return f
}

// fieldNames lists the JSON names of t's exported fields in declaration
// order.
func fieldNames(t reflect.Type) []string {
	var names []string
	if t == nil || t.Kind() != reflect.Struct {
		return names
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = sf.Name
		}
		names = append(names, name)
	}
	return names
}

func (f *FormStore[F]) State() models.FormState[F] { return f.store.Get() }

// UpdateField sets one field of the draft. No validation happens here.
func (f *FormStore[F]) UpdateField(name, value string) error {
	var err error
	f.store.Update(func(st models.FormState[F]) models.FormState[F] {
		data := st.Data
		if err = models.DecodeFields(map[string]any{name: value}, &data); err != nil {
			return st
		}
		st.Data = data
		return st
	})
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrUnknownField, name, err)
	}
	return nil
}

// Fields lists the JSON names UpdateField accepts.
func (f *FormStore[F]) Fields() []string {
	return slices.Clone(f.names)
}

func (f *FormStore[F]) ResetForm(ctx context.Context) {
	f.store.Set(models.FormState[F]{Data: f.defaults})
	f.deps.Notifier.Success(ctx, msgFormReset)
}

// Submit sends the draft and reports whether it was accepted. An accepted
// draft is reset; a rejected one is kept for correction.
func (f *FormStore[F]) Submit(ctx context.Context) bool {
	id := f.deps.Notifier.Loading(ctx, msgSubmitting)
	defer f.deps.Notifier.Dismiss(ctx, id)

	st := f.store.Update(func(st models.FormState[F]) models.FormState[F] {
		st.Loading, st.Error, st.Success = true, "", ""
		return st
	})

	msg, err := f.submitter.Submit(ctx, st.Data)
	if err != nil {
		text := errorMessage(err, msgFormSubmitFails)
		f.store.Update(func(st models.FormState[F]) models.FormState[F] {
			st.Loading = false
			st.Error = text
			return st
		})
		f.deps.Logger.Warn(ctx, "submit form failed", "form", f.key, "error", err)
		f.deps.Notifier.Error(ctx, text)
		return false
	}

	f.store.Set(models.FormState[F]{Data: f.defaults, Success: msg})
	f.deps.Notifier.Success(ctx, msg)
	return true
}

// Restore loads a persisted draft.
func (f *FormStore[F]) Restore(ctx context.Context) error {
	p, found, err := state.Rehydrate[models.PersistedForm[F]](ctx, f.deps.Storage, f.key, storageVersion)
	if err != nil {
		return fmt.Errorf("restore %s: %w", f.key, err)
	}
	if !found {
		return nil
	}
	f.store.Update(func(st models.FormState[F]) models.FormState[F] {
		st.Data = p.FormData
		return st
	})
	return nil
}
