package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/ghosiportal/internal/client/client"
	"github.com/dmitrijs2005/ghosiportal/internal/client/config"
	"github.com/dmitrijs2005/ghosiportal/internal/client/models"
	"github.com/dmitrijs2005/ghosiportal/internal/client/notify"
	"github.com/dmitrijs2005/ghosiportal/internal/client/validation"
)

func newMemberForm(t *testing.T) (*FormStore[models.MembershipForm], *fakeClient, *recorder, Deps) {
	t.Helper()
	fc, rec := newFakeClient(), newRecorder()
	deps := testDeps(fc, fileStorage(t), rec)
	sub := NewMembershipSubmitter(fc, validation.New())
	return NewFormStore(context.Background(), deps, MemberFormStorageKey, models.DefaultMembershipForm(), sub), fc, rec, deps
}

func newHelpForm(t *testing.T, mode string) (*FormStore[models.HelpForm], *fakeClient, *recorder) {
	t.Helper()
	fc, rec := newFakeClient(), newRecorder()
	deps := testDeps(fc, fileStorage(t), rec)
	sub := NewHelpSubmitter(mode, time.Millisecond, fc, validation.New())
	return NewFormStore(context.Background(), deps, HelpFormStorageKey, models.DefaultHelpForm(), sub), fc, rec
}

func TestFormStore_UpdateFieldAndReset(t *testing.T) {
	f, _, _ := newHelpForm(t, config.HelpFormMock)

	require.NoError(t, f.UpdateField("name", "Alice"))
	require.NoError(t, f.UpdateField("urgency", models.UrgencyHigh))
	assert.Equal(t, "Alice", f.State().Data.Name)
	assert.Equal(t, "high", f.State().Data.Urgency)

	f.ResetForm(context.Background())

	assert.Equal(t, models.DefaultHelpForm(), f.State().Data)
	assert.Equal(t, "medium", f.State().Data.Urgency)
	assert.Empty(t, f.State().Error)
	assert.Empty(t, f.State().Success)
}

func TestFormStore_UpdateFieldUnknown(t *testing.T) {
	f, _, _, _ := newMemberForm(t)

	err := f.UpdateField("shoeSize", "9")
	require.ErrorIs(t, err, ErrUnknownField)
	assert.Equal(t, models.DefaultMembershipForm(), f.State().Data)
}

func TestFormStore_Fields(t *testing.T) {
	f, _, _ := newHelpForm(t, config.HelpFormMock)
	assert.Equal(t, []string{
		"name", "email", "subject", "issueType", "description", "urgency",
		"attachment", "contactMethod", "phone", "preferredTime",
	}, f.Fields())
}

func fillMember(t *testing.T, f *FormStore[models.MembershipForm]) {
	t.Helper()
	require.NoError(t, f.UpdateField("fullName", "Asha Patel"))
	require.NoError(t, f.UpdateField("mobile", "98765 43210"))
	require.NoError(t, f.UpdateField("email", "asha@example.com"))
}

func TestFormStore_MembershipSubmit(t *testing.T) {
	f, fc, rec, _ := newMemberForm(t)
	fillMember(t, f)

	ok := f.Submit(context.Background())

	require.True(t, ok)
	assert.Equal(t, "Asha Patel", fc.LastMembership.FullName)
	st := f.State()
	assert.Equal(t, models.DefaultMembershipForm(), st.Data)
	assert.Equal(t, "Form submitted successfully!", st.Success)
	assert.False(t, st.Loading)
	assert.Equal(t, []string{"Form submitted successfully!"}, rec.Texts(notify.KindSuccess))
	assert.Zero(t, rec.Open())
}

func TestFormStore_MembershipValidation(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{"missing name", "fullName", "", "Please fill in all required fields"},
		{"bad email", "email", "asha@", "Please enter a valid email address"},
		{"bad mobile", "mobile", "12345", "Please enter a valid 10-digit mobile number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, fc, _, _ := newMemberForm(t)
			fillMember(t, f)
			require.NoError(t, f.UpdateField(tt.field, tt.value))

			ok := f.Submit(context.Background())

			assert.False(t, ok)
			assert.Equal(t, tt.want, f.State().Error)
			assert.Equal(t, tt.value, fieldValue(f.State().Data, tt.field))
			assert.Zero(t, fc.Total())
		})
	}
}

func fieldValue(m models.MembershipForm, field string) string {
	switch field {
	case "fullName":
		return m.FullName
	case "email":
		return m.Email
	case "mobile":
		return m.Mobile
	}
	return ""
}

func TestFormStore_MembershipBackendFailureKeepsDraft(t *testing.T) {
	f, fc, rec, _ := newMemberForm(t)
	fillMember(t, f)
	fc.MembershipErr = client.ErrUnavailable

	ok := f.Submit(context.Background())

	assert.False(t, ok)
	assert.Equal(t, "Failed to submit form. Please try again.", f.State().Error)
	assert.Equal(t, "Asha Patel", f.State().Data.FullName)
	assert.False(t, f.State().Loading)
	assert.Zero(t, rec.Open())
}

func TestFormStore_HelpMockMode(t *testing.T) {
	f, fc, _ := newHelpForm(t, config.HelpFormMock)
	require.NoError(t, f.UpdateField("description", "cannot log in"))

	ok := f.Submit(context.Background())

	require.True(t, ok)
	assert.Equal(t, "Form submitted successfully! (Mock mode)", f.State().Success)
	assert.Zero(t, fc.Total())
	assert.Equal(t, models.DefaultHelpForm(), f.State().Data)
}

func TestFormStore_HelpMockHonoursCancellation(t *testing.T) {
	fc, rec := newFakeClient(), newRecorder()
	sub := NewHelpSubmitter(config.HelpFormMock, time.Hour, fc, validation.New())
	f := NewFormStore(context.Background(), testDeps(fc, fileStorage(t), rec), HelpFormStorageKey, models.DefaultHelpForm(), sub)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, f.Submit(ctx))
	assert.Equal(t, "Failed to submit form. Please try again.", f.State().Error)
}

func TestFormStore_HelpLiveMode(t *testing.T) {
	f, fc, _ := newHelpForm(t, config.HelpFormLive)
	require.NoError(t, f.UpdateField("name", "Asha"))
	require.NoError(t, f.UpdateField("contactMethod", models.ContactPhone))

	assert.False(t, f.Submit(context.Background()))
	assert.Equal(t, "Phone number is required", f.State().Error)
	assert.Zero(t, fc.Total())

	require.NoError(t, f.UpdateField("phone", "9876543210"))
	assert.True(t, f.Submit(context.Background()))
	assert.Equal(t, "Thank you! Your request has been submitted.", f.State().Success)
	assert.Equal(t, "9876543210", fc.LastHelp.Phone)
	assert.Equal(t, "medium", fc.LastHelp.Urgency)
}

func TestFormStore_DraftSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	f, fc, _, deps := newMemberForm(t)
	require.NoError(t, f.UpdateField("fullName", "Asha"))
	require.NoError(t, f.UpdateField("district", "Surat"))

	again := NewFormStore(ctx, deps, MemberFormStorageKey, models.DefaultMembershipForm(), NewMembershipSubmitter(fc, validation.New()))
	require.NoError(t, again.Restore(ctx))

	assert.Equal(t, "Asha", again.State().Data.FullName)
	assert.Equal(t, "Surat", again.State().Data.District)
	assert.False(t, again.State().Loading)
}
