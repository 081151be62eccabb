package models

import "time"

// MembershipForm is the "become a member" application.
type MembershipForm struct {
	FullName        string `json:"fullName" validate:"required"`
	DobAge          string `json:"dobAge"`
	Area            string `json:"area"`
	District        string `json:"district"`
	PinCode         string `json:"pinCode"`
	State           string `json:"state"`
	Country         string `json:"country"`
	Education       string `json:"education"`
	EducationOther  string `json:"educationOther"`
	Occupation      string `json:"occupation"`
	OccupationOther string `json:"occupationOther"`
	Mobile          string `json:"mobile" validate:"required,mobile"`
	Email           string `json:"email" validate:"required,email"`
	MaritalStatus   string `json:"maritalStatus"`
	FamilyMembers   string `json:"familyMembers"`
	Volunteer       string `json:"volunteer"`
	VolunteerSkills string `json:"volunteerSkills"`
	AdditionalInfo  string `json:"additionalInfo"`
}

func DefaultMembershipForm() MembershipForm { return MembershipForm{} }

const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"

	ContactPhone = "phone"
	ContactEmail = "email"
)

// HelpForm is a help-desk ticket. Attachment is a local file path.
type HelpForm struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"omitempty,email"`
	Subject       string `json:"subject"`
	IssueType     string `json:"issueType"`
	Description   string `json:"description"`
	Urgency       string `json:"urgency" validate:"omitempty,oneof=low medium high critical"`
	Attachment    string `json:"attachment,omitempty"`
	ContactMethod string `json:"contactMethod" validate:"omitempty,oneof=phone email"`
	Phone         string `json:"phone"`
	PreferredTime string `json:"preferredTime"`
}

func DefaultHelpForm() HelpForm { return HelpForm{Urgency: UrgencyMedium} }

// FormState is the state of one form store.
type FormState[F any] struct {
	Data    F
	Loading bool
	Error   string
	Success string
}

type PersistedForm[F any] struct {
	FormData F `json:"formData"`
}

// MembershipSubmission is one row of the admin dashboard.
type MembershipSubmission struct {
	ID string `json:"_id"`
	MembershipForm
	CreatedAt time.Time `json:"createdAt"`
}
