package models

// MatrimonialProfile mirrors the backend profile document. Field names
// follow the backend's JSON.
type MatrimonialProfile struct {
	UserID        int    `json:"user_id" validate:"gt=0"`
	DateOfBirth   string `json:"dateOfBirth" validate:"required"`
	Gender        string `json:"gender" validate:"required,oneof=male female"`
	ContactNumber string `json:"contactNumber,omitempty" validate:"omitempty,mobile"`
	Height        string `json:"height"`
	MaritalStatus string `json:"maritalStatus" validate:"omitempty,oneof=never_married divorced widowed"`
	Weight        string `json:"weight"`
	Education     string `json:"education"`
	Occupation    string `json:"occupation"`
	Income        string `json:"income"`
	Country       string `json:"country"`
	State         string `json:"state"`
	City          string `json:"city"`
	Hobbies       string `json:"hobbies"`
	AboutMe       string `json:"about_me"`
}

// ProfileUpdate is a partial profile; nil fields are left out of the
// request and keep their server-side value.
type ProfileUpdate struct {
	UserID        int     `json:"user_id" validate:"gt=0"`
	DateOfBirth   *string `json:"dateOfBirth,omitempty"`
	Gender        *string `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	ContactNumber *string `json:"contactNumber,omitempty" validate:"omitempty,mobile"`
	Height        *string `json:"height,omitempty"`
	MaritalStatus *string `json:"maritalStatus,omitempty" validate:"omitempty,oneof=never_married divorced widowed"`
	Weight        *string `json:"weight,omitempty"`
	Education     *string `json:"education,omitempty"`
	Occupation    *string `json:"occupation,omitempty"`
	Income        *string `json:"income,omitempty"`
	Country       *string `json:"country,omitempty"`
	State         *string `json:"state,omitempty"`
	City          *string `json:"city,omitempty"`
	Hobbies       *string `json:"hobbies,omitempty"`
	AboutMe       *string `json:"about_me,omitempty"`
}

// Location formats country, state and city for display.
func (p MatrimonialProfile) Location() string {
	return joinNonEmpty(", ", p.City, p.State, p.Country)
}

// MatchCandidate is one entry of a match list or of the searchable
// candidate directory.
type MatchCandidate struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	MotherTongue string `json:"motherTongue,omitempty"`
	Education    string `json:"education"`
	Occupation   string `json:"occupation"`
	Location     string `json:"location"`
	Image        string `json:"image,omitempty"`
}

// MatrimonialState is the state of the matrimonial controller. Only the
// profile persists; matches and candidates are fetched per session.
type MatrimonialState struct {
	Profile    *MatrimonialProfile
	Matches    []MatchCandidate
	Candidates []MatchCandidate

	Loading bool
	Error   string
	Success string
}

type PersistedMatrimonial struct {
	Profile *MatrimonialProfile `json:"profile"`
}

func (s MatrimonialState) Persisted() PersistedMatrimonial {
	return PersistedMatrimonial{Profile: s.Profile}
}

func joinNonEmpty(sep string, parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}
