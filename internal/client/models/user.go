package models

import "encoding/json"

// User is the identity returned by the backend on login and signup.
// The backend sends the identifier as "_id"; some endpoints use "id".
type User struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
	IsVerified bool   `json:"isVerified,omitempty"`
}

func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	var raw struct {
		plain
		AltID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*u = User(raw.plain)
	if u.ID == "" && len(raw.AltID) > 0 {
		u.ID = idString(raw.AltID)
	}
	return nil
}

// idString accepts both string and numeric identifiers.
func idString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// Session is the payload of a successful login or signup.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthState is the state of the session store. Only User, Token and
// IsAuthenticated survive a restart.
type AuthState struct {
	User            *User
	Token           string
	IsAuthenticated bool

	Loading bool
	Error   string
	Success string
}

// Authenticated reports whether both a user id and a token are present.
func (s AuthState) Authenticated() bool {
	return s.Token != "" && s.User != nil && s.User.ID != ""
}

// PersistedAuth is the persisted subset of AuthState.
type PersistedAuth struct {
	User            *User  `json:"user"`
	Token           string `json:"token"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

func (s AuthState) Persisted() PersistedAuth {
	return PersistedAuth{User: s.User, Token: s.Token, IsAuthenticated: s.IsAuthenticated}
}
