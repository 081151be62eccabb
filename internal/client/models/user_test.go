package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_UnmarshalAcceptsBothIDForms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "underscore id", in: `{"_id":"abc","name":"Asha"}`, want: "abc"},
		{name: "plain id", in: `{"id":"42","name":"Asha"}`, want: "42"},
		{name: "numeric id", in: `{"id":42,"name":"Asha"}`, want: "42"},
		{name: "underscore wins", in: `{"_id":"a","id":"b"}`, want: "a"},
		{name: "missing", in: `{"name":"Asha"}`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u User
			require.NoError(t, json.Unmarshal([]byte(tt.in), &u))
			assert.Equal(t, tt.want, u.ID)
		})
	}
}

func TestUser_MarshalUsesUnderscoreID(t *testing.T) {
	b, err := json.Marshal(User{ID: "u1", Name: "Asha", Email: "a@b.com"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"u1","name":"Asha","email":"a@b.com"}`, string(b))
}

func TestAuthState_Authenticated(t *testing.T) {
	assert.False(t, AuthState{}.Authenticated())
	assert.False(t, AuthState{Token: "t"}.Authenticated())
	assert.False(t, AuthState{Token: "t", User: &User{}}.Authenticated())
	assert.False(t, AuthState{User: &User{ID: "1"}}.Authenticated())
	assert.True(t, AuthState{Token: "t", User: &User{ID: "1"}}.Authenticated())
}
