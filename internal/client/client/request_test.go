package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// newBackend starts a server answering every call with status and body,
// recording the last request.
func newBackend(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()
	last := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*last = captured{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Header: r.Header.Clone(), Body: b}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, last
}

func TestRequester_Do_SuccessDecodesData(t *testing.T) {
	srv, last := newBackend(t, http.StatusOK, `{"success":true,"message":"ok","data":{"token":"T2"}}`)
	r := NewRequester(srv.URL+"/api/v1/", WithTokenSource(func() string { return "T1" }))

	var out struct {
		Token string `json:"token"`
	}
	env, err := r.Post(context.Background(), "/auth/refresh-token", map[string]string{"token": "T1"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "T2", out.Token)
	assert.Equal(t, "ok", env.Message)
	assert.Equal(t, http.MethodPost, last.Method)
	assert.Equal(t, "/api/v1/auth/refresh-token", last.Path)
	assert.Equal(t, "Bearer T1", last.Header.Get("Authorization"))
	assert.Equal(t, "application/json", last.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", last.Header.Get("Accept"))
	assert.NotEmpty(t, last.Header.Get("X-Request-ID"))
	assert.JSONEq(t, `{"token":"T1"}`, string(last.Body))
}

func TestRequester_Do_NoTokenNoHeader(t *testing.T) {
	srv, last := newBackend(t, http.StatusOK, `{"success":true}`)
	r := NewRequester(srv.URL, WithTokenSource(func() string { return "" }))

	_, err := r.Get(context.Background(), "users", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, last.Header.Get("Authorization"))
	assert.Empty(t, last.Header.Get("Content-Type"))
	assert.Equal(t, "/users", last.Path)
}

func TestRequester_Do_ExplicitAuthorizationWins(t *testing.T) {
	srv, last := newBackend(t, http.StatusOK, `{"success":true}`)
	r := NewRequester(srv.URL, WithTokenSource(func() string { return "user-token" }))

	h := http.Header{}
	h.Set("Authorization", "Bearer admin-token")
	_, err := r.Do(context.Background(), Request{Method: http.MethodGet, Path: "/become-member", Header: h}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer admin-token", last.Header.Get("Authorization"))
}

func TestRequester_Do_QueryEncoding(t *testing.T) {
	srv, last := newBackend(t, http.StatusOK, `{"success":true}`)
	r := NewRequester(srv.URL)

	type filter struct {
		Gender  string `url:"gender,omitempty"`
		AgeFrom int    `url:"ageFrom,omitempty"`
		Tongue  string `url:"motherTongue,omitempty"`
	}
	_, err := r.Get(context.Background(), "/users", filter{Gender: "female", AgeFrom: 28}, nil)
	require.NoError(t, err)
	assert.Equal(t, "female", last.Query.Get("gender"))
	assert.Equal(t, "28", last.Query.Get("ageFrom"))
	assert.False(t, last.Query.Has("motherTongue"))

	_, err = r.Get(context.Background(), "/users", url.Values{"page": {"2"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "2", last.Query.Get("page"))
}

func TestRequester_Do_SuccessFalseIsAPIError(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK, `{"success":false,"message":"User already exists"}`)
	r := NewRequester(srv.URL)

	env, err := r.Post(context.Background(), "/auth/sendotp", map[string]any{"email": "a@b.com"}, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "User already exists", apiErr.Message)
	assert.False(t, env.Success)
	assert.Equal(t, "User already exists", Message(err, "fallback"))
}

func TestRequester_Do_StatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantIs  error
		wantMsg string
	}{
		{name: "unauthorized with message", status: 401, body: `{"success":false,"message":"Password is incorrect"}`, wantIs: ErrUnauthorized, wantMsg: "Password is incorrect"},
		{name: "forbidden", status: 403, body: `{}`, wantIs: ErrUnauthorized, wantMsg: "fallback"},
		{name: "server error plain text", status: 500, body: `oops`, wantIs: ErrUnavailable, wantMsg: "fallback"},
		{name: "bad request error field", status: 400, body: `{"error":"bad email"}`, wantMsg: "bad email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newBackend(t, tt.status, tt.body)
			r := NewRequester(srv.URL)

			_, err := r.Get(context.Background(), "/x", nil, nil)
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			assert.Equal(t, tt.wantMsg, Message(err, "fallback"))
		})
	}
}

func TestRequester_Do_TransportErrorIsUnavailable(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK, `{"success":true}`)
	addr := srv.URL
	srv.Close()

	r := NewRequester(addr)
	_, err := r.Get(context.Background(), "/x", nil, nil)

	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "Login failed. Please check your credentials.", Message(err, "Login failed. Please check your credentials."))
}

func TestRequester_Do_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	r := NewRequester(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := r.Get(context.Background(), "/slow", nil, nil)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestRequester_Do_MalformedBody(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK, `not json`)
	r := NewRequester(srv.URL)

	_, err := r.Get(context.Background(), "/x", nil, nil)
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRequester_Do_Raw(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK, `{"token":"admin"}`)
	r := NewRequester(srv.URL)

	var out struct {
		Token string `json:"token"`
	}
	env, err := r.Do(context.Background(), Request{Method: http.MethodPost, Path: "/admin", Body: map[string]string{}, Raw: true}, &out)
	require.NoError(t, err)
	assert.Nil(t, env)
	assert.Equal(t, "admin", out.Token)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func TestRequester_WithTransport(t *testing.T) {
	boom := errors.New("dial fail")
	r := NewRequester("http://backend.invalid", WithTransport(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, boom
	})))

	_, err := r.Delete(context.Background(), "/deleteProfile", nil)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestDecodeEnvelope_NullData(t *testing.T) {
	out := []int{1}
	env, err := DecodeEnvelope(http.StatusOK, []byte(`{"success":true,"data":null}`), &out)
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Equal(t, []int{1}, out)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil, "fb"))
	assert.Equal(t, "fb", Message(errors.New("x"), "fb"))
	assert.Equal(t, "fb", Message(&APIError{Status: 400}, "fb"))
	assert.Equal(t, "m", Message(&APIError{Status: 400, Message: "m"}, "fb"))
}
