package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/ghosiportal/internal/common"
	"github.com/dmitrijs2005/ghosiportal/internal/logging"
)

const (
	mimeJSON = "application/json"

	maxResponseBytes = 4 << 20
)

// Transport performs the HTTP round trip. *http.Client satisfies it.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource returns the bearer token to attach, or "" for none.
type TokenSource func() string

// Request describes one backend call. Query may be url.Values or a struct
// with `url` tags. Raw skips the {success, message, data} envelope and
// decodes the whole body into out.
type Request struct {
	Method string
	Path   string
	Body   any
	Header http.Header
	Query  any
	Raw    bool
}

// Envelope is the uniform response wrapper of the portal backend.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Requester is the single entry point for backend calls: it joins the base
// URL, encodes JSON, injects the bearer token and checks the envelope.
type Requester struct {
	baseURL   string
	transport Transport
	timeout   time.Duration
	token     TokenSource
	log       logging.Logger
}

type Option func(*Requester)

func WithTransport(t Transport) Option      { return func(r *Requester) { r.transport = t } }
func WithTimeout(d time.Duration) Option    { return func(r *Requester) { r.timeout = d } }
func WithTokenSource(ts TokenSource) Option { return func(r *Requester) { r.token = ts } }
func WithLogger(l logging.Logger) Option    { return func(r *Requester) { r.log = l } }

func NewRequester(baseURL string, opts ...Option) *Requester {
	r := &Requester{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: http.DefaultClient,
		timeout:   15 * time.Second,
		log:       logging.Nop{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Requester) Get(ctx context.Context, path string, q any, out any) (*Envelope, error) {
	return r.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: q}, out)
}

func (r *Requester) Post(ctx context.Context, path string, body any, out any) (*Envelope, error) {
	return r.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (r *Requester) Put(ctx context.Context, path string, body any, out any) (*Envelope, error) {
	return r.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (r *Requester) Delete(ctx context.Context, path string, out any) (*Envelope, error) {
	return r.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

// Do sends req and decodes the response into out (which may be nil).
//
// Errors:
//   - transport failures and timeouts wrap ErrUnavailable;
//   - non-2xx statuses and success:false return *APIError;
//   - undecodable 2xx bodies wrap ErrMalformedResponse.
//
// The returned envelope is nil for Raw requests.
func (r *Requester) Do(ctx context.Context, req Request, out any) (*Envelope, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	httpReq, err := r.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := r.transport.Do(httpReq)
	if err != nil {
		r.log.Debug(ctx, "request failed", "method", req.Method, "path", req.Path, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	r.log.Debug(ctx, "request",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", httpReq.Header.Get(common.RequestIDHeaderName),
	)

	if req.Raw {
		return nil, decodeRaw(resp.StatusCode, body, out)
	}
	return DecodeEnvelope(resp.StatusCode, body, out)
}

func (r *Requester) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	u, err := r.url(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", mimeJSON)
	if body != nil {
		httpReq.Header.Set("Content-Type", mimeJSON)
	}
	if httpReq.Header.Get(common.RequestIDHeaderName) == "" {
		httpReq.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}
	if httpReq.Header.Get(common.AuthorizationHeaderName) == "" && r.token != nil {
		if tok := r.token(); tok != "" {
			httpReq.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
		}
	}
	return httpReq, nil
}

func (r *Requester) url(path string, q any) (string, error) {
	u := r.baseURL + "/" + strings.TrimLeft(path, "/")

	var values url.Values
	switch v := q.(type) {
	case nil:
	case url.Values:
		values = v
	default:
		var err error
		values, err = query.Values(q)
		if err != nil {
			return "", fmt.Errorf("encode query: %w", err)
		}
	}
	if len(values) > 0 {
		u += "?" + values.Encode()
	}
	return u, nil
}

// DecodeEnvelope checks an enveloped response and decodes its data into
// out. A non-2xx status or success:false yields *APIError with the
// backend message, if any.
func DecodeEnvelope(status int, body []byte, out any) (*Envelope, error) {
	var env Envelope
	decodeErr := json.Unmarshal(body, &env)

	if status < 200 || status > 299 {
		return nil, &APIError{Status: status, Message: messageFrom(body, decodeErr, env)}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	}
	if !env.Success {
		return &env, &APIError{Status: status, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &env, fmt.Errorf("%w: data: %v", ErrMalformedResponse, err)
		}
	}
	return &env, nil
}

func decodeRaw(status int, body []byte, out any) error {
	if status < 200 || status > 299 {
		var env Envelope
		err := json.Unmarshal(body, &env)
		return &APIError{Status: status, Message: messageFrom(body, err, env)}
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// messageFrom extracts the backend message from an error body. Some
// endpoints answer {"error": "..."} instead of the envelope.
func messageFrom(body []byte, decodeErr error, env Envelope) string {
	if decodeErr != nil {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	var alt struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &alt) == nil {
		return alt.Error
	}
	return ""
}
