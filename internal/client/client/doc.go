// Package client talks to the portal's REST backend.
//
// # Overview
//
// The package provides:
//  1. Requester, the single parameterised request helper: base URL join,
//     JSON bodies, query encoding (url.Values or `url`-tagged structs via
//     go-querystring), X-Request-ID, bearer-token injection from a
//     TokenSource, and a fixed per-call timeout.
//  2. Envelope handling: every response is expected as
//     {success, message, data}; data is decoded into the caller's value.
//  3. PortalClient, the typed API used by the services, and HTTPClient,
//     its implementation on top of Requester.
//
// # Error Handling
//
// Rejections (non-2xx or success:false) are returned as *APIError carrying
// the backend message. Transport failures and timeouts wrap ErrUnavailable;
// 401/403 responses unwrap to ErrUnauthorized. Message(err, fallback) turns
// any of these into the text shown to the user.
//
// Concurrency & Contexts
//
// Requester and HTTPClient are safe for concurrent use. Every call takes a
// context.Context; cancelling it aborts the request.
package client
