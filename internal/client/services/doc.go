// Package services holds the portal's client-side stores: the session, the
// registration flow, the matrimonial profile and matches, the two public
// forms and the admin session.
//
// Every service owns a state.Store, mirrors the durable part of it into
// metadata storage and reports progress through a notify.Notifier. Actions
// never return backend errors; they record a user-facing message in the
// state instead and clear Loading on every path.
package services
