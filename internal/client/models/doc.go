// Package models defines the client-side data of the portal: the session,
// the pending registration record, matrimonial profiles and match
// candidates, and the membership and help-desk form drafts.
package models
