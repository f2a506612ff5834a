package service

import "errors"

// Authentication failure kinds. Handlers map all of these to 401 without
// echoing which check failed; ErrStoreUnavailable is the one transient kind
// callers may retry.
var (
	// ErrIdentityAssertionInvalid is returned when the external Google credential fails verification
	ErrIdentityAssertionInvalid = errors.New("identity assertion invalid")

	// ErrRefreshRejected hides the internal cause of a failed refresh (bad
	// signature, wrong type, expired, or no live session row)
	ErrRefreshRejected = errors.New("refresh rejected")

	// ErrUserInactive is returned when the subject account has been deactivated
	ErrUserInactive = errors.New("user account is inactive")

	// ErrAccessDenied is the generic access-token verification failure
	ErrAccessDenied = errors.New("access denied")

	// ErrStoreUnavailable marks transient persistence failures, distinct from
	// authentication failures so callers can retry instead of re-authenticating
	ErrStoreUnavailable = errors.New("store unavailable")
)
