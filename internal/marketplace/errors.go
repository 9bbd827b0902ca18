package marketplace

import "errors"

var (
	// ErrUnauthenticated: a mutating action was attempted without a
	// session.  Callers redirect to the auth screen.  Store implementations
	// return it (wrapped or not) when they find the session gone at write
	// time; it is passed through instead of becoming ErrStoreWriteFailed.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrEmptyContent: a blank or whitespace-only message.  No store call
	// is made.
	ErrEmptyContent = errors.New("message is empty")
	// ErrInvalidTalent: the selected talent is missing or not bookable.
	// Callers return to the listing.
	ErrInvalidTalent = errors.New("invalid talent")
	// ErrStoreWriteFailed: the store rejected an insert.  Not retried.
	ErrStoreWriteFailed = errors.New("store write failed")

	// ErrLoading: the initial session lookup has not completed.
	ErrLoading = errors.New("session is loading")
	// ErrPaymentInFlight: a payment is already being processed.
	ErrPaymentInFlight = errors.New("payment already in progress")
	// ErrIllegalTransition: the requested screen is not reachable from
	// the current one.
	ErrIllegalTransition = errors.New("illegal screen transition")
	// ErrWrongScreen: the operation is not available on the current screen.
	ErrWrongScreen = errors.New("operation not available on this screen")
)
