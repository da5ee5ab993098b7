// Package errs provides the error taxonomy shared by the dispatch core.
//
// Every typed error unwraps to one sentinel, which is what callers and the
// HTTP adapter classify on:
//   - ErrObjectNotFound: order, bid, participant or counter offer does not exist
//     (or does not belong to the referenced order)
//   - ErrForbidden: the actor lacks the role or relationship for the operation
//   - ErrConflict: the operation is not legal in the current state
//   - ErrValueIsRequired, ErrValueIsInvalid, ErrValueIsOutOfRange: malformed input
//   - ErrRateLimited: an operation repeated before its cooldown elapsed
//
// ConflictError and RateLimitedError carry enough context (remaining OTP
// attempts, fallback flag, retry-after) for a client to retry correctly.
package errs
