// Package order holds the Order aggregate: one delivery request from the
// moment a client posts it until it is completed or cancelled.
//
// The aggregate owns:
//   - the status machine (pending, bidding, accepted, picked_up, in_progress,
//     delivered, completed, cancelled) and every timestamp stamped on the way
//   - courier assignment and the final price, which is fixed exactly once
//   - the delivery-proof gate: a short numeric code with a validity window
//     and an attempt limit, or a signature/photo fallback
//
// Bids, counter offers and collaborative participants reference an order by
// id and live in their own packages; the order never points back at them.
//
// Every mutation is checked against the current status. Illegal moves return
// errs.ConflictError so the HTTP layer can answer 409 with a precise reason.
package order
