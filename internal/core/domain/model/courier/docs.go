// Package courier holds the courier profile consulted by matching: identity,
// vehicle, availability and last known position.
//
// A courier is a matching candidate only while it is online, verified and has
// reported a position. Delivery history used for scoring is not part of the
// aggregate; it is derived from orders and carried alongside as Stats.
package courier
