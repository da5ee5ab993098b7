// Package ports declares what the dispatch core needs from the outside world:
// repositories bound to a unit of work, and the collaborators it consumes
// (geo estimation, notifications, settlement, ratings, loyalty, commission,
// OTP channels and the capability table).
package ports
