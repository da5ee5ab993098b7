// Package services holds domain logic that spans aggregates: ranking couriers
// for an order, splitting a collaborative order's payout, and deriving how an
// actor relates to an order for capability checks.
package services
