// Package kernel holds the value objects shared by every aggregate of the
// dispatch domain.
//
// The package includes:
//   - UUID: identifier wrapper around google/uuid with validation
//   - GeoPoint: a WGS84 latitude/longitude pair with great-circle distance
//   - Money: a non-negative decimal amount rounded to two places
//   - Address: a pickup or delivery stop with its contact channel
//
// Values are immutable once constructed and safe for concurrent use.
package kernel
