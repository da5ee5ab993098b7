// Package codegen produces one-time delivery codes.
package codegen

import (
	"crypto/rand"
	"math/big"
	"strings"

	"dispatch/internal/pkg/errs"
)

const maxDigits = 12

// Numeric draws every digit from crypto/rand.
type Numeric struct{}

func (Numeric) NumericCode(digits int) (string, error) {
	if digits < 1 || digits > maxDigits {
		return "", errs.NewValueIsOutOfRangeError("code digits", digits, 1, maxDigits)
	}
	var b strings.Builder
	b.Grow(digits)
	ten := big.NewInt(10)
	for range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
