package codegen_test

import (
	"regexp"
	"testing"

	"dispatch/internal/adapters/out/codegen"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumeric_NumericCode(t *testing.T) {
	digits := regexp.MustCompile(`^[0-9]{6}$`)
	seen := map[string]bool{}
	for range 50 {
		code, err := codegen.Numeric{}.NumericCode(6)
		require.NoError(t, err)
		assert.Regexp(t, digits, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestNumeric_RejectsLength(t *testing.T) {
	for _, n := range []int{0, -1, 13} {
		_, err := codegen.Numeric{}.NumericCode(n)
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	}
}
