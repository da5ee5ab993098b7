package guard_test

import (
	"errors"
	"sync"
	"testing"

	"dispatch/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTicketIsNotConstructed = errors.New("ticket must be created via newTicket")

type ticket struct {
	price int
	guard guard.ConstructorGuard
}

func newTicket(price int) (ticket, error) {
	if price <= 0 {
		return ticket{}, errors.New("price must be positive")
	}
	return ticket{price: price, guard: guard.NewConstructorGuard()}, nil
}

func (t ticket) Validate() error {
	return t.guard.Validate(errTicketIsNotConstructed)
}

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("properly_constructed_guard_returns_nil", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errors.New("not constructed")))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_guard_returns_custom_error", func(t *testing.T) {
		var g guard.ConstructorGuard
		expected := errors.New("entity not constructed")

		err := g.Validate(expected)

		require.Error(t, err)
		assert.Equal(t, expected, err)
	})

	t.Run("zero_value_guard_returns_default_error_when_nil", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(nil)

		require.ErrorIs(t, err, guard.ErrDefaultConstructorGuard)
		assert.Equal(t, "object must be created via its constructor", err.Error())
	})
}

func TestConstructorGuard_EmbeddedUsage(t *testing.T) {
	t.Run("constructed_value_passes", func(t *testing.T) {
		tk, err := newTicket(10)

		require.NoError(t, err)
		require.NoError(t, tk.Validate())
	})

	t.Run("zero_value_fails", func(t *testing.T) {
		var tk ticket

		require.ErrorIs(t, tk.Validate(), errTicketIsNotConstructed)
	})

	t.Run("constructor_rules_still_apply", func(t *testing.T) {
		_, err := newTicket(0)

		require.Error(t, err)
	})

	t.Run("copy_keeps_state", func(t *testing.T) {
		tk, _ := newTicket(5)
		cp := tk

		require.NoError(t, cp.Validate())
	})
}

func TestConstructorGuard_Concurrency(t *testing.T) {
	g := guard.NewConstructorGuard()
	validationError := errors.New("not constructed")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.Validate(validationError))
		}()
	}
	wg.Wait()
}
