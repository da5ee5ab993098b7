package actor_test

import (
	"testing"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := actor.ParseRole(" Courier ")
	require.NoError(t, err)
	assert.Equal(t, actor.RoleCourier, r)

	_, err = actor.ParseRole("pilot")
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestNew(t *testing.T) {
	_, err := actor.New(kernel.UUID{}, actor.RoleClient)
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

	_, err = actor.New(kernel.NewUUID(), actor.Role("pilot"))
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	a, err := actor.New(kernel.NewUUID(), actor.RoleBusiness)
	require.NoError(t, err)
	assert.NoError(t, a.Validate())
	assert.True(t, a.CanPostOrders())
	assert.False(t, a.IsPrivileged())
}

func TestActor_RoleChecks(t *testing.T) {
	tests := []struct {
		role       actor.Role
		privileged bool
		courier    bool
		poster     bool
	}{
		{role: actor.RoleClient, poster: true},
		{role: actor.RoleBusiness, poster: true},
		{role: actor.RoleCourier, courier: true},
		{role: actor.RoleManager, privileged: true},
		{role: actor.RoleAdmin, privileged: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			a, err := actor.New(kernel.NewUUID(), tt.role)
			require.NoError(t, err)
			assert.Equal(t, tt.privileged, a.IsPrivileged())
			assert.Equal(t, tt.courier, a.IsCourier())
			assert.Equal(t, tt.poster, a.CanPostOrders())
		})
	}
}

func TestSystem(t *testing.T) {
	s := actor.System()
	assert.NoError(t, s.Validate())
	assert.True(t, s.IsPrivileged())
	assert.Equal(t, actor.RoleSystem, s.Role())

	var zero actor.Actor
	assert.ErrorIs(t, zero.Validate(), errs.ErrValueIsRequired)
}

func TestStatusOperation(t *testing.T) {
	assert.Equal(t, actor.Operation("status:picked_up"), actor.StatusOperation("picked_up"))
}
