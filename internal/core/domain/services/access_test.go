package services_test

import (
	"testing"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustActor(t *testing.T, id kernel.UUID, role actor.Role) actor.Actor {
	t.Helper()
	a, err := actor.New(id, role)
	require.NoError(t, err)
	return a
}

func TestRelationships(t *testing.T) {
	o := newOrder(t, order.TypeStandard, &origin, "")
	courierID := kernel.NewUUID()
	require.NoError(t, o.AcceptBid(courierID, kernel.MoneyFromInt(900), now))

	t.Run("owner", func(t *testing.T) {
		rels := services.Relationships(mustActor(t, o.ClientID(), actor.RoleClient), o, services.OrderFacts{})
		assert.ElementsMatch(t, []actor.Relationship{actor.RelPoster, actor.RelOwner}, rels)
	})

	t.Run("assigned courier", func(t *testing.T) {
		rels := services.Relationships(mustActor(t, courierID, actor.RoleCourier), o, services.OrderFacts{IsBidder: true})
		assert.ElementsMatch(t, []actor.Relationship{actor.RelCourier, actor.RelAssignedCourier, actor.RelBidder}, rels)
	})

	t.Run("other courier", func(t *testing.T) {
		rels := services.Relationships(mustActor(t, kernel.NewUUID(), actor.RoleCourier), o, services.OrderFacts{})
		assert.Equal(t, []actor.Relationship{actor.RelCourier}, rels)
	})

	t.Run("manager", func(t *testing.T) {
		rels := services.Relationships(mustActor(t, kernel.NewUUID(), actor.RoleManager), o, services.OrderFacts{})
		assert.True(t, services.HasRelationship(rels, actor.RelPrivileged))
		assert.False(t, services.HasRelationship(rels, actor.RelOwner))
	})

	t.Run("without an order", func(t *testing.T) {
		rels := services.Relationships(actor.System(), nil, services.OrderFacts{})
		assert.Equal(t, []actor.Relationship{actor.RelPrivileged}, rels)
	})
}
