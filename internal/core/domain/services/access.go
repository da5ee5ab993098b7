package services

import (
	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/order"
)

// OrderFacts are relationships that need a lookup beyond the order row.
type OrderFacts struct {
	IsParticipant bool
	IsBidder      bool
}

// ActorRelationships are the relationships an actor holds regardless of any
// particular order.
func ActorRelationships(a actor.Actor) []actor.Relationship {
	var rels []actor.Relationship
	if a.IsPrivileged() {
		rels = append(rels, actor.RelPrivileged)
	}
	if a.IsCourier() {
		rels = append(rels, actor.RelCourier)
	}
	if a.CanPostOrders() {
		rels = append(rels, actor.RelPoster)
	}
	return rels
}

// Relationships derives how a stands towards o.
func Relationships(a actor.Actor, o *order.Order, facts OrderFacts) []actor.Relationship {
	rels := ActorRelationships(a)
	if o == nil {
		return rels
	}
	if o.IsOwnedBy(a.ID()) {
		rels = append(rels, actor.RelOwner)
	}
	if a.IsCourier() && o.IsAssignedTo(a.ID()) {
		rels = append(rels, actor.RelAssignedCourier)
	}
	if facts.IsParticipant {
		rels = append(rels, actor.RelParticipant)
	}
	if facts.IsBidder {
		rels = append(rels, actor.RelBidder)
	}
	return rels
}

// HasRelationship reports whether rel is among rels.
func HasRelationship(rels []actor.Relationship, rel actor.Relationship) bool {
	for _, r := range rels {
		if r == rel {
			return true
		}
	}
	return false
}
