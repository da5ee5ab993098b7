package authz

import (
	"dispatch/internal/core/domain/model/actor"
)

// Rule grants op to any actor holding rel towards the order.
type Rule struct {
	Relationship actor.Relationship
	Operation    actor.Operation
}

func grant(op actor.Operation, rels ...actor.Relationship) []Rule {
	rules := make([]Rule, 0, len(rels))
	for _, rel := range rels {
		rules = append(rules, Rule{Relationship: rel, Operation: op})
	}
	return rules
}

// DefaultRules is the policy seeded into an empty rule table.
func DefaultRules() []Rule {
	var (
		owner      = actor.RelOwner
		assigned   = actor.RelAssignedCourier
		privileged = actor.RelPrivileged
		courier    = actor.RelCourier
		poster     = actor.RelPoster
		partic     = actor.RelParticipant
		bidder     = actor.RelBidder
	)

	groups := [][]Rule{
		grant(actor.StatusOperation("bidding"), owner, privileged),
		grant(actor.StatusOperation("accepted"), privileged),
		grant(actor.StatusOperation("picked_up"), assigned, privileged),
		grant(actor.StatusOperation("in_progress"), assigned, privileged),
		grant(actor.StatusOperation("delivered"), assigned, privileged),
		grant(actor.StatusOperation("completed"), owner, privileged),
		grant(actor.StatusOperation("cancelled"), owner, privileged),

		grant(actor.OpOrderCreate, poster),
		grant(actor.OpOrderRead, owner, assigned, privileged, partic, bidder),
		grant(actor.OpOrderReadOpen, courier),
		grant(actor.OpOrderUpdate, owner, privileged),
		grant(actor.OpOrderCancel, owner, privileged),

		grant(actor.OpBidPlace, courier),
		grant(actor.OpBidListAll, owner, privileged),
		grant(actor.OpBidListOwn, courier),
		grant(actor.OpBidAccept, owner, privileged),
		grant(actor.OpCounterCreate, owner, privileged),
		grant(actor.OpCounterResolve, bidder, privileged),

		grant(actor.OpMatchFind, owner, privileged),
		grant(actor.OpMatchAutoAssign, owner, privileged),

		grant(actor.OpTrackingRecord, assigned),
		grant(actor.OpTrackingRead, owner, assigned, privileged),

		grant(actor.OpOTPGenerate, assigned, privileged),
		grant(actor.OpOTPVerify, assigned),
		grant(actor.OpProofFallback, assigned),

		grant(actor.OpCollabJoin, courier, privileged),
		grant(actor.OpCollabList, owner, partic, privileged),
		grant(actor.OpCollabManage, privileged),
		grant(actor.OpCollabEarnings, owner, partic, privileged),
		grant(actor.OpCollabDistribute, privileged),

		grant(actor.OpCourierManage, privileged),
		grant(actor.OpCourierPresence, courier),
	}

	var rules []Rule
	for _, g := range groups {
		rules = append(rules, g...)
	}
	return rules
}
