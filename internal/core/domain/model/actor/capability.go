package actor

// Relationship is how an actor stands towards one order.
type Relationship string

const (
	RelOwner           Relationship = "owner"
	RelAssignedCourier Relationship = "assigned_courier"
	RelPrivileged      Relationship = "privileged"
	RelCourier         Relationship = "courier"
	RelPoster          Relationship = "poster"
	RelParticipant     Relationship = "participant"
	RelBidder          Relationship = "bidder"
)

// Operation names a guarded action of the dispatch core. Status targets are
// encoded as "status:<target>" so that permission can depend on the target.
type Operation string

const (
	OpOrderCreate      Operation = "order:create"
	OpOrderRead        Operation = "order:read"
	OpOrderReadOpen    Operation = "order:read_open"
	OpOrderUpdate      Operation = "order:update"
	OpOrderCancel      Operation = "order:cancel"
	OpBidPlace         Operation = "bid:place"
	OpBidListAll       Operation = "bid:list_all"
	OpBidListOwn       Operation = "bid:list_own"
	OpBidAccept        Operation = "bid:accept"
	OpCounterCreate    Operation = "counter:create"
	OpCounterResolve   Operation = "counter:resolve"
	OpMatchFind        Operation = "match:find"
	OpMatchAutoAssign  Operation = "match:auto_assign"
	OpTrackingRecord   Operation = "tracking:record"
	OpTrackingRead     Operation = "tracking:read"
	OpOTPGenerate      Operation = "otp:generate"
	OpOTPVerify        Operation = "otp:verify"
	OpProofFallback    Operation = "otp:fallback"
	OpCollabJoin       Operation = "collab:join"
	OpCollabList       Operation = "collab:list"
	OpCollabManage     Operation = "collab:manage"
	OpCollabEarnings   Operation = "collab:earnings"
	OpCollabDistribute Operation = "collab:distribute"
	OpCourierManage    Operation = "courier:manage"
	OpCourierPresence  Operation = "courier:presence"
)

// StatusOperation returns the operation guarding a transition to target.
func StatusOperation(target string) Operation {
	return Operation("status:" + target)
}
