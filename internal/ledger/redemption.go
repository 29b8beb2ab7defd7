package ledger

// RedemptionReason is the service's verdict on a failed invite
// redemption. The variants are mutually exclusive.
type RedemptionReason string

const (
	ReasonShortUsername     RedemptionReason = "shortUsername"
	ReasonAlreadyUsedToken  RedemptionReason = "alreadyUsedToken"
	ReasonExpiredToken      RedemptionReason = "expiredToken"
	ReasonInvalidToken      RedemptionReason = "invalidToken"
	ReasonAlreadyRegistered RedemptionReason = "alreadyRegistered"
)

// RedemptionError carries a redemption verdict across the port
// boundary. It is the only AcceptInvite failure the client interprets;
// everything else is surfaced as an opaque collaborator failure.
type RedemptionError struct {
	Reason RedemptionReason
}

func (e *RedemptionError) Error() string {
	return "invite rejected: " + string(e.Reason)
}

// Known reports whether the reason is one the client can map to a
// distinct user-facing message.
func (r RedemptionReason) Known() bool {
	switch r {
	case ReasonShortUsername, ReasonAlreadyUsedToken, ReasonExpiredToken,
		ReasonInvalidToken, ReasonAlreadyRegistered:
		return true
	}
	return false
}
