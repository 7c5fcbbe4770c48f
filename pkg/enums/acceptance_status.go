package enums

import "fmt"

// AcceptanceStatus tracks one assigned party's response to an offer.
type AcceptanceStatus string

const (
	AcceptancePending   AcceptanceStatus = "pending"
	AcceptanceAccepted  AcceptanceStatus = "accepted"
	AcceptanceRejected  AcceptanceStatus = "rejected"
	AcceptanceCompleted AcceptanceStatus = "completed"
)

var validAcceptanceStatuses = []AcceptanceStatus{
	AcceptancePending,
	AcceptanceAccepted,
	AcceptanceRejected,
	AcceptanceCompleted,
}

// String implements fmt.Stringer.
func (a AcceptanceStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AcceptanceStatus.
func (a AcceptanceStatus) IsValid() bool {
	for _, candidate := range validAcceptanceStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is legal for the party.
func (a AcceptanceStatus) IsTerminal() bool {
	return a == AcceptanceRejected || a == AcceptanceCompleted
}

// CanTransitionTo reports whether the per-party state machine allows the move.
// Legal moves: pending -> accepted|rejected, accepted -> completed.
func (a AcceptanceStatus) CanTransitionTo(next AcceptanceStatus) bool {
	switch a {
	case AcceptancePending:
		return next == AcceptanceAccepted || next == AcceptanceRejected
	case AcceptanceAccepted:
		return next == AcceptanceCompleted
	}
	return false
}

// ParseAcceptanceStatus converts raw input into an AcceptanceStatus.
func ParseAcceptanceStatus(value string) (AcceptanceStatus, error) {
	for _, candidate := range validAcceptanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid acceptance status %q", value)
}
