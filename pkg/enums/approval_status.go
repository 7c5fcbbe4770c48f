package enums

// ApprovalStatus is the onboarding state of a worker or driver profile.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// IsValid reports whether the value is a known ApprovalStatus.
func (a ApprovalStatus) IsValid() bool {
	return a == ApprovalPending || a == ApprovalApproved || a == ApprovalRejected
}
