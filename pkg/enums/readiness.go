package enums

// Readiness is the live availability flag on a directory profile. Workers
// report ready/busy, drivers report available/busy.
type Readiness string

const (
	ReadinessReady     Readiness = "ready"
	ReadinessAvailable Readiness = "available"
	ReadinessBusy      Readiness = "busy"
)

// IsOpenFor reports whether the flag counts as open-for-work for the role.
func (r Readiness) IsOpenFor(role PartyRole) bool {
	if role == PartyRoleDriver {
		return r == ReadinessAvailable
	}
	return r == ReadinessReady
}
