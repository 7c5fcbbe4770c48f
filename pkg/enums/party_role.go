package enums

import "fmt"

// PartyRole distinguishes laborers from vehicle drivers in the directory.
type PartyRole string

const (
	PartyRoleWorker PartyRole = "worker"
	PartyRoleDriver PartyRole = "driver"
)

var validPartyRoles = []PartyRole{
	PartyRoleWorker,
	PartyRoleDriver,
}

// String implements fmt.Stringer.
func (p PartyRole) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PartyRole.
func (p PartyRole) IsValid() bool {
	for _, candidate := range validPartyRoles {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePartyRole converts raw input into a PartyRole.
func ParsePartyRole(value string) (PartyRole, error) {
	for _, candidate := range validPartyRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid party role %q", value)
}
