package enums

// OperatorRole identifies the privilege level of a back-office operator token.
type OperatorRole string

const (
	OperatorRoleAdmin      OperatorRole = "admin"
	OperatorRoleDispatcher OperatorRole = "dispatcher"
	OperatorRoleViewer     OperatorRole = "viewer"
)

func (r OperatorRole) IsValid() bool {
	switch r {
	case OperatorRoleAdmin, OperatorRoleDispatcher, OperatorRoleViewer:
		return true
	}
	return false
}

// CanDispatch reports whether the role may trigger assignments and record responses.
func (r OperatorRole) CanDispatch() bool {
	return r == OperatorRoleAdmin || r == OperatorRoleDispatcher
}

func (r OperatorRole) String() string {
	return string(r)
}
