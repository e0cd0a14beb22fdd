package workflow

// transitionTable maps (role, from-status) to the set of statuses that role may
// move a request into. Rejection is only reachable by the role that is the
// active reviewer at the current stage.
var transitionTable = map[Role]map[Status][]Status{
	RolePM: {
		StatusSubmitted: {StatusPMApproved, StatusRejected},
	},
	RolePresident: {
		StatusPMApproved: {StatusPresidentApproved, StatusRejected},
	},
	RolePurchaser: {
		StatusPresidentApproved: {StatusPurchased},
		StatusPurchased:         {StatusReceived},
	},
}

// reviewerByStatus maps a request status to the role that adjudicates line
// items while the request sits in that status.
var reviewerByStatus = map[Status]Role{
	StatusSubmitted:  RolePM,
	StatusPMApproved: RolePresident,
}

// CanTransition reports whether the role may move a request from one status to
// another. Any triple outside the table is denied, including everything out of
// a terminal status.
func CanTransition(role Role, from, to Status) bool {
	for _, allowed := range PermittedTargets(role, from) {
		if allowed == to {
			return true
		}
	}
	return false
}

// PermittedTargets returns the statuses the role may move a request into from
// the given status. The returned slice is a copy and safe to modify.
func PermittedTargets(role Role, from Status) []Status {
	byStatus, ok := transitionTable[role]
	if !ok {
		return nil
	}
	targets, ok := byStatus[from]
	if !ok {
		return nil
	}
	return append([]Status(nil), targets...)
}

// CanFulfill reports whether the role may stock a received request into
// inventory.
func CanFulfill(role Role) bool {
	return role == RolePurchaser || role == RoleAdmin
}

// CanDecideItem reports whether the role may approve or reject line items while
// the parent request is in the given status. Admin bypasses the stage check as
// a correction escape hatch; the bypass does not extend to request-level
// transitions.
func CanDecideItem(role Role, requestStatus Status) bool {
	if role == RoleAdmin {
		return true
	}
	return reviewerByStatus[requestStatus] == role
}
