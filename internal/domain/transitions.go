package domain

// transitionRule names the target state of a legal (from, action) pair and
// the roles allowed to perform it.
type transitionRule struct {
	to    State
	roles []Role
}

// transitionTable is the single source of truth for legal transitions.
// Escalated items are resolved by admins only; there is no de-escalation
// path back to pending.
var transitionTable = map[State]map[Action]transitionRule{
	StatePending: {
		ActionApprove:  {to: StateApproved, roles: []Role{RoleModerator, RoleAdmin}},
		ActionReject:   {to: StateRejected, roles: []Role{RoleModerator, RoleAdmin}},
		ActionEscalate: {to: StateEscalated, roles: []Role{RoleModerator}},
	},
	StateEscalated: {
		ActionApprove: {to: StateApproved, roles: []Role{RoleAdmin}},
		ActionReject:  {to: StateRejected, roles: []Role{RoleAdmin}},
	},
}

// ResolveTransition returns the target state for action performed on an
// item in state from by an actor with the given role. Terminal states are
// checked first so that any action on a resolved item reports the terminal
// violation rather than a missing table entry.
func ResolveTransition(from State, action Action, role Role) (State, error) {
	if from.Terminal() {
		return "", &TerminalStateError{State: from}
	}

	rule, ok := transitionTable[from][action]
	if !ok {
		return "", &IllegalTransitionError{From: from, Action: action}
	}

	for _, r := range rule.roles {
		if r == role {
			return rule.to, nil
		}
	}
	return "", &IllegalTransitionError{From: from, Action: action, Role: role}
}
