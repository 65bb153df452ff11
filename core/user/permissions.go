package user

// CanModify reports whether actor may change target through the admin panel.
// Owner accounts are immutable here, and admin accounts may only be touched
// by an owner. This mirrors the server-side policy; it is a UX gate, not a
// security boundary.
func CanModify(actor, target User) bool {
	if target.IsOwner {
		return false
	}
	if target.IsAdmin && !actor.IsOwner {
		return false
	}
	return true
}

// CanAssignRole reports whether actor may set target's role to role.
// Only owners may promote to admin.
func CanAssignRole(actor, target User, role string) bool {
	if !ValidRole(role) || !CanModify(actor, target) {
		return false
	}
	if role == RoleAdmin && !actor.IsOwner {
		return false
	}
	return true
}

// AssignableRoles lists the roles actor may assign to target, in menu order.
// Empty when target is not modifiable at all.
func AssignableRoles(actor, target User) []string {
	var roles []string
	for _, role := range AllRoles {
		if CanAssignRole(actor, target, role) {
			roles = append(roles, role)
		}
	}
	return roles
}
