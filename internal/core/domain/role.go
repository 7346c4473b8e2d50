package domain

// Role groups a set of permission strings under a stable code.
// Permissions are the flattened menu permission identifiers, e.g.
// "user:delete" or "config:update".
type Role struct {
	ID          string   `json:"roleId"`
	RoleCode    string   `json:"roleCode"`
	RoleName    string   `json:"roleName,omitempty"`
	Permissions []string `json:"permissions"`
}

// Grants is the union of role codes and permission strings across a
// principal's roles, loaded fresh on every authorized request.
type Grants struct {
	Roles       []string
	Permissions []string
}

// CollectGrants flattens roles into their code and permission unions.
// Order follows the input; duplicates are dropped.
func CollectGrants(roles []Role) Grants {
	g := Grants{}
	seenRole := make(map[string]struct{}, len(roles))
	seenPerm := make(map[string]struct{})
	for _, r := range roles {
		if r.RoleCode != "" {
			if _, ok := seenRole[r.RoleCode]; !ok {
				seenRole[r.RoleCode] = struct{}{}
				g.Roles = append(g.Roles, r.RoleCode)
			}
		}
		for _, p := range r.Permissions {
			if p == "" {
				continue
			}
			if _, ok := seenPerm[p]; !ok {
				seenPerm[p] = struct{}{}
				g.Permissions = append(g.Permissions, p)
			}
		}
	}
	return g
}

// HasRole reports whether code is in the role union.
func (g Grants) HasRole(code string) bool {
	for _, r := range g.Roles {
		if r == code {
			return true
		}
	}
	return false
}

// HasPermission reports whether perm is in the permission union.
func (g Grants) HasPermission(perm string) bool {
	for _, p := range g.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
