package user

import "sort"

// Roles
const (
	RoleAdmin   = "admin"
	RoleWarden  = "warden"
	RoleStudent = "student"
)

var (
	AllRoles = []string{RoleAdmin, RoleWarden, RoleStudent}

	rolePriorities = map[string]int{
		RoleAdmin:   30,
		RoleWarden:  20,
		RoleStudent: 10,
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

// IsValidRole reports whether role is one of AllRoles.
func IsValidRole(role string) bool {
	_, ok := rolePriorities[role]
	return ok
}

// Principal is the authenticated caller, as identified by an externally issued token.
// Students are identified by the same ID that keys their hostel profile.
type Principal struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p Principal) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}

func (p Principal) IsAdmin() bool   { return p.HasRole(RoleAdmin) }
func (p Principal) IsWarden() bool  { return p.HasRole(RoleWarden) }
func (p Principal) IsStudent() bool { return p.HasRole(RoleStudent) }

// CanManageHostel is true for wardens and admins: rooms, allocations, attendance and complaint handling.
func (p Principal) CanManageHostel() bool {
	return p.IsAdmin() || p.IsWarden()
}

// CleanRoles drops unknown and duplicated roles and sorts the rest by descending priority.
func CleanRoles(roles []string) []string {
	seen := make(map[string]bool, len(roles))
	cleaned := make([]string, 0, len(roles))
	for _, role := range roles {
		if IsValidRole(role) && !seen[role] {
			seen[role] = true
			cleaned = append(cleaned, role)
		}
	}
	sort.SliceStable(cleaned, func(i, j int) bool {
		return RolePriority(cleaned[i]) > RolePriority(cleaned[j])
	})
	return cleaned
}
