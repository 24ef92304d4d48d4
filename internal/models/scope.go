package models

// Scope restricts which listings a caller may see.
type Scope int

const (
	ScopePublic Scope = iota
	ScopeAdmin
	ScopeAgent
	ScopeAgency
	ScopeFavorites
)

func (s Scope) String() string {
	switch s {
	case ScopeAdmin:
		return "admin"
	case ScopeAgent:
		return "agent"
	case ScopeAgency:
		return "agency"
	case ScopeFavorites:
		return "favorites"
	default:
		return "public"
	}
}

// ApplyScope overrides the scoping fields of f for caller. Caller-supplied
// agent_id/agency_id narrow a public query but never widen a restricted one.
func ApplyScope(f ListingFilter, scope Scope, caller *User) (ListingFilter, error) {
	switch scope {
	case ScopeAdmin:
		if !caller.IsAdmin() {
			return f, ErrForbidden
		}
	case ScopeAgent:
		if caller == nil {
			return f, ErrUnauthorized
		}
		f.AgentID = caller.ID
	case ScopeAgency:
		if caller == nil {
			return f, ErrUnauthorized
		}
		if caller.AgencyID == nil || *caller.AgencyID == "" {
			return f, ErrNoAgency
		}
		f.AgencyID = *caller.AgencyID
	case ScopeFavorites:
		if caller == nil {
			return f, ErrUnauthorized
		}
		f.FavoritedBy = caller.ID
	default:
		f.Statuses = PublicStatuses
	}
	return f, nil
}
