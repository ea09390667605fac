// Package policy is the single source of truth for authorization decisions.
// It knows nothing about HTTP: callers hand it plain (role, actor, owner,
// action) tuples and act on the returned decision.
package policy

// Roles, from most to least privileged.
const (
	RoleAdmin  = "admin"
	RoleAuthor = "author"
	RoleUser   = "user"
	RoleViewer = "viewer"
)

type Action string

const (
	ActionRead           Action = "read"
	ActionCreate         Action = "create"
	ActionUpdate         Action = "update"
	ActionDelete         Action = "delete"
	ActionCheckIn        Action = "checkin"
	ActionManageAccounts Action = "manage_accounts"
	ActionManageConfig   Action = "manage_config"
	ActionBackup         Action = "backup"
)

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleAuthor, RoleUser, RoleViewer:
		return true
	}
	return false
}

// Decide evaluates whether actorID with actorRole may perform action on a
// resource owned by ownerID. ownerID is ignored for actions that are not
// tied to a concrete resource (create, account management, backup).
//
// Creation is deliberately restricted to admin and author: plain users and
// viewers read but never author new resources.
func Decide(actorRole, actorID, ownerID string, action Action) Decision {
	if actorRole == RoleAdmin {
		return allow()
	}

	switch action {
	case ActionRead:
		if ValidRole(actorRole) {
			return allow()
		}
		return deny("unknown role")

	case ActionCreate:
		if actorRole == RoleAuthor {
			return allow()
		}
		return deny("role may not create resources")

	case ActionUpdate, ActionDelete:
		if actorRole != RoleAuthor {
			return deny("role may not modify resources")
		}
		if actorID != ownerID {
			return deny("insufficient ownership")
		}
		return allow()

	case ActionCheckIn:
		switch actorRole {
		case RoleAuthor, RoleUser:
			return allow()
		}
		return deny("role may not check in")

	case ActionManageAccounts, ActionManageConfig, ActionBackup:
		return deny("admin only")
	}

	return deny("unknown action")
}

// OwnerScoped reports whether listings for the role must be narrowed to the
// actor's own resources instead of denied outright.
func OwnerScoped(actorRole string) bool {
	return actorRole == RoleAuthor
}
