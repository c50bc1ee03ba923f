package auth

import "github.com/adelferjani/stockparc-backend/pkg/enums"

// Policy is the authorization predicate the movement processor and the
// approval resolver consume. Implementations decide which callers bypass the
// approval queue; services never inspect role strings themselves.
type Policy interface {
	// CanActDirectly reports whether the role may apply the given operation
	// kind without passing through the pending-operation queue.
	CanActDirectly(role enums.ActorRole, kind enums.PendingOperationKind) bool
	// CanResolve reports whether the role may approve or reject pending
	// operations.
	CanResolve(role enums.ActorRole) bool
}

// RolePolicy is the default role-based policy: admins and managers act
// directly and resolve the queue, agents always submit for approval.
type RolePolicy struct{}

func (RolePolicy) CanActDirectly(role enums.ActorRole, _ enums.PendingOperationKind) bool {
	switch role {
	case enums.ActorRoleAdmin, enums.ActorRoleManager:
		return true
	}
	return false
}

func (RolePolicy) CanResolve(role enums.ActorRole) bool {
	switch role {
	case enums.ActorRoleAdmin, enums.ActorRoleManager:
		return true
	}
	return false
}
