// Package access holds the capability predicates that gate every state
// transition. Predicates are pure functions of the actor's role and an
// optional delegation record.
package access

import (
	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/domain/user"
)

type Capability string

const (
	CapCreateGatePass     Capability = "create_gatepass"
	CapApproveGatePass    Capability = "approve_gatepass"
	CapViewAllGatePasses  Capability = "view_all_gatepasses"
	CapManagePermissions  Capability = "manage_permissions"
	CapManageAssets       Capability = "manage_assets"
	CapViewAssetHistory   Capability = "view_asset_history"
	CapManageEvents       Capability = "manage_events"
	CapActOnOwnAssignment Capability = "act_on_own_assignment"
	CapScanPasses         Capability = "scan_passes"
)

// Actor is the authenticated caller as supplied by the identity provider.
type Actor struct {
	UserID uuid.UUID
	Role   user.Role
}

func (a Actor) IsAdministrator() bool { return a.Role == user.RoleAdministrator }

func (a Actor) isManager() bool {
	return a.Role == user.RoleAdministrator || a.Role == user.RoleCoordinator
}

// CanCreate: administrators, coordinators, or a user holding a create delegation.
func CanCreate(a Actor, d *user.GatePassDelegation) bool {
	if a.isManager() {
		return true
	}
	return d != nil && d.UserID == a.UserID && d.CanCreateGatePass
}

func CanApprove(a Actor) bool { return a.isManager() }

func CanViewAll(a Actor) bool { return a.isManager() }

func CanManagePermissions(a Actor) bool { return a.IsAdministrator() }

// CanManageAssets covers assign, mark lost, delete and maintenance records.
func CanManageAssets(a Actor) bool { return a.IsAdministrator() }

// CanManageEvents covers the event directory entries passes hang off.
func CanManageEvents(a Actor) bool { return a.isManager() }

// CanScanPasses: gate staff. Volunteers man the gates at events.
func CanScanPasses(a Actor) bool {
	return a.isManager() || a.Role == user.RoleVolunteer
}

// CanViewAssetHistory: administrators, or anyone who has held the asset.
func CanViewAssetHistory(a Actor, priorAssignees []uuid.UUID) bool {
	if a.IsAdministrator() {
		return true
	}
	for _, id := range priorAssignees {
		if id == a.UserID {
			return true
		}
	}
	return false
}

// CanViewVisitorPass: managers see every pass, everyone else only their own.
func CanViewVisitorPass(a Actor, createdBy uuid.UUID) bool {
	return a.isManager() || (a.UserID != uuid.Nil && a.UserID == createdBy)
}

// CanActOnAssignment: the assignee, or an administrator acting for them.
func CanActOnAssignment(a Actor, assigneeID uuid.UUID) bool {
	return a.IsAdministrator() || (a.UserID != uuid.Nil && a.UserID == assigneeID)
}
