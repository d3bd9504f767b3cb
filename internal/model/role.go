package model

// Role is the closed set of account types recognized by the service.  The
// role is carried in the JWT "role" claim and stored on the users table.
// Permission checks go through the capability table below instead of ad hoc
// boolean checks scattered across handlers, so the full permission matrix
// lives (and is tested) in one place.
type Role string

const (
	RoleStudent     Role = "student"
	RoleCoach       Role = "coach"
	RoleCampusAdmin Role = "campus_admin"
	RoleSuperAdmin  Role = "super_admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleCoach, RoleCampusAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether r is a campus or super administrator.  Admins may
// decide on behalf of either party but never count as a party themselves.
func (r Role) IsAdmin() bool {
	return r == RoleCampusAdmin || r == RoleSuperAdmin
}

// Capability names a mutating operation of the reservation core.
type Capability string

const (
	CapRelationPropose   Capability = "relation.propose"
	CapRelationDecide    Capability = "relation.decide"
	CapRelationTerminate Capability = "relation.terminate"
	CapBookingCreate     Capability = "booking.create"
	CapBookingConfirm    Capability = "booking.confirm"
	CapBookingCancel     Capability = "booking.cancel"
	CapCoachChangeReq    Capability = "coachchange.request"
	CapCoachChangeDecide Capability = "coachchange.decide"
)

// capabilities maps each operation to the roles allowed to attempt it.
// Holding a capability is necessary but not sufficient: services still check
// that the actor is the relevant party (counter-party, coach of the
// relation, ...) before mutating anything.
var capabilities = map[Capability]map[Role]bool{
	CapRelationPropose:   {RoleStudent: true, RoleCoach: true},
	CapRelationDecide:    {RoleStudent: true, RoleCoach: true, RoleCampusAdmin: true, RoleSuperAdmin: true},
	CapRelationTerminate: {RoleStudent: true, RoleCoach: true, RoleCampusAdmin: true, RoleSuperAdmin: true},
	CapBookingCreate:     {RoleStudent: true, RoleCoach: true},
	CapBookingConfirm:    {RoleCoach: true},
	CapBookingCancel:     {RoleStudent: true, RoleCoach: true},
	CapCoachChangeReq:    {RoleStudent: true},
	CapCoachChangeDecide: {RoleCoach: true, RoleCampusAdmin: true, RoleSuperAdmin: true},
}

// Can reports whether the role may attempt the given operation.
func (r Role) Can(c Capability) bool {
	return capabilities[c][r]
}
