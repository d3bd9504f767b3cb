package model

import "time"

// Table statuses.  Only an active table in the "available" state accepts new
// bookings; the other states are set by campus administration, which owns
// this registry.
const (
	TableAvailable   = "available"
	TableOccupied    = "occupied"
	TableMaintenance = "maintenance"
	TableDisabled    = "disabled"
)

// Table is a physical bookable training table scoped to a campus.  The
// reservation core only reads tables; creation and retirement happen in the
// campus administration system.
//
// Fields:
//  ID          – primary key identifier.
//  CampusID    – owning campus.
//  Number      – table number, unique per campus.
//  Name        – optional display name.
//  Status      – availability state.
//  Description – optional free text.
//  IsActive    – soft-delete flag.
type Table struct {
	ID          uint64    // tables.id
	CampusID    uint64    // tables.campus_id
	Number      string    // tables.number
	Name        *string   // tables.name (nullable)
	Status      string    // tables.status
	Description *string   // tables.description (nullable)
	IsActive    bool      // tables.is_active
	CreatedAt   time.Time // tables.created_at
	UpdatedAt   time.Time // tables.updated_at
}

// Bookable reports whether the table can take a new booking at all,
// independent of time conflicts.
func (t *Table) Bookable() bool {
	return t.IsActive && t.Status == TableAvailable
}

// Campus is the minimal campus reference the core needs when rendering table
// listings.  Campus administration is an external collaborator.
type Campus struct {
	ID       uint64 // campuses.id
	Name     string // campuses.name
	Address  string // campuses.address
	IsActive bool   // campuses.is_active
}
