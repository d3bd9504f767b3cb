package model

import "time"

// Coach-change request statuses; approved and rejected are terminal.
const (
	CoachChangePending  = "pending"
	CoachChangeApproved = "approved"
	CoachChangeRejected = "rejected"
)

// CoachChangeRequest asks to re-point a student's active relation from the
// current coach to a different one.  Approval is an administrative
// re-assignment: the old relation is terminated and a new approved relation
// with the target coach is created in the same transaction, skipping the
// normal pending step.  A student has at most one pending request at a time.
type CoachChangeRequest struct {
	ID             uint64     // coach_change_requests.id
	StudentID      uint64     // coach_change_requests.student_id
	CurrentCoachID uint64     // coach_change_requests.current_coach_id
	TargetCoachID  uint64     // coach_change_requests.target_coach_id
	Reason         string     // coach_change_requests.reason
	Status         string     // coach_change_requests.status
	DecidedBy      *uint64    // coach_change_requests.decided_by (nullable)
	DecidedAt      *time.Time // coach_change_requests.decided_at (nullable)
	CreatedAt      time.Time  // coach_change_requests.created_at
}

// CanDecide reports whether the user may decide this request: the current
// coach, the target coach, or an administrator.
func (r *CoachChangeRequest) CanDecide(u *User) bool {
	return u.ID == r.CurrentCoachID || u.ID == r.TargetCoachID || u.Role.IsAdmin()
}
