package model

import "time"

// Relation statuses.  A relation is "active" while pending or approved; the
// uniqueness invariant (one active relation per coach/student pair) only
// covers active rows, so a rejected or terminated pair may apply again.
const (
	RelationPending    = "pending"
	RelationApproved   = "approved"
	RelationRejected   = "rejected"
	RelationTerminated = "terminated"
)

// Which side submitted the relation application.
const (
	AppliedByStudent = "student"
	AppliedByCoach   = "coach"
)

// Relation is a coach/student pairing with a double-opt-in lifecycle: either
// party applies (pending), the counter-party or an admin approves or
// rejects, and an approved relation may later be terminated.  An approved
// relation is what gates booking eligibility.
//
// Fields:
//  ID           – primary key identifier.
//  CoachID      – coach side of the pair.
//  StudentID    – student side of the pair.
//  Status       – lifecycle state (pending, approved, rejected, terminated).
//  AppliedBy    – which side applied (student or coach).
//  Notes        – free-text note from the applicant.
//  AppliedAt    – when the application was submitted.
//  ApprovedAt   – when the relation was approved (nil unless approved).
//  TerminatedAt – when the relation was terminated (nil unless terminated).
type Relation struct {
	ID           uint64     // relations.id
	CoachID      uint64     // relations.coach_id
	StudentID    uint64     // relations.student_id
	Status       string     // relations.status
	AppliedBy    string     // relations.applied_by
	Notes        *string    // relations.notes (nullable)
	AppliedAt    time.Time  // relations.applied_at
	ApprovedAt   *time.Time // relations.approved_at (nullable)
	TerminatedAt *time.Time // relations.terminated_at (nullable)
	CreatedAt    time.Time  // relations.created_at
}

// IsParty reports whether userID is the coach or the student of the relation.
func (r *Relation) IsParty(userID uint64) bool {
	return userID == r.CoachID || userID == r.StudentID
}

// DeciderID returns the user who must decide a pending application: the
// counter-party of whoever applied.
func (r *Relation) DeciderID() uint64 {
	if r.AppliedBy == AppliedByStudent {
		return r.CoachID
	}
	return r.StudentID
}

// Active reports whether the relation still blocks a new application for the
// same pair.
func (r *Relation) Active() bool {
	return r.Status == RelationPending || r.Status == RelationApproved
}
