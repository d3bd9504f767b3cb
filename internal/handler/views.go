package handler

import (
	"time"

	"github.com/ttcenter/reservation-api/internal/model"
)

// Wire representations of the domain records.  The model structs carry no
// JSON tags on purpose; the shapes below are the API contract.

type userView struct {
	ID              uint64  `json:"id"`
	Email           string  `json:"email"`
	Role            string  `json:"role"`
	RealName        string  `json:"real_name"`
	Phone           *string `json:"phone,omitempty"`
	HourlyRateCents *uint32 `json:"hourly_rate_cents,omitempty"`
}

func newUserView(u *model.User) userView {
	return userView{
		ID:              u.ID,
		Email:           u.Email,
		Role:            string(u.Role),
		RealName:        u.RealName,
		Phone:           u.Phone,
		HourlyRateCents: u.HourlyRateCents,
	}
}

type relationView struct {
	ID           uint64     `json:"id"`
	CoachID      uint64     `json:"coach_id"`
	StudentID    uint64     `json:"student_id"`
	Status       string     `json:"status"`
	AppliedBy    string     `json:"applied_by"`
	Notes        *string    `json:"notes,omitempty"`
	AppliedAt    time.Time  `json:"applied_at"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	TerminatedAt *time.Time `json:"terminated_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func newRelationView(r *model.Relation) relationView {
	return relationView{
		ID:           r.ID,
		CoachID:      r.CoachID,
		StudentID:    r.StudentID,
		Status:       r.Status,
		AppliedBy:    r.AppliedBy,
		Notes:        r.Notes,
		AppliedAt:    r.AppliedAt,
		ApprovedAt:   r.ApprovedAt,
		TerminatedAt: r.TerminatedAt,
		CreatedAt:    r.CreatedAt,
	}
}

type bookingView struct {
	ID            uint64     `json:"id"`
	RelationID    uint64     `json:"relation_id"`
	TableID       uint64     `json:"table_id"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       time.Time  `json:"end_time"`
	DurationHours float64    `json:"duration_hours"`
	FeeCents      uint32     `json:"fee_cents"`
	Status        string     `json:"status"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy   *uint64    `json:"cancelled_by,omitempty"`
	CancelReason  *string    `json:"cancel_reason,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func newBookingView(b *model.Booking) bookingView {
	return bookingView{
		ID:            b.ID,
		RelationID:    b.RelationID,
		TableID:       b.TableID,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		DurationHours: b.DurationHours,
		FeeCents:      b.FeeCents,
		Status:        b.Status,
		ConfirmedAt:   b.ConfirmedAt,
		CancelledAt:   b.CancelledAt,
		CancelledBy:   b.CancelledBy,
		CancelReason:  b.CancelReason,
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt,
	}
}

type tableView struct {
	ID          uint64  `json:"id"`
	CampusID    uint64  `json:"campus_id"`
	Number      string  `json:"number"`
	Name        *string `json:"name,omitempty"`
	Status      string  `json:"status"`
	Description *string `json:"description,omitempty"`
}

func newTableView(t *model.Table) tableView {
	return tableView{
		ID:          t.ID,
		CampusID:    t.CampusID,
		Number:      t.Number,
		Name:        t.Name,
		Status:      t.Status,
		Description: t.Description,
	}
}

type requestView struct {
	ID             uint64     `json:"id"`
	StudentID      uint64     `json:"student_id"`
	CurrentCoachID uint64     `json:"current_coach_id"`
	TargetCoachID  uint64     `json:"target_coach_id"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"`
	DecidedBy      *uint64    `json:"decided_by,omitempty"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func newRequestView(r *model.CoachChangeRequest) requestView {
	return requestView{
		ID:             r.ID,
		StudentID:      r.StudentID,
		CurrentCoachID: r.CurrentCoachID,
		TargetCoachID:  r.TargetCoachID,
		Reason:         r.Reason,
		Status:         r.Status,
		DecidedBy:      r.DecidedBy,
		DecidedAt:      r.DecidedAt,
		CreatedAt:      r.CreatedAt,
	}
}
