// Package repository contains the raw-SQL data access layer.  This file
// defines the sentinel errors shared by repositories and services.  Handlers
// translate them into HTTP responses with machine-readable reason codes; the
// mapping is the single place where domain failures meet status codes.
package repository

import "errors"

// Not-found errors, one per entity so handlers can phrase the 404 message.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrRelationNotFound = errors.New("relation not found")
	ErrTableNotFound    = errors.New("table not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrRequestNotFound  = errors.New("coach change request not found")
)

// Authorization errors.
var (
	// ErrForbidden is returned when the actor holds the capability for an
	// operation but is not the relevant party (counter-party, coach of the
	// relation, ...).  Surfaced as 403.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidRole is returned when the actor's role may not attempt the
	// operation at all.  Surfaced as 403.
	ErrInvalidRole = errors.New("role not allowed for this operation")
)

// State-conflict errors, surfaced as 409.
var (
	ErrNotPending              = errors.New("not in pending status")
	ErrNotApproved             = errors.New("not in approved status")
	ErrRelationNotApproved     = errors.New("relation is not approved")
	ErrDuplicateActiveRelation = errors.New("an active relation already exists for this coach and student")
	ErrDuplicatePendingRequest = errors.New("a pending coach change request already exists")
	ErrResourceUnavailable     = errors.New("table is not available for booking")
	ErrTimeConflict            = errors.New("table is already booked for an overlapping time range")
	ErrNoActiveCoach           = errors.New("student has no approved coach relation")
	ErrRateUnavailable         = errors.New("coach has no hourly rate configured")
)

// Client-correctable validation errors, surfaced as 400.
var (
	ErrInvalidTimeRange = errors.New("end time must be after start time and start must be in the future")
	ErrSameCoach        = errors.New("target coach must differ from the current coach")
)
