package model

import "time"

// User mirrors a row of the `users` table.  The reservation core treats user
// records as an external identity reference: it reads them to resolve actors
// and coach rates but never creates or mutates them.  JSON tags are omitted;
// handlers expose their own response shapes.
//
// Fields:
//  ID              – primary key identifier.
//  Email           – unique login email.
//  PasswordHash    – bcrypt hash, used only by the login endpoint.
//  Role            – account type (student, coach, campus_admin, super_admin).
//  RealName        – display name.
//  Phone           – optional contact number.
//  HourlyRateCents – coaching rate in cents; nil for non-coaches.
//  IsActive        – whether the account may act at all.
type User struct {
	ID              uint64     // users.id
	Email           string     // users.email
	PasswordHash    string     // users.password_hash
	Role            Role       // users.role
	RealName        string     // users.real_name
	Phone           *string    // users.phone (nullable)
	HourlyRateCents *uint32    // users.hourly_rate_cents (nullable)
	IsActive        bool       // users.is_active
	CreatedAt       time.Time  // users.created_at
	UpdatedAt       time.Time  // users.updated_at
}
