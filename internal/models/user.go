package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer   Role = "customer"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func ParseRole(s string) (Role, error) {
	return parseEnum("role", s, RoleCustomer, RoleAdmin, RoleSuperAdmin)
}

// Admin and super admin are both staff
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

func ParseUserStatus(s string) (UserStatus, error) {
	return parseEnum("user status", s, UserStatusActive, UserStatusInactive, UserStatusSuspended)
}

type KycStatus string

const (
	KycStatusPending  KycStatus = "pending"
	KycStatusVerified KycStatus = "verified"
	KycStatusRejected KycStatus = "rejected"
)

func ParseKycStatus(s string) (KycStatus, error) {
	return parseEnum("kyc status", s, KycStatusPending, KycStatusVerified, KycStatusRejected)
}

type UserType string

const (
	UserTypePersonal UserType = "personal"
	UserTypeBusiness UserType = "business"
)

func ParseUserType(s string) (UserType, error) {
	return parseEnum("user type", s, UserTypePersonal, UserTypeBusiness)
}

type User struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	HashedPassword string     `json:"-"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Phone          string     `json:"phone"`
	Address        string     `json:"address"`
	Country        string     `json:"country"`
	UserType       UserType   `json:"user_type"`
	Role           Role       `json:"role"`
	Status         UserStatus `json:"status"`
	KycStatus      KycStatus  `json:"kyc_status"`
	Notes          string     `json:"notes"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (u User) Actor() Actor {
	return Actor{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// Verified caller identity every ledger operation is performed on behalf of
type Actor struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}
