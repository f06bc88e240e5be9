package domain

import (
	"strings"
	"time"
)

// MemberStatus represents a member's standing in the union directory.
type MemberStatus string

const (
	MemberStatusMember    MemberStatus = "MEMBER"
	MemberStatusInactive  MemberStatus = "INACTIVE"
	MemberStatusRetired   MemberStatus = "RETIRED"
	MemberStatusSuspended MemberStatus = "SUSPENDED"
)

func (s MemberStatus) String() string { return string(s) }

func (s MemberStatus) IsValid() bool {
	switch s {
	case MemberStatusMember, MemberStatusInactive, MemberStatusRetired, MemberStatusSuspended:
		return true
	}
	return false
}

// EmploymentType classifies a member's employment arrangement.
type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "FULL_TIME"
	EmploymentPartTime EmploymentType = "PART_TIME"
	EmploymentCasual   EmploymentType = "CASUAL"
	EmploymentContract EmploymentType = "CONTRACT"
)

func (t EmploymentType) String() string { return string(t) }

func (t EmploymentType) IsValid() bool {
	switch t {
	case EmploymentFullTime, EmploymentPartTime, EmploymentCasual, EmploymentContract:
		return true
	}
	return false
}

// Member is a union member in the org directory. Email is nullable; members
// without an address are never eligible campaign recipients.
type Member struct {
	ID             string
	OrgID          string
	DepartmentID   *string
	FirstName      string
	LastName       string
	Email          *string
	Status         MemberStatus
	EmploymentType EmploymentType
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName joins first and last name, tolerating either being empty.
func (m Member) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(m.FirstName) + " " + strings.TrimSpace(m.LastName))
}

// HasValidEmail reports whether the member can receive campaign email.
func (m Member) HasValidEmail() bool {
	return m.Email != nil && ValidEmail(*m.Email)
}
