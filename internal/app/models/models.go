package models

// RoleType defines the platform staff role type
type RoleType string

const (
	RoleSuperAdmin  RoleType = "SUPERADMIN"
	RoleSchoolAdmin RoleType = "SCHOOL_ADMIN"
)

// Identity role names used when provisioning accounts in the external
// identity service.
const (
	IdentityRoleStudent = "STUDENT"
	IdentityRoleTeacher = "TEACHER"
)

// ApplicationStatus is the closed set of admission application states.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "PENDING"
	StatusAccepted ApplicationStatus = "ACCEPTED"
	StatusRejected ApplicationStatus = "REJECTED"
)

// IsValid reports whether the value belongs to the closed set
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether the status may move to target. Only PENDING
// records transition; ACCEPTED and REJECTED are terminal.
func (s ApplicationStatus) CanTransition(target ApplicationStatus) bool {
	if s != StatusPending {
		return false
	}
	return target == StatusAccepted || target == StatusRejected
}

// GuardianRelation labels a guardian link
type GuardianRelation string

const (
	RelationFather   GuardianRelation = "FATHER"
	RelationMother   GuardianRelation = "MOTHER"
	RelationGuardian GuardianRelation = "GUARDIAN"
)
