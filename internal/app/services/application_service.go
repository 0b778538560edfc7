package services

import (
	"context"
	"errors"
	"time"

	"github.com/mertz/schooladmin/internal/app/models"
	"github.com/mertz/schooladmin/internal/app/models/dto"
	"github.com/mertz/schooladmin/internal/pkg/apperrors"
	"github.com/mertz/schooladmin/internal/pkg/email"
	"github.com/mertz/schooladmin/internal/pkg/identity"
	"github.com/mertz/schooladmin/internal/pkg/logger"
)

// schoolStore is the subset of SchoolRepository the services depend on
type schoolStore interface {
	GetByID(ctx context.Context, id int64) (*models.School, error)
}

// ApplicationService handles the admission application lifecycle. An
// application is a student row in PENDING state with no identity; accepting
// it runs the same provisioning flow as direct creation, rejecting it only
// records metadata locally.
type ApplicationService struct {
	students    studentStore
	schools     schoolStore
	provisioner identity.Provisioner
	mailer      email.EmailService
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(students studentStore, schools schoolStore, provisioner identity.Provisioner, mailer email.EmailService) *ApplicationService {
	return &ApplicationService{
		students:    students,
		schools:     schools,
		provisioner: provisioner,
		mailer:      mailer,
	}
}

// SubmitApplication records a public admission application. No admission
// number is assigned and no identity is provisioned; the record starts
// PENDING and waits for a decision.
func (s *ApplicationService) SubmitApplication(ctx context.Context, req *dto.SubmitApplicationRequest) (*models.Student, error) {
	if _, err := s.schools.GetByID(ctx, req.SchoolID); err != nil {
		return nil, err
	}

	guardians, err := deriveGuardians(req.SchoolID, req.Guardians, req.ParentInfo)
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		SchoolID:    req.SchoolID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Address:     req.Address,
		Status:      models.StatusPending,
		Guardians:   guardians,
	}
	if req.Email != "" {
		student.Email = &req.Email
	}
	if req.Phone != "" {
		student.Phone = &req.Phone
	}

	created, err := s.students.CreateStudent(ctx, student)
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("applicationID", created.ID).Int64("schoolID", req.SchoolID).Msg("Admission application submitted")
	return created, nil
}

// AcceptApplication promotes a PENDING application to an admitted student.
// The applicant must have contact details on file, the admission number must
// be free, and only then is the identity provisioned. The local status flip,
// admission fields and initial enrollment commit as one transaction; if that
// transaction fails the freshly created identity is compensated away. This
// includes losing a concurrent race on the status flip, so the loser's
// identity does not leak.
func (s *ApplicationService) AcceptApplication(ctx context.Context, schoolID, applicationID int64, req *dto.AcceptApplicationRequest) (*models.Student, error) {
	app, err := s.students.GetByID(ctx, applicationID, schoolID)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, err
	}
	// Decided applications are indistinguishable from absent ones to callers
	if !app.Status.CanTransition(models.StatusAccepted) {
		return nil, apperrors.ErrApplicationNotFound
	}

	if app.Email == nil || *app.Email == "" || app.Phone == nil || *app.Phone == "" {
		return nil, apperrors.ErrContactInfoRequired
	}

	exists, err := s.students.AdmissionNumberExists(ctx, schoolID, req.AdmissionNumber, applicationID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrAdmissionNumberExists
	}

	username := identity.GenerateUsername(app.FirstName, app.LastName)
	password := identity.GenerateTemporaryPassword()

	user, err := s.provisioner.CreateUserForStudent(ctx, &identity.CreateUserRequest{
		Username:  username,
		Email:     *app.Email,
		Phone:     *app.Phone,
		Password:  password,
		FirstName: app.FirstName,
		LastName:  app.LastName,
		SchoolID:  schoolID,
		RoleName:  models.IdentityRoleStudent,
	})
	if err != nil {
		return nil, err
	}

	admissionDate := time.Now()
	if req.AdmissionDate != nil {
		admissionDate = *req.AdmissionDate
	}
	enrollment := &models.Enrollment{
		ClassID:      req.ClassID,
		SectionID:    req.SectionID,
		AcademicYear: req.AcademicYear,
		RollNumber:   req.RollNumber,
	}

	err = s.students.AcceptApplication(ctx, applicationID, schoolID, req.AdmissionNumber, admissionDate, user.ID, enrollment)
	if err != nil {
		return nil, compensateProvisioning(ctx, s.provisioner, user.ID, err,
			"application acceptance failed after identity provisioning")
	}

	if mailErr := s.mailer.SendCredentialsEmail(*app.Email, app.FirstName+" "+app.LastName, username, password); mailErr != nil {
		logger.Warn().Err(mailErr).Int64("applicationID", applicationID).Msg("Failed to send credentials email")
	}

	logger.Info().Int64("applicationID", applicationID).Int64("identityId", user.ID).Msg("Admission application accepted")
	return s.students.GetByID(ctx, applicationID, schoolID)
}

// RejectApplication marks a PENDING application as REJECTED. Nothing leaves
// the local store: no identity exists yet, so there is nothing to undo. The
// reason, the deciding user and the decision time are recorded on the row.
func (s *ApplicationService) RejectApplication(ctx context.Context, schoolID, applicationID, decidedBy int64, req *dto.RejectApplicationRequest) (*models.Student, error) {
	metadata := map[string]interface{}{
		"rejectionReason": req.Reason,
		"rejectedBy":      decidedBy,
		"rejectedAt":      time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.students.RejectApplication(ctx, applicationID, schoolID, metadata); err != nil {
		return nil, err
	}

	logger.Info().Int64("applicationID", applicationID).Int64("decidedBy", decidedBy).Msg("Admission application rejected")
	return s.students.GetByID(ctx, applicationID, schoolID)
}

// ListApplications retrieves a page of PENDING applications for a school
func (s *ApplicationService) ListApplications(ctx context.Context, schoolID int64, offset uint64, limit int) ([]*models.Student, int64, error) {
	return s.students.List(ctx, schoolID, string(models.StatusPending), "", offset, limit)
}
