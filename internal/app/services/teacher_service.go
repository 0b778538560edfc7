package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/mertz/schooladmin/internal/app/models"
	"github.com/mertz/schooladmin/internal/app/models/dto"
	"github.com/mertz/schooladmin/internal/pkg/apperrors"
	"github.com/mertz/schooladmin/internal/pkg/email"
	"github.com/mertz/schooladmin/internal/pkg/filestorage"
	"github.com/mertz/schooladmin/internal/pkg/identity"
	"github.com/mertz/schooladmin/internal/pkg/logger"
)

// teacherStore is the subset of TeacherRepository the services depend on
type teacherStore interface {
	CreateTeacher(ctx context.Context, teacher *models.Teacher) (*models.Teacher, error)
	GetByID(ctx context.Context, id, schoolID int64) (*models.Teacher, error)
	GetByIDs(ctx context.Context, ids []int64, schoolID int64) ([]*models.Teacher, error)
	List(ctx context.Context, schoolID int64, search string, offset uint64, limit int) ([]*models.Teacher, int64, error)
	EmployeeNumberExists(ctx context.Context, schoolID int64, employeeNumber string, excludeID int64) (bool, error)
	UpdateTeacher(ctx context.Context, teacher *models.Teacher) error
	DeleteTeacher(ctx context.Context, teacherID int64) error
}

// TeacherService handles teacher profile operations. Teachers follow the same
// provisioning flow as directly created students, without the application
// lifecycle and without guardians.
type TeacherService struct {
	teachers    teacherStore
	documents   documentStore
	provisioner identity.Provisioner
	mailer      email.EmailService
	storage     filestorage.FileStorage
}

// NewTeacherService creates a new TeacherService
func NewTeacherService(
	teachers teacherStore,
	documents documentStore,
	provisioner identity.Provisioner,
	mailer email.EmailService,
	storage filestorage.FileStorage,
) *TeacherService {
	return &TeacherService{
		teachers:    teachers,
		documents:   documents,
		provisioner: provisioner,
		mailer:      mailer,
		storage:     storage,
	}
}

// CreateTeacher creates a teacher profile together with a remote identity
// account: pre-check locally, provision the identity, commit the local
// transaction, compensate the identity if that transaction fails.
func (s *TeacherService) CreateTeacher(ctx context.Context, schoolID int64, req *dto.CreateTeacherRequest) (*models.Teacher, error) {
	exists, err := s.teachers.EmployeeNumberExists(ctx, schoolID, req.EmployeeNumber, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmployeeNumberExists
	}

	username := identity.GenerateUsername(req.FirstName, req.LastName)
	password := identity.GenerateTemporaryPassword()

	user, err := s.provisioner.CreateUserForTeacher(ctx, &identity.CreateUserRequest{
		Username:  username,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		SchoolID:  schoolID,
		RoleName:  models.IdentityRoleTeacher,
	})
	if err != nil {
		return nil, err
	}

	teacher := &models.Teacher{
		SchoolID:           schoolID,
		EmployeeNumber:     req.EmployeeNumber,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		Phone:              req.Phone,
		Qualification:      req.Qualification,
		JoiningDate:        req.JoiningDate,
		ExternalIdentityID: &user.ID,
		Documents:          documentsFromInput(req.Documents, 0),
	}

	created, err := s.teachers.CreateTeacher(ctx, teacher)
	if err != nil {
		return nil, compensateProvisioning(ctx, s.provisioner, user.ID, err,
			"teacher record creation failed after identity provisioning")
	}

	if mailErr := s.mailer.SendCredentialsEmail(req.Email, req.FirstName+" "+req.LastName, username, password); mailErr != nil {
		logger.Warn().Err(mailErr).Int64("teacherID", created.ID).Msg("Failed to send credentials email")
	}

	return created, nil
}

// GetTeacher retrieves a teacher with documents, scoped to the school
func (s *TeacherService) GetTeacher(ctx context.Context, schoolID, teacherID int64) (*models.Teacher, error) {
	return s.teachers.GetByID(ctx, teacherID, schoolID)
}

// ListTeachers retrieves a teacher page plus the total count
func (s *TeacherService) ListTeachers(ctx context.Context, schoolID int64, search string, offset uint64, limit int) ([]*models.Teacher, int64, error) {
	return s.teachers.List(ctx, schoolID, search, offset, limit)
}

// UpdateTeacher applies a patch to a teacher profile. The identity reference
// is never touched here.
func (s *TeacherService) UpdateTeacher(ctx context.Context, schoolID, teacherID int64, req *dto.UpdateTeacherRequest) (*models.Teacher, error) {
	teacher, err := s.teachers.GetByID(ctx, teacherID, schoolID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		teacher.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		teacher.LastName = *req.LastName
	}
	if req.Email != nil {
		teacher.Email = *req.Email
	}
	if req.Phone != nil {
		teacher.Phone = *req.Phone
	}
	if req.Qualification != nil {
		teacher.Qualification = req.Qualification
	}
	if req.JoiningDate != nil {
		teacher.JoiningDate = req.JoiningDate
	}

	if err := s.teachers.UpdateTeacher(ctx, teacher); err != nil {
		return nil, err
	}
	return s.teachers.GetByID(ctx, teacherID, schoolID)
}

// DeleteTeachers deletes a batch of teachers and their identity accounts.
// The same contract as student bulk deletion: all ids must resolve up front,
// items are processed independently afterwards, and the outcomes land in a
// report instead of aborting the batch.
func (s *TeacherService) DeleteTeachers(ctx context.Context, schoolID int64, ids []int64) (*dto.BulkDeleteReport, error) {
	teachers, err := s.teachers.GetByIDs(ctx, ids, schoolID)
	if err != nil {
		return nil, err
	}
	if missing := missingIDs(ids, teacherIDSet(teachers)); len(missing) > 0 {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("teachers not found: %v", missing))
	}

	report := dto.NewBulkDeleteReport()
	for _, teacher := range teachers {
		if err := s.teachers.DeleteTeacher(ctx, teacher.ID); err != nil {
			report.FailedProfileDeletions = append(report.FailedProfileDeletions,
				dto.FailedDeletion{ID: teacher.ID, Reason: err.Error()})
			continue
		}
		report.DeletedProfiles = append(report.DeletedProfiles, teacher.ID)

		if teacher.ExternalIdentityID == nil {
			continue
		}
		if err := s.provisioner.DeleteUser(ctx, *teacher.ExternalIdentityID); err != nil {
			logger.Warn().Err(err).Int64("teacherID", teacher.ID).Int64("identityId", *teacher.ExternalIdentityID).
				Msg("Identity deletion failed during bulk delete, identity orphaned")
			report.FailedIdentityDeletions = append(report.FailedIdentityDeletions,
				dto.FailedDeletion{ID: teacher.ID, Reason: err.Error()})
			continue
		}
		report.DeletedIdentities = append(report.DeletedIdentities, *teacher.ExternalIdentityID)
	}

	report.Finalize()
	logger.Info().Int64("schoolID", schoolID).Int("requested", len(ids)).
		Int("deleted", len(report.DeletedProfiles)).Str("status", string(report.Status)).
		Msg("Bulk teacher deletion finished")
	return report, nil
}

// AddDocument stores an uploaded file and records its metadata for a teacher
func (s *TeacherService) AddDocument(ctx context.Context, schoolID, teacherID, uploadedBy int64, fileHeader *multipart.FileHeader, documentType string) (*models.Document, error) {
	if _, err := s.teachers.GetByID(ctx, teacherID, schoolID); err != nil {
		return nil, err
	}

	storageKey, err := s.storage.SaveFileWithPath(fileHeader, "teachers")
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &models.Document{
		TeacherID:    &teacherID,
		Name:         fileHeader.Filename,
		DocumentType: strings.ToUpper(documentType),
		StorageKey:   storageKey,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		FileSize:     fileHeader.Size,
		UploadedBy:   uploadedBy,
	}

	created, err := s.documents.Create(ctx, doc)
	if err != nil {
		if cleanupErr := s.storage.DeleteFile(storageKey); cleanupErr != nil {
			logger.Warn().Err(cleanupErr).Str("storageKey", storageKey).Msg("Failed to remove stored file after metadata insert failure")
		}
		return nil, err
	}
	return created, nil
}

// ListDocuments retrieves the document metadata of a teacher
func (s *TeacherService) ListDocuments(ctx context.Context, schoolID, teacherID int64) ([]*models.Document, error) {
	if _, err := s.teachers.GetByID(ctx, teacherID, schoolID); err != nil {
		return nil, err
	}
	return s.documents.ListForTeacher(ctx, teacherID)
}

func teacherIDSet(teachers []*models.Teacher) map[int64]struct{} {
	set := make(map[int64]struct{}, len(teachers))
	for _, t := range teachers {
		set[t.ID] = struct{}{}
	}
	return set
}
