package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/mertz/schooladmin/internal/app/models"
	"github.com/mertz/schooladmin/internal/app/models/dto"
	"github.com/mertz/schooladmin/internal/pkg/apperrors"
	"github.com/mertz/schooladmin/internal/pkg/email"
	"github.com/mertz/schooladmin/internal/pkg/filestorage"
	"github.com/mertz/schooladmin/internal/pkg/identity"
	"github.com/mertz/schooladmin/internal/pkg/logger"
)

// studentStore is the subset of StudentRepository the services depend on
type studentStore interface {
	CreateStudent(ctx context.Context, student *models.Student) (*models.Student, error)
	GetByID(ctx context.Context, id, schoolID int64) (*models.Student, error)
	GetByIDs(ctx context.Context, ids []int64, schoolID int64) ([]*models.Student, error)
	List(ctx context.Context, schoolID int64, status, search string, offset uint64, limit int) ([]*models.Student, int64, error)
	AdmissionNumberExists(ctx context.Context, schoolID int64, admissionNumber string, excludeID int64) (bool, error)
	UpdateStudent(ctx context.Context, student *models.Student, guardians []*models.Guardian, enrollment *models.Enrollment) error
	DeleteStudent(ctx context.Context, studentID int64, orphanGuardianIDs []int64) error
	AcceptApplication(ctx context.Context, studentID, schoolID int64, admissionNumber string, admissionDate time.Time, identityID int64, enrollment *models.Enrollment) error
	RejectApplication(ctx context.Context, studentID, schoolID int64, metadata map[string]interface{}) error
}

// guardianStore is the subset of GuardianRepository the services depend on
type guardianStore interface {
	FindOrphanCandidates(ctx context.Context, studentID int64) ([]int64, error)
}

// documentStore is the subset of DocumentRepository the services depend on
type documentStore interface {
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	ListForStudent(ctx context.Context, studentID int64) ([]*models.Document, error)
	ListForTeacher(ctx context.Context, teacherID int64) ([]*models.Document, error)
}

// StudentService handles student profile operations, including the
// cross-service provisioning flow and the bulk deletion coordinator.
type StudentService struct {
	students    studentStore
	guardians   guardianStore
	documents   documentStore
	provisioner identity.Provisioner
	mailer      email.EmailService
	storage     filestorage.FileStorage
}

// NewStudentService creates a new StudentService
func NewStudentService(
	students studentStore,
	guardians guardianStore,
	documents documentStore,
	provisioner identity.Provisioner,
	mailer email.EmailService,
	storage filestorage.FileStorage,
) *StudentService {
	return &StudentService{
		students:    students,
		guardians:   guardians,
		documents:   documents,
		provisioner: provisioner,
		mailer:      mailer,
		storage:     storage,
	}
}

// CreateStudent creates an admitted student profile together with a remote
// identity account. The order is fixed: validate and pre-check locally,
// provision the identity, then commit the local transaction. A local failure
// after provisioning triggers a compensating identity deletion.
func (s *StudentService) CreateStudent(ctx context.Context, schoolID int64, req *dto.CreateStudentRequest) (*models.Student, error) {
	guardians, err := deriveGuardians(schoolID, req.Guardians, req.ParentInfo)
	if err != nil {
		return nil, err
	}

	exists, err := s.students.AdmissionNumberExists(ctx, schoolID, req.AdmissionNumber, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrAdmissionNumberExists
	}

	username := identity.GenerateUsername(req.FirstName, req.LastName)
	password := identity.GenerateTemporaryPassword()

	user, err := s.provisioner.CreateUserForStudent(ctx, &identity.CreateUserRequest{
		Username:  username,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
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

	student := &models.Student{
		SchoolID:           schoolID,
		AdmissionNumber:    &req.AdmissionNumber,
		AdmissionDate:      &admissionDate,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              &req.Email,
		Phone:              &req.Phone,
		DateOfBirth:        req.DateOfBirth,
		Gender:             req.Gender,
		Address:            req.Address,
		Status:             models.StatusAccepted,
		ExternalIdentityID: &user.ID,
		Guardians:          guardians,
		Enrollment:         enrollmentFromInput(req.Enrollment),
		Documents:          documentsFromInput(req.Documents, 0),
	}

	created, err := s.students.CreateStudent(ctx, student)
	if err != nil {
		return nil, compensateProvisioning(ctx, s.provisioner, user.ID, err,
			"student record creation failed after identity provisioning")
	}

	if mailErr := s.mailer.SendCredentialsEmail(req.Email, req.FirstName+" "+req.LastName, username, password); mailErr != nil {
		logger.Warn().Err(mailErr).Int64("studentID", created.ID).Msg("Failed to send credentials email")
	}

	return created, nil
}

// GetStudent retrieves a student with relations, scoped to the school
func (s *StudentService) GetStudent(ctx context.Context, schoolID, studentID int64) (*models.Student, error) {
	return s.students.GetByID(ctx, studentID, schoolID)
}

// ListStudents retrieves a filtered student page plus the total count
func (s *StudentService) ListStudents(ctx context.Context, schoolID int64, status, search string, offset uint64, limit int) ([]*models.Student, int64, error) {
	return s.students.List(ctx, schoolID, status, search, offset, limit)
}

// UpdateStudent applies a patch to a student profile. Identity and status
// fields are not touched here; guardians and enrollment are reconciled when
// present on the request.
func (s *StudentService) UpdateStudent(ctx context.Context, schoolID, studentID int64, req *dto.UpdateStudentRequest) (*models.Student, error) {
	student, err := s.students.GetByID(ctx, studentID, schoolID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		student.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		student.LastName = *req.LastName
	}
	if req.Email != nil {
		student.Email = req.Email
	}
	if req.Phone != nil {
		student.Phone = req.Phone
	}
	if req.DateOfBirth != nil {
		student.DateOfBirth = req.DateOfBirth
	}
	if req.Gender != nil {
		student.Gender = req.Gender
	}
	if req.Address != nil {
		student.Address = req.Address
	}

	var guardians []*models.Guardian
	if req.Guardians != nil {
		guardians, err = deriveGuardians(schoolID, req.Guardians, nil)
		if err != nil {
			return nil, err
		}
	}

	if err := s.students.UpdateStudent(ctx, student, guardians, enrollmentFromInput(req.Enrollment)); err != nil {
		return nil, err
	}
	return s.students.GetByID(ctx, studentID, schoolID)
}

// DeleteStudents deletes a batch of students and their identity accounts.
// Every id must resolve within the school or nothing is deleted. Items are
// then processed independently: the local deletion runs in its own
// transaction and the identity deletion follows it, so one failed item never
// rolls back another. Outcomes are collected into a report rather than
// aborting the batch.
func (s *StudentService) DeleteStudents(ctx context.Context, schoolID int64, ids []int64) (*dto.BulkDeleteReport, error) {
	students, err := s.students.GetByIDs(ctx, ids, schoolID)
	if err != nil {
		return nil, err
	}
	if missing := missingIDs(ids, studentIDSet(students)); len(missing) > 0 {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("students not found: %v", missing))
	}

	report := dto.NewBulkDeleteReport()
	for _, student := range students {
		orphans, err := s.guardians.FindOrphanCandidates(ctx, student.ID)
		if err != nil {
			report.FailedProfileDeletions = append(report.FailedProfileDeletions,
				dto.FailedDeletion{ID: student.ID, Reason: err.Error()})
			continue
		}

		if err := s.students.DeleteStudent(ctx, student.ID, orphans); err != nil {
			report.FailedProfileDeletions = append(report.FailedProfileDeletions,
				dto.FailedDeletion{ID: student.ID, Reason: err.Error()})
			continue
		}
		report.DeletedProfiles = append(report.DeletedProfiles, student.ID)

		// Applications that were never accepted have no identity to remove
		if student.ExternalIdentityID == nil {
			continue
		}
		if err := s.provisioner.DeleteUser(ctx, *student.ExternalIdentityID); err != nil {
			logger.Warn().Err(err).Int64("studentID", student.ID).Int64("identityId", *student.ExternalIdentityID).
				Msg("Identity deletion failed during bulk delete, identity orphaned")
			report.FailedIdentityDeletions = append(report.FailedIdentityDeletions,
				dto.FailedDeletion{ID: student.ID, Reason: err.Error()})
			continue
		}
		report.DeletedIdentities = append(report.DeletedIdentities, *student.ExternalIdentityID)
	}

	report.Finalize()
	logger.Info().Int64("schoolID", schoolID).Int("requested", len(ids)).
		Int("deleted", len(report.DeletedProfiles)).Str("status", string(report.Status)).
		Msg("Bulk student deletion finished")
	return report, nil
}

// AddDocument stores an uploaded file and records its metadata for a student
func (s *StudentService) AddDocument(ctx context.Context, schoolID, studentID, uploadedBy int64, fileHeader *multipart.FileHeader, documentType string) (*models.Document, error) {
	if _, err := s.students.GetByID(ctx, studentID, schoolID); err != nil {
		return nil, err
	}

	storageKey, err := s.storage.SaveFileWithPath(fileHeader, "students")
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &models.Document{
		StudentID:    &studentID,
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

// ListDocuments retrieves the document metadata of a student
func (s *StudentService) ListDocuments(ctx context.Context, schoolID, studentID int64) ([]*models.Document, error) {
	if _, err := s.students.GetByID(ctx, studentID, schoolID); err != nil {
		return nil, err
	}
	return s.documents.ListForStudent(ctx, studentID)
}

// deriveGuardians turns either an explicit guardian list or the structured
// parent fields into guardian models. At least one valid guardian must come
// out of it; a guardian needs both a name and a phone number.
func deriveGuardians(schoolID int64, inputs []dto.GuardianInput, parents *dto.ParentInfo) ([]*models.Guardian, error) {
	guardians := make([]*models.Guardian, 0, 3)

	for _, in := range inputs {
		if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.Phone) == "" {
			continue
		}
		relation := models.GuardianRelation(strings.ToUpper(strings.TrimSpace(in.Relation)))
		if relation == "" {
			relation = models.RelationGuardian
		}
		guardians = append(guardians, &models.Guardian{
			SchoolID:  schoolID,
			FirstName: strings.TrimSpace(in.FirstName),
			LastName:  strings.TrimSpace(in.LastName),
			Phone:     strings.TrimSpace(in.Phone),
			Email:     in.Email,
			Relation:  relation,
		})
	}

	if len(guardians) == 0 && parents != nil {
		if g := guardianFromNamePhone(schoolID, parents.FatherName, parents.FatherPhone, models.RelationFather); g != nil {
			guardians = append(guardians, g)
		}
		if g := guardianFromNamePhone(schoolID, parents.MotherName, parents.MotherPhone, models.RelationMother); g != nil {
			guardians = append(guardians, g)
		}
		relation := models.RelationGuardian
		if label := strings.TrimSpace(parents.GuardianRelation); label != "" {
			relation = models.GuardianRelation(strings.ToUpper(label))
		}
		if g := guardianFromNamePhone(schoolID, parents.GuardianName, parents.GuardianPhone, relation); g != nil {
			guardians = append(guardians, g)
		}
	}

	if len(guardians) == 0 {
		return nil, apperrors.ErrGuardianRequired
	}
	return guardians, nil
}

// guardianFromNamePhone builds a guardian from a free-form name and a phone.
// The first token of the name becomes the first name, the remaining tokens
// the last name. Entries missing either field derive nothing.
func guardianFromNamePhone(schoolID int64, name, phone string, relation models.GuardianRelation) *models.Guardian {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" || phone == "" {
		return nil
	}

	tokens := strings.Fields(name)
	firstName := tokens[0]
	lastName := strings.Join(tokens[1:], " ")

	return &models.Guardian{
		SchoolID:  schoolID,
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		Relation:  relation,
	}
}

func enrollmentFromInput(in *dto.EnrollmentInput) *models.Enrollment {
	if in == nil {
		return nil
	}
	return &models.Enrollment{
		ClassID:      in.ClassID,
		SectionID:    in.SectionID,
		AcademicYear: in.AcademicYear,
		RollNumber:   in.RollNumber,
	}
}

func documentsFromInput(inputs []dto.DocumentInput, uploadedBy int64) []*models.Document {
	if len(inputs) == 0 {
		return nil
	}
	docs := make([]*models.Document, 0, len(inputs))
	for _, in := range inputs {
		docs = append(docs, &models.Document{
			Name:         in.Name,
			DocumentType: strings.ToUpper(in.DocumentType),
			StorageKey:   in.StorageKey,
			MimeType:     in.MimeType,
			FileSize:     in.FileSize,
			UploadedBy:   uploadedBy,
		})
	}
	return docs
}

func studentIDSet(students []*models.Student) map[int64]struct{} {
	set := make(map[int64]struct{}, len(students))
	for _, s := range students {
		set[s.ID] = struct{}{}
	}
	return set
}

// missingIDs returns the requested ids that did not resolve, de-duplicated
func missingIDs(requested []int64, found map[int64]struct{}) []int64 {
	var missing []int64
	seen := make(map[int64]struct{}, len(requested))
	for _, id := range requested {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
