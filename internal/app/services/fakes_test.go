package services

import (
	"context"
	"time"

	"github.com/mertz/schooladmin/internal/app/models"
	"github.com/mertz/schooladmin/internal/pkg/identity"
)

// fakeStudentStore implements studentStore with overridable function fields
type fakeStudentStore struct {
	createFn            func(ctx context.Context, student *models.Student) (*models.Student, error)
	getByIDFn           func(ctx context.Context, id, schoolID int64) (*models.Student, error)
	getByIDsFn          func(ctx context.Context, ids []int64, schoolID int64) ([]*models.Student, error)
	listFn              func(ctx context.Context, schoolID int64, status, search string, offset uint64, limit int) ([]*models.Student, int64, error)
	admissionExistsFn   func(ctx context.Context, schoolID int64, admissionNumber string, excludeID int64) (bool, error)
	updateFn            func(ctx context.Context, student *models.Student, guardians []*models.Guardian, enrollment *models.Enrollment) error
	deleteFn            func(ctx context.Context, studentID int64, orphanGuardianIDs []int64) error
	acceptApplicationFn func(ctx context.Context, studentID, schoolID int64, admissionNumber string, admissionDate time.Time, identityID int64, enrollment *models.Enrollment) error
	rejectApplicationFn func(ctx context.Context, studentID, schoolID int64, metadata map[string]interface{}) error

	calls []string
}

func (f *fakeStudentStore) CreateStudent(ctx context.Context, student *models.Student) (*models.Student, error) {
	f.calls = append(f.calls, "CreateStudent")
	return f.createFn(ctx, student)
}

func (f *fakeStudentStore) GetByID(ctx context.Context, id, schoolID int64) (*models.Student, error) {
	f.calls = append(f.calls, "GetByID")
	return f.getByIDFn(ctx, id, schoolID)
}

func (f *fakeStudentStore) GetByIDs(ctx context.Context, ids []int64, schoolID int64) ([]*models.Student, error) {
	f.calls = append(f.calls, "GetByIDs")
	return f.getByIDsFn(ctx, ids, schoolID)
}

func (f *fakeStudentStore) List(ctx context.Context, schoolID int64, status, search string, offset uint64, limit int) ([]*models.Student, int64, error) {
	f.calls = append(f.calls, "List")
	return f.listFn(ctx, schoolID, status, search, offset, limit)
}

func (f *fakeStudentStore) AdmissionNumberExists(ctx context.Context, schoolID int64, admissionNumber string, excludeID int64) (bool, error) {
	f.calls = append(f.calls, "AdmissionNumberExists")
	return f.admissionExistsFn(ctx, schoolID, admissionNumber, excludeID)
}

func (f *fakeStudentStore) UpdateStudent(ctx context.Context, student *models.Student, guardians []*models.Guardian, enrollment *models.Enrollment) error {
	f.calls = append(f.calls, "UpdateStudent")
	return f.updateFn(ctx, student, guardians, enrollment)
}

func (f *fakeStudentStore) DeleteStudent(ctx context.Context, studentID int64, orphanGuardianIDs []int64) error {
	f.calls = append(f.calls, "DeleteStudent")
	return f.deleteFn(ctx, studentID, orphanGuardianIDs)
}

func (f *fakeStudentStore) AcceptApplication(ctx context.Context, studentID, schoolID int64, admissionNumber string, admissionDate time.Time, identityID int64, enrollment *models.Enrollment) error {
	f.calls = append(f.calls, "AcceptApplication")
	return f.acceptApplicationFn(ctx, studentID, schoolID, admissionNumber, admissionDate, identityID, enrollment)
}

func (f *fakeStudentStore) RejectApplication(ctx context.Context, studentID, schoolID int64, metadata map[string]interface{}) error {
	f.calls = append(f.calls, "RejectApplication")
	return f.rejectApplicationFn(ctx, studentID, schoolID, metadata)
}

// fakeTeacherStore implements teacherStore
type fakeTeacherStore struct {
	createFn          func(ctx context.Context, teacher *models.Teacher) (*models.Teacher, error)
	getByIDFn         func(ctx context.Context, id, schoolID int64) (*models.Teacher, error)
	getByIDsFn        func(ctx context.Context, ids []int64, schoolID int64) ([]*models.Teacher, error)
	listFn            func(ctx context.Context, schoolID int64, search string, offset uint64, limit int) ([]*models.Teacher, int64, error)
	employeeExistsFn  func(ctx context.Context, schoolID int64, employeeNumber string, excludeID int64) (bool, error)
	updateFn          func(ctx context.Context, teacher *models.Teacher) error
	deleteFn          func(ctx context.Context, teacherID int64) error
}

func (f *fakeTeacherStore) CreateTeacher(ctx context.Context, teacher *models.Teacher) (*models.Teacher, error) {
	return f.createFn(ctx, teacher)
}

func (f *fakeTeacherStore) GetByID(ctx context.Context, id, schoolID int64) (*models.Teacher, error) {
	return f.getByIDFn(ctx, id, schoolID)
}

func (f *fakeTeacherStore) GetByIDs(ctx context.Context, ids []int64, schoolID int64) ([]*models.Teacher, error) {
	return f.getByIDsFn(ctx, ids, schoolID)
}

func (f *fakeTeacherStore) List(ctx context.Context, schoolID int64, search string, offset uint64, limit int) ([]*models.Teacher, int64, error) {
	return f.listFn(ctx, schoolID, search, offset, limit)
}

func (f *fakeTeacherStore) EmployeeNumberExists(ctx context.Context, schoolID int64, employeeNumber string, excludeID int64) (bool, error) {
	return f.employeeExistsFn(ctx, schoolID, employeeNumber, excludeID)
}

func (f *fakeTeacherStore) UpdateTeacher(ctx context.Context, teacher *models.Teacher) error {
	return f.updateFn(ctx, teacher)
}

func (f *fakeTeacherStore) DeleteTeacher(ctx context.Context, teacherID int64) error {
	return f.deleteFn(ctx, teacherID)
}

// fakeGuardianStore implements guardianStore
type fakeGuardianStore struct {
	orphansFn func(ctx context.Context, studentID int64) ([]int64, error)
}

func (f *fakeGuardianStore) FindOrphanCandidates(ctx context.Context, studentID int64) ([]int64, error) {
	if f.orphansFn != nil {
		return f.orphansFn(ctx, studentID)
	}
	return nil, nil
}

// fakeDocumentStore implements documentStore
type fakeDocumentStore struct {
	createFn         func(ctx context.Context, doc *models.Document) (*models.Document, error)
	listForStudentFn func(ctx context.Context, studentID int64) ([]*models.Document, error)
	listForTeacherFn func(ctx context.Context, teacherID int64) ([]*models.Document, error)
}

func (f *fakeDocumentStore) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	return f.createFn(ctx, doc)
}

func (f *fakeDocumentStore) ListForStudent(ctx context.Context, studentID int64) ([]*models.Document, error) {
	return f.listForStudentFn(ctx, studentID)
}

func (f *fakeDocumentStore) ListForTeacher(ctx context.Context, teacherID int64) ([]*models.Document, error) {
	return f.listForTeacherFn(ctx, teacherID)
}

// fakeProvisioner implements identity.Provisioner and records its calls
type fakeProvisioner struct {
	createStudentFn func(ctx context.Context, req *identity.CreateUserRequest) (*identity.User, error)
	createTeacherFn func(ctx context.Context, req *identity.CreateUserRequest) (*identity.User, error)
	deleteFn        func(ctx context.Context, userID int64) error

	createRequests []*identity.CreateUserRequest
	deletedIDs     []int64
	calls          []string
}

func (f *fakeProvisioner) CreateUserForStudent(ctx context.Context, req *identity.CreateUserRequest) (*identity.User, error) {
	f.calls = append(f.calls, "CreateUserForStudent")
	f.createRequests = append(f.createRequests, req)
	if f.createStudentFn != nil {
		return f.createStudentFn(ctx, req)
	}
	return &identity.User{ID: 501, Username: req.Username, Email: req.Email}, nil
}

func (f *fakeProvisioner) CreateUserForTeacher(ctx context.Context, req *identity.CreateUserRequest) (*identity.User, error) {
	f.calls = append(f.calls, "CreateUserForTeacher")
	f.createRequests = append(f.createRequests, req)
	if f.createTeacherFn != nil {
		return f.createTeacherFn(ctx, req)
	}
	return &identity.User{ID: 601, Username: req.Username, Email: req.Email}, nil
}

func (f *fakeProvisioner) DeleteUser(ctx context.Context, userID int64) error {
	f.calls = append(f.calls, "DeleteUser")
	f.deletedIDs = append(f.deletedIDs, userID)
	if f.deleteFn != nil {
		return f.deleteFn(ctx, userID)
	}
	return nil
}

// fakeMailer implements email.EmailService
type fakeMailer struct {
	sendFn func(toEmail, toName, username, temporaryPassword string) error
	sent   []string
}

func (f *fakeMailer) SendCredentialsEmail(toEmail, toName, username, temporaryPassword string) error {
	f.sent = append(f.sent, toEmail)
	if f.sendFn != nil {
		return f.sendFn(toEmail, toName, username, temporaryPassword)
	}
	return nil
}
