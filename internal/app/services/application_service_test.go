package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mertz/schooladmin/internal/app/models"
	"github.com/mertz/schooladmin/internal/app/models/dto"
	"github.com/mertz/schooladmin/internal/pkg/apperrors"
	"github.com/mertz/schooladmin/internal/pkg/identity"
)

type fakeSchoolStore struct {
	getByIDFn func(ctx context.Context, id int64) (*models.School, error)
}

func (f *fakeSchoolStore) GetByID(ctx context.Context, id int64) (*models.School, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return &models.School{ID: id, Name: "Demo School", Code: "DEMO"}, nil
}

func strRef(s string) *string { return &s }

func pendingApplication(id int64) *models.Student {
	return &models.Student{
		ID:        id,
		SchoolID:  1,
		FirstName: "Arda",
		LastName:  "Yilmaz",
		Email:     strRef("arda@example.com"),
		Phone:     strRef("+905551112233"),
		Status:    models.StatusPending,
	}
}

func acceptRequest() *dto.AcceptApplicationRequest {
	return &dto.AcceptApplicationRequest{
		AdmissionNumber: "ADM-2026-001",
		ClassID:         5,
		SectionID:       2,
		AcademicYear:    "2026-2027",
	}
}

func TestSubmitApplicationStartsPendingWithoutIdentity(t *testing.T) {
	var created *models.Student
	store := &fakeStudentStore{
		createFn: func(ctx context.Context, student *models.Student) (*models.Student, error) {
			created = student
			out := *student
			out.ID = 10
			return &out, nil
		},
	}
	provisioner := &fakeProvisioner{}
	svc := NewApplicationService(store, &fakeSchoolStore{}, provisioner, &fakeMailer{})

	app, err := svc.SubmitApplication(context.Background(), &dto.SubmitApplicationRequest{
		SchoolID:  1,
		FirstName: "Arda",
		LastName:  "Yilmaz",
		ParentInfo: &dto.ParentInfo{
			FatherName:  "Kemal Yilmaz",
			FatherPhone: "+905550001",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), app.ID)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Nil(t, created.AdmissionNumber)
	assert.Nil(t, created.ExternalIdentityID)
	assert.Empty(t, provisioner.calls)
	require.Len(t, created.Guardians, 1)
}

func TestSubmitApplicationUnknownSchool(t *testing.T) {
	schools := &fakeSchoolStore{
		getByIDFn: func(ctx context.Context, id int64) (*models.School, error) {
			return nil, apperrors.ErrSchoolNotFound
		},
	}
	svc := NewApplicationService(&fakeStudentStore{}, schools, &fakeProvisioner{}, &fakeMailer{})

	_, err := svc.SubmitApplication(context.Background(), &dto.SubmitApplicationRequest{SchoolID: 99, FirstName: "A", LastName: "B"})
	require.ErrorIs(t, err, apperrors.ErrSchoolNotFound)
}

func TestSubmitApplicationRequiresGuardian(t *testing.T) {
	svc := NewApplicationService(&fakeStudentStore{}, &fakeSchoolStore{}, &fakeProvisioner{}, &fakeMailer{})

	_, err := svc.SubmitApplication(context.Background(), &dto.SubmitApplicationRequest{SchoolID: 1, FirstName: "A", LastName: "B"})
	require.ErrorIs(t, err, apperrors.ErrGuardianRequired)
}

func TestAcceptApplicationHappyPath(t *testing.T) {
	var acceptedIdentityID int64
	store := &fakeStudentStore{
		getByIDFn: func(ctx context.Context, id, schoolID int64) (*models.Student, error) {
			return pendingApplication(id), nil
		},
		admissionExistsFn: func(ctx context.Context, schoolID int64, number string, excludeID int64) (bool, error) {
			assert.Equal(t, int64(10), excludeID)
			return false, nil
		},
		acceptApplicationFn: func(ctx context.Context, studentID, schoolID int64, admissionNumber string, admissionDate time.Time, identityID int64, enrollment *models.Enrollment) error {
			acceptedIdentityID = identityID
			assert.Equal(t, "ADM-2026-001", admissionNumber)
			require.NotNil(t, enrollment)
			assert.Equal(t, int64(5), enrollment.ClassID)
			return nil
		},
	}
	provisioner := &fakeProvisioner{}
	mailer := &fakeMailer{}
	svc := NewApplicationService(store, &fakeSchoolStore{}, provisioner, mailer)

	_, err := svc.AcceptApplication(context.Background(), 1, 10, acceptRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(501), acceptedIdentityID)
	assert.Equal(t, []string{"CreateUserForStudent"}, provisioner.calls)
	assert.Equal(t, []string{"arda@example.com"}, mailer.sent)
}

func TestAcceptApplicationMissingApplication(t *testing.T) {
	store := &fakeStudentStore{
		getByIDFn: func(ctx context.Context, id, schoolID int64) (*models.Student, error) {
			return nil, apperrors.ErrStudentNotFound
		},
	}
	svc := NewApplicationService(store, &fakeSchoolStore{}, &fakeProvisioner{}, &fakeMailer{})

	_, err := svc.AcceptApplication(context.Background(), 1, 10, acceptRequest())
	require.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
}

func TestAcceptApplicationAlreadyDecided(t *testing.T) {
	for _, status := range []models.ApplicationStatus{models.StatusAccepted, models.StatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			store := &fakeStudentStore{
				getByIDFn: func(ctx context.Context, id, schoolID int64) (*models.Student, error) {
					app := pendingApplication(id)
					app.Status = status
					return app, nil
				},
			}
			provisioner := &fakeProvisioner{}
			svc := NewApplicationService(store, &fakeSchoolStore{}, provisioner, &fakeMailer{})

			_, err := svc.AcceptApplication(context.Background(), 1, 10, acceptRequest())
			require.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
			assert.Empty(t, provisioner.calls)
		})
	}
}

func TestAcceptApplicationRequiresContactDetails(t *testing.T) {
	store := &fakeStudentStore{
		getByIDFn: func(ctx context.Context, id, schoolID int64) (*models.Student, error) {
			app := pendingApplication(id)
			app.Phone = nil
			return app, nil
		},
	}
	provisioner := &fakeProvisioner{}
	svc := NewApplicationService(store, &fakeSchoolStore{}, provisioner, &fakeMailer{})

	_, err := svc.AcceptApplication(context.Background(), 1, 10, acceptRequest())
	require.ErrorIs(t, err, apperrors.ErrContactInfoRequired)
	assert.Empty(t, provisioner.calls)
}

func TestAcceptApplicationDuplicateAdmissionNumber(t *testing.T) {
	store := &fakeStudentStore{
		getByIDFn: func(ctx context.Context, id, schoolID int64) (*models.Student, error) {
			return pendingApplication(id), nil
		},
		admissionExistsFn: func(ctx context.Context, schoolID int64, number string, excludeID int64) (bool, error) {
			return true, nil
		},
	}
	provisioner := &fakeProvisioner{}
	svc := NewApplicationService(store, &fakeSchoolStore{}, provisioner, &fakeMailer{})

	_, err := svc.AcceptApplication(context.Background(), 1, 10, acceptRequest())
	require.ErrorIs(t, err, apperrors.ErrAdmissionNumberExists)
	assert.Empty(t, provisioner.calls)
}

func TestAcceptApplicationCompensatesOnLostRace(t *testing.T) {
	// Two admins race; the loser's status flip matches zero rows. The loser's
	// freshly provisioned identity must be deleted again.
	store := &fakeStudentStore{
		getByIDFn: func(ctx context.Context, id, schoolID int64) (*models.Student, error) {
			return pendingApplication(id), nil
		},
		admissionExistsFn: func(ctx context.Context, schoolID int64, number string, excludeID int64) (bool, error) {
			return false, nil
		},
		acceptApplicationFn: func(ctx context.Context, studentID, schoolID int64, admissionNumber string, admissionDate time.Time, identityID int64, enrollment *models.Enrollment) error {
			return apperrors.ErrApplicationNotFound
		},
	}
	provisioner := &fakeProvisioner{}
	svc := NewApplicationService(store, &fakeSchoolStore{}, provisioner, &fakeMailer{})

	_, err := svc.AcceptApplication(context.Background(), 1, 10, acceptRequest())
	require.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
	assert.Equal(t, []int64{501}, provisioner.deletedIDs)

	var custom *apperrors.CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, apperrors.CompensationSucceeded, custom.Details["compensation"])
}

func TestAcceptApplicationIdentityFailureLeavesApplicationPending(t *testing.T) {
	store := &fakeStudentStore{
		getByIDFn: func(ctx context.Context, id, schoolID int64) (*models.Student, error) {
			return pendingApplication(id), nil
		},
		admissionExistsFn: func(ctx context.Context, schoolID int64, number string, excludeID int64) (bool, error) {
			return false, nil
		},
	}
	provisioner := &fakeProvisioner{
		createStudentFn: func(ctx context.Context, req *identity.CreateUserRequest) (*identity.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewApplicationService(store, &fakeSchoolStore{}, provisioner, &fakeMailer{})

	_, err := svc.AcceptApplication(context.Background(), 1, 10, acceptRequest())
	require.Error(t, err)
	assert.NotContains(t, store.calls, "AcceptApplication")
	assert.Empty(t, provisioner.deletedIDs)
}

func TestRejectApplicationRecordsDecisionMetadata(t *testing.T) {
	var gotMetadata map[string]interface{}
	store := &fakeStudentStore{
		rejectApplicationFn: func(ctx context.Context, studentID, schoolID int64, metadata map[string]interface{}) error {
			gotMetadata = metadata
			return nil
		},
		getByIDFn: func(ctx context.Context, id, schoolID int64) (*models.Student, error) {
			app := pendingApplication(id)
			app.Status = models.StatusRejected
			return app, nil
		},
	}
	provisioner := &fakeProvisioner{}
	svc := NewApplicationService(store, &fakeSchoolStore{}, provisioner, &fakeMailer{})

	student, err := svc.RejectApplication(context.Background(), 1, 10, 77, &dto.RejectApplicationRequest{Reason: "incomplete records"})
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, student.Status)
	assert.Equal(t, "incomplete records", gotMetadata["rejectionReason"])
	assert.Equal(t, int64(77), gotMetadata["rejectedBy"])

	rejectedAt, ok := gotMetadata["rejectedAt"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339, rejectedAt)
	assert.NoError(t, err)

	// Rejection is purely local
	assert.Empty(t, provisioner.calls)
}

func TestRejectApplicationAlreadyDecided(t *testing.T) {
	store := &fakeStudentStore{
		rejectApplicationFn: func(ctx context.Context, studentID, schoolID int64, metadata map[string]interface{}) error {
			return apperrors.ErrApplicationNotFound
		},
	}
	svc := NewApplicationService(store, &fakeSchoolStore{}, &fakeProvisioner{}, &fakeMailer{})

	_, err := svc.RejectApplication(context.Background(), 1, 10, 77, &dto.RejectApplicationRequest{Reason: "duplicate"})
	require.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
}

func TestListApplicationsFiltersPending(t *testing.T) {
	var gotStatus string
	store := &fakeStudentStore{
		listFn: func(ctx context.Context, schoolID int64, status, search string, offset uint64, limit int) ([]*models.Student, int64, error) {
			gotStatus = status
			return []*models.Student{pendingApplication(1)}, 1, nil
		},
	}
	svc := NewApplicationService(store, &fakeSchoolStore{}, &fakeProvisioner{}, &fakeMailer{})

	apps, total, err := svc.ListApplications(context.Background(), 1, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusPending), gotStatus)
	assert.Equal(t, int64(1), total)
	assert.Len(t, apps, 1)
}
