package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mertz/schooladmin/internal/app/models"
	"github.com/mertz/schooladmin/internal/app/models/dto"
	"github.com/mertz/schooladmin/internal/pkg/apperrors"
)

func validCreateStudentRequest() *dto.CreateStudentRequest {
	return &dto.CreateStudentRequest{
		FirstName:       "Arda",
		LastName:        "Yilmaz",
		Email:           "arda@example.com",
		Phone:           "+905551112233",
		AdmissionNumber: "ADM-2026-001",
		Guardians: []dto.GuardianInput{
			{FirstName: "Kemal", LastName: "Yilmaz", Phone: "+905559998877", Relation: "father"},
		},
	}
}

func TestCreateStudentProvisionsIdentityBeforeLocalWrite(t *testing.T) {
	store := &fakeStudentStore{
		admissionExistsFn: func(ctx context.Context, schoolID int64, number string, excludeID int64) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, student *models.Student) (*models.Student, error) {
			created := *student
			created.ID = 42
			return &created, nil
		},
	}
	provisioner := &fakeProvisioner{}
	mailer := &fakeMailer{}
	svc := NewStudentService(store, &fakeGuardianStore{}, &fakeDocumentStore{}, provisioner, mailer, nil)

	student, err := svc.CreateStudent(context.Background(), 1, validCreateStudentRequest())
	require.NoError(t, err)
	require.NotNil(t, student)

	assert.Equal(t, int64(42), student.ID)
	assert.Equal(t, models.StatusAccepted, student.Status)
	require.NotNil(t, student.ExternalIdentityID)
	assert.Equal(t, int64(501), *student.ExternalIdentityID)

	// The remote account must exist before the local row is committed
	require.Equal(t, []string{"CreateUserForStudent"}, provisioner.calls)
	assert.Equal(t, []string{"AdmissionNumberExists", "CreateStudent"}, store.calls)

	require.Len(t, provisioner.createRequests, 1)
	assert.Equal(t, models.IdentityRoleStudent, provisioner.createRequests[0].RoleName)
	assert.Equal(t, "arda@example.com", provisioner.createRequests[0].Email)

	assert.Equal(t, []string{"arda@example.com"}, mailer.sent)
}

func TestCreateStudentRejectsDuplicateAdmissionNumberBeforeProvisioning(t *testing.T) {
	store := &fakeStudentStore{
		admissionExistsFn: func(ctx context.Context, schoolID int64, number string, excludeID int64) (bool, error) {
			return true, nil
		},
	}
	provisioner := &fakeProvisioner{}
	svc := NewStudentService(store, &fakeGuardianStore{}, &fakeDocumentStore{}, provisioner, &fakeMailer{}, nil)

	_, err := svc.CreateStudent(context.Background(), 1, validCreateStudentRequest())
	require.ErrorIs(t, err, apperrors.ErrAdmissionNumberExists)
	assert.Empty(t, provisioner.calls)
}

func TestCreateStudentCompensatesIdentityOnLocalFailure(t *testing.T) {
	localFailure := errors.New("insert failed")
	store := &fakeStudentStore{
		admissionExistsFn: func(ctx context.Context, schoolID int64, number string, excludeID int64) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, student *models.Student) (*models.Student, error) {
			return nil, localFailure
		},
	}
	provisioner := &fakeProvisioner{}
	svc := NewStudentService(store, &fakeGuardianStore{}, &fakeDocumentStore{}, provisioner, &fakeMailer{}, nil)

	_, err := svc.CreateStudent(context.Background(), 1, validCreateStudentRequest())
	require.Error(t, err)

	// The local failure stays the primary error
	assert.ErrorIs(t, err, localFailure)
	assert.Equal(t, []int64{501}, provisioner.deletedIDs)

	var custom *apperrors.CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, apperrors.CompensationSucceeded, custom.Details["compensation"])
	assert.Equal(t, int64(501), custom.Details["externalIdentityId"])
}

func TestCreateStudentReportsFailedCompensation(t *testing.T) {
	localFailure := errors.New("insert failed")
	store := &fakeStudentStore{
		admissionExistsFn: func(ctx context.Context, schoolID int64, number string, excludeID int64) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, student *models.Student) (*models.Student, error) {
			return nil, localFailure
		},
	}
	provisioner := &fakeProvisioner{
		deleteFn: func(ctx context.Context, userID int64) error {
			return errors.New("identity service unavailable")
		},
	}
	svc := NewStudentService(store, &fakeGuardianStore{}, &fakeDocumentStore{}, provisioner, &fakeMailer{}, nil)

	_, err := svc.CreateStudent(context.Background(), 1, validCreateStudentRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, localFailure)

	var custom *apperrors.CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, apperrors.CompensationFailed, custom.Details["compensation"])
}

func TestCreateStudentDoesNotFailOnEmailError(t *testing.T) {
	store := &fakeStudentStore{
		admissionExistsFn: func(ctx context.Context, schoolID int64, number string, excludeID int64) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, student *models.Student) (*models.Student, error) {
			created := *student
			created.ID = 7
			return &created, nil
		},
	}
	mailer := &fakeMailer{
		sendFn: func(toEmail, toName, username, temporaryPassword string) error {
			return errors.New("smtp down")
		},
	}
	svc := NewStudentService(store, &fakeGuardianStore{}, &fakeDocumentStore{}, &fakeProvisioner{}, mailer, nil)

	student, err := svc.CreateStudent(context.Background(), 1, validCreateStudentRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(7), student.ID)
}

func TestDeriveGuardians(t *testing.T) {
	tests := []struct {
		name          string
		inputs        []dto.GuardianInput
		parents       *dto.ParentInfo
		wantErr       error
		wantCount     int
		wantRelations []models.GuardianRelation
	}{
		{
			name:    "no guardian source",
			wantErr: apperrors.ErrGuardianRequired,
		},
		{
			name: "explicit list preferred over parent info",
			inputs: []dto.GuardianInput{
				{FirstName: "Kemal", Phone: "+905550001", Relation: "father"},
			},
			parents:       &dto.ParentInfo{MotherName: "Ayse Yilmaz", MotherPhone: "+905550002"},
			wantCount:     1,
			wantRelations: []models.GuardianRelation{models.RelationFather},
		},
		{
			name: "explicit entries missing name or phone are dropped",
			inputs: []dto.GuardianInput{
				{FirstName: "  ", Phone: "+905550001", Relation: "father"},
				{FirstName: "Kemal", Phone: " ", Relation: "father"},
			},
			wantErr: apperrors.ErrGuardianRequired,
		},
		{
			name: "all three parent entries derive",
			parents: &dto.ParentInfo{
				FatherName:       "Kemal Yilmaz",
				FatherPhone:      "+905550001",
				MotherName:       "Ayse Yilmaz",
				MotherPhone:      "+905550002",
				GuardianName:     "Veli Demir",
				GuardianPhone:    "+905550003",
				GuardianRelation: "uncle",
			},
			wantCount: 3,
			wantRelations: []models.GuardianRelation{
				models.RelationFather,
				models.RelationMother,
				models.GuardianRelation("UNCLE"),
			},
		},
		{
			name: "custom relation defaults to GUARDIAN",
			parents: &dto.ParentInfo{
				GuardianName:  "Veli Demir",
				GuardianPhone: "+905550003",
			},
			wantCount:     1,
			wantRelations: []models.GuardianRelation{models.RelationGuardian},
		},
		{
			name: "parent entry without phone derives nothing",
			parents: &dto.ParentInfo{
				FatherName:  "Kemal Yilmaz",
				MotherName:  "Ayse Yilmaz",
				MotherPhone: "+905550002",
			},
			wantCount:     1,
			wantRelations: []models.GuardianRelation{models.RelationMother},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guardians, err := deriveGuardians(1, tt.inputs, tt.parents)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, guardians, tt.wantCount)
			for i, relation := range tt.wantRelations {
				assert.Equal(t, relation, guardians[i].Relation)
			}
		})
	}
}

func TestDeriveGuardiansSplitsNameTokens(t *testing.T) {
	parents := &dto.ParentInfo{FatherName: "Ahmet Kaya Oglu", FatherPhone: "+905550001"}
	guardians, err := deriveGuardians(1, nil, parents)
	require.NoError(t, err)
	require.Len(t, guardians, 1)
	assert.Equal(t, "Ahmet", guardians[0].FirstName)
	assert.Equal(t, "Kaya Oglu", guardians[0].LastName)
}

func identityRef(id int64) *int64 { return &id }

func TestDeleteStudentsRejectsUnresolvedIDs(t *testing.T) {
	store := &fakeStudentStore{
		getByIDsFn: func(ctx context.Context, ids []int64, schoolID int64) ([]*models.Student, error) {
			return []*models.Student{{ID: 1, SchoolID: schoolID}}, nil
		},
	}
	provisioner := &fakeProvisioner{}
	svc := NewStudentService(store, &fakeGuardianStore{}, &fakeDocumentStore{}, provisioner, &fakeMailer{}, nil)

	_, err := svc.DeleteStudents(context.Background(), 1, []int64{1, 2, 3})
	require.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.Contains(t, err.Error(), "2")
	assert.Contains(t, err.Error(), "3")
	assert.Empty(t, provisioner.calls)
	assert.NotContains(t, store.calls, "DeleteStudent")
}

func TestDeleteStudentsFullSuccess(t *testing.T) {
	store := &fakeStudentStore{
		getByIDsFn: func(ctx context.Context, ids []int64, schoolID int64) ([]*models.Student, error) {
			return []*models.Student{
				{ID: 1, ExternalIdentityID: identityRef(100)},
				{ID: 2, ExternalIdentityID: identityRef(200)},
			}, nil
		},
		deleteFn: func(ctx context.Context, studentID int64, orphans []int64) error {
			return nil
		},
	}
	provisioner := &fakeProvisioner{}
	svc := NewStudentService(store, &fakeGuardianStore{}, &fakeDocumentStore{}, provisioner, &fakeMailer{}, nil)

	report, err := svc.DeleteStudents(context.Background(), 1, []int64{1, 2})
	require.NoError(t, err)

	assert.Equal(t, dto.BulkStatusSuccess, report.Status)
	assert.Equal(t, 200, report.HTTPStatus())
	assert.Equal(t, []int64{1, 2}, report.DeletedProfiles)
	assert.Equal(t, []int64{100, 200}, report.DeletedIdentities)
	assert.Empty(t, report.FailedProfileDeletions)
	assert.Empty(t, report.FailedIdentityDeletions)
}

func TestDeleteStudentsPartialFailureContinuesBatch(t *testing.T) {
	store := &fakeStudentStore{
		getByIDsFn: func(ctx context.Context, ids []int64, schoolID int64) ([]*models.Student, error) {
			return []*models.Student{
				{ID: 1, ExternalIdentityID: identityRef(100)},
				{ID: 2, ExternalIdentityID: identityRef(200)},
				{ID: 3, ExternalIdentityID: identityRef(300)},
			}, nil
		},
		deleteFn: func(ctx context.Context, studentID int64, orphans []int64) error {
			if studentID == 2 {
				return errors.New("foreign key violation")
			}
			return nil
		},
	}
	provisioner := &fakeProvisioner{
		deleteFn: func(ctx context.Context, userID int64) error {
			if userID == 300 {
				return errors.New("identity service unavailable")
			}
			return nil
		},
	}
	svc := NewStudentService(store, &fakeGuardianStore{}, &fakeDocumentStore{}, provisioner, &fakeMailer{}, nil)

	report, err := svc.DeleteStudents(context.Background(), 1, []int64{1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, dto.BulkStatusPartial, report.Status)
	assert.Equal(t, 207, report.HTTPStatus())
	assert.Equal(t, []int64{1, 3}, report.DeletedProfiles)
	assert.Equal(t, []int64{100}, report.DeletedIdentities)

	require.Len(t, report.FailedProfileDeletions, 1)
	assert.Equal(t, int64(2), report.FailedProfileDeletions[0].ID)

	// A failed local deletion must not trigger an identity deletion
	assert.NotContains(t, provisioner.deletedIDs, int64(200))

	// Profile 3 was deleted locally but its identity is now orphaned
	require.Len(t, report.FailedIdentityDeletions, 1)
	assert.Equal(t, int64(3), report.FailedIdentityDeletions[0].ID)
}

func TestDeleteStudentsTotalFailure(t *testing.T) {
	store := &fakeStudentStore{
		getByIDsFn: func(ctx context.Context, ids []int64, schoolID int64) ([]*models.Student, error) {
			return []*models.Student{{ID: 1}}, nil
		},
		deleteFn: func(ctx context.Context, studentID int64, orphans []int64) error {
			return errors.New("deadlock detected")
		},
	}
	svc := NewStudentService(store, &fakeGuardianStore{}, &fakeDocumentStore{}, &fakeProvisioner{}, &fakeMailer{}, nil)

	report, err := svc.DeleteStudents(context.Background(), 1, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, dto.BulkStatusFailure, report.Status)
	assert.Equal(t, 500, report.HTTPStatus())
}

func TestDeleteStudentsSkipsIdentityForPendingApplications(t *testing.T) {
	store := &fakeStudentStore{
		getByIDsFn: func(ctx context.Context, ids []int64, schoolID int64) ([]*models.Student, error) {
			return []*models.Student{{ID: 1, Status: models.StatusPending}}, nil
		},
		deleteFn: func(ctx context.Context, studentID int64, orphans []int64) error {
			return nil
		},
	}
	provisioner := &fakeProvisioner{}
	svc := NewStudentService(store, &fakeGuardianStore{}, &fakeDocumentStore{}, provisioner, &fakeMailer{}, nil)

	report, err := svc.DeleteStudents(context.Background(), 1, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, dto.BulkStatusSuccess, report.Status)
	assert.Empty(t, provisioner.deletedIDs)
	assert.Empty(t, report.DeletedIdentities)
}

func TestDeleteStudentsPassesOrphanGuardiansToDeletion(t *testing.T) {
	var gotOrphans []int64
	store := &fakeStudentStore{
		getByIDsFn: func(ctx context.Context, ids []int64, schoolID int64) ([]*models.Student, error) {
			return []*models.Student{{ID: 1}}, nil
		},
		deleteFn: func(ctx context.Context, studentID int64, orphans []int64) error {
			gotOrphans = orphans
			return nil
		},
	}
	guardians := &fakeGuardianStore{
		orphansFn: func(ctx context.Context, studentID int64) ([]int64, error) {
			return []int64{11, 12}, nil
		},
	}
	svc := NewStudentService(store, guardians, &fakeDocumentStore{}, &fakeProvisioner{}, &fakeMailer{}, nil)

	_, err := svc.DeleteStudents(context.Background(), 1, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12}, gotOrphans)
}

func TestMissingIDsDeduplicates(t *testing.T) {
	found := map[int64]struct{}{1: {}}
	missing := missingIDs([]int64{1, 2, 2, 3}, found)
	assert.Equal(t, []int64{2, 3}, missing)
}
