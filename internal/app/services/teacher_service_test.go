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

func validCreateTeacherRequest() *dto.CreateTeacherRequest {
	return &dto.CreateTeacherRequest{
		FirstName:      "Zeynep",
		LastName:       "Demir",
		Email:          "zeynep@example.com",
		Phone:          "+905554443322",
		EmployeeNumber: "EMP-2026-014",
	}
}

func TestCreateTeacherProvisionsWithTeacherRole(t *testing.T) {
	store := &fakeTeacherStore{
		employeeExistsFn: func(ctx context.Context, schoolID int64, number string, excludeID int64) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, teacher *models.Teacher) (*models.Teacher, error) {
			created := *teacher
			created.ID = 5
			return &created, nil
		},
	}
	provisioner := &fakeProvisioner{}
	svc := NewTeacherService(store, &fakeDocumentStore{}, provisioner, &fakeMailer{}, nil)

	teacher, err := svc.CreateTeacher(context.Background(), 1, validCreateTeacherRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(5), teacher.ID)
	require.NotNil(t, teacher.ExternalIdentityID)
	assert.Equal(t, int64(601), *teacher.ExternalIdentityID)

	require.Len(t, provisioner.createRequests, 1)
	assert.Equal(t, []string{"CreateUserForTeacher"}, provisioner.calls)
	assert.Equal(t, models.IdentityRoleTeacher, provisioner.createRequests[0].RoleName)
}

func TestCreateTeacherRejectsDuplicateEmployeeNumber(t *testing.T) {
	store := &fakeTeacherStore{
		employeeExistsFn: func(ctx context.Context, schoolID int64, number string, excludeID int64) (bool, error) {
			return true, nil
		},
	}
	provisioner := &fakeProvisioner{}
	svc := NewTeacherService(store, &fakeDocumentStore{}, provisioner, &fakeMailer{}, nil)

	_, err := svc.CreateTeacher(context.Background(), 1, validCreateTeacherRequest())
	require.ErrorIs(t, err, apperrors.ErrEmployeeNumberExists)
	assert.Empty(t, provisioner.calls)
}

func TestCreateTeacherCompensatesIdentityOnLocalFailure(t *testing.T) {
	localFailure := errors.New("insert failed")
	store := &fakeTeacherStore{
		employeeExistsFn: func(ctx context.Context, schoolID int64, number string, excludeID int64) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, teacher *models.Teacher) (*models.Teacher, error) {
			return nil, localFailure
		},
	}
	provisioner := &fakeProvisioner{}
	svc := NewTeacherService(store, &fakeDocumentStore{}, provisioner, &fakeMailer{}, nil)

	_, err := svc.CreateTeacher(context.Background(), 1, validCreateTeacherRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, localFailure)
	assert.Equal(t, []int64{601}, provisioner.deletedIDs)

	var custom *apperrors.CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, apperrors.CompensationSucceeded, custom.Details["compensation"])
	assert.Equal(t, int64(601), custom.Details["externalIdentityId"])
}

func TestDeleteTeachersRejectsUnresolvedIDs(t *testing.T) {
	store := &fakeTeacherStore{
		getByIDsFn: func(ctx context.Context, ids []int64, schoolID int64) ([]*models.Teacher, error) {
			return []*models.Teacher{{ID: 1}}, nil
		},
	}
	svc := NewTeacherService(store, &fakeDocumentStore{}, &fakeProvisioner{}, &fakeMailer{}, nil)

	_, err := svc.DeleteTeachers(context.Background(), 1, []int64{1, 9})
	require.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestDeleteTeachersPartialFailure(t *testing.T) {
	store := &fakeTeacherStore{
		getByIDsFn: func(ctx context.Context, ids []int64, schoolID int64) ([]*models.Teacher, error) {
			return []*models.Teacher{
				{ID: 1, ExternalIdentityID: identityRef(100)},
				{ID: 2, ExternalIdentityID: identityRef(200)},
			}, nil
		},
		deleteFn: func(ctx context.Context, teacherID int64) error {
			if teacherID == 2 {
				return errors.New("foreign key violation")
			}
			return nil
		},
	}
	provisioner := &fakeProvisioner{}
	svc := NewTeacherService(store, &fakeDocumentStore{}, provisioner, &fakeMailer{}, nil)

	report, err := svc.DeleteTeachers(context.Background(), 1, []int64{1, 2})
	require.NoError(t, err)

	assert.Equal(t, dto.BulkStatusPartial, report.Status)
	assert.Equal(t, 207, report.HTTPStatus())
	assert.Equal(t, []int64{1}, report.DeletedProfiles)
	assert.Equal(t, []int64{100}, report.DeletedIdentities)
	assert.NotContains(t, provisioner.deletedIDs, int64(200))
}

func TestUpdateTeacherAppliesPatchFields(t *testing.T) {
	var updated *models.Teacher
	store := &fakeTeacherStore{
		getByIDFn: func(ctx context.Context, id, schoolID int64) (*models.Teacher, error) {
			if updated != nil {
				return updated, nil
			}
			return &models.Teacher{
				ID:             id,
				SchoolID:       schoolID,
				FirstName:      "Zeynep",
				LastName:       "Demir",
				Email:          "zeynep@example.com",
				Phone:          "+905554443322",
				EmployeeNumber: "EMP-2026-014",
			}, nil
		},
		updateFn: func(ctx context.Context, teacher *models.Teacher) error {
			updated = teacher
			return nil
		},
	}
	svc := NewTeacherService(store, &fakeDocumentStore{}, &fakeProvisioner{}, &fakeMailer{}, nil)

	newPhone := "+905551110000"
	teacher, err := svc.UpdateTeacher(context.Background(), 1, 5, &dto.UpdateTeacherRequest{Phone: &newPhone})
	require.NoError(t, err)

	assert.Equal(t, newPhone, teacher.Phone)
	assert.Equal(t, "Zeynep", teacher.FirstName)
	assert.Equal(t, "EMP-2026-014", teacher.EmployeeNumber)
}
