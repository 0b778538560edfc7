package services

import (
	"context"

	"github.com/mertz/schooladmin/internal/app/models"
	"github.com/mertz/schooladmin/internal/app/models/dto"
)

// schoolAdminStore extends schoolStore with the write operations the
// superadmin surface needs.
type schoolAdminStore interface {
	schoolStore
	CreateSchool(ctx context.Context, school *models.School) (*models.School, error)
	GetAll(ctx context.Context) ([]*models.School, error)
}

// SchoolService handles school (tenant) management
type SchoolService struct {
	schools schoolAdminStore
}

// NewSchoolService creates a new SchoolService
func NewSchoolService(schools schoolAdminStore) *SchoolService {
	return &SchoolService{schools: schools}
}

// CreateSchool registers a new school tenant
func (s *SchoolService) CreateSchool(ctx context.Context, req *dto.CreateSchoolRequest) (*models.School, error) {
	school := &models.School{
		Name:    req.Name,
		Code:    req.Code,
		Address: req.Address,
	}
	return s.schools.CreateSchool(ctx, school)
}

// GetSchool retrieves a school by id
func (s *SchoolService) GetSchool(ctx context.Context, id int64) (*models.School, error) {
	return s.schools.GetByID(ctx, id)
}

// GetSchools retrieves all schools
func (s *SchoolService) GetSchools(ctx context.Context) ([]*models.School, error) {
	return s.schools.GetAll(ctx)
}
