package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mertz/schooladmin/internal/app/models"
	"github.com/mertz/schooladmin/internal/pkg/apperrors"
	"github.com/mertz/schooladmin/internal/pkg/dberrors"
	"github.com/mertz/schooladmin/internal/pkg/logger"
)

// SchoolRepository handles school (tenant) database operations
type SchoolRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSchoolRepository creates a new SchoolRepository
func NewSchoolRepository(db *pgxpool.Pool) *SchoolRepository {
	return &SchoolRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateSchool inserts a school
func (r *SchoolRepository) CreateSchool(ctx context.Context, school *models.School) (*models.School, error) {
	sql, args, err := r.sb.Insert("schools").
		Columns("name", "code", "address").
		Values(school.Name, school.Code, school.Address).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build create school query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&school.ID, &school.CreatedAt); err != nil {
		if dberrors.IsUniqueViolation(err) {
			logger.Warn().Str("code", school.Code).Msg("Attempted to create school with duplicate code")
			return nil, apperrors.ErrSchoolAlreadyExists
		}
		logger.Error().Err(err).Str("code", school.Code).Msg("Error creating school")
		return nil, fmt.Errorf("error creating school: %w", err)
	}
	return school, nil
}

// GetByID retrieves a school by id
func (r *SchoolRepository) GetByID(ctx context.Context, id int64) (*models.School, error) {
	sql, args, err := r.sb.Select("id", "name", "code", "address", "created_at").
		From("schools").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get school query: %w", err)
	}

	var s models.School
	err = r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.Name, &s.Code, &s.Address, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSchoolNotFound
		}
		logger.Error().Err(err).Int64("schoolID", id).Msg("Error scanning school row")
		return nil, fmt.Errorf("error retrieving school: %w", err)
	}
	return &s, nil
}

// GetAll retrieves all schools ordered by name
func (r *SchoolRepository) GetAll(ctx context.Context) ([]*models.School, error) {
	sql, args, err := r.sb.Select("id", "name", "code", "address", "created_at").
		From("schools").
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list schools query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing schools")
		return nil, fmt.Errorf("error listing schools: %w", err)
	}
	defer rows.Close()

	schools := make([]*models.School, 0)
	for rows.Next() {
		var s models.School
		if err := rows.Scan(&s.ID, &s.Name, &s.Code, &s.Address, &s.CreatedAt); err != nil {
			return nil, err
		}
		schools = append(schools, &s)
	}
	return schools, rows.Err()
}
