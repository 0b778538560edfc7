package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/mertz/schooladmin/internal/app/models"
	"github.com/mertz/schooladmin/internal/db"
	"github.com/mertz/schooladmin/internal/pkg/apperrors"
	"github.com/mertz/schooladmin/internal/pkg/dberrors"
	"github.com/mertz/schooladmin/internal/pkg/logger"
)

// TeacherEmployeeNumberConstraint is the unique constraint on (school_id, employee_number)
const TeacherEmployeeNumberConstraint = "teachers_school_employee_number_key"

const teacherColumns = "id, school_id, employee_number, first_name, last_name, email, phone, " +
	"qualification, joining_date, external_identity_id, created_at, updated_at"

// TeacherRepository handles teacher database operations
type TeacherRepository struct {
	store *db.PostgresDB
	sb    squirrel.StatementBuilderType
}

// NewTeacherRepository creates a new TeacherRepository
func NewTeacherRepository(store *db.PostgresDB) *TeacherRepository {
	return &TeacherRepository{
		store: store,
		sb:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateTeacher inserts a teacher together with its document metadata in one
// transaction and returns the created row with generated fields filled in.
func (r *TeacherRepository) CreateTeacher(ctx context.Context, teacher *models.Teacher) (*models.Teacher, error) {
	err := r.store.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("teachers").
			Columns("school_id", "employee_number", "first_name", "last_name", "email", "phone",
				"qualification", "joining_date", "external_identity_id").
			Values(teacher.SchoolID, teacher.EmployeeNumber, teacher.FirstName, teacher.LastName,
				teacher.Email, teacher.Phone, teacher.Qualification, teacher.JoiningDate,
				teacher.ExternalIdentityID).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create teacher query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&teacher.ID, &teacher.CreatedAt, &teacher.UpdatedAt); err != nil {
			return err
		}

		for _, doc := range teacher.Documents {
			doc.TeacherID = &teacher.ID
			if err := insertDocument(ctx, tx, r.sb, doc); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, TeacherEmployeeNumberConstraint) {
			logger.Warn().Int64("schoolID", teacher.SchoolID).Msg("Attempted to create teacher with duplicate employee number")
			return nil, apperrors.ErrEmployeeNumberExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return nil, apperrors.ErrSchoolNotFound
		}
		logger.Error().Err(err).Int64("schoolID", teacher.SchoolID).Msg("Error creating teacher record")
		return nil, fmt.Errorf("error creating teacher: %w", err)
	}

	logger.Info().Int64("teacherID", teacher.ID).Int64("schoolID", teacher.SchoolID).Msg("Teacher record created")
	return teacher, nil
}

// GetByID retrieves a teacher scoped to a school, with documents loaded
func (r *TeacherRepository) GetByID(ctx context.Context, id, schoolID int64) (*models.Teacher, error) {
	sql, args, err := r.sb.Select(teacherColumns).
		From("teachers").
		Where(squirrel.Eq{"id": id, "school_id": schoolID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get teacher query: %w", err)
	}

	teacher, err := scanTeacher(r.store.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTeacherNotFound
		}
		logger.Error().Err(err).Int64("teacherID", id).Msg("Error scanning teacher row")
		return nil, fmt.Errorf("error retrieving teacher: %w", err)
	}

	if teacher.Documents, err = listDocuments(ctx, r.store.Pool, r.sb, squirrel.Eq{"teacher_id": id}); err != nil {
		return nil, err
	}
	return teacher, nil
}

// GetByIDs retrieves the teachers among the given ids that belong to the
// school. The caller compares lengths to detect ids that did not resolve.
func (r *TeacherRepository) GetByIDs(ctx context.Context, ids []int64, schoolID int64) ([]*models.Teacher, error) {
	if len(ids) == 0 {
		return []*models.Teacher{}, nil
	}

	sql, args, err := r.sb.Select(teacherColumns).
		From("teachers").
		Where(squirrel.Eq{"id": ids, "school_id": schoolID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get teachers query: %w", err)
	}

	rows, err := r.store.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("schoolID", schoolID).Msg("Error querying teachers by ids")
		return nil, fmt.Errorf("error retrieving teachers: %w", err)
	}
	defer rows.Close()

	teachers := make([]*models.Teacher, 0, len(ids))
	for rows.Next() {
		teacher, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, teacher)
	}
	return teachers, rows.Err()
}

// List retrieves teachers of a school with an optional search filter, newest
// first, plus the unpaginated total.
func (r *TeacherRepository) List(ctx context.Context, schoolID int64, search string, offset uint64, limit int) ([]*models.Teacher, int64, error) {
	base := r.sb.Select(teacherColumns).From("teachers").Where(squirrel.Eq{"school_id": schoolID})
	countQuery := r.sb.Select("COUNT(*)").From("teachers").Where(squirrel.Eq{"school_id": schoolID})

	if search != "" {
		like := "%" + search + "%"
		cond := squirrel.Or{
			squirrel.ILike{"first_name": like},
			squirrel.ILike{"last_name": like},
			squirrel.ILike{"employee_number": like},
		}
		base = base.Where(cond)
		countQuery = countQuery.Where(cond)
	}

	var total int64
	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count teachers query: %w", err)
	}
	if err := r.store.Pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Int64("schoolID", schoolID).Msg("Error counting teachers")
		return nil, 0, fmt.Errorf("error counting teachers: %w", err)
	}

	sql, args, err := base.OrderBy("created_at DESC", "id DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list teachers query: %w", err)
	}

	rows, err := r.store.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("schoolID", schoolID).Msg("Error listing teachers")
		return nil, 0, fmt.Errorf("error listing teachers: %w", err)
	}
	defer rows.Close()

	teachers := make([]*models.Teacher, 0, limit)
	for rows.Next() {
		teacher, err := scanTeacher(rows)
		if err != nil {
			return nil, 0, err
		}
		teachers = append(teachers, teacher)
	}
	return teachers, total, rows.Err()
}

// EmployeeNumberExists checks whether an employee number is already taken
// within a school. excludeID skips a record (used when updating that record).
func (r *TeacherRepository) EmployeeNumberExists(ctx context.Context, schoolID int64, employeeNumber string, excludeID int64) (bool, error) {
	query := r.sb.Select("1").
		From("teachers").
		Where(squirrel.Eq{"school_id": schoolID, "employee_number": employeeNumber})
	if excludeID > 0 {
		query = query.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := query.Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build employee number exists query: %w", err)
	}

	var exists bool
	if err := r.store.Pool.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Int64("schoolID", schoolID).Msg("Error checking employee number existence")
		return false, fmt.Errorf("error checking employee number existence: %w", err)
	}
	return exists, nil
}

// UpdateTeacher updates the mutable fields of a teacher row
func (r *TeacherRepository) UpdateTeacher(ctx context.Context, teacher *models.Teacher) error {
	sql, args, err := r.sb.Update("teachers").
		Set("employee_number", teacher.EmployeeNumber).
		Set("first_name", teacher.FirstName).
		Set("last_name", teacher.LastName).
		Set("email", teacher.Email).
		Set("phone", teacher.Phone).
		Set("qualification", teacher.Qualification).
		Set("joining_date", teacher.JoiningDate).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": teacher.ID, "school_id": teacher.SchoolID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update teacher query: %w", err)
	}

	tag, err := r.store.Pool.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, TeacherEmployeeNumberConstraint) {
			return apperrors.ErrEmployeeNumberExists
		}
		logger.Error().Err(err).Int64("teacherID", teacher.ID).Msg("Error updating teacher record")
		return fmt.Errorf("error updating teacher: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTeacherNotFound
	}
	return nil
}

// DeleteTeacher removes a teacher row. Document rows are removed by the
// database cascade.
func (r *TeacherRepository) DeleteTeacher(ctx context.Context, teacherID int64) error {
	tag, err := r.store.Pool.Exec(ctx, "DELETE FROM teachers WHERE id = $1", teacherID)
	if err != nil {
		logger.Error().Err(err).Int64("teacherID", teacherID).Msg("Error deleting teacher record")
		return fmt.Errorf("error deleting teacher: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTeacherNotFound
	}

	logger.Info().Int64("teacherID", teacherID).Msg("Teacher record deleted")
	return nil
}

func scanTeacher(row rowScanner) (*models.Teacher, error) {
	var t models.Teacher
	err := row.Scan(
		&t.ID, &t.SchoolID, &t.EmployeeNumber, &t.FirstName, &t.LastName, &t.Email, &t.Phone,
		&t.Qualification, &t.JoiningDate, &t.ExternalIdentityID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
