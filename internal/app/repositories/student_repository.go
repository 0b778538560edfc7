package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/mertz/schooladmin/internal/app/models"
	"github.com/mertz/schooladmin/internal/db"
	"github.com/mertz/schooladmin/internal/pkg/apperrors"
	"github.com/mertz/schooladmin/internal/pkg/dberrors"
	"github.com/mertz/schooladmin/internal/pkg/logger"
)

// Unique constraint names from the schema. The services run uniqueness
// pre-checks, but these constraints are the authoritative signal at commit.
const (
	StudentAdmissionNumberConstraint = "students_school_admission_number_key"
	GuardianPhoneConstraint          = "guardians_school_phone_key"
)

const studentColumns = "id, school_id, admission_number, admission_date, first_name, last_name, " +
	"email, phone, date_of_birth, gender, address, status, external_identity_id, status_metadata, " +
	"created_at, updated_at"

// StudentRepository handles student, guardian link and enrollment database
// operations. Multi-row writes run inside a single transaction.
type StudentRepository struct {
	store *db.PostgresDB
	sb    squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(store *db.PostgresDB) *StudentRepository {
	return &StudentRepository{
		store: store,
		sb:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateStudent inserts a student together with its guardians, guardian links,
// optional enrollment and document metadata as one atomic unit. The relations
// carried on the model are persisted; the created row is returned with its
// generated fields filled in.
func (r *StudentRepository) CreateStudent(ctx context.Context, student *models.Student) (*models.Student, error) {
	err := r.store.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("students").
			Columns("school_id", "admission_number", "admission_date", "first_name", "last_name",
				"email", "phone", "date_of_birth", "gender", "address", "status",
				"external_identity_id", "status_metadata").
			Values(student.SchoolID, student.AdmissionNumber, student.AdmissionDate,
				student.FirstName, student.LastName, student.Email, student.Phone,
				student.DateOfBirth, student.Gender, student.Address, student.Status,
				student.ExternalIdentityID, student.StatusMetadata).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create student query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt); err != nil {
			return err
		}

		if err := r.syncGuardianLinks(ctx, tx, student.SchoolID, student.ID, student.Guardians); err != nil {
			return err
		}

		if student.Enrollment != nil {
			if err := r.insertCurrentEnrollment(ctx, tx, student.ID, student.Enrollment); err != nil {
				return err
			}
		}

		for _, doc := range student.Documents {
			doc.StudentID = &student.ID
			if err := insertDocument(ctx, tx, r.sb, doc); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, StudentAdmissionNumberConstraint) {
			logger.Warn().Int64("schoolID", student.SchoolID).Msg("Attempted to create student with duplicate admission number")
			return nil, apperrors.ErrAdmissionNumberExists
		}
		if dberrors.IsDuplicateConstraintError(err, GuardianPhoneConstraint) {
			return nil, apperrors.NewConflictError("guardian phone already registered in this school")
		}
		// The only foreign key an insert here can violate is school_id
		if dberrors.IsForeignKeyViolation(err) {
			return nil, apperrors.ErrSchoolNotFound
		}
		logger.Error().Err(err).Int64("schoolID", student.SchoolID).Msg("Error creating student record")
		return nil, fmt.Errorf("error creating student: %w", err)
	}

	logger.Info().Int64("studentID", student.ID).Int64("schoolID", student.SchoolID).Msg("Student record created")
	return student, nil
}

// GetByID retrieves a student scoped to a school, with guardians, current
// enrollment and documents loaded.
func (r *StudentRepository) GetByID(ctx context.Context, id, schoolID int64) (*models.Student, error) {
	student, err := r.getRow(ctx, squirrel.Eq{"id": id, "school_id": schoolID})
	if err != nil {
		return nil, err
	}

	pool := r.store.Pool
	if student.Guardians, err = loadGuardiansForStudent(ctx, pool, r.sb, id); err != nil {
		return nil, err
	}
	if student.Enrollment, err = r.currentEnrollment(ctx, id); err != nil {
		return nil, err
	}
	if student.Documents, err = listDocuments(ctx, pool, r.sb, squirrel.Eq{"student_id": id}); err != nil {
		return nil, err
	}
	return student, nil
}

// GetByIDs retrieves the students among the given ids that belong to the
// school. Relations are not loaded. The caller compares lengths to detect
// ids that did not resolve.
func (r *StudentRepository) GetByIDs(ctx context.Context, ids []int64, schoolID int64) ([]*models.Student, error) {
	if len(ids) == 0 {
		return []*models.Student{}, nil
	}

	sql, args, err := r.sb.Select(studentColumns).
		From("students").
		Where(squirrel.Eq{"id": ids, "school_id": schoolID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get students query: %w", err)
	}

	rows, err := r.store.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("schoolID", schoolID).Msg("Error querying students by ids")
		return nil, fmt.Errorf("error retrieving students: %w", err)
	}
	defer rows.Close()

	students := make([]*models.Student, 0, len(ids))
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, rows.Err()
}

// List retrieves students of a school with optional status and search filters,
// newest first, plus the unpaginated total.
func (r *StudentRepository) List(ctx context.Context, schoolID int64, status, search string, offset uint64, limit int) ([]*models.Student, int64, error) {
	base := r.sb.Select(studentColumns).From("students").Where(squirrel.Eq{"school_id": schoolID})
	countQuery := r.sb.Select("COUNT(*)").From("students").Where(squirrel.Eq{"school_id": schoolID})

	if status != "" {
		base = base.Where(squirrel.Eq{"status": status})
		countQuery = countQuery.Where(squirrel.Eq{"status": status})
	}
	if search != "" {
		like := "%" + search + "%"
		cond := squirrel.Or{
			squirrel.ILike{"first_name": like},
			squirrel.ILike{"last_name": like},
			squirrel.ILike{"admission_number": like},
		}
		base = base.Where(cond)
		countQuery = countQuery.Where(cond)
	}

	var total int64
	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count students query: %w", err)
	}
	if err := r.store.Pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Int64("schoolID", schoolID).Msg("Error counting students")
		return nil, 0, fmt.Errorf("error counting students: %w", err)
	}

	sql, args, err := base.OrderBy("created_at DESC", "id DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.store.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("schoolID", schoolID).Msg("Error listing students")
		return nil, 0, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := make([]*models.Student, 0, limit)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, student)
	}
	return students, total, rows.Err()
}

// AdmissionNumberExists checks whether an admission number is already taken
// within a school. excludeID skips a record (used when updating that record).
func (r *StudentRepository) AdmissionNumberExists(ctx context.Context, schoolID int64, admissionNumber string, excludeID int64) (bool, error) {
	query := r.sb.Select("1").
		From("students").
		Where(squirrel.Eq{"school_id": schoolID, "admission_number": admissionNumber})
	if excludeID > 0 {
		query = query.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := query.Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build admission number exists query: %w", err)
	}

	var exists bool
	if err := r.store.Pool.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Int64("schoolID", schoolID).Msg("Error checking admission number existence")
		return false, fmt.Errorf("error checking admission number existence: %w", err)
	}
	return exists, nil
}

// UpdateStudent updates the scalar fields of a student row and, when the
// guardians or enrollment arguments are non-nil, reconciles those relations
// inside the same transaction. A nil guardians slice leaves links untouched.
func (r *StudentRepository) UpdateStudent(ctx context.Context, student *models.Student, guardians []*models.Guardian, enrollment *models.Enrollment) error {
	err := r.store.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Update("students").
			Set("admission_number", student.AdmissionNumber).
			Set("first_name", student.FirstName).
			Set("last_name", student.LastName).
			Set("email", student.Email).
			Set("phone", student.Phone).
			Set("date_of_birth", student.DateOfBirth).
			Set("gender", student.Gender).
			Set("address", student.Address).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": student.ID, "school_id": student.SchoolID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update student query: %w", err)
		}

		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrStudentNotFound
		}

		if guardians != nil {
			if err := r.replaceGuardianLinks(ctx, tx, student.SchoolID, student.ID, guardians); err != nil {
				return err
			}
		}
		if enrollment != nil {
			if err := r.insertCurrentEnrollment(ctx, tx, student.ID, enrollment); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return apperrors.ErrStudentNotFound
		}
		if dberrors.IsDuplicateConstraintError(err, StudentAdmissionNumberConstraint) {
			return apperrors.ErrAdmissionNumberExists
		}
		if dberrors.IsDuplicateConstraintError(err, GuardianPhoneConstraint) {
			return apperrors.NewConflictError("guardian phone already registered in this school")
		}
		logger.Error().Err(err).Int64("studentID", student.ID).Msg("Error updating student record")
		return fmt.Errorf("error updating student: %w", err)
	}
	return nil
}

// DeleteStudent removes a student and its dependent rows in one transaction.
// orphanGuardianIDs is the set of guardians that will lose their last link;
// the caller computes it before the transaction starts. Document rows are
// removed by the database cascade.
func (r *StudentRepository) DeleteStudent(ctx context.Context, studentID int64, orphanGuardianIDs []int64) error {
	err := r.store.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM guardian_links WHERE student_id = $1", studentID); err != nil {
			return err
		}

		if len(orphanGuardianIDs) > 0 {
			sql, args, err := r.sb.Delete("guardians").
				Where(squirrel.Eq{"id": orphanGuardianIDs}).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build delete guardians query: %w", err)
			}
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, "DELETE FROM enrollments WHERE student_id = $1", studentID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, "DELETE FROM students WHERE id = $1", studentID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrStudentNotFound
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error deleting student record")
		return fmt.Errorf("error deleting student: %w", err)
	}

	logger.Info().Int64("studentID", studentID).Int("orphanGuardians", len(orphanGuardianIDs)).Msg("Student record deleted")
	return nil
}

// AcceptApplication promotes a PENDING application to an admitted student in
// one transaction: the status flip, the admission fields, the identity
// reference and the initial enrollment all land together or not at all.
// Returns ErrApplicationNotFound when the row is missing or not PENDING.
func (r *StudentRepository) AcceptApplication(ctx context.Context, studentID, schoolID int64, admissionNumber string, admissionDate time.Time, identityID int64, enrollment *models.Enrollment) error {
	err := r.store.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Update("students").
			Set("status", models.StatusAccepted).
			Set("admission_number", admissionNumber).
			Set("admission_date", admissionDate).
			Set("external_identity_id", identityID).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": studentID, "school_id": schoolID, "status": models.StatusPending}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build accept application query: %w", err)
		}

		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrApplicationNotFound
		}

		if enrollment != nil {
			if err := r.insertCurrentEnrollment(ctx, tx, studentID, enrollment); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, apperrors.ErrApplicationNotFound) {
			return apperrors.ErrApplicationNotFound
		}
		if dberrors.IsDuplicateConstraintError(err, StudentAdmissionNumberConstraint) {
			return apperrors.ErrAdmissionNumberExists
		}
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error accepting application")
		return fmt.Errorf("error accepting application: %w", err)
	}
	return nil
}

// RejectApplication marks a PENDING application as REJECTED and records the
// rejection metadata. Returns ErrApplicationNotFound when the row is missing
// or not PENDING.
func (r *StudentRepository) RejectApplication(ctx context.Context, studentID, schoolID int64, metadata map[string]interface{}) error {
	sql, args, err := r.sb.Update("students").
		Set("status", models.StatusRejected).
		Set("status_metadata", metadata).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": studentID, "school_id": schoolID, "status": models.StatusPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build reject application query: %w", err)
	}

	tag, err := r.store.Pool.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error rejecting application")
		return fmt.Errorf("error rejecting application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrApplicationNotFound
	}
	return nil
}

// getRow retrieves a bare student row matching the condition
func (r *StudentRepository) getRow(ctx context.Context, cond squirrel.Eq) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns).
		From("students").
		Where(cond).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	student, err := scanStudent(r.store.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Msg("Error scanning student row")
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return student, nil
}

// currentEnrollment loads the student's current enrollment, nil when absent
func (r *StudentRepository) currentEnrollment(ctx context.Context, studentID int64) (*models.Enrollment, error) {
	sql, args, err := r.sb.Select("id", "student_id", "class_id", "section_id", "academic_year", "roll_number", "is_current", "created_at").
		From("enrollments").
		Where(squirrel.Eq{"student_id": studentID, "is_current": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build current enrollment query: %w", err)
	}

	var e models.Enrollment
	err = r.store.Pool.QueryRow(ctx, sql, args...).Scan(
		&e.ID, &e.StudentID, &e.ClassID, &e.SectionID, &e.AcademicYear, &e.RollNumber, &e.IsCurrent, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving enrollment: %w", err)
	}
	return &e, nil
}

// insertCurrentEnrollment demotes any existing current enrollment and inserts
// the given one as current.
func (r *StudentRepository) insertCurrentEnrollment(ctx context.Context, tx pgx.Tx, studentID int64, enrollment *models.Enrollment) error {
	if _, err := tx.Exec(ctx, "UPDATE enrollments SET is_current = FALSE WHERE student_id = $1 AND is_current", studentID); err != nil {
		return err
	}

	enrollment.StudentID = studentID
	enrollment.IsCurrent = true
	sql, args, err := r.sb.Insert("enrollments").
		Columns("student_id", "class_id", "section_id", "academic_year", "roll_number", "is_current").
		Values(enrollment.StudentID, enrollment.ClassID, enrollment.SectionID,
			enrollment.AcademicYear, enrollment.RollNumber, true).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert enrollment query: %w", err)
	}
	return tx.QueryRow(ctx, sql, args...).Scan(&enrollment.ID, &enrollment.CreatedAt)
}

// syncGuardianLinks upserts the guardians (matched by phone within the school)
// and links each of them to the student with its relation label.
func (r *StudentRepository) syncGuardianLinks(ctx context.Context, tx pgx.Tx, schoolID, studentID int64, guardians []*models.Guardian) error {
	for _, g := range guardians {
		guardianID, err := r.upsertGuardian(ctx, tx, schoolID, g)
		if err != nil {
			return err
		}
		g.ID = guardianID

		_, err = tx.Exec(ctx,
			`INSERT INTO guardian_links (student_id, guardian_id, relation)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (student_id, guardian_id) DO UPDATE SET relation = EXCLUDED.relation`,
			studentID, guardianID, g.Relation)
		if err != nil {
			return err
		}
	}
	return nil
}

// replaceGuardianLinks reconciles the student's links to exactly the given
// guardian set. Guardians left without any link afterwards are removed.
func (r *StudentRepository) replaceGuardianLinks(ctx context.Context, tx pgx.Tx, schoolID, studentID int64, guardians []*models.Guardian) error {
	if err := r.syncGuardianLinks(ctx, tx, schoolID, studentID, guardians); err != nil {
		return err
	}

	keep := make([]int64, 0, len(guardians))
	for _, g := range guardians {
		keep = append(keep, g.ID)
	}

	// Remove stale links, collecting the guardian ids they pointed at
	sql := "DELETE FROM guardian_links WHERE student_id = $1 RETURNING guardian_id"
	args := []interface{}{studentID}
	if len(keep) > 0 {
		var err error
		sql, args, err = r.sb.Delete("guardian_links").
			Where(squirrel.Eq{"student_id": studentID}).
			Where(squirrel.NotEq{"guardian_id": keep}).
			Suffix("RETURNING guardian_id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete stale links query: %w", err)
		}
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	var stale []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		stale = append(stale, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if len(stale) > 0 {
		sql, args, err := r.sb.Delete("guardians").
			Where(squirrel.Eq{"id": stale}).
			Where(squirrel.Expr("NOT EXISTS (SELECT 1 FROM guardian_links WHERE guardian_id = guardians.id)")).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete orphan guardians query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}
	}
	return nil
}

// upsertGuardian finds a guardian by phone within the school or creates it.
// Contact details are refreshed on a match.
func (r *StudentRepository) upsertGuardian(ctx context.Context, tx pgx.Tx, schoolID int64, g *models.Guardian) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx,
		`INSERT INTO guardians (school_id, first_name, last_name, phone, email)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (school_id, phone)
		 DO UPDATE SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
		               email = COALESCE(EXCLUDED.email, guardians.email)
		 RETURNING id`,
		schoolID, g.FirstName, g.LastName, g.Phone, g.Email).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error upserting guardian: %w", err)
	}
	return id, nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStudent(row rowScanner) (*models.Student, error) {
	var s models.Student
	err := row.Scan(
		&s.ID, &s.SchoolID, &s.AdmissionNumber, &s.AdmissionDate, &s.FirstName, &s.LastName,
		&s.Email, &s.Phone, &s.DateOfBirth, &s.Gender, &s.Address, &s.Status,
		&s.ExternalIdentityID, &s.StatusMetadata, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
