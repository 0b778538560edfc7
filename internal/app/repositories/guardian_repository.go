package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mertz/schooladmin/internal/app/models"
	"github.com/mertz/schooladmin/internal/pkg/logger"
)

// GuardianRepository handles guardian reads. Guardian writes happen inside
// the student transactions in StudentRepository.
type GuardianRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewGuardianRepository creates a new GuardianRepository
func NewGuardianRepository(db *pgxpool.Pool) *GuardianRepository {
	return &GuardianRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetForStudent retrieves the guardians linked to a student, with the
// relation label of each link.
func (r *GuardianRepository) GetForStudent(ctx context.Context, studentID int64) ([]*models.Guardian, error) {
	return loadGuardiansForStudent(ctx, r.db, r.sb, studentID)
}

// FindOrphanCandidates returns the ids of guardians whose only link is to the
// given student. Deleting that student leaves them unreferenced, so the
// deletion transaction removes them as well. The set is computed before the
// transaction starts.
func (r *GuardianRepository) FindOrphanCandidates(ctx context.Context, studentID int64) ([]int64, error) {
	sql, args, err := r.sb.Select("g.id").
		From("guardians g").
		Join("guardian_links gl ON gl.guardian_id = g.id").
		Where(squirrel.Eq{"gl.student_id": studentID}).
		Where(squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM guardian_links other WHERE other.guardian_id = g.id AND other.student_id <> ?)",
			studentID)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build orphan candidates query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error querying orphan guardian candidates")
		return nil, fmt.Errorf("error finding orphan guardian candidates: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// loadGuardiansForStudent is shared with StudentRepository for relation loading
func loadGuardiansForStudent(ctx context.Context, db *pgxpool.Pool, sb squirrel.StatementBuilderType, studentID int64) ([]*models.Guardian, error) {
	sql, args, err := sb.Select("g.id", "g.school_id", "g.first_name", "g.last_name", "g.phone", "g.email", "g.created_at", "gl.relation").
		From("guardians g").
		Join("guardian_links gl ON gl.guardian_id = g.id").
		Where(squirrel.Eq{"gl.student_id": studentID}).
		OrderBy("gl.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build guardians query: %w", err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error querying guardians for student")
		return nil, fmt.Errorf("error retrieving guardians: %w", err)
	}
	defer rows.Close()

	guardians := make([]*models.Guardian, 0, 2)
	for rows.Next() {
		var g models.Guardian
		if err := rows.Scan(&g.ID, &g.SchoolID, &g.FirstName, &g.LastName, &g.Phone, &g.Email, &g.CreatedAt, &g.Relation); err != nil {
			return nil, err
		}
		guardians = append(guardians, &g)
	}
	return guardians, rows.Err()
}
