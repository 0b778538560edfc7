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
	"github.com/mertz/schooladmin/internal/pkg/logger"
)

// DocumentRepository handles document metadata operations. The binaries live
// in file storage; only the storage key is kept here. Rows are removed by the
// database cascade when the owning profile is deleted.
type DocumentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a document metadata row. Exactly one of doc.StudentID and
// doc.TeacherID must be set.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	if err := insertDocument(ctx, r.db, r.sb, doc); err != nil {
		logger.Error().Err(err).Str("name", doc.Name).Msg("Error creating document record")
		return nil, fmt.Errorf("error creating document: %w", err)
	}
	return doc, nil
}

// GetByID retrieves a document by id
func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	sql, args, err := r.sb.Select(documentColumns).
		From("documents").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get document query: %w", err)
	}

	var d models.Document
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&d.ID, &d.StudentID, &d.TeacherID, &d.Name, &d.DocumentType, &d.StorageKey,
		&d.MimeType, &d.FileSize, &d.UploadedBy, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving document: %w", err)
	}
	return &d, nil
}

// ListForStudent retrieves the document metadata of a student
func (r *DocumentRepository) ListForStudent(ctx context.Context, studentID int64) ([]*models.Document, error) {
	return listDocuments(ctx, r.db, r.sb, squirrel.Eq{"student_id": studentID})
}

// ListForTeacher retrieves the document metadata of a teacher
func (r *DocumentRepository) ListForTeacher(ctx context.Context, teacherID int64) ([]*models.Document, error) {
	return listDocuments(ctx, r.db, r.sb, squirrel.Eq{"teacher_id": teacherID})
}

const documentColumns = "id, student_id, teacher_id, name, document_type, storage_key, mime_type, file_size, uploaded_by, created_at"

// rowQuerier is satisfied by both pgx.Tx and *pgxpool.Pool
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func insertDocument(ctx context.Context, q rowQuerier, sb squirrel.StatementBuilderType, doc *models.Document) error {
	sql, args, err := sb.Insert("documents").
		Columns("student_id", "teacher_id", "name", "document_type", "storage_key", "mime_type", "file_size", "uploaded_by").
		Values(doc.StudentID, doc.TeacherID, doc.Name, doc.DocumentType, doc.StorageKey,
			doc.MimeType, doc.FileSize, doc.UploadedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert document query: %w", err)
	}
	return q.QueryRow(ctx, sql, args...).Scan(&doc.ID, &doc.CreatedAt)
}

func listDocuments(ctx context.Context, db *pgxpool.Pool, sb squirrel.StatementBuilderType, cond squirrel.Eq) ([]*models.Document, error) {
	sql, args, err := sb.Select(documentColumns).
		From("documents").
		Where(cond).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list documents query: %w", err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing documents")
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	defer rows.Close()

	documents := make([]*models.Document, 0)
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.StudentID, &d.TeacherID, &d.Name, &d.DocumentType,
			&d.StorageKey, &d.MimeType, &d.FileSize, &d.UploadedBy, &d.CreatedAt); err != nil {
			return nil, err
		}
		documents = append(documents, &d)
	}
	return documents, rows.Err()
}
