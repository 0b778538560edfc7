package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mertz/schooladmin/internal/app/models"
	"github.com/mertz/schooladmin/internal/pkg/apperrors"
	"github.com/mertz/schooladmin/internal/pkg/dberrors"
	"github.com/mertz/schooladmin/internal/pkg/logger"
)

const userColumns = "id, email, password, first_name, last_name, role_type, school_id, is_active, created_at, updated_at, last_login_at"

// UserRepository handles platform staff account operations. Student and
// teacher accounts are not here; they live in the external identity service.
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateUser inserts a staff account
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	sql, args, err := r.sb.Insert("users").
		Columns("email", "password", "first_name", "last_name", "role_type", "school_id", "is_active").
		Values(user.Email, user.Password, user.FirstName, user.LastName, user.RoleType, user.SchoolID, user.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if dberrors.IsUniqueViolation(err) {
			logger.Warn().Str("email", user.Email).Msg("Attempted to create user with duplicate email")
			return nil, apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error creating user")
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a staff account by email
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getRow(ctx, squirrel.Eq{"email": email})
}

// GetUserByID retrieves a staff account by id
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getRow(ctx, squirrel.Eq{"id": id})
}

// EmailExists checks if an email is already registered
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("users").
		Where(squirrel.Eq{"email": email}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build email exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Str("email", email).Msg("Error checking email existence")
		return false, fmt.Errorf("error checking email existence: %w", err)
	}
	return exists, nil
}

// UpdateLastLogin stamps the last successful login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	sql, args, err := r.sb.Update("users").
		Set("last_login_at", at).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update last login query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error updating last login timestamp")
		return fmt.Errorf("error updating last login: %w", err)
	}
	return nil
}

func (r *UserRepository) getRow(ctx context.Context, cond squirrel.Eq) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns).
		From("users").
		Where(cond).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	var u models.User
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.RoleType,
		&u.SchoolID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return &u, nil
}
