package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/mertz/schooladmin/internal/app/models"
	"github.com/mertz/schooladmin/internal/app/repositories"
	"github.com/mertz/schooladmin/internal/config"
	"github.com/mertz/schooladmin/internal/db"
	"github.com/mertz/schooladmin/internal/pkg/apperrors"
	"github.com/mertz/schooladmin/internal/pkg/auth"
)

const (
	defaultSchoolName = "Demo School"
	defaultSchoolCode = "DEMO"

	superadminEmail  = "admin@schooladmin.app"
	schoolAdminEmail = "admin@demo.schooladmin.app"
)

// CreateDefaultData seeds a demo school, a platform superadmin and a school
// admin bound to the demo school. Existing records are left alone, so the
// seed is safe to run on every startup.
func CreateDefaultData(ctx context.Context, store *db.PostgresDB, lgr zerolog.Logger) error {
	schoolRepo := repositories.NewSchoolRepository(store.Pool)
	userRepo := repositories.NewUserRepository(store.Pool)

	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	school := &models.School{Name: defaultSchoolName, Code: defaultSchoolCode}
	created, err := schoolRepo.CreateSchool(ctx, school)
	switch {
	case err == nil:
		school = created
		lgr.Info().Int64("schoolID", school.ID).Msg("Default school created")
	case errors.Is(err, apperrors.ErrSchoolAlreadyExists):
		// Already seeded; find the existing id for the school admin below
		schools, errGet := schoolRepo.GetAll(ctx)
		if errGet != nil {
			return errors.Join(finalErr, errGet)
		}
		for _, s := range schools {
			if s.Code == defaultSchoolCode {
				school = s
				break
			}
		}
	default:
		lgr.Error().Err(err).Msg("Error creating default school")
		return errors.Join(finalErr, err)
	}

	// Seed passwords come from the environment so they never land in source
	// control; the fallback is for local development only.
	seedPassword := config.GetEnv("SEED_ADMIN_PASSWORD", "ChangeMe123!")
	hashed, err := auth.HashPassword(seedPassword)
	if err != nil {
		return errors.Join(finalErr, err)
	}

	if err := seedUser(ctx, userRepo, lgr, &models.User{
		Email:     superadminEmail,
		Password:  hashed,
		FirstName: "Platform",
		LastName:  "Admin",
		RoleType:  models.RoleSuperAdmin,
		IsActive:  true,
	}); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	if school.ID > 0 {
		if err := seedUser(ctx, userRepo, lgr, &models.User{
			Email:     schoolAdminEmail,
			Password:  hashed,
			FirstName: "School",
			LastName:  "Admin",
			RoleType:  models.RoleSchoolAdmin,
			SchoolID:  &school.ID,
			IsActive:  true,
		}); err != nil {
			finalErr = errors.Join(finalErr, err)
		}
	}

	return finalErr
}

func seedUser(ctx context.Context, userRepo *repositories.UserRepository, lgr zerolog.Logger, user *models.User) error {
	exists, err := userRepo.EmailExists(ctx, user.Email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if _, err := userRepo.CreateUser(ctx, user); err != nil && !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		lgr.Error().Err(err).Str("email", user.Email).Msg("Error creating seed user")
		return err
	}

	lgr.Info().Str("email", user.Email).Str("roleType", string(user.RoleType)).Msg("Seed user created")
	return nil
}
