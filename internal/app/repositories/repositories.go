package repositories

import (
	"github.com/mertz/schooladmin/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository     *UserRepository
	SchoolRepository   *SchoolRepository
	StudentRepository  *StudentRepository
	TeacherRepository  *TeacherRepository
	GuardianRepository *GuardianRepository
	DocumentRepository *DocumentRepository
}

// NewRepositories initializes all repositories. The student and teacher
// repositories take the full store handle because their multi-row writes run
// through WithTransaction; the rest only need the pool.
func NewRepositories(store *db.PostgresDB) *Repositories {
	return &Repositories{
		UserRepository:     NewUserRepository(store.Pool),
		SchoolRepository:   NewSchoolRepository(store.Pool),
		StudentRepository:  NewStudentRepository(store),
		TeacherRepository:  NewTeacherRepository(store),
		GuardianRepository: NewGuardianRepository(store.Pool),
		DocumentRepository: NewDocumentRepository(store.Pool),
	}
}
