package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/mertz/schooladmin/internal/app/controllers"
	"github.com/mertz/schooladmin/internal/app/models"
	"github.com/mertz/schooladmin/internal/app/models/dto"
	"github.com/mertz/schooladmin/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	schoolController *controllers.SchoolController,
	studentController *controllers.StudentController,
	teacherController *controllers.TeacherController,
	applicationController *controllers.ApplicationController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
	}

	// Public admission application submission
	v1.POST("/applications",
		middleware.ValidateRequest(&dto.SubmitApplicationRequest{}),
		applicationController.SubmitApplication)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/profile", authController.GetProfile)

		// School management: listing is open to any staff, creation is
		// reserved to the platform superadmin
		schools := authenticated.Group("/schools")
		{
			schools.GET("", schoolController.GetSchools)
			schools.GET("/:id", schoolController.GetSchool)

			schoolsSuperadmin := schools.Group("")
			schoolsSuperadmin.Use(authMiddleware.RoleRequired(models.RoleSuperAdmin))
			{
				schoolsSuperadmin.POST("", schoolController.CreateSchool)
			}
		}

		// Profile operations are tenant-scoped; they require a school admin
		// bound to a school
		scoped := authenticated.Group("")
		scoped.Use(authMiddleware.RoleRequired(models.RoleSchoolAdmin), authMiddleware.SchoolScopeRequired())
		{
			students := scoped.Group("/students")
			{
				students.POST("", studentController.CreateStudent)
				students.GET("", studentController.ListStudents)
				students.DELETE("", studentController.BulkDeleteStudents)
				students.GET("/:id", studentController.GetStudent)
				students.PUT("/:id", studentController.UpdateStudent)
				students.POST("/:id/documents", studentController.UploadDocument)
				students.GET("/:id/documents", studentController.ListDocuments)
			}

			teachers := scoped.Group("/teachers")
			{
				teachers.POST("", teacherController.CreateTeacher)
				teachers.GET("", teacherController.ListTeachers)
				teachers.DELETE("", teacherController.BulkDeleteTeachers)
				teachers.GET("/:id", teacherController.GetTeacher)
				teachers.PUT("/:id", teacherController.UpdateTeacher)
				teachers.POST("/:id/documents", teacherController.UploadDocument)
				teachers.GET("/:id/documents", teacherController.ListDocuments)
			}

			applications := scoped.Group("/applications")
			{
				applications.GET("", applicationController.ListApplications)
				applications.POST("/:id/accept", applicationController.AcceptApplication)
				applications.POST("/:id/reject", applicationController.RejectApplication)
			}
		}
	}
}
