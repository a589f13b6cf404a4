package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-admin-gateway/internal/middleware"
	"github.com/noah-isme/edu-admin-gateway/internal/models"
	"github.com/noah-isme/edu-admin-gateway/internal/session"
)

// Handlers bundles every route group the gateway serves.
type Handlers struct {
	Auth        *AuthHandler
	Taxonomy    *TaxonomyHandler
	Teachers    *TeacherHandler
	Classes     *ClassHandler
	Schedule    *ScheduleHandler
	Papers      *PaperHandler
	Students    *StudentHandler
	Enrollments *EnrollmentHandler
	Results     *ResultHandler
	Uploads     *UploadHandler
}

// RegisterRoutes mounts the admin API under the given prefix. Everything
// except sign-in and signed downloads sits behind Auth; all routes require
// the admin role except the teacher-readable result report.
func RegisterRoutes(r *gin.Engine, prefix string, resolver *session.Resolver, h Handlers) {
	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/sign-in", h.Auth.SignIn)
		auth.POST("/verify-otp", h.Auth.VerifyOTP)
		auth.POST("/sign-out", middleware.Auth(resolver), h.Auth.SignOut)
		auth.GET("/me", middleware.Auth(resolver), h.Auth.Me)
	}

	// Signed token is the credential here; the browser hits it as a plain
	// link with no Authorization header.
	api.GET("/results/exports/download", h.Results.Download)

	admin := api.Group("")
	admin.Use(middleware.Auth(resolver), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/grades", h.Taxonomy.Grades)
		admin.GET("/grades/watch", h.Taxonomy.WatchGrades)
		admin.GET("/subjects", h.Taxonomy.Subjects)
		admin.POST("/subjects", h.Taxonomy.CreateSubject)
		admin.PATCH("/subjects/:id", h.Taxonomy.RenameSubject)
		admin.DELETE("/subjects/:id", h.Taxonomy.DeleteSubject)
		admin.GET("/streams", h.Taxonomy.Streams)
		admin.POST("/streams", h.Taxonomy.CreateStream)
		admin.PATCH("/streams/:id", h.Taxonomy.RenameStream)
		admin.DELETE("/streams/:id", h.Taxonomy.DeleteStream)
		admin.GET("/stream-subjects", h.Taxonomy.StreamSubjects)
		admin.POST("/stream-subjects", h.Taxonomy.CreateStreamSubject)
		admin.PATCH("/stream-subjects/:id", h.Taxonomy.RenameStreamSubject)
		admin.DELETE("/stream-subjects/:id", h.Taxonomy.DeleteStreamSubject)

		admin.GET("/teachers", h.Teachers.List)
		admin.GET("/teachers/watch", h.Teachers.Watch)
		admin.GET("/teachers/:id", h.Teachers.Get)
		admin.PATCH("/teachers/:id/approve", h.Teachers.Approve)
		admin.PATCH("/teachers/:id/reject", h.Teachers.Reject)
		admin.PATCH("/teachers/:id/active", h.Teachers.SetActive)
		admin.GET("/teachers/:id/assignments", h.Teachers.Assignments)
		admin.POST("/teachers/:id/assignments", h.Teachers.Assign)
		admin.DELETE("/teachers/:id/assignments/:assignmentId", h.Teachers.RemoveAssignment)

		admin.GET("/classes", h.Classes.List)
		admin.GET("/classes/:id", h.Classes.Get)
		admin.POST("/classes", h.Classes.Create)
		admin.PATCH("/classes/:id", h.Classes.Update)
		admin.DELETE("/classes/:id", h.Classes.Delete)

		admin.GET("/lessons", h.Schedule.Lessons)
		admin.POST("/lessons", h.Schedule.CreateLesson)
		admin.PATCH("/lessons/:id", h.Schedule.UpdateLesson)
		admin.DELETE("/lessons/:id", h.Schedule.DeleteLesson)
		admin.GET("/lives", h.Schedule.Lives)
		admin.POST("/lives", h.Schedule.CreateLive)
		admin.PATCH("/lives/:id", h.Schedule.UpdateLive)
		admin.DELETE("/lives/:id", h.Schedule.DeleteLive)

		admin.GET("/papers", h.Papers.List)
		admin.GET("/papers/view", h.Papers.View)
		admin.GET("/papers/:id", h.Papers.Get)
		admin.POST("/papers", h.Papers.Create)
		admin.PATCH("/papers/:id", h.Papers.Update)
		admin.PATCH("/papers/:id/publish", h.Papers.Publish)
		admin.DELETE("/papers/:id", h.Papers.Delete)
		admin.GET("/papers/:id/questions", h.Papers.Questions)
		admin.POST("/papers/:id/questions", h.Papers.CreateQuestion)
		admin.PATCH("/papers/:id/questions/:questionId", h.Papers.UpdateQuestion)
		admin.DELETE("/papers/:id/questions/:questionId", h.Papers.DeleteQuestion)

		admin.GET("/students", h.Students.List)
		admin.POST("/students/search", h.Students.Search)
		admin.GET("/students/page", h.Students.Page)
		admin.GET("/students/watch", h.Students.Watch)
		admin.GET("/students/:id", h.Students.Get)
		admin.PATCH("/students/:id/ban", h.Students.Ban)
		admin.PATCH("/students/:id/unban", h.Students.Unban)

		admin.GET("/enrollments", h.Enrollments.Pending)
		admin.GET("/enrollments/watch", h.Enrollments.Watch)
		admin.PATCH("/enrollments/:id/approve", h.Enrollments.Approve)
		admin.PATCH("/enrollments/:id/reject", h.Enrollments.Reject)

		admin.GET("/results/admin", h.Results.AdminRows)
		admin.POST("/results/exports", h.Results.RequestExport)
		admin.GET("/results/exports/:id", h.Results.ExportStatus)

		admin.POST("/uploads", h.Uploads.UploadImage)
	}

	// Teachers read their own result report; everything else stays admin.
	reports := api.Group("")
	reports.Use(middleware.Auth(resolver), middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher))
	{
		reports.GET("/results", h.Results.Rows)
	}
}
