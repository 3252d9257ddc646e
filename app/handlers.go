package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Setup all of the handlers to their respective endpoints
func (app *App) setupHandlers(r *gin.Engine) {
	r.StaticFS("/static", staticFiles())
	r.GET("/health", app.healthHandler)

	r.GET("/", app.handlePage(app.homePageHandler, pages("home", "job_card")))
	r.GET("/about", app.handlePage(app.staticPageHandler("About Us"), pages("about")))
	r.GET("/services", app.handlePage(app.staticPageHandler("Our Services"), pages("services")))
	r.GET("/jobs", app.handlePage(app.jobsPageHandler, pages("jobs", "job_card")))
	r.GET("/jobs/:id", app.handlePage(app.jobDetailHandler, pages("job_detail")))
	r.GET("/contact", app.handlePage(app.contactPageHandler, pages("contact")))
	r.GET("/login", app.handlePage(app.loginPageHandler, pages("login")))
	r.POST("/login", app.handlePage(app.loginSubmitHandler, pages("login")))
	r.POST("/logout", app.handleAction(app.logoutAction))

	admin := r.Group("", app.requireAdmin)
	dashboard := pages("admin_dashboard", "applicant_row")
	admin.GET("/admin-dashboard", app.handlePage(app.dashboardHandler, dashboard))
	admin.POST("/admin/jobs", app.handlePage(app.createJobHandler, dashboard))
	admin.POST("/admin/jobs/:id/close", app.handleAction(app.jobStatusAction("closed")))
	admin.POST("/admin/jobs/:id/publish", app.handleAction(app.jobStatusAction("published")))
	admin.POST("/admin/jobs/:id/delete", app.handleAction(app.deleteJobAction))
	admin.POST("/admin/applicants", app.handlePage(app.createApplicantHandler, dashboard))
	admin.POST("/admin/applicants/:id/notes", app.handleAction(app.applicantNotesAction))
	admin.POST("/admin/applicants/:id/delete", app.handleAction(app.deleteApplicantAction))
	admin.GET("/admin/applicants/:id/resume", app.resumeFileHandler)
	admin.GET("/admin/export/applicants.csv", app.exportApplicantsHandler)
	admin.POST("/hx/applicants/:id/status", app.handlePage(app.applicantStatusHandler, partial("applicant_row")))
	admin.POST("/hx/applicants/:id/screen", app.handlePage(app.screenApplicantHandler, partial("screening_result")))

	api := r.Group("/api")
	api.POST("/login", app.apiLoginHandler)
	api.GET("/jobs", app.apiListJobs)
	api.GET("/jobs/:id", app.apiGetJob)
	adminAPI := api.Group("", app.requireAdminAPI)
	adminAPI.POST("/jobs", app.apiCreateJob)
	adminAPI.DELETE("/jobs/:id", app.apiDeleteJob)
	adminAPI.PATCH("/jobs/:id/status", app.apiSetJobStatus)
	adminAPI.GET("/applicants", app.apiListApplicants)
	adminAPI.PATCH("/applicants/:id/status", app.apiSetApplicantStatus)

	r.NoRoute(app.notFound)
}

func (app *App) healthHandler(ctx *gin.Context) {
	if _, err := app.store.ListJobs(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
