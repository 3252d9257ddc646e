package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"slices"
	"time"

	"github.com/dharvista/site/datamodels"
	"github.com/dharvista/site/report"
	"github.com/dharvista/site/resume"
	"github.com/dharvista/site/screening"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	viewJobs       = "jobs"
	viewApplicants = "applicants"
)

// jobForm is the job posting form. Its fields line up with datamodels.JobDraft.
type jobForm struct {
	Title         string `form:"title"`
	Location      string `form:"location"`
	Industry      string `form:"industry"`
	Description   string `form:"description"`
	Eligibility   string `form:"eligibility"`
	SalaryMin     int    `form:"salaryMin"`
	SalaryMax     int    `form:"salaryMax"`
	ExperienceMin int    `form:"experienceMin"`
	ExperienceMax int    `form:"experienceMax"`
	Type          string `form:"type"`
	Status        string `form:"status"`
	Priority      string `form:"priority"`
	GoogleFormURL string `form:"googleFormUrl"`
}

// applicantForm is the applicant form. Its fields line up with datamodels.ApplicantDraft.
type applicantForm struct {
	JobID      string `form:"jobId"`
	Name       string `form:"name"`
	Email      string `form:"email"`
	Phone      string `form:"phone"`
	ResumeLink string `form:"resumeLink"`
	Notes      string `form:"notes"`
}

type jobStats struct {
	Total, Published, Closed, Drafts, NewApplicants int
}

// applicantRowData is what the applicant_row partial renders.
type applicantRowData struct {
	Applicant        datamodels.Applicant
	Statuses         []datamodels.ApplicantStatus
	ScreeningEnabled bool
}

type dashboardData struct {
	Title            string
	View             string
	Jobs             []datamodels.Job
	Stats            jobStats
	JobFilter        string
	ScreeningEnabled bool

	JobForm         jobForm
	JobErrors       map[string]string
	ApplicantForm   applicantForm
	ApplicantErrors map[string]string

	JobTypes          []datamodels.JobType
	JobStatuses       []datamodels.JobStatus
	JobPriorities     []datamodels.JobPriority
	ApplicantStatuses []datamodels.ApplicantStatus

	applicants []datamodels.Applicant
}

// ApplicantRows pairs each applicant with the options its row needs.
func (d dashboardData) ApplicantRows() []applicantRowData {
	rows := make([]applicantRowData, 0, len(d.applicants))
	for _, a := range d.applicants {
		rows = append(rows, applicantRowData{a, d.ApplicantStatuses, d.ScreeningEnabled})
	}
	return rows
}

func (app *App) loadDashboard(ctx context.Context, view, jobFilter string) (dashboardData, error) {
	jobs, err := app.store.ListJobs(ctx)
	if err != nil {
		return dashboardData{}, err
	}
	applicants, err := app.store.ListApplicants(ctx)
	if err != nil {
		return dashboardData{}, err
	}
	if view != viewApplicants {
		view = viewJobs
	}
	d := dashboardData{
		Title:             "Admin Dashboard",
		View:              view,
		Jobs:              jobs,
		JobFilter:         jobFilter,
		ScreeningEnabled:  app.screener != nil,
		JobTypes:          datamodels.JobTypes(),
		JobStatuses:       datamodels.JobStatuses(),
		JobPriorities:     datamodels.JobPriorities(),
		ApplicantStatuses: datamodels.ApplicantStatuses(),
	}
	for _, j := range jobs {
		d.Stats.Total++
		switch j.Status {
		case datamodels.JobStatusPublished:
			d.Stats.Published++
		case datamodels.JobStatusClosed:
			d.Stats.Closed++
		case datamodels.JobStatusDraft:
			d.Stats.Drafts++
		}
	}
	for _, a := range applicants {
		if a.Status == datamodels.ApplicantStatusNew {
			d.Stats.NewApplicants++
		}
	}
	if jobFilter != "" {
		applicants = slices.DeleteFunc(applicants, func(a datamodels.Applicant) bool { return a.JobID != jobFilter })
	}
	d.applicants = applicants
	return d, nil
}

func (app *App) dashboardHandler(ctx *gin.Context, _ *slog.Logger) (any, error) {
	return app.loadDashboard(ctx.Request.Context(), ctx.Query("view"), ctx.Query("job"))
}

func (app *App) createJobHandler(ctx *gin.Context, logger *slog.Logger) (any, error) {
	var form jobForm
	verr := &datamodels.ValidationError{}
	if err := ctx.ShouldBind(&form); err != nil {
		verr.Merge(badRequest(err))
	}
	var job datamodels.Job
	if verr.OrNil() == nil {
		var err error
		job, err = datamodels.JobDraft(form).Build(uuid.New().String(), app.now())
		verr.Merge(err)
	}
	if verr.OrNil() != nil {
		logger.Info("Rejected job posting", "error", verr)
		d, err := app.loadDashboard(ctx.Request.Context(), viewJobs, "")
		if err != nil {
			return nil, err
		}
		d.JobForm = form
		d.JobErrors = verr.Fields
		ctx.Status(http.StatusUnprocessableEntity)
		return d, nil
	}
	if err := app.store.StoreJob(ctx.Request.Context(), job); err != nil {
		return nil, err
	}
	logger.Info("Created job", "job", job.ID, "title", job.Title)
	return redirectTo("/admin-dashboard?view=jobs"), nil
}

func (app *App) jobStatusAction(status datamodels.JobStatus) ActionHandler {
	return func(ctx *gin.Context, logger *slog.Logger) (string, error) {
		if err := app.setJobStatus(ctx.Request.Context(), ctx.Param("id"), status); err != nil {
			return "", err
		}
		logger.Info("Changed job status", "job", ctx.Param("id"), "status", status)
		return "/admin-dashboard?view=jobs", nil
	}
}

func (app *App) setJobStatus(ctx context.Context, id string, status datamodels.JobStatus) error {
	job, err := app.store.GetJob(ctx, id)
	if err != nil {
		return err
	}
	return app.store.StoreJob(ctx, job.WithStatus(status, app.now()))
}

func (app *App) deleteJobAction(ctx *gin.Context, logger *slog.Logger) (string, error) {
	if err := app.store.DeleteJob(ctx.Request.Context(), ctx.Param("id")); err != nil {
		return "", err
	}
	logger.Info("Deleted job", "job", ctx.Param("id"))
	return "/admin-dashboard?view=jobs", nil
}

func (app *App) createApplicantHandler(ctx *gin.Context, logger *slog.Logger) (any, error) {
	var form applicantForm
	verr := &datamodels.ValidationError{}
	if err := ctx.ShouldBind(&form); err != nil {
		verr.Merge(badRequest(err))
	}
	id := uuid.New().String()

	var job datamodels.Job
	if form.JobID != "" {
		var err error
		job, err = app.store.GetJob(ctx.Request.Context(), form.JobID)
		if err != nil {
			verr.Add("jobId", "is not a known job")
		}
	}
	applicant, err := datamodels.ApplicantDraft(form).Build(id, job, app.now())
	verr.Merge(err)

	var pdfData []byte
	if fh, err := ctx.FormFile("resume"); err == nil {
		pdfData, err = readResumeUpload(fh)
		if err != nil {
			verr.Add("resume", err.Error())
		}
	}

	if verr.OrNil() != nil {
		logger.Info("Rejected applicant", "error", verr)
		d, err := app.loadDashboard(ctx.Request.Context(), viewApplicants, "")
		if err != nil {
			return nil, err
		}
		d.ApplicantForm = form
		d.ApplicantErrors = verr.Fields
		ctx.Status(http.StatusUnprocessableEntity)
		return d, nil
	}

	if pdfData != nil {
		if err := app.resumes.Save(id, pdfData); err != nil {
			return nil, err
		}
		applicant.ResumeLink = "/admin/applicants/" + id + "/resume"
		text, err := resume.ExtractText(pdfData)
		if err != nil {
			logger.Warn("Could not extract resume text", "applicant", id, "error", err)
		}
		applicant.ResumeText = text
	}
	if err := app.store.StoreApplicant(ctx.Request.Context(), applicant); err != nil {
		return nil, err
	}
	logger.Info("Recorded applicant", "applicant", id, "job", job.ID)
	return redirectTo("/admin-dashboard?view=applicants"), nil
}

func readResumeUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return resume.ReadUpload(f)
}

func (app *App) applicantStatusHandler(ctx *gin.Context, logger *slog.Logger) (any, error) {
	status, err := datamodels.ParseApplicantStatus(ctx.PostForm("status"))
	if err != nil {
		return nil, badRequest(err)
	}
	applicant, err := app.store.GetApplicant(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		return nil, err
	}
	applicant.Status = status
	if err := app.store.StoreApplicant(ctx.Request.Context(), applicant); err != nil {
		return nil, err
	}
	logger.Info("Changed applicant status", "applicant", applicant.ID, "status", status)
	return applicantRowData{applicant, datamodels.ApplicantStatuses(), app.screener != nil}, nil
}

func (app *App) applicantNotesAction(ctx *gin.Context, logger *slog.Logger) (string, error) {
	applicant, err := app.store.GetApplicant(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		return "", err
	}
	applicant.Notes = ctx.PostForm("notes")
	if err := app.store.StoreApplicant(ctx.Request.Context(), applicant); err != nil {
		return "", err
	}
	logger.Info("Updated applicant notes", "applicant", applicant.ID)
	return "/admin-dashboard?view=applicants", nil
}

func (app *App) deleteApplicantAction(ctx *gin.Context, logger *slog.Logger) (string, error) {
	id := ctx.Param("id")
	if err := app.store.DeleteApplicant(ctx.Request.Context(), id); err != nil {
		return "", err
	}
	if err := app.resumes.Delete(id); err != nil {
		logger.Warn("Could not remove resume file", "applicant", id, "error", err)
	}
	logger.Info("Deleted applicant", "applicant", id)
	return "/admin-dashboard?view=applicants", nil
}

func (app *App) resumeFileHandler(ctx *gin.Context) {
	logger := app.requestLogger(ctx)
	id := ctx.Param("id")
	if _, err := app.store.GetApplicant(ctx.Request.Context(), id); err != nil {
		app.renderError(ctx, logger, err)
		return
	}
	path, err := app.resumes.Path(id)
	if err != nil {
		app.renderError(ctx, logger, err)
		return
	}
	ctx.Header("Content-Type", "application/pdf")
	ctx.File(path)
}

func (app *App) exportApplicantsHandler(ctx *gin.Context) {
	logger := app.requestLogger(ctx)
	var applicants []datamodels.Applicant
	var err error
	jobID := ctx.Query("job")
	if jobID != "" {
		applicants, err = app.store.ListApplicantsForJob(ctx.Request.Context(), jobID)
	} else {
		applicants, err = app.store.ListApplicants(ctx.Request.Context())
	}
	if err != nil {
		app.renderError(ctx, logger, err)
		return
	}
	name := fmt.Sprintf("applicants-%s.csv", app.now().Format("2006-01-02"))
	ctx.Header("Content-Type", "text/csv; charset=utf-8")
	ctx.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	ctx.Status(http.StatusOK)
	if err := report.WriteApplicantsCSV(ctx.Writer, applicants); err != nil {
		logger.Error("CSV export failed", "error", err)
		return
	}
	logger.Info("Finished request", "exported", len(applicants), "job", jobID)
}

type screeningResultData struct {
	ApplicantID string
	Report      *screening.Report
	Message     string
	Rows        []screeningRow
}

type screeningRow struct {
	Criterion string
	Result    screening.CriterionResult
}

func (app *App) screenApplicantHandler(ctx *gin.Context, logger *slog.Logger) (any, error) {
	if app.screener == nil {
		return nil, errNotFound
	}
	reqCtx := ctx.Request.Context()
	applicant, err := app.store.GetApplicant(reqCtx, ctx.Param("id"))
	if err != nil {
		return nil, err
	}
	data := screeningResultData{ApplicantID: applicant.ID}
	job, err := app.store.GetJob(reqCtx, applicant.JobID)
	if err != nil {
		return nil, fmt.Errorf("job of applicant %s: %w", applicant.ID, err)
	}
	reqCtx, cancel := context.WithTimeout(reqCtx, 2*time.Minute)
	defer cancel()
	rep, err := app.screener.ScreenApplicant(reqCtx, logger, job, applicant)
	if errors.Is(err, screening.ErrNoResumeText) {
		data.Message = "Upload a PDF resume to screen this applicant."
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	if len(rep.Criteria) == 0 {
		data.Message = "This job has no eligibility criteria to screen against."
		return data, nil
	}
	data.Report = &rep
	for _, k := range rep.Keys() {
		data.Rows = append(data.Rows, screeningRow{rep.Criteria[k], rep.Checklist[k]})
	}
	return data, nil
}
