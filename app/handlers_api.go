package app

import (
	"errors"
	"net/http"

	"github.com/dharvista/site/datamodels"
	"github.com/dharvista/site/listing"
	"github.com/dharvista/site/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// jobRequest is the body of POST /api/jobs. Its fields line up with datamodels.JobDraft.
type jobRequest struct {
	Title         string `json:"title" binding:"required"`
	Location      string `json:"location" binding:"required"`
	Industry      string `json:"industry"`
	Description   string `json:"description"`
	Eligibility   string `json:"eligibility"`
	SalaryMin     int    `json:"salaryMin" binding:"gte=0"`
	SalaryMax     int    `json:"salaryMax" binding:"gte=0"`
	ExperienceMin int    `json:"experienceMin" binding:"gte=0"`
	ExperienceMax int    `json:"experienceMax" binding:"gte=0"`
	Type          string `json:"type" binding:"omitempty,oneof=full-time part-time contract internship freelance"`
	Status        string `json:"status" binding:"omitempty,oneof=draft published closed"`
	Priority      string `json:"priority" binding:"omitempty,oneof=normal featured urgent"`
	GoogleFormURL string `json:"googleFormUrl" binding:"omitempty,url"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// apiError writes err as {"error": "..."} with the status it maps to.
func (app *App) apiError(ctx *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}
	var verr *datamodels.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	if status == http.StatusInternalServerError {
		app.logger.Error("API request failed", "path", ctx.Request.URL.Path, "error", err)
		body["error"] = "internal error"
	}
	ctx.JSON(status, body)
}

func (app *App) apiListJobs(ctx *gin.Context) {
	jobs, err := app.store.ListJobs(ctx.Request.Context())
	if err != nil {
		app.apiError(ctx, err)
		return
	}
	if !app.isAdmin(ctx) {
		jobs = listing.Published(jobs)
	}
	dtos := make([]storage.JobDTO, len(jobs))
	for i, j := range jobs {
		dtos[i] = storage.JobDTO(j)
	}
	ctx.JSON(http.StatusOK, dtos)
}

func (app *App) apiGetJob(ctx *gin.Context) {
	job, err := app.store.GetJob(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		app.apiError(ctx, err)
		return
	}
	if job.Status == datamodels.JobStatusDraft && !app.isAdmin(ctx) {
		app.apiError(ctx, storage.ErrJobNotFound)
		return
	}
	ctx.JSON(http.StatusOK, storage.JobDTO(job))
}

func (app *App) apiCreateJob(ctx *gin.Context) {
	var req jobRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		app.apiError(ctx, badRequest(err))
		return
	}
	job, err := datamodels.JobDraft(req).Build(uuid.New().String(), app.now())
	if err != nil {
		app.apiError(ctx, err)
		return
	}
	if err := app.store.StoreJob(ctx.Request.Context(), job); err != nil {
		app.apiError(ctx, err)
		return
	}
	app.logger.Info("Created job via API", "job", job.ID)
	ctx.JSON(http.StatusCreated, storage.JobDTO(job))
}

func (app *App) apiDeleteJob(ctx *gin.Context) {
	if err := app.store.DeleteJob(ctx.Request.Context(), ctx.Param("id")); err != nil {
		app.apiError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (app *App) apiSetJobStatus(ctx *gin.Context) {
	var req statusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		app.apiError(ctx, badRequest(err))
		return
	}
	status, err := datamodels.ParseJobStatus(req.Status)
	if err != nil {
		app.apiError(ctx, badRequest(err))
		return
	}
	reqCtx := ctx.Request.Context()
	if err := app.setJobStatus(reqCtx, ctx.Param("id"), status); err != nil {
		app.apiError(ctx, err)
		return
	}
	job, err := app.store.GetJob(reqCtx, ctx.Param("id"))
	if err != nil {
		app.apiError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, storage.JobDTO(job))
}

func (app *App) apiListApplicants(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	var applicants []datamodels.Applicant
	var err error
	if jobID := ctx.Query("job"); jobID != "" {
		applicants, err = app.store.ListApplicantsForJob(reqCtx, jobID)
	} else {
		applicants, err = app.store.ListApplicants(reqCtx)
	}
	if err != nil {
		app.apiError(ctx, err)
		return
	}
	dtos := make([]storage.ApplicantDTO, len(applicants))
	for i, a := range applicants {
		a.ResumeText = ""
		dtos[i] = storage.ApplicantDTO(a)
	}
	ctx.JSON(http.StatusOK, dtos)
}

func (app *App) apiSetApplicantStatus(ctx *gin.Context) {
	var req statusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		app.apiError(ctx, badRequest(err))
		return
	}
	status, err := datamodels.ParseApplicantStatus(req.Status)
	if err != nil {
		app.apiError(ctx, badRequest(err))
		return
	}
	reqCtx := ctx.Request.Context()
	applicant, err := app.store.GetApplicant(reqCtx, ctx.Param("id"))
	if err != nil {
		app.apiError(ctx, err)
		return
	}
	applicant.Status = status
	if err := app.store.StoreApplicant(reqCtx, applicant); err != nil {
		app.apiError(ctx, err)
		return
	}
	applicant.ResumeText = ""
	ctx.JSON(http.StatusOK, storage.ApplicantDTO(applicant))
}
