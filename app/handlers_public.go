package app

import (
	"log/slog"
	"net/url"
	"strconv"

	"github.com/dharvista/site/datamodels"
	"github.com/dharvista/site/listing"
	"github.com/gin-gonic/gin"
)

type homePageData struct {
	Title      string
	LatestJobs []datamodels.Job
}

func (app *App) homePageHandler(ctx *gin.Context, _ *slog.Logger) (any, error) {
	jobs, err := app.store.ListJobs(ctx.Request.Context())
	if err != nil {
		return nil, err
	}
	return homePageData{
		Title:      "Home",
		LatestJobs: listing.Latest(jobs, listing.LatestCount),
	}, nil
}

type staticPageData struct {
	Title string
}

func (app *App) staticPageHandler(title string) PageDataHandler {
	return func(*gin.Context, *slog.Logger) (any, error) {
		return staticPageData{Title: title}, nil
	}
}

type jobsPageData struct {
	Title       string
	Filter      listing.Filter
	Facets      listing.Facets
	Page        listing.Page
	LoadMoreURL string
}

// jobsQuery builds the /jobs URL for a filter and visible count.
func jobsQuery(f listing.Filter, visible int) string {
	q := url.Values{}
	if f.Search != "" {
		q.Set("q", f.Search)
	}
	if f.Industry != "" {
		q.Set("industry", f.Industry)
	}
	if f.Location != "" {
		q.Set("location", f.Location)
	}
	if visible > listing.PageSize {
		q.Set("show", strconv.Itoa(visible))
	}
	if len(q) == 0 {
		return "/jobs"
	}
	return "/jobs?" + q.Encode()
}

func (app *App) jobsPageHandler(ctx *gin.Context, _ *slog.Logger) (any, error) {
	jobs, err := app.store.ListJobs(ctx.Request.Context())
	if err != nil {
		return nil, err
	}
	published := listing.Published(jobs)
	filter := listing.Filter{
		Search:   ctx.Query("q"),
		Industry: ctx.Query("industry"),
		Location: ctx.Query("location"),
	}
	// A malformed count falls back to the first page.
	visible, _ := strconv.Atoi(ctx.Query("show"))
	page := listing.Paginate(listing.Apply(published, filter), visible)
	return jobsPageData{
		Title:       "Current Openings",
		Filter:      filter,
		Facets:      listing.BuildFacets(published),
		Page:        page,
		LoadMoreURL: jobsQuery(filter, page.NextVisible),
	}, nil
}

type jobDetailData struct {
	Title    string
	Job      datamodels.Job
	ApplyURL string
}

// applyURL is the Google Form of the job, or the contact page prefilled with its title.
func applyURL(job datamodels.Job) string {
	if job.GoogleFormURL != "" {
		return job.GoogleFormURL
	}
	return "/contact?job=" + url.QueryEscape(job.Title)
}

func (app *App) jobDetailHandler(ctx *gin.Context, _ *slog.Logger) (any, error) {
	job, err := app.store.GetJob(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		return nil, err
	}
	// Drafts only exist for admins.
	if job.Status == datamodels.JobStatusDraft {
		return nil, errNotFound
	}
	return jobDetailData{
		Title:    job.Title,
		Job:      job,
		ApplyURL: applyURL(job),
	}, nil
}

type contactPageData struct {
	Title    string
	JobTitle string
}

func (app *App) contactPageHandler(ctx *gin.Context, _ *slog.Logger) (any, error) {
	return contactPageData{
		Title:    "Contact Us",
		JobTitle: ctx.Query("job"),
	}, nil
}
