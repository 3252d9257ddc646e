package app

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dharvista/site/datamodels"
	"github.com/dharvista/site/resume"
	"github.com/dharvista/site/screening"
	"github.com/dharvista/site/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

type testServer struct {
	app     *App
	handler *gin.Engine
	store   storage.Manager
}

func newTestServer(t *testing.T, screener screening.Screener) *testServer {
	t.Helper()
	ctx := context.Background()
	store, err := storage.NewFileManager(t.TempDir())
	require.NoError(t, err)
	seeded, err := storage.Seed(ctx, store, testNow)
	require.NoError(t, err)
	require.True(t, seeded)

	resumes, err := resume.NewStore(t.TempDir())
	require.NoError(t, err)

	a := New(Deps{
		Config: Config{
			AdminEmail:    "admin@modelcorp.com",
			AdminPassword: "admin123",
			SessionTTL:    time.Hour,
		},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:    store,
		Resumes:  resumes,
		Screener: screener,
		Now:      func() time.Time { return testNow },
	})
	return &testServer{app: a, handler: a.Handler(), store: store}
}

func (ts *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) get(t *testing.T, target string, admin bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if admin {
		ts.authorize(req)
	}
	return ts.do(t, req)
}

func (ts *testServer) postForm(t *testing.T, target string, form url.Values, admin bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if admin {
		ts.authorize(req)
	}
	return ts.do(t, req)
}

func (ts *testServer) authorize(req *http.Request) {
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: ts.app.sessions.Create()})
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func jobCardIDs(doc *goquery.Document) []string {
	var ids []string
	doc.Find("article.job-card").Each(func(_ int, s *goquery.Selection) {
		ids = append(ids, s.AttrOr("data-job-id", ""))
	})
	return ids
}

func TestHomeShowsLatestPublishedJobs(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.get(t, "/", false)
	require.Equal(t, http.StatusOK, rec.Code)

	doc := document(t, rec)
	assert.Equal(t, []string{"1", "2", "job-101", "job-102"}, jobCardIDs(doc))
	assert.Equal(t, 1, doc.Find("#latest-jobs .badge-urgent").Length())
	assert.Contains(t, doc.Find("title").Text(), "Dharvista")
	assert.Equal(t, "300", doc.Find("#whatsapp-float").AttrOr("data-threshold", ""))
}

func TestStaticPages(t *testing.T) {
	ts := newTestServer(t, nil)
	for _, path := range []string{"/about", "/services", "/contact", "/login", "/static/site.js"} {
		rec := ts.get(t, path, false)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestJobsPageFiltersAndFacets(t *testing.T) {
	ts := newTestServer(t, nil)

	doc := document(t, ts.get(t, "/jobs", false))
	assert.Equal(t, []string{"1", "2", "job-101", "job-102"}, jobCardIDs(doc))
	assert.Equal(t, "Showing 4 of 4 Jobs", doc.Find("#results-count").Text())
	assert.Equal(t, 1, doc.Find("#end-of-list").Length())
	assert.Equal(t, 0, doc.Find("#load-more").Length())
	assert.Equal(t, 0, doc.Find("#reset-filters").Length())

	var industries []string
	doc.Find(`select[name="industry"] option`).Each(func(_ int, s *goquery.Selection) {
		industries = append(industries, s.AttrOr("value", ""))
	})
	assert.Equal(t, []string{"", "Construction", "Industrial Safety", "Information Technology"}, industries)

	doc = document(t, ts.get(t, "/jobs?industry=Construction", false))
	assert.Equal(t, []string{"1", "job-101"}, jobCardIDs(doc))
	assert.Equal(t, "Showing 2 of 2 Jobs", doc.Find("#results-count").Text())
	assert.Equal(t, 1, doc.Find("#reset-filters").Length())
	_, selected := doc.Find(`select[name="industry"] option[value="Construction"]`).Attr("selected")
	assert.True(t, selected)

	doc = document(t, ts.get(t, "/jobs?q=REACT", false))
	assert.Equal(t, []string{"job-102"}, jobCardIDs(doc))

	doc = document(t, ts.get(t, "/jobs?q=accounts", false))
	assert.Empty(t, jobCardIDs(doc), "closed jobs are not listed")
	assert.Equal(t, 1, doc.Find("#no-results").Length())
}

func TestJobsPageLoadMore(t *testing.T) {
	ts := newTestServer(t, nil)
	ctx := context.Background()
	for i := range 8 {
		job, err := datamodels.JobDraft{Title: "Machine Operator", Location: "Sivakasi, TN"}.
			Build("extra-"+string(rune('a'+i)), testNow.Add(-time.Duration(20+i)*24*time.Hour))
		require.NoError(t, err)
		require.NoError(t, ts.store.StoreJob(ctx, job))
	}

	doc := document(t, ts.get(t, "/jobs", false))
	assert.Len(t, jobCardIDs(doc), 6)
	assert.Equal(t, "Showing 6 of 12 Jobs", doc.Find("#results-count").Text())
	href := doc.Find("#load-more").AttrOr("href", "")
	assert.Equal(t, "/jobs?show=12", href)

	doc = document(t, ts.get(t, href, false))
	assert.Len(t, jobCardIDs(doc), 12)
	assert.Equal(t, 0, doc.Find("#load-more").Length())

	doc = document(t, ts.get(t, "/jobs?q=operator&show=bogus", false))
	assert.Equal(t, "Showing 6 of 8 Jobs", doc.Find("#results-count").Text())
	assert.Equal(t, "/jobs?q=operator&show=12", doc.Find("#load-more").AttrOr("href", ""))
}

func TestJobDetail(t *testing.T) {
	ts := newTestServer(t, nil)

	doc := document(t, ts.get(t, "/jobs/1", false))
	assert.Equal(t, "Senior Site Engineer", doc.Find("h1").Text())
	assert.Equal(t, "https://forms.google.com", doc.Find("#apply-now").AttrOr("href", ""))
	assert.Equal(t, 2, doc.Find("#eligibility li").Length())
	assert.Equal(t, 1, doc.Find(".badge-urgent").Length())

	doc = document(t, ts.get(t, "/jobs/job-101", false))
	assert.Equal(t, "/contact?job=Junior+Site+Engineer", doc.Find("#apply-now").AttrOr("href", ""))

	rec := ts.get(t, "/jobs/job-103", false)
	require.Equal(t, http.StatusOK, rec.Code)
	doc = document(t, rec)
	assert.Equal(t, 1, doc.Find("#closed-notice").Length())
	assert.Equal(t, 0, doc.Find("#apply-now").Length())

	assert.Equal(t, http.StatusNotFound, ts.get(t, "/jobs/job-104", false).Code, "drafts are hidden")
	assert.Equal(t, http.StatusNotFound, ts.get(t, "/jobs/nope", false).Code)
}

func TestContactPrefillsJob(t *testing.T) {
	ts := newTestServer(t, nil)
	doc := document(t, ts.get(t, "/contact?job=Safety+Supervisor", false))
	assert.Contains(t, doc.Find("#applying-for").Text(), "Safety Supervisor")
	assert.Equal(t, "mailto:careers@dharvista.in?subject=Application%3A%20Safety%20Supervisor", doc.Find("#contact-email").AttrOr("href", ""))
}

func TestContactSubjectKeepsAmpersand(t *testing.T) {
	ts := newTestServer(t, nil)
	doc := document(t, ts.get(t, "/contact?job=R%26D+Engineer", false))
	href := doc.Find("#contact-email").AttrOr("href", "")
	assert.Equal(t, "mailto:careers@dharvista.in?subject=Application%3A%20R%26D%20Engineer", href)

	u, err := url.Parse(href)
	require.NoError(t, err)
	assert.Equal(t, "Application: R&D Engineer", u.Query().Get("subject"))
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.get(t, "/no/such/page", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, document(t, rec).Find(".error-page").Text(), "Page Not Found")
}

func TestAdminRoutesRequireLogin(t *testing.T) {
	ts := newTestServer(t, nil)
	for _, path := range []string{"/admin-dashboard", "/admin/export/applicants.csv"} {
		rec := ts.get(t, path, false)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	}
	rec := ts.postForm(t, "/admin/jobs/1/delete", nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	_, err := ts.store.GetJob(context.Background(), "1")
	assert.NoError(t, err)
}

func TestLoginLogout(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.postForm(t, "/login", url.Values{"email": {"admin@modelcorp.com"}, "password": {"wrong"}}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", document(t, rec).Find("#login-error").Text())

	rec = ts.postForm(t, "/login", url.Values{"email": {"admin@modelcorp.com"}, "password": {"admin123"}}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin-dashboard", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	token := cookies[0]
	assert.Equal(t, sessionCookie, token.Name)
	assert.True(t, token.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/admin-dashboard", nil)
	req.AddCookie(token)
	assert.Equal(t, http.StatusOK, ts.do(t, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(token)
	rec = ts.do(t, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/admin-dashboard", nil)
	req.AddCookie(token)
	assert.Equal(t, http.StatusSeeOther, ts.do(t, req).Code, "revoked token")
}

func TestDashboardViews(t *testing.T) {
	ts := newTestServer(t, nil)

	doc := document(t, ts.get(t, "/admin-dashboard", true))
	assert.Equal(t, 6, doc.Find("#job-list tbody tr").Length())
	assert.Contains(t, doc.Find("#stats").Text(), "Drafts 1")

	doc = document(t, ts.get(t, "/admin-dashboard?view=applicants", true))
	assert.Equal(t, 5, doc.Find("#applicant-list tbody tr").Length())
	assert.Equal(t, 0, doc.Find("[hx-post$='/screen']").Length(), "screening is disabled")

	doc = document(t, ts.get(t, "/admin-dashboard?view=applicants&job=job-102", true))
	assert.Equal(t, 2, doc.Find("#applicant-list tbody tr").Length())
}

func TestCreateJob(t *testing.T) {
	ts := newTestServer(t, nil)
	ctx := context.Background()

	rec := ts.postForm(t, "/admin/jobs", url.Values{"title": {"  "}, "location": {""}, "salaryMin": {"500"}, "salaryMax": {"100"}}, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	doc := document(t, rec)
	for _, field := range []string{"title", "location", "salaryMax"} {
		assert.Equal(t, 1, doc.Find(`#post-job [data-field="`+field+`"]`).Length(), field)
	}
	assert.Equal(t, "500", doc.Find(`input[name="salaryMin"]`).AttrOr("value", ""))
	jobs, err := ts.store.ListJobs(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 6)

	rec = ts.postForm(t, "/admin/jobs", url.Values{
		"title":       {"Welder"},
		"location":    {"Tuticorin, TN"},
		"industry":    {"Shipbuilding"},
		"eligibility": {"ITI Welder\n2+ years"},
		"salaryMin":   {"18000"},
		"salaryMax":   {"24000"},
		"type":        {"contract"},
		"priority":    {"urgent"},
	}, true)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	jobs, err = ts.store.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 7)
	i := slices.IndexFunc(jobs, func(j datamodels.Job) bool { return j.Title == "Welder" })
	require.GreaterOrEqual(t, i, 0)
	created := jobs[i]
	assert.Equal(t, "Welder", created.Title)
	assert.Equal(t, "INR", created.SalaryCurrency)
	assert.Equal(t, datamodels.JobStatusPublished, created.Status)
	assert.True(t, created.IsUrgent())
	assert.Equal(t, testNow, created.CreatedAt.UTC())
}

func TestJobStatusActionsAndDelete(t *testing.T) {
	ts := newTestServer(t, nil)
	ctx := context.Background()

	rec := ts.postForm(t, "/admin/jobs/1/close", nil, true)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	job, err := ts.store.GetJob(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, datamodels.JobStatusClosed, job.Status)
	assert.Equal(t, testNow, job.UpdatedAt.UTC())

	require.Equal(t, http.StatusSeeOther, ts.postForm(t, "/admin/jobs/job-104/publish", nil, true).Code)
	doc := document(t, ts.get(t, "/jobs", false))
	assert.Contains(t, jobCardIDs(doc), "job-104")
	assert.NotContains(t, jobCardIDs(doc), "1")

	require.Equal(t, http.StatusSeeOther, ts.postForm(t, "/admin/jobs/job-102/delete", nil, true).Code)
	_, err = ts.store.GetJob(ctx, "job-102")
	assert.ErrorIs(t, err, storage.ErrJobNotFound)
	applicants, err := ts.store.ListApplicantsForJob(ctx, "job-102")
	require.NoError(t, err)
	assert.Len(t, applicants, 2, "applicants outlive their job")

	assert.Equal(t, http.StatusNotFound, ts.postForm(t, "/admin/jobs/job-102/delete", nil, true).Code)
}

func TestApplicantStatusPartial(t *testing.T) {
	ts := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/hx/applicants/app-001/status", strings.NewReader("status=hired"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	ts.authorize(req)
	rec := ts.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// A bare table row is dropped by the HTML parser outside a table.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table>" + rec.Body.String() + "</table>"))
	require.NoError(t, err)
	row := doc.Find("tr#applicant-app-001")
	require.Equal(t, 1, row.Length())
	assert.Equal(t, "hired", row.AttrOr("data-status", ""))
	assert.Equal(t, "Hired", row.Find(".status-label").Text())
	assert.Equal(t, 0, doc.Find("header").Length(), "partials are rendered without the layout")

	applicant, err := ts.store.GetApplicant(context.Background(), "app-001")
	require.NoError(t, err)
	assert.Equal(t, datamodels.ApplicantStatusHired, applicant.Status)

	rec = ts.postForm(t, "/hx/applicants/app-001/status", url.Values{"status": {"promoted"}}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplicantNotesAndExport(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.postForm(t, "/admin/applicants/app-004/notes", url.Values{"notes": {"Call back Monday"}}, true)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = ts.get(t, "/admin/export/applicants.csv", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "applicants-2025-11-01.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 6)
	assert.Contains(t, rec.Body.String(), "Call back Monday")
}

func TestExportNarrowsToJob(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.get(t, "/admin/export/applicants.csv?job=job-102", true)
	require.Equal(t, http.StatusOK, rec.Code)
	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows[1:] {
		assert.Equal(t, "job-102", row[1])
	}

	doc := document(t, ts.get(t, "/admin-dashboard?view=applicants&job=job-102", true))
	assert.Equal(t, "/admin/export/applicants.csv?job=job-102", doc.Find("#export-csv").AttrOr("href", ""))
	doc = document(t, ts.get(t, "/admin-dashboard?view=applicants", true))
	assert.Equal(t, "/admin/export/applicants.csv", doc.Find("#export-csv").AttrOr("href", ""))
}

func TestRecordApplicant(t *testing.T) {
	ts := newTestServer(t, nil)
	ctx := context.Background()

	rec := ts.postForm(t, "/admin/applicants", url.Values{"jobId": {"missing"}, "name": {"Meena"}, "email": {"not-an-email"}}, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	doc := document(t, rec)
	assert.Equal(t, 1, doc.Find(`[data-field="jobId"]`).Length())
	assert.Equal(t, 1, doc.Find(`[data-field="email"]`).Length())

	rec = ts.postForm(t, "/admin/applicants", url.Values{
		"jobId":      {"2"},
		"name":       {"Meena K"},
		"email":      {"meena@example.com"},
		"resumeLink": {"https://drive.google.com/file/d/meena"},
	}, true)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	applicants, err := ts.store.ListApplicantsForJob(ctx, "2")
	require.NoError(t, err)
	require.Len(t, applicants, 1)
	assert.Equal(t, "Safety Supervisor", applicants[0].JobTitle)
	assert.Equal(t, datamodels.ApplicantStatusNew, applicants[0].Status)
}

func TestResumeNotFound(t *testing.T) {
	ts := newTestServer(t, nil)
	assert.Equal(t, http.StatusNotFound, ts.get(t, "/admin/applicants/app-001/resume", true).Code)
	assert.Equal(t, http.StatusNotFound, ts.get(t, "/admin/applicants/nobody/resume", true).Code)
}

type fakeScreener struct {
	calls int
}

func (f *fakeScreener) ScreenApplicant(_ context.Context, _ *slog.Logger, job datamodels.Job, applicant datamodels.Applicant) (screening.Report, error) {
	f.calls++
	if !applicant.HasResumeText() {
		return screening.Report{}, screening.ErrNoResumeText
	}
	criteria := screening.Checklist(job)
	checklist := make(map[string]screening.CriterionResult)
	for k := range criteria {
		checklist[k] = screening.NewCriterionResult(1)
	}
	return screening.Report{ApplicantID: applicant.ID, Criteria: criteria, Checklist: checklist}, nil
}

func TestScreenApplicant(t *testing.T) {
	fake := &fakeScreener{}
	ts := newTestServer(t, fake)
	ctx := context.Background()

	doc := document(t, ts.get(t, "/admin-dashboard?view=applicants", true))
	assert.Equal(t, 5, doc.Find("[hx-post$='/screen']").Length())

	rec := ts.postForm(t, "/hx/applicants/app-001/screen", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upload a PDF resume")

	applicant, err := ts.store.GetApplicant(ctx, "app-001")
	require.NoError(t, err)
	applicant.ResumeText = "Diploma in civil engineering, one year on site"
	require.NoError(t, ts.store.StoreApplicant(ctx, applicant))

	rec = ts.postForm(t, "/hx/applicants/app-001/screen", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	doc = document(t, rec)
	assert.Equal(t, "Meets 100% of the criteria", doc.Find(".score").Text())
	assert.Equal(t, 2, doc.Find("li.met").Length())
	assert.Equal(t, 2, fake.calls)
}

func TestScreenApplicantDisabled(t *testing.T) {
	ts := newTestServer(t, nil)
	assert.Equal(t, http.StatusNotFound, ts.postForm(t, "/hx/applicants/app-001/screen", nil, true).Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.get(t, "/health", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
