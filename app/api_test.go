package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dharvista/site/datamodels"
	"github.com/dharvista/site/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) api(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return ts.do(t, req)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestAPIPublicJobs(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.api(t, http.MethodGet, "/api/jobs", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	jobs := decode[[]storage.JobDTO](t, rec)
	require.Len(t, jobs, 4)
	assert.Equal(t, "1", jobs[0].ID)

	rec = ts.api(t, http.MethodGet, "/api/jobs/job-101", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Junior Site Engineer", decode[storage.JobDTO](t, rec).Title)

	rec = ts.api(t, http.MethodGet, "/api/jobs/job-104", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, storage.ErrJobNotFound.Error(), decode[map[string]any](t, rec)["error"])
}

func TestAPIRequiresToken(t *testing.T) {
	ts := newTestServer(t, nil)
	for _, c := range []struct{ method, target, body string }{
		{http.MethodPost, "/api/jobs", `{"title":"x","location":"y"}`},
		{http.MethodDelete, "/api/jobs/1", ""},
		{http.MethodPatch, "/api/jobs/1/status", `{"status":"closed"}`},
		{http.MethodGet, "/api/applicants", ""},
		{http.MethodPatch, "/api/applicants/app-001/status", `{"status":"hired"}`},
	} {
		rec := ts.api(t, c.method, c.target, c.body, "not-a-token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, c.target)
	}
}

func TestAPILoginAndManageJobs(t *testing.T) {
	ts := newTestServer(t, nil)
	ctx := context.Background()

	rec := ts.api(t, http.MethodPost, "/api/login", `{"email":"admin@modelcorp.com","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.api(t, http.MethodPost, "/api/login", `{"email":"admin@modelcorp.com","password":"admin123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[map[string]string](t, rec)["token"]
	require.NotEmpty(t, token)

	rec = ts.api(t, http.MethodGet, "/api/jobs", "", token)
	assert.Len(t, decode[[]storage.JobDTO](t, rec), 6, "admins see drafts and closed jobs")

	rec = ts.api(t, http.MethodPost, "/api/jobs", `{"location":"Chennai, TN","salaryMin":-1,"type":"gig"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.api(t, http.MethodPost, "/api/jobs", `{"title":"Electrician","location":"Chennai, TN","salaryMin":30000,"salaryMax":20000}`, token)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	fields := decode[map[string]any](t, rec)["fields"].(map[string]any)
	assert.Contains(t, fields, "salaryMax")

	rec = ts.api(t, http.MethodPost, "/api/jobs", `{"title":"Electrician","location":"Chennai, TN","type":"part-time","eligibility":"ITI Electrician"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[storage.JobDTO](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, datamodels.JobTypePartTime, created.Type)
	assert.Equal(t, "INR", created.SalaryCurrency)

	rec = ts.api(t, http.MethodPatch, "/api/jobs/"+created.ID+"/status", `{"status":"closed"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, datamodels.JobStatusClosed, decode[storage.JobDTO](t, rec).Status)

	rec = ts.api(t, http.MethodPatch, "/api/jobs/"+created.ID+"/status", `{"status":"archived"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.api(t, http.MethodDelete, "/api/jobs/"+created.ID, "", token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, err := ts.store.GetJob(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrJobNotFound)

	rec = ts.api(t, http.MethodDelete, "/api/jobs/"+created.ID, "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIApplicants(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.app.sessions.Create()

	rec := ts.api(t, http.MethodGet, "/api/applicants", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]storage.ApplicantDTO](t, rec), 5)

	rec = ts.api(t, http.MethodGet, "/api/applicants?job=job-102", "", token)
	assert.Len(t, decode[[]storage.ApplicantDTO](t, rec), 2)

	rec = ts.api(t, http.MethodPatch, "/api/applicants/app-002/status", `{"status":"hired"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, datamodels.ApplicantStatusHired, decode[storage.ApplicantDTO](t, rec).Status)

	rec = ts.api(t, http.MethodPatch, "/api/applicants/nobody/status", `{"status":"hired"}`, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
