package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dharvista/site/datamodels"
	"github.com/dharvista/site/screening"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applicants() []datamodels.Applicant {
	at := time.Date(2025, 12, 15, 10, 30, 0, 0, time.UTC)
	return []datamodels.Applicant{
		{ID: "app-001", JobID: "1", JobTitle: "Senior Site Engineer", Name: "Karthik Raja", Email: "karthik.r@gmail.com", Phone: "9876543210", AppliedAt: at, Status: datamodels.ApplicantStatusNew, Notes: "Strong, \"quoted\" notes", ResumeText: "secret"},
		{ID: "app-002", JobID: "2", JobTitle: "Safety Supervisor", Name: "Priya Sharma", Email: "priya@example.com", AppliedAt: at.Add(-24 * time.Hour), Status: datamodels.ApplicantStatusHired},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	f, err = ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteApplicantsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteApplicantsCSV(&buf, applicants()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, applicantsHeader, rows[0])
	assert.Equal(t, "Karthik Raja", rows[1][3])
	assert.Equal(t, "2025-12-15T10:30:00Z", rows[1][7])
	assert.Equal(t, "Strong, \"quoted\" notes", rows[1][9])
	assert.Equal(t, "hired", rows[2][8])
}

func TestWriteApplicantsJSONOmitsResumeText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteApplicants(&buf, applicants(), FormatJSON))
	assert.NotContains(t, buf.String(), "secret")

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "app-001", decoded[0]["id"])
	assert.Equal(t, "Senior Site Engineer", decoded[0]["jobTitle"])
}

func TestWriteApplicantsTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteApplicants(&buf, applicants(), FormatTable))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "STATUS")
	assert.Contains(t, lines[1], "Karthik Raja")
	assert.Contains(t, lines[2], "Hired")

	buf.Reset()
	require.NoError(t, WriteApplicants(&buf, nil, FormatTable))
	assert.Equal(t, "No applicants.\n", buf.String())
}

func screeningReports() []screening.Report {
	criteria := map[string]string{"criterion_1": "B.E. Civil", "criterion_2": "AutoCAD"}
	return []screening.Report{
		{
			ApplicantID: "a", ApplicantName: "Zoe", Criteria: criteria,
			Checklist: map[string]screening.CriterionResult{
				"criterion_1": screening.NewCriterionResult(1),
				"criterion_2": screening.NewCriterionResult(0.25),
			},
		},
		{
			ApplicantID: "b", ApplicantName: "Arun", Criteria: criteria,
			Checklist: map[string]screening.CriterionResult{
				"criterion_1": screening.NewCriterionResult(0.75),
				"criterion_2": screening.NewCriterionResult(1),
			},
		},
	}
}

func TestWriteScreeningCSVModes(t *testing.T) {
	reports := screeningReports()
	SortReports(reports)
	assert.Equal(t, "b", reports[0].ApplicantID)

	cases := map[ScreeningMode][]string{
		Boolean:       {"b", "Arun", "true", "true", "1"},
		Probability:   {"b", "Arun", "0.750", "1.000", "1"},
		Inconsistency: {"b", "Arun", "0.500", "0.000", "1"},
	}
	for mode, want := range cases {
		t.Run(mode.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteScreeningCSV(&buf, reports, mode))
			rows, err := csv.NewReader(&buf).ReadAll()
			require.NoError(t, err)
			require.Len(t, rows, 3)
			assert.Equal(t, []string{"ApplicantID", "ApplicantName", "B.E. Civil", "AutoCAD", "FinalScore"}, rows[0])
			assert.Equal(t, want, rows[1])
			assert.Equal(t, "0.5", rows[2][4])
		})
	}
}
