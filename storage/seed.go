package storage

import (
	"context"
	"time"

	"github.com/dharvista/site/datamodels"
)

// SampleJobs returns the demo postings, created relative to now.
func SampleJobs(now time.Time) []datamodels.Job {
	at := func(daysAgo int) time.Time { return now.Add(-time.Duration(daysAgo) * 24 * time.Hour) }
	return []datamodels.Job{
		{
			ID:             "1",
			Title:          "Senior Site Engineer",
			Location:       "Chennai, TN",
			Industry:       "Construction",
			Description:    "Leading residential project in OMR requires senior engineer...",
			Eligibility:    "B.E. Civil\n5+ Years Experience",
			SalaryMin:      35000,
			SalaryMax:      50000,
			SalaryCurrency: datamodels.DefaultCurrency,
			ExperienceMin:  5,
			ExperienceMax:  8,
			Type:           datamodels.JobTypeFullTime,
			Status:         datamodels.JobStatusPublished,
			Priority:       datamodels.JobPriorityUrgent,
			CreatedAt:      at(0),
			UpdatedAt:      at(0),
			GoogleFormURL:  "https://forms.google.com",
		},
		{
			ID:             "2",
			Title:          "Safety Supervisor",
			Location:       "Coimbatore, TN",
			Industry:       "Industrial Safety",
			Description:    "Ensure safety protocols at high-rise construction sites...",
			Eligibility:    "Diploma in Industrial Safety\nNebosh Certified",
			SalaryMin:      20000,
			SalaryMax:      28000,
			SalaryCurrency: datamodels.DefaultCurrency,
			ExperienceMin:  2,
			ExperienceMax:  4,
			Type:           datamodels.JobTypeContract,
			Status:         datamodels.JobStatusPublished,
			Priority:       datamodels.JobPriorityNormal,
			CreatedAt:      at(1),
			UpdatedAt:      at(1),
			GoogleFormURL:  "https://forms.google.com",
		},
		{
			ID:             "job-101",
			Title:          "Junior Site Engineer",
			Location:       "Madurai, TN",
			Industry:       "Construction",
			Description:    "Assist the site team with daily supervision, measurements and reporting.",
			Eligibility:    "Diploma or B.E. Civil\n0-2 Years Experience",
			SalaryMin:      18000,
			SalaryMax:      25000,
			SalaryCurrency: datamodels.DefaultCurrency,
			ExperienceMin:  0,
			ExperienceMax:  2,
			Type:           datamodels.JobTypeFullTime,
			Status:         datamodels.JobStatusPublished,
			Priority:       datamodels.JobPriorityNormal,
			CreatedAt:      at(3),
			UpdatedAt:      at(3),
		},
		{
			ID:             "job-102",
			Title:          "React Frontend Developer",
			Location:       "Chennai, TN",
			Industry:       "Information Technology",
			Description:    "Build and maintain customer facing web applications.",
			Eligibility:    "Strong JavaScript and React\nPortfolio of shipped work",
			SalaryMin:      30000,
			SalaryMax:      60000,
			SalaryCurrency: datamodels.DefaultCurrency,
			ExperienceMin:  1,
			ExperienceMax:  4,
			Type:           datamodels.JobTypeFullTime,
			Status:         datamodels.JobStatusPublished,
			Priority:       datamodels.JobPriorityFeatured,
			CreatedAt:      at(5),
			UpdatedAt:      at(5),
		},
		{
			ID:             "job-103",
			Title:          "Accounts Assistant",
			Location:       "Virudhunagar, TN",
			Industry:       "Finance",
			Description:    "Maintain ledgers, reconcile statements and prepare GST filings.",
			Eligibility:    "B.Com\nTally proficiency",
			SalaryMin:      15000,
			SalaryMax:      22000,
			SalaryCurrency: datamodels.DefaultCurrency,
			ExperienceMin:  1,
			ExperienceMax:  3,
			Type:           datamodels.JobTypeFullTime,
			Status:         datamodels.JobStatusClosed,
			Priority:       datamodels.JobPriorityNormal,
			CreatedAt:      at(10),
			UpdatedAt:      at(2),
		},
		{
			ID:             "job-104",
			Title:          "HR Executive",
			Location:       "Aruppukottai, TN",
			Industry:       "Human Resources",
			Description:    "Coordinate recruitment drives and onboarding for client factories.",
			Eligibility:    "Any degree, MBA HR preferred\nGood Tamil and English communication",
			SalaryMin:      15000,
			SalaryMax:      25000,
			SalaryCurrency: datamodels.DefaultCurrency,
			ExperienceMin:  0,
			ExperienceMax:  2,
			Type:           datamodels.JobTypePartTime,
			Status:         datamodels.JobStatusDraft,
			Priority:       datamodels.JobPriorityNormal,
			CreatedAt:      at(12),
			UpdatedAt:      at(12),
		},
	}
}

// SampleApplicants returns the demo candidates, linked to SampleJobs.
func SampleApplicants() []datamodels.Applicant {
	at := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	return []datamodels.Applicant{
		{ID: "app-001", JobID: "job-101", JobTitle: "Junior Site Engineer", Name: "Karthik Raja", Email: "karthik.r@example.com", Phone: "+91 98765 43210", ResumeLink: "https://drive.google.com/file/d/sample1", AppliedAt: at("2025-10-20T09:30:00Z"), Status: datamodels.ApplicantStatusNew, Notes: "Has 1 year experience in local construction projects."},
		{ID: "app-002", JobID: "job-102", JobTitle: "React Frontend Developer", Name: "Priya Dharshini", Email: "priya.d@example.com", Phone: "+91 98989 89898", ResumeLink: "https://drive.google.com/file/d/sample2", AppliedAt: at("2025-10-18T14:15:00Z"), Status: datamodels.ApplicantStatusContacted, Notes: "Good portfolio, scheduled interview for Tuesday."},
		{ID: "app-003", JobID: "job-103", JobTitle: "Accounts Assistant", Name: "Senthil Kumar", Email: "senthil.k@example.com", Phone: "+91 91234 56789", ResumeLink: "https://drive.google.com/file/d/sample3", AppliedAt: at("2025-10-15T11:00:00Z"), Status: datamodels.ApplicantStatusHired, Notes: "Joined on Oct 25th."},
		{ID: "app-004", JobID: "job-102", JobTitle: "React Frontend Developer", Name: "Anitha S", Email: "anitha.s@example.com", Phone: "+91 90000 11111", ResumeLink: "https://drive.google.com/file/d/sample4", AppliedAt: at("2025-10-21T16:45:00Z"), Status: datamodels.ApplicantStatusNew},
		{ID: "app-005", JobID: "job-104", JobTitle: "HR Executive", Name: "Ramesh Babu", Email: "ramesh.b@example.com", Phone: "+91 88888 77777", ResumeLink: "https://drive.google.com/file/d/sample5", AppliedAt: at("2025-10-10T10:00:00Z"), Status: datamodels.ApplicantStatusRejected, Notes: "Experience does not match requirements."},
	}
}

// Seed fills an empty store with the sample data. It reports whether anything was written;
// a store that already holds jobs is left untouched.
func Seed(ctx context.Context, m Manager, now time.Time) (bool, error) {
	existing, err := m.ListJobs(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	for _, j := range SampleJobs(now) {
		if err := m.StoreJob(ctx, j); err != nil {
			return false, err
		}
	}
	for _, a := range SampleApplicants() {
		if err := m.StoreApplicant(ctx, a); err != nil {
			return false, err
		}
	}
	return true, nil
}
