package datamodels

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

type ApplicantStatus string

const (
	ApplicantStatusNew       ApplicantStatus = "new"
	ApplicantStatusContacted ApplicantStatus = "contacted"
	ApplicantStatusHired     ApplicantStatus = "hired"
	ApplicantStatusRejected  ApplicantStatus = "rejected"
)

var ErrInvalidApplicantStatus = errors.New("invalid applicant status")

// ApplicantStatuses lists the triage states in pipeline order.
func ApplicantStatuses() []ApplicantStatus {
	return []ApplicantStatus{ApplicantStatusNew, ApplicantStatusContacted, ApplicantStatusHired, ApplicantStatusRejected}
}

// ParseApplicantStatus parses s, treating an empty string as new.
func ParseApplicantStatus(s string) (ApplicantStatus, error) {
	return parseEnum(s, ApplicantStatuses(), ApplicantStatusNew, ErrInvalidApplicantStatus)
}

// Label is the capitalised form shown in the dashboard.
func (s ApplicantStatus) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// An Applicant is a candidate who applied for a particular job.
// JobTitle is a snapshot, so the record stays readable after the job is deleted.
type Applicant struct {
	ID         string
	JobID      string
	JobTitle   string
	Name       string
	Email      string
	Phone      string
	ResumeLink string
	ResumeText string
	AppliedAt  time.Time
	Status     ApplicantStatus
	Notes      string
}

// HasResumeText reports whether the applicant's resume has been parsed into text.
func (a Applicant) HasResumeText() bool {
	return strings.TrimSpace(a.ResumeText) != ""
}

// ApplicantDraft holds the fields an admin enters when recording an applicant.
type ApplicantDraft struct {
	JobID      string
	Name       string
	Email      string
	Phone      string
	ResumeLink string
	Notes      string
}

func (d ApplicantDraft) Validate() error {
	verr := &ValidationError{}
	if strings.TrimSpace(d.JobID) == "" {
		verr.Add("jobId", "is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		verr.Add("name", "is required")
	}
	email := strings.TrimSpace(d.Email)
	if email == "" {
		verr.Add("email", "is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		verr.Add("email", "is not a valid address")
	}
	return verr.OrNil()
}

// Build validates the draft and creates a new applicant for job.
func (d ApplicantDraft) Build(id string, job Job, now time.Time) (Applicant, error) {
	if err := d.Validate(); err != nil {
		return Applicant{}, err
	}
	return Applicant{
		ID:         id,
		JobID:      job.ID,
		JobTitle:   job.Title,
		Name:       strings.TrimSpace(d.Name),
		Email:      strings.TrimSpace(d.Email),
		Phone:      strings.TrimSpace(d.Phone),
		ResumeLink: strings.TrimSpace(d.ResumeLink),
		AppliedAt:  now,
		Status:     ApplicantStatusNew,
		Notes:      strings.TrimSpace(d.Notes),
	}, nil
}
