package datamodels

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// DefaultCurrency is stamped onto every job that does not name one.
const DefaultCurrency = "INR"

type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeFreelance  JobType = "freelance"
)

type JobStatus string

const (
	JobStatusDraft     JobStatus = "draft"
	JobStatusPublished JobStatus = "published"
	JobStatusClosed    JobStatus = "closed"
)

type JobPriority string

const (
	JobPriorityNormal   JobPriority = "normal"
	JobPriorityFeatured JobPriority = "featured"
	JobPriorityUrgent   JobPriority = "urgent"
)

var (
	ErrInvalidJobType     = errors.New("invalid job type")
	ErrInvalidJobStatus   = errors.New("invalid job status")
	ErrInvalidJobPriority = errors.New("invalid job priority")
)

// JobTypes lists the job types in the order they are offered in forms.
func JobTypes() []JobType {
	return []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeFreelance}
}

// JobStatuses lists every status a posting can be in.
func JobStatuses() []JobStatus {
	return []JobStatus{JobStatusDraft, JobStatusPublished, JobStatusClosed}
}

// JobPriorities lists every posting priority.
func JobPriorities() []JobPriority {
	return []JobPriority{JobPriorityNormal, JobPriorityFeatured, JobPriorityUrgent}
}

// ParseJobType parses s, treating an empty string as full-time.
func ParseJobType(s string) (JobType, error) {
	return parseEnum(s, JobTypes(), JobTypeFullTime, ErrInvalidJobType)
}

// ParseJobStatus parses s, treating an empty string as published.
func ParseJobStatus(s string) (JobStatus, error) {
	return parseEnum(s, JobStatuses(), JobStatusPublished, ErrInvalidJobStatus)
}

// ParseJobPriority parses s, treating an empty string as normal.
func ParseJobPriority(s string) (JobPriority, error) {
	return parseEnum(s, JobPriorities(), JobPriorityNormal, ErrInvalidJobPriority)
}

func parseEnum[T ~string](s string, allowed []T, def T, errInvalid error) (T, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def, nil
	}
	for _, v := range allowed {
		if string(v) == s {
			return v, nil
		}
	}
	return def, errInvalid
}

// A Job is a single posting on the board.
type Job struct {
	ID             string
	Title          string
	Location       string
	Industry       string
	Description    string
	Eligibility    string
	SalaryMin      int
	SalaryMax      int
	SalaryCurrency string
	ExperienceMin  int
	ExperienceMax  int
	Type           JobType
	Status         JobStatus
	Priority       JobPriority
	CreatedAt      time.Time
	UpdatedAt      time.Time
	GoogleFormURL  string
}

// EligibilityItems returns the non-blank lines of the eligibility criteria.
func (j Job) EligibilityItems() []string {
	items := make([]string, 0)
	for _, line := range strings.Split(j.Eligibility, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

func (j Job) IsUrgent() bool {
	return j.Priority == JobPriorityUrgent
}

// IsOpen reports whether the job is published and still taking applications.
func (j Job) IsOpen() bool {
	return j.Status == JobStatusPublished
}

func (j Job) IsClosed() bool {
	return j.Status == JobStatusClosed
}

// WithStatus returns a copy of the job moved to status at time now.
func (j Job) WithStatus(status JobStatus, now time.Time) Job {
	j.Status = status
	j.UpdatedAt = now
	return j
}

// JobDraft is the user supplied part of a job, before it has an identity.
type JobDraft struct {
	Title         string
	Location      string
	Industry      string
	Description   string
	Eligibility   string
	SalaryMin     int
	SalaryMax     int
	ExperienceMin int
	ExperienceMax int
	Type          string
	Status        string
	Priority      string
	GoogleFormURL string
}

// Validate checks the draft, returning a *ValidationError listing every problem.
func (d JobDraft) Validate() error {
	verr := &ValidationError{}
	d.validateInto(verr)
	return verr.OrNil()
}

func (d JobDraft) validateInto(verr *ValidationError) {
	if strings.TrimSpace(d.Title) == "" {
		verr.Add("title", "is required")
	}
	if strings.TrimSpace(d.Location) == "" {
		verr.Add("location", "is required")
	}
	checkRange(verr, "salary", d.SalaryMin, d.SalaryMax)
	checkRange(verr, "experience", d.ExperienceMin, d.ExperienceMax)
	if _, err := ParseJobType(d.Type); err != nil {
		verr.Add("type", err.Error())
	}
	if _, err := ParseJobStatus(d.Status); err != nil {
		verr.Add("status", err.Error())
	}
	if _, err := ParseJobPriority(d.Priority); err != nil {
		verr.Add("priority", err.Error())
	}
	if link := strings.TrimSpace(d.GoogleFormURL); link != "" {
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			verr.Add("googleFormUrl", "must be an http(s) link")
		}
	}
}

func checkRange(verr *ValidationError, field string, lo, hi int) {
	if lo < 0 {
		verr.Add(field+"Min", "must not be negative")
	}
	if hi < 0 {
		verr.Add(field+"Max", "must not be negative")
	}
	if hi > 0 && lo > hi {
		verr.Add(field+"Max", "must not be below the minimum")
	}
}

// Build validates the draft and turns it into a new job with the given id.
func (d JobDraft) Build(id string, now time.Time) (Job, error) {
	if err := d.Validate(); err != nil {
		return Job{}, err
	}
	// Already validated, so the parse errors are nil.
	jobType, _ := ParseJobType(d.Type)
	status, _ := ParseJobStatus(d.Status)
	priority, _ := ParseJobPriority(d.Priority)
	return Job{
		ID:             id,
		Title:          strings.TrimSpace(d.Title),
		Location:       strings.TrimSpace(d.Location),
		Industry:       strings.TrimSpace(d.Industry),
		Description:    d.Description,
		Eligibility:    d.Eligibility,
		SalaryMin:      d.SalaryMin,
		SalaryMax:      d.SalaryMax,
		SalaryCurrency: DefaultCurrency,
		ExperienceMin:  d.ExperienceMin,
		ExperienceMax:  d.ExperienceMax,
		Type:           jobType,
		Status:         status,
		Priority:       priority,
		CreatedAt:      now,
		UpdatedAt:      now,
		GoogleFormURL:  strings.TrimSpace(d.GoogleFormURL),
	}, nil
}
