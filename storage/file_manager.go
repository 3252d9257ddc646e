package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dharvista/site/datamodels"
)

// JobDTO is used only for storage and JSON encoding/decoding
type JobDTO struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"`
	Location       string                 `json:"location"`
	Industry       string                 `json:"industry"`
	Description    string                 `json:"description"`
	Eligibility    string                 `json:"eligibility"`
	SalaryMin      int                    `json:"salaryMin"`
	SalaryMax      int                    `json:"salaryMax"`
	SalaryCurrency string                 `json:"salaryCurrency"`
	ExperienceMin  int                    `json:"experienceMin"`
	ExperienceMax  int                    `json:"experienceMax"`
	Type           datamodels.JobType     `json:"type"`
	Status         datamodels.JobStatus   `json:"status"`
	Priority       datamodels.JobPriority `json:"priority"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
	GoogleFormURL  string                 `json:"googleFormUrl,omitempty"`
}

// ApplicantDTO is used only for storage and JSON encoding/decoding
type ApplicantDTO struct {
	ID         string                     `json:"id"`
	JobID      string                     `json:"jobId"`
	JobTitle   string                     `json:"jobTitle"`
	Name       string                     `json:"name"`
	Email      string                     `json:"email"`
	Phone      string                     `json:"phone"`
	ResumeLink string                     `json:"resumeLink"`
	ResumeText string                     `json:"resumeText,omitempty"`
	AppliedAt  time.Time                  `json:"appliedAt"`
	Status     datamodels.ApplicantStatus `json:"status"`
	Notes      string                     `json:"notes,omitempty"`
}

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// fileManager keeps one JSON document per record on disk.
type fileManager struct {
	mu            sync.RWMutex
	jobsDir       string
	applicantsDir string
}

func NewFileManager(folder string) (*fileManager, error) {
	fm := &fileManager{
		jobsDir:       filepath.Join(folder, "jobs"),
		applicantsDir: filepath.Join(folder, "applicants"),
	}
	for _, dir := range []string{fm.jobsDir, fm.applicantsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return fm, nil
}

func (fm *fileManager) Close() error { return nil }

// listIDs lists all record IDs in dir (filenames without .json)
func listIDs(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			continue
		}
		id := f.Name()[:len(f.Name())-len(".json")]
		if validID.MatchString(id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// readRecord decodes the record id from dir, returning notFound when it does not exist.
func readRecord[D any](dir, id string, notFound error) (D, error) {
	var dto D
	if !validID.MatchString(id) {
		return dto, notFound
	}
	data, err := os.ReadFile(filepath.Join(dir, id+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return dto, notFound
		}
		return dto, err
	}
	if err := json.Unmarshal(data, &dto); err != nil {
		return dto, err
	}
	return dto, nil
}

func writeRecord(dir, id string, dto any) error {
	if !validID.MatchString(id) {
		return errors.New("invalid record id " + id)
	}
	data, err := json.MarshalIndent(dto, "", "  ")
	if err != nil {
		return err
	}
	// Write then rename so a crash never leaves a half written record.
	tmp := filepath.Join(dir, "."+id+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(dir, id+".json"))
}

func removeRecord(dir, id string, notFound error) error {
	if !validID.MatchString(id) {
		return notFound
	}
	if err := os.Remove(filepath.Join(dir, id+".json")); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return notFound
		}
		return err
	}
	return nil
}

func readAll[D any](dir string, notFound error) ([]D, error) {
	ids, err := listIDs(dir)
	if err != nil {
		return nil, err
	}
	dtos := make([]D, 0, len(ids))
	for _, id := range ids {
		dto, err := readRecord[D](dir, id, notFound)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

func (fm *fileManager) ListJobs(context.Context) ([]datamodels.Job, error) {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	dtos, err := readAll[JobDTO](fm.jobsDir, ErrJobNotFound)
	if err != nil {
		return nil, err
	}
	jobs := make([]datamodels.Job, len(dtos))
	for i, dto := range dtos {
		jobs[i] = datamodels.Job(dto)
	}
	sortJobs(jobs)
	return jobs, nil
}

func (fm *fileManager) GetJob(_ context.Context, id string) (datamodels.Job, error) {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	dto, err := readRecord[JobDTO](fm.jobsDir, id, ErrJobNotFound)
	if err != nil {
		return datamodels.Job{}, err
	}
	return datamodels.Job(dto), nil
}

func (fm *fileManager) StoreJob(_ context.Context, job datamodels.Job) error {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return writeRecord(fm.jobsDir, job.ID, JobDTO(job))
}

func (fm *fileManager) DeleteJob(_ context.Context, id string) error {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return removeRecord(fm.jobsDir, id, ErrJobNotFound)
}

func (fm *fileManager) ListApplicants(context.Context) ([]datamodels.Applicant, error) {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	dtos, err := readAll[ApplicantDTO](fm.applicantsDir, ErrApplicantNotFound)
	if err != nil {
		return nil, err
	}
	applicants := make([]datamodels.Applicant, len(dtos))
	for i, dto := range dtos {
		applicants[i] = datamodels.Applicant(dto)
	}
	sortApplicants(applicants)
	return applicants, nil
}

func (fm *fileManager) ListApplicantsForJob(ctx context.Context, jobID string) ([]datamodels.Applicant, error) {
	all, err := fm.ListApplicants(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(a datamodels.Applicant) bool { return a.JobID != jobID }), nil
}

func (fm *fileManager) GetApplicant(_ context.Context, id string) (datamodels.Applicant, error) {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	dto, err := readRecord[ApplicantDTO](fm.applicantsDir, id, ErrApplicantNotFound)
	if err != nil {
		return datamodels.Applicant{}, err
	}
	return datamodels.Applicant(dto), nil
}

func (fm *fileManager) StoreApplicant(_ context.Context, applicant datamodels.Applicant) error {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return writeRecord(fm.applicantsDir, applicant.ID, ApplicantDTO(applicant))
}

func (fm *fileManager) DeleteApplicant(_ context.Context, id string) error {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return removeRecord(fm.applicantsDir, id, ErrApplicantNotFound)
}

// sortJobs orders newest first, breaking ties by ID so listings are stable.
func sortJobs(jobs []datamodels.Job) {
	slices.SortStableFunc(jobs, func(a, b datamodels.Job) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func sortApplicants(applicants []datamodels.Applicant) {
	slices.SortStableFunc(applicants, func(a, b datamodels.Applicant) int {
		if c := b.AppliedAt.Compare(a.AppliedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
