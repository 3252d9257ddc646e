package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dharvista/site/datamodels"
)

var (
	ErrJobNotFound       = errors.New("could not find job")
	ErrApplicantNotFound = errors.New("could not find applicant")
)

// JobManager stores job postings.
type JobManager interface {
	// ListJobs returns every job, newest first.
	ListJobs(ctx context.Context) ([]datamodels.Job, error)
	GetJob(ctx context.Context, id string) (datamodels.Job, error)
	// StoreJob inserts the job, or replaces the stored job with the same ID.
	StoreJob(ctx context.Context, job datamodels.Job) error
	DeleteJob(ctx context.Context, id string) error
}

// ApplicantManager stores applicant records.
type ApplicantManager interface {
	// ListApplicants returns every applicant, most recently applied first.
	ListApplicants(ctx context.Context) ([]datamodels.Applicant, error)
	ListApplicantsForJob(ctx context.Context, jobID string) ([]datamodels.Applicant, error)
	GetApplicant(ctx context.Context, id string) (datamodels.Applicant, error)
	StoreApplicant(ctx context.Context, applicant datamodels.Applicant) error
	DeleteApplicant(ctx context.Context, id string) error
}

// Manager is a complete record store.
type Manager interface {
	JobManager
	ApplicantManager
	Close() error
}

const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open opens the store named by driver. For the file driver dsn is a directory,
// for sqlite a database path and for postgres a connection string.
// SQL stores are migrated before they are returned.
func Open(ctx context.Context, driver, dsn string) (Manager, error) {
	switch driver {
	case "", DriverFile:
		return NewFileManager(dsn)
	case DriverSQLite, DriverPostgres:
		var m *sqlManager
		var err error
		if driver == DriverSQLite {
			m, err = OpenSQLite(dsn)
		} else {
			m, err = OpenPostgres(ctx, dsn)
		}
		if err != nil {
			return nil, err
		}
		if err := m.Migrate(ctx); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("migrate %s store: %w", driver, err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
