package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dharvista/site/datamodels"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Fixed width so that text timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// sqlManager stores records in SQLite or PostgreSQL.
type sqlManager struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQLite opens a SQLite database file, creating it if needed.
func OpenSQLite(path string) (*sqlManager, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY under gin's concurrent handlers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqlManager{db: db, dialect: dialectSQLite}, nil
}

// OpenPostgres connects to PostgreSQL using a lib/pq connection string.
func OpenPostgres(ctx context.Context, dsn string) (*sqlManager, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqlManager{db: db, dialect: dialectPostgres}, nil
}

func (m *sqlManager) Close() error {
	return m.db.Close()
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	location TEXT NOT NULL,
	industry TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	eligibility TEXT NOT NULL DEFAULT '',
	salary_min INTEGER NOT NULL DEFAULT 0,
	salary_max INTEGER NOT NULL DEFAULT 0,
	salary_currency TEXT NOT NULL DEFAULT 'INR',
	experience_min INTEGER NOT NULL DEFAULT 0,
	experience_max INTEGER NOT NULL DEFAULT 0,
	type TEXT NOT NULL,
	status TEXT NOT NULL,
	priority TEXT NOT NULL,
	google_form_url TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS applicants (
	id TEXT PRIMARY KEY,
	job_id TEXT NOT NULL,
	job_title TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	resume_link TEXT NOT NULL DEFAULT '',
	resume_text TEXT NOT NULL DEFAULT '',
	applied_at TEXT NOT NULL,
	status TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS applicants_job_id ON applicants (job_id)`,
}

// Migrate creates the tables if they do not exist yet.
func (m *sqlManager) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders into $n for PostgreSQL.
func (m *sqlManager) rebind(query string) string {
	if m.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad stored timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

const jobColumns = `id, title, location, industry, description, eligibility, salary_min, salary_max, salary_currency,
	experience_min, experience_max, type, status, priority, google_form_url, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (datamodels.Job, error) {
	var j datamodels.Job
	var jobType, status, priority, created, updated string
	err := row.Scan(
		&j.ID, &j.Title, &j.Location, &j.Industry, &j.Description, &j.Eligibility,
		&j.SalaryMin, &j.SalaryMax, &j.SalaryCurrency, &j.ExperienceMin, &j.ExperienceMax,
		&jobType, &status, &priority, &j.GoogleFormURL, &created, &updated,
	)
	if err != nil {
		return j, err
	}
	j.Type = datamodels.JobType(jobType)
	j.Status = datamodels.JobStatus(status)
	j.Priority = datamodels.JobPriority(priority)
	if j.CreatedAt, err = parseTime(created); err != nil {
		return j, err
	}
	if j.UpdatedAt, err = parseTime(updated); err != nil {
		return j, err
	}
	return j, nil
}

func (m *sqlManager) ListJobs(ctx context.Context) ([]datamodels.Job, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]datamodels.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (m *sqlManager) GetJob(ctx context.Context, id string) (datamodels.Job, error) {
	row := m.db.QueryRowContext(ctx, m.rebind(`SELECT `+jobColumns+` FROM jobs WHERE id = ?`), id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return datamodels.Job{}, ErrJobNotFound
	}
	return j, err
}

func (m *sqlManager) StoreJob(ctx context.Context, j datamodels.Job) error {
	_, err := m.db.ExecContext(ctx, m.rebind(`
		INSERT INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			location = excluded.location,
			industry = excluded.industry,
			description = excluded.description,
			eligibility = excluded.eligibility,
			salary_min = excluded.salary_min,
			salary_max = excluded.salary_max,
			salary_currency = excluded.salary_currency,
			experience_min = excluded.experience_min,
			experience_max = excluded.experience_max,
			type = excluded.type,
			status = excluded.status,
			priority = excluded.priority,
			google_form_url = excluded.google_form_url,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`),
		j.ID, j.Title, j.Location, j.Industry, j.Description, j.Eligibility,
		j.SalaryMin, j.SalaryMax, j.SalaryCurrency, j.ExperienceMin, j.ExperienceMax,
		string(j.Type), string(j.Status), string(j.Priority), j.GoogleFormURL,
		formatTime(j.CreatedAt), formatTime(j.UpdatedAt),
	)
	return err
}

func (m *sqlManager) DeleteJob(ctx context.Context, id string) error {
	res, err := m.db.ExecContext(ctx, m.rebind(`DELETE FROM jobs WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrJobNotFound)
}

const applicantColumns = `id, job_id, job_title, name, email, phone, resume_link, resume_text, applied_at, status, notes`

func scanApplicant(row rowScanner) (datamodels.Applicant, error) {
	var a datamodels.Applicant
	var applied, status string
	err := row.Scan(
		&a.ID, &a.JobID, &a.JobTitle, &a.Name, &a.Email, &a.Phone,
		&a.ResumeLink, &a.ResumeText, &applied, &status, &a.Notes,
	)
	if err != nil {
		return a, err
	}
	a.Status = datamodels.ApplicantStatus(status)
	a.AppliedAt, err = parseTime(applied)
	return a, err
}

func (m *sqlManager) queryApplicants(ctx context.Context, query string, args ...any) ([]datamodels.Applicant, error) {
	rows, err := m.db.QueryContext(ctx, m.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applicants := make([]datamodels.Applicant, 0)
	for rows.Next() {
		a, err := scanApplicant(rows)
		if err != nil {
			return nil, err
		}
		applicants = append(applicants, a)
	}
	return applicants, rows.Err()
}

func (m *sqlManager) ListApplicants(ctx context.Context) ([]datamodels.Applicant, error) {
	return m.queryApplicants(ctx, `SELECT `+applicantColumns+` FROM applicants ORDER BY applied_at DESC, id ASC`)
}

func (m *sqlManager) ListApplicantsForJob(ctx context.Context, jobID string) ([]datamodels.Applicant, error) {
	return m.queryApplicants(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE job_id = ? ORDER BY applied_at DESC, id ASC`, jobID)
}

func (m *sqlManager) GetApplicant(ctx context.Context, id string) (datamodels.Applicant, error) {
	row := m.db.QueryRowContext(ctx, m.rebind(`SELECT `+applicantColumns+` FROM applicants WHERE id = ?`), id)
	a, err := scanApplicant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return datamodels.Applicant{}, ErrApplicantNotFound
	}
	return a, err
}

func (m *sqlManager) StoreApplicant(ctx context.Context, a datamodels.Applicant) error {
	_, err := m.db.ExecContext(ctx, m.rebind(`
		INSERT INTO applicants (`+applicantColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			job_id = excluded.job_id,
			job_title = excluded.job_title,
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			resume_link = excluded.resume_link,
			resume_text = excluded.resume_text,
			applied_at = excluded.applied_at,
			status = excluded.status,
			notes = excluded.notes`),
		a.ID, a.JobID, a.JobTitle, a.Name, a.Email, a.Phone,
		a.ResumeLink, a.ResumeText, formatTime(a.AppliedAt), string(a.Status), a.Notes,
	)
	return err
}

func (m *sqlManager) DeleteApplicant(ctx context.Context, id string) error {
	res, err := m.db.ExecContext(ctx, m.rebind(`DELETE FROM applicants WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrApplicantNotFound)
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
