// Package screening reviews an applicant's resume against the eligibility criteria of a job.
package screening

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/JoshPattman/jpf"
	"github.com/dharvista/site/datamodels"
)

// ErrNoResumeText is returned when an applicant has no parsed resume to review.
var ErrNoResumeText = errors.New("applicant has no resume text")

// CriterionResult is the outcome of a single eligibility criterion for an applicant.
type CriterionResult struct {
	probability float64
}

// NewCriterionResult builds a result from a probability, clamped to [0, 1].
func NewCriterionResult(probability float64) CriterionResult {
	return CriterionResult{max(0, min(1, probability))}
}

// IsTrue returns true if the applicant is likely to satisfy the criterion.
func (c CriterionResult) IsTrue() bool {
	return c.probability > 0.5
}

// Inconsistency returns a measure of how inconsistent the model's answers were for this criterion.
func (c CriterionResult) Inconsistency() float64 {
	return min(c.probability, 1-c.probability) * 2
}

// Probability returns the fraction of repeats that judged the criterion satisfied.
func (c CriterionResult) Probability() float64 {
	return c.probability
}

// A Report is the screening outcome for one applicant.
type Report struct {
	ApplicantID   string
	ApplicantName string
	// Criteria maps checklist keys to the criterion text they stand for.
	Criteria  map[string]string
	Checklist map[string]CriterionResult
}

// Score is the fraction of criteria the applicant is judged to meet.
func (r Report) Score() float64 {
	if len(r.Checklist) == 0 {
		return 0
	}
	met := 0
	for _, v := range r.Checklist {
		if v.IsTrue() {
			met++
		}
	}
	return float64(met) / float64(len(r.Checklist))
}

// Keys returns the checklist keys in criterion order.
func (r Report) Keys() []string {
	keys := make([]string, 0, len(r.Criteria))
	for k := range r.Criteria {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareCriterionKeys)
	return keys
}

// Checklist turns the job's eligibility lines into keyed checklist questions.
func Checklist(job datamodels.Job) map[string]string {
	checklist := make(map[string]string)
	for i, item := range job.EligibilityItems() {
		checklist[criterionKey(i)] = item
	}
	return checklist
}

func criterionKey(i int) string {
	return "criterion_" + strconv.Itoa(i+1)
}

// compareCriterionKeys orders criterion_2 before criterion_10.
func compareCriterionKeys(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}

// Screener screens applicants for a job.
type Screener interface {
	ScreenApplicant(ctx context.Context, logger *slog.Logger, job datamodels.Job, applicant datamodels.Applicant) (Report, error)
}

type reviewRequest struct {
	RepeatNumber int
	Checklist    map[string]string
	Resume       string
}

// reviewOnceFunc asks the model a single time which criteria the resume meets.
type reviewOnceFunc func(ctx context.Context, logger *slog.Logger, req reviewRequest) (map[string]bool, error)

// Reviewer screens resumes with an LLM, repeating each review to estimate how sure the model is.
type Reviewer struct {
	repeats    int
	reviewOnce reviewOnceFunc
}

// NewReviewer creates a Reviewer that asks each question repeats times.
func NewReviewer(modelBuilder ModelBuilder, repeats int) *Reviewer {
	return newReviewer(repeats, func(ctx context.Context, logger *slog.Logger, req reviewRequest) (map[string]bool, error) {
		mf := buildScreeningMapFunc(modelBuilder, logger)
		result, _, err := mf.Call(ctx, req)
		if err != nil {
			return nil, err
		}
		answers := make(map[string]bool)
		for key, resp := range result {
			answers[key] = resp.Answer
		}
		return answers, nil
	})
}

func newReviewer(repeats int, fn reviewOnceFunc) *Reviewer {
	if repeats < 1 {
		repeats = 1
	}
	return &Reviewer{repeats: repeats, reviewOnce: fn}
}

// ScreenApplicant reviews one applicant's resume against the job's eligibility criteria.
func (r *Reviewer) ScreenApplicant(ctx context.Context, logger *slog.Logger, job datamodels.Job, applicant datamodels.Applicant) (Report, error) {
	report := Report{
		ApplicantID:   applicant.ID,
		ApplicantName: applicant.Name,
		Criteria:      Checklist(job),
		Checklist:     make(map[string]CriterionResult),
	}
	logger = logger.With("applicant", applicant.ID, "job", job.ID)
	if len(report.Criteria) == 0 {
		logger.Info("Job has no eligibility criteria, skipping screening")
		return report, nil
	}
	if !applicant.HasResumeText() {
		return report, ErrNoResumeText
	}

	logger.Info("Screening applicant", "num_criteria", len(report.Criteria), "num_repeats", r.repeats)
	resultsPerRepeat, err := parMapRange(r.repeats, func(i int) (map[string]bool, error) {
		return r.reviewOnce(ctx, logger.With("repeat", i), reviewRequest{
			RepeatNumber: i,
			Checklist:    report.Criteria,
			Resume:       applicant.ResumeText,
		})
	})
	if err != nil {
		logger.Error("Failed to screen applicant", "error", err)
		return report, err
	}

	counts := make(map[string]float64)
	for _, results := range resultsPerRepeat {
		for k, v := range results {
			if _, ok := report.Criteria[k]; !ok {
				continue
			}
			if v {
				counts[k]++
			}
		}
	}
	inconsistency := 0.0
	for k := range report.Criteria {
		res := NewCriterionResult(counts[k] / float64(r.repeats))
		report.Checklist[k] = res
		inconsistency += res.Inconsistency()
	}
	inconsistency /= float64(len(report.Criteria))
	logger.Info("Completed applicant screening", "score", report.Score(), "inconsistency", math.Round(inconsistency*100)/100)
	return report, nil
}

// ScreenAll screens every applicant in parallel. Applicants without resume text are skipped.
func (r *Reviewer) ScreenAll(ctx context.Context, logger *slog.Logger, job datamodels.Job, applicants []datamodels.Applicant) ([]Report, error) {
	reports, err := parMapRange(len(applicants), func(i int) (*Report, error) {
		report, err := r.ScreenApplicant(ctx, logger, job, applicants[i])
		if errors.Is(err, ErrNoResumeText) {
			logger.Warn("Skipping applicant without resume text", "applicant", applicants[i].ID)
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("screen applicant %s: %w", applicants[i].ID, err)
		}
		return &report, nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]Report, 0, len(reports))
	for _, rep := range reports {
		if rep != nil {
			out = append(out, *rep)
		}
	}
	return out, nil
}

// parMapRange runs fn for 0..n-1 in parallel, returning the results in order or every error joined.
func parMapRange[U any](n int, fn func(int) (U, error)) ([]U, error) {
	results := make([]U, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = fn(i)
		}()
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

type criterionResponse struct {
	Reasoning string `json:"reasoning"`
	Answer    bool   `json:"answer"`
}

type reviewResponse map[string]criterionResponse

type applicantScreener jpf.MapFunc[reviewRequest, reviewResponse]

// Build a mapfunc (a typed LLM call with retry logic) for screening an applicant.
func buildScreeningMapFunc(modelBuilder ModelBuilder, logger *slog.Logger) applicantScreener {
	enc := jpf.NewTemplateMessageEncoder[reviewRequest](
		"",
		screeningTemplate,
	)
	dec := jpf.NewJsonResponseDecoder[reviewRequest, reviewResponse]()
	dec = jpf.NewValidatingResponseDecoder(
		dec,
		func(input reviewRequest, response reviewResponse) error {
			missingKeys := make([]string, 0)
			for k := range input.Checklist {
				if _, ok := response[k]; !ok {
					missingKeys = append(missingKeys, k)
				}
			}
			if len(missingKeys) > 0 {
				return fmt.Errorf("missing the following criterion keys: %v", missingKeys)
			}
			return nil
		},
	)
	fed := jpf.NewRawMessageFeedbackGenerator()
	model := modelBuilder.BuildScreeningModel(logger)
	return jpf.NewFeedbackMapFunc(enc, dec, fed, model, jpf.UserRole, 10)
}

const screeningTemplate = `You are screening a job applicant for a staffing consultancy. Read the resume carefully and decide, for every eligibility criterion of the job, whether the applicant meets it.

For each criterion, produce:
- "reasoning": the evidence from the resume that led to your answer
- "answer": true or false

Return a single JSON object where each key matches the exact criterion key.

Criteria:
{{ range $k, $v := .Checklist }}
- {{$k}}: {{$v}}
{{ end }}

Resume:
{{ .Resume }}

{{ .RepeatNumber }}`
