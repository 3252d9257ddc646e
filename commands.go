package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dharvista/site/datamodels"
	"github.com/dharvista/site/report"
	"github.com/dharvista/site/screening"
	"github.com/dharvista/site/storage"
	"github.com/spf13/cobra"
)

func (c *cli) openStore(cmd *cobra.Command) (storage.Manager, error) {
	c.logger.Info("Opening store", "driver", c.cfg.StorageDriver)
	return storage.Open(c.context(cmd), c.cfg.StorageDriver, c.cfg.StorageDSN)
}

func (c *cli) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty store with sample jobs and applicants",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()
			seeded, err := storage.Seed(c.context(cmd), store, time.Now())
			if err != nil {
				return err
			}
			if !seeded {
				c.logger.Info("Store already has jobs, nothing seeded")
				return nil
			}
			c.logger.Info("Seeded sample data")
			return nil
		},
	}
}

// createOutput opens path for writing, or returns stdout for an empty path.
func createOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func (c *cli) exportCmd() *cobra.Command {
	var format, out, jobID string
	cmd := &cobra.Command{
		Use:       "export applicants",
		Short:     "Export applicants as csv, json or a table",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"applicants"},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			store, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := c.context(cmd)
			var applicants []datamodels.Applicant
			if jobID != "" {
				applicants, err = store.ListApplicantsForJob(ctx, jobID)
			} else {
				applicants, err = store.ListApplicants(ctx)
			}
			if err != nil {
				return err
			}

			w, err := createOutput(cmd, out)
			if err != nil {
				return err
			}
			if err := report.WriteApplicants(w, applicants, f); err != nil {
				w.Close()
				return err
			}
			return w.Close()
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: csv, json or table")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	cmd.Flags().StringVar(&jobID, "job", "", "only export applicants of this job")
	return cmd
}

func (c *cli) screenCmd() *cobra.Command {
	var jobID, outDir string
	var repeats int
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Screen every applicant of a job against its eligibility criteria",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.cfg.ScreeningEnabled() {
				return errors.New("screening needs OPENAI_API_KEY to be set")
			}
			if repeats > 0 {
				c.cfg.ScreeningRepeats = repeats
			}
			tstart := time.Now()
			ctx := c.context(cmd)

			store, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()
			job, err := store.GetJob(ctx, jobID)
			if err != nil {
				return err
			}
			applicants, err := store.ListApplicantsForJob(ctx, jobID)
			if err != nil {
				return err
			}

			c.logger.Info("Creating model builder", "model", c.cfg.ScreeningModel)
			mb, err := screening.NewModelBuilder(c.cfg.ScreeningModelOptions())
			if err != nil {
				return err
			}
			reviewer := screening.NewReviewer(mb, c.cfg.ScreeningRepeats)

			jobLogger := c.logger.With("job", job.ID)
			jobLogger.Info("Beginning screening", "num_criteria", len(job.EligibilityItems()), "num_applicants", len(applicants))
			reports, err := reviewer.ScreenAll(ctx, jobLogger, job, applicants)
			if err != nil {
				return err
			}
			report.SortReports(reports)

			if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
				return err
			}
			for _, mode := range report.ScreeningModes() {
				name := filepath.Join(outDir, fmt.Sprintf("%s_%s.csv", mode, job.ID))
				if err := report.WriteScreeningCSVFile(name, reports, mode); err != nil {
					return err
				}
				jobLogger.Info("Wrote report", "file", name)
			}
			jobLogger.Info("Finished screening", "screened", len(reports), "time_taken", time.Since(tstart))
			return nil
		},
	}
	cmd.Flags().StringVar(&jobID, "job", "", "id of the job to screen for")
	cmd.Flags().IntVar(&repeats, "repeats", 0, "times to ask the model each question (overrides SCREENING_REPEATS)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "./result", "directory for the CSV reports")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}
