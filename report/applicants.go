// Package report writes applicant lists and screening results for spreadsheets and terminals.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dharvista/site/datamodels"
	"github.com/dharvista/site/storage"
	"github.com/muesli/termenv"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ParseFormat parses a --format flag value. An empty string selects the table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatCSV, FormatJSON, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want csv, json or table)", s)
	}
}

// WriteApplicants writes applicants to w in the given format.
func WriteApplicants(w io.Writer, applicants []datamodels.Applicant, format Format) error {
	switch format {
	case FormatCSV:
		return WriteApplicantsCSV(w, applicants)
	case FormatJSON:
		return writeApplicantsJSON(w, applicants)
	default:
		return writeApplicantsTable(w, applicants)
	}
}

var applicantsHeader = []string{"id", "job_id", "job_title", "name", "email", "phone", "resume_link", "applied_at", "status", "notes"}

// WriteApplicantsCSV writes one row per applicant, in the order given.
func WriteApplicantsCSV(w io.Writer, applicants []datamodels.Applicant) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(applicantsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, a := range applicants {
		row := []string{
			a.ID,
			a.JobID,
			a.JobTitle,
			a.Name,
			a.Email,
			a.Phone,
			a.ResumeLink,
			a.AppliedAt.UTC().Format(time.RFC3339),
			string(a.Status),
			a.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeApplicantsJSON(w io.Writer, applicants []datamodels.Applicant) error {
	dtos := make([]storage.ApplicantDTO, len(applicants))
	for i, a := range applicants {
		a.ResumeText = ""
		dtos[i] = storage.ApplicantDTO(a)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dtos)
}

var statusColors = map[datamodels.ApplicantStatus]string{
	datamodels.ApplicantStatusNew:       "#5FAFFF",
	datamodels.ApplicantStatusContacted: "#FFD75F",
	datamodels.ApplicantStatusHired:     "#5FD75F",
	datamodels.ApplicantStatusRejected:  "#FF5F5F",
}

func writeApplicantsTable(w io.Writer, applicants []datamodels.Applicant) error {
	if len(applicants) == 0 {
		_, err := fmt.Fprintln(w, "No applicants.")
		return err
	}
	output := termenv.NewOutput(w)
	colored := output.ColorProfile() != termenv.Ascii
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "APPLIED\tNAME\tJOB\tEMAIL\tSTATUS")
	for _, a := range applicants {
		status := a.Status.Label()
		if hex, ok := statusColors[a.Status]; ok && colored {
			status = output.String(status).Foreground(output.Color(hex)).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			a.AppliedAt.Format("2006-01-02"),
			dash(a.Name),
			dash(a.JobTitle),
			dash(a.Email),
			status,
		)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "-"
	}
	return s
}
