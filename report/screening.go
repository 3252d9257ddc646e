package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/dharvista/site/screening"
)

// ScreeningMode selects which value each criterion column holds.
type ScreeningMode uint8

const (
	// Boolean mode outputs true/false for checklist items.
	Boolean ScreeningMode = iota
	// Probability mode outputs the fraction of repeats that judged the item met.
	Probability
	// Inconsistency mode outputs how much the repeats disagreed.
	Inconsistency
)

// String is used in report file names.
func (m ScreeningMode) String() string {
	switch m {
	case Boolean:
		return "report"
	case Probability:
		return "probabilities"
	case Inconsistency:
		return "inconsistency"
	}
	return "mode" + strconv.Itoa(int(m))
}

// ScreeningModes lists every mode, in the order the screen command writes them.
func ScreeningModes() []ScreeningMode {
	return []ScreeningMode{Boolean, Probability, Inconsistency}
}

// SortReports orders reports by score, highest first, then by applicant name.
func SortReports(reports []screening.Report) {
	slices.SortStableFunc(reports, func(a, b screening.Report) int {
		if sa, sb := a.Score(), b.Score(); sa != sb {
			if sa > sb {
				return -1
			}
			return 1
		}
		if a.ApplicantName < b.ApplicantName {
			return -1
		}
		if a.ApplicantName > b.ApplicantName {
			return 1
		}
		return 0
	})
}

// WriteScreeningCSVFile writes the screening reports to a CSV file in the specified mode.
func WriteScreeningCSVFile(filename string, reports []screening.Report, mode ScreeningMode) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := WriteScreeningCSV(f, reports, mode); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteScreeningCSV writes one row per report with a column for each criterion.
// The criterion columns are headed by the criterion text.
func WriteScreeningCSV(w io.Writer, reports []screening.Report, mode ScreeningMode) error {
	cw := csv.NewWriter(w)

	// Every report of a job shares the same checklist, but merge them in case one differs.
	criteria := make(map[string]string)
	for _, r := range reports {
		for k, v := range r.Criteria {
			criteria[k] = v
		}
	}
	keys := screening.Report{Criteria: criteria}.Keys()

	header := []string{"ApplicantID", "ApplicantName"}
	for _, k := range keys {
		header = append(header, criteria[k])
	}
	header = append(header, "FinalScore")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range reports {
		row := make([]string, 0, len(header))
		row = append(row, r.ApplicantID, r.ApplicantName)
		for _, k := range keys {
			res, ok := r.Checklist[k]
			if !ok {
				row = append(row, "")
				continue
			}
			switch mode {
			case Boolean:
				row = append(row, strconv.FormatBool(res.IsTrue()))
			case Probability:
				row = append(row, fmt.Sprintf("%.3f", res.Probability()))
			case Inconsistency:
				row = append(row, fmt.Sprintf("%.3f", res.Inconsistency()))
			}
		}
		row = append(row, strconv.FormatFloat(r.Score(), 'f', -1, 64))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
