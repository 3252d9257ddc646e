// Package listing holds the job board's search, facet and "load more" logic.
package listing

import (
	"slices"
	"strings"

	"github.com/dharvista/site/datamodels"
)

// PageSize is how many jobs each "Load More" step reveals.
const PageSize = 6

// LatestCount is how many openings the home page shows.
const LatestCount = 4

// Filter is the set of criteria chosen on the jobs page. Empty fields match everything.
type Filter struct {
	Search   string
	Industry string
	Location string
}

// IsZero reports whether no criteria are set.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Search) == "" && f.Industry == "" && f.Location == ""
}

// Match reports whether job satisfies every criterion of f.
// Search is a case-insensitive substring of the title or description,
// industry and location must match exactly.
func (f Filter) Match(job datamodels.Job) bool {
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(job.Title), term) &&
			!strings.Contains(strings.ToLower(job.Description), term) {
			return false
		}
	}
	if f.Industry != "" && job.Industry != f.Industry {
		return false
	}
	if f.Location != "" && job.Location != f.Location {
		return false
	}
	return true
}

// Apply returns the jobs matching f, preserving their order.
func Apply(jobs []datamodels.Job, f Filter) []datamodels.Job {
	out := make([]datamodels.Job, 0, len(jobs))
	for _, j := range jobs {
		if f.Match(j) {
			out = append(out, j)
		}
	}
	return out
}

// Published keeps only the jobs visitors are allowed to see.
func Published(jobs []datamodels.Job) []datamodels.Job {
	return slices.DeleteFunc(slices.Clone(jobs), func(j datamodels.Job) bool {
		return j.Status != datamodels.JobStatusPublished
	})
}

// Latest returns the first n published jobs.
func Latest(jobs []datamodels.Job, n int) []datamodels.Job {
	pub := Published(jobs)
	if len(pub) > n {
		pub = pub[:n]
	}
	return pub
}

// Facets are the options offered by the filter dropdowns.
type Facets struct {
	Industries []string
	Locations  []string
}

// BuildFacets collects the distinct non-empty industries and locations of jobs, sorted.
func BuildFacets(jobs []datamodels.Job) Facets {
	industries := make(map[string]struct{})
	locations := make(map[string]struct{})
	for _, j := range jobs {
		if j.Industry != "" {
			industries[j.Industry] = struct{}{}
		}
		if j.Location != "" {
			locations[j.Location] = struct{}{}
		}
	}
	return Facets{
		Industries: sortedKeys(industries),
		Locations:  sortedKeys(locations),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// A Page is the visible prefix of a filtered list.
type Page struct {
	Jobs        []datamodels.Job
	Visible     int
	Total       int
	HasMore     bool
	NextVisible int
}

// Shown is the number of jobs on the page.
func (p Page) Shown() int {
	return len(p.Jobs)
}

// AtEnd reports whether every matching job is visible.
func (p Page) AtEnd() bool {
	return !p.HasMore && p.Total > 0
}

// Paginate reveals the first visible jobs. A visible count below one resets to PageSize,
// and one past the end of the list is clamped to it.
func Paginate(jobs []datamodels.Job, visible int) Page {
	if visible < 1 {
		visible = PageSize
	}
	visible = min(visible, max(len(jobs), PageSize))
	shown := jobs
	if len(shown) > visible {
		shown = shown[:visible]
	}
	return Page{
		Jobs:        shown,
		Visible:     visible,
		Total:       len(jobs),
		HasMore:     visible < len(jobs),
		NextVisible: visible + PageSize,
	}
}
