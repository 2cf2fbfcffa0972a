package report

import (
	"sort"
	"time"

	"github.com/language-needs/radar/internal/classify"
	"github.com/language-needs/radar/internal/feed"
	"github.com/language-needs/radar/internal/fetch"
)

// SampleSize caps how many jobs the summary report embeds. The raw
// artifact always carries the full list.
const SampleSize = 200

// Job is one classified feed entry as it appears in the artifacts.
type Job struct {
	Title      string   `json:"title"`
	Link       string   `json:"link"`
	PubDate    string   `json:"pubDate"`
	Languages  []string `json:"langs_hit"`
	Categories []string `json:"types_hit"`
}

// LabelCount is one row of a sorted count table.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary is the primary output artifact. It is written on every run,
// including total failures, so schedulers always find a report.
type Summary struct {
	Source         string                    `json:"source"`
	RunID          string                    `json:"run_id"`
	GeneratedAt    string                    `json:"generated_at_utc"`
	FetchMeta      fetch.Result              `json:"fetch_meta"`
	FeedType       feed.Type                 `json:"feed_type_detected"`
	RootTag        string                    `json:"root_tag,omitempty"`
	ParseError     string                    `json:"parse_error,omitempty"`
	TotalJobs      int                       `json:"total_jobs_in_feed"`
	LanguageCounts []LabelCount              `json:"language_counts"`
	CategoryCounts []LabelCount              `json:"data_type_counts"`
	CrossTab       map[string]map[string]int `json:"language_x_data_type"`
	Sample         []Job                     `json:"jobs_sample"`
	Note           string                    `json:"note,omitempty"`
}

// Healthy reports whether the run found a usable feed. parse_error,
// html and none runs still write artifacts but exit non-zero so
// schedulers can alert on breakage.
func (s *Summary) Healthy() bool {
	switch s.FeedType {
	case feed.TypeRSS, feed.TypeAtom, feed.TypeGenericXML:
		return true
	}
	return false
}

// Raw is the secondary artifact: the complete untruncated job list.
type Raw struct {
	Source      string    `json:"source"`
	RunID       string    `json:"run_id"`
	GeneratedAt string    `json:"generated_at_utc"`
	FeedType    feed.Type `json:"feed_type_detected"`
	Jobs        []Job     `json:"jobs"`
}

// Timestamp formats a generation time the way the artifacts expect.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Aggregator folds classified jobs into per-label counts and the
// language-by-category cross-tabulation. Every known label starts at
// zero so absent labels are reported rather than omitted.
type Aggregator struct {
	languages  classify.Taxonomy
	categories classify.Taxonomy
	langCounts map[string]int
	catCounts  map[string]int
	cross      map[string]map[string]int
	jobs       []Job
}

// NewAggregator creates an aggregator with zeroed tables for every
// label in both taxonomies.
func NewAggregator(languages, categories classify.Taxonomy) *Aggregator {
	a := &Aggregator{
		languages:  languages,
		categories: categories,
		langCounts: make(map[string]int, len(languages.Labels)),
		catCounts:  make(map[string]int, len(categories.Labels)),
		cross:      make(map[string]map[string]int, len(languages.Labels)),
		jobs:       []Job{},
	}
	for _, lang := range languages.LabelNames() {
		a.langCounts[lang] = 0
		row := make(map[string]int, len(categories.Labels))
		for _, cat := range categories.LabelNames() {
			row[cat] = 0
		}
		a.cross[lang] = row
	}
	for _, cat := range categories.LabelNames() {
		a.catCounts[cat] = 0
	}
	return a
}

// Add folds one classified job into the tables.
func (a *Aggregator) Add(job Job) {
	a.jobs = append(a.jobs, job)
	for _, lang := range job.Languages {
		a.langCounts[lang]++
		for _, cat := range job.Categories {
			a.cross[lang][cat]++
		}
	}
	for _, cat := range job.Categories {
		a.catCounts[cat]++
	}
}

// Jobs returns every job added so far, in feed order.
func (a *Aggregator) Jobs() []Job {
	return a.jobs
}

// Sample returns the first SampleSize jobs.
func (a *Aggregator) Sample() []Job {
	if len(a.jobs) > SampleSize {
		return a.jobs[:SampleSize]
	}
	return a.jobs
}

// LanguageCounts returns the language table sorted by count descending,
// ties kept in taxonomy declaration order.
func (a *Aggregator) LanguageCounts() []LabelCount {
	return sortedCounts(a.languages, a.langCounts)
}

// CategoryCounts returns the category table sorted the same way.
func (a *Aggregator) CategoryCounts() []LabelCount {
	return sortedCounts(a.categories, a.catCounts)
}

// CrossTab returns the language-by-category table.
func (a *Aggregator) CrossTab() map[string]map[string]int {
	return a.cross
}

func sortedCounts(taxonomy classify.Taxonomy, counts map[string]int) []LabelCount {
	table := make([]LabelCount, 0, len(taxonomy.Labels))
	for _, name := range taxonomy.LabelNames() {
		table = append(table, LabelCount{Label: name, Count: counts[name]})
	}
	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Count > table[j].Count
	})
	return table
}
