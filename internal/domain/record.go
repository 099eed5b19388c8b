package domain

import "time"

// Metric column names as they appear in the source dataset.
const (
	MetricTotalCases            = "total_cases"
	MetricNewCases              = "new_cases"
	MetricTotalDeaths           = "total_deaths"
	MetricNewDeaths             = "new_deaths"
	MetricPeopleVaccinated      = "people_vaccinated"
	MetricPeopleFullyVaccinated = "people_fully_vaccinated"
	MetricPopulation            = "population"
	MetricDeathsPerMillion      = "total_deaths_per_million"
)

// KeyMetrics lists the columns that participate in gap filling.
func KeyMetrics() []string {
	return []string{
		MetricTotalCases,
		MetricNewCases,
		MetricTotalDeaths,
		MetricNewDeaths,
		MetricPeopleVaccinated,
		MetricPeopleFullyVaccinated,
	}
}

// Record is a single observation: one location on one calendar date.
// A metric absent from Metrics is a gap, not a zero.
type Record struct {
	Location string
	Date     time.Time
	Metrics  map[string]float64
}

// Value returns the metric value and whether it is present.
func (r Record) Value(name string) (float64, bool) {
	v, ok := r.Metrics[name]
	return v, ok
}

// Clone returns a deep copy so downstream stages never share metric maps.
func (r Record) Clone() Record {
	metrics := make(map[string]float64, len(r.Metrics))
	for k, v := range r.Metrics {
		metrics[k] = v
	}
	return Record{Location: r.Location, Date: r.Date, Metrics: metrics}
}

// Series holds one location's records in ascending date order.
type Series []Record

// Dataset is the parsed input: rows plus the columns the source carried.
// Columns matters independently of rows because a column can exist in the
// source schema while every value in it is missing.
type Dataset struct {
	Records []Record
	Columns []string
}

// SnapshotEntry is a location's most recent record augmented with rates
// derived under the safe-division policy.
type SnapshotEntry struct {
	Record
	DeathRate       float64
	VaccinationRate float64
}

// Snapshot maps location to its latest entry. Locations with an empty
// series have no entry.
type Snapshot map[string]SnapshotEntry

// Insight is one ranked superlative produced by the insight queries.
type Insight struct {
	Label    string
	Location string
	Value    float64
}

// Skip explains why a ranking query produced no insight.
type Skip struct {
	Query  string
	Reason string
}

// Report aggregates everything a single pipeline run produced. Consumers
// (report writers, persistence) treat it as read-only.
type Report struct {
	GeneratedAt      time.Time
	Locations        []string
	MissingLocations []string
	FirstDate        time.Time
	LastDate         time.Time
	MissingCounts    map[string]int
	Series           map[string]Series
	Snapshot         Snapshot
	WindowAverages   map[string]float64
	Insights         []Insight
	Skips            []Skip
}
