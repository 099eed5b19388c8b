package analysis

import (
	"sort"

	"CovidTracker/internal/domain"
)

// Insight query labels, in the fixed order they are evaluated.
const (
	QueryTotalCases       = "Highest total cases"
	QueryDeathRate        = "Highest death rate"
	QueryVaccinationRate  = "Highest vaccination rate"
	QueryWindowedNewCases = "Highest average new cases (last 30 days)"
	QueryDeathsPerMillion = "Highest deaths per million"
)

// RankInsights evaluates the fixed list of ranking queries against the
// snapshot and the windowed averages. Each query fails soft: when its
// prerequisite data is unavailable it contributes a Skip with a reason
// instead of an insight, and the remaining queries still run. Locations
// are visited in sorted order and only a strictly greater value replaces
// the current maximum, so ties (including exact ties at 0 from the
// safe-division policy) resolve to the first location in that order on
// every run.
func RankInsights(snapshot domain.Snapshot, window map[string]float64, schema Schema) ([]domain.Insight, []domain.Skip) {
	var insights []domain.Insight
	var skips []domain.Skip

	record := func(insight *domain.Insight, skip *domain.Skip) {
		if insight != nil {
			insights = append(insights, *insight)
		}
		if skip != nil {
			skips = append(skips, *skip)
		}
	}

	record(rankMetric(snapshot, QueryTotalCases, domain.MetricTotalCases))

	record(rankRate(snapshot, QueryDeathRate, schema,
		func(e domain.SnapshotEntry) float64 { return e.DeathRate },
		domain.MetricTotalDeaths, domain.MetricTotalCases))

	record(rankRate(snapshot, QueryVaccinationRate, schema,
		func(e domain.SnapshotEntry) float64 { return e.VaccinationRate },
		domain.MetricPeopleVaccinated, domain.MetricPopulation))

	record(rankWindow(window, QueryWindowedNewCases, schema))

	record(rankMetric(snapshot, QueryDeathsPerMillion, domain.MetricDeathsPerMillion))

	return insights, skips
}

// rankMetric finds the argmax of a raw snapshot metric. Entries lacking
// the metric are not eligible; when none carries it the query is skipped.
func rankMetric(snapshot domain.Snapshot, label, metric string) (*domain.Insight, *domain.Skip) {
	if len(snapshot) == 0 {
		return nil, &domain.Skip{Query: label, Reason: "snapshot is empty"}
	}

	var best *domain.Insight
	for _, location := range sortedLocations(snapshot) {
		value, ok := snapshot[location].Value(metric)
		if !ok {
			continue
		}
		if best == nil || value > best.Value {
			best = &domain.Insight{Label: label, Location: location, Value: value}
		}
	}

	if best == nil {
		return nil, &domain.Skip{Query: label, Reason: metric + " missing across all snapshot entries"}
	}
	return best, nil
}

// rankRate finds the argmax of a derived rate. Rates are 0-substituted,
// so every snapshot entry is eligible once the source columns exist;
// locations with undefined ratios rank last instead of vanishing.
func rankRate(snapshot domain.Snapshot, label string, schema Schema, rate func(domain.SnapshotEntry) float64, cols ...string) (*domain.Insight, *domain.Skip) {
	if len(snapshot) == 0 {
		return nil, &domain.Skip{Query: label, Reason: "snapshot is empty"}
	}
	if !schema.Has(cols...) {
		return nil, &domain.Skip{Query: label, Reason: "required columns absent: " + joinMissing(schema, cols)}
	}

	var best *domain.Insight
	for _, location := range sortedLocations(snapshot) {
		value := rate(snapshot[location])
		if best == nil || value > best.Value {
			best = &domain.Insight{Label: label, Location: location, Value: value}
		}
	}
	return best, nil
}

func rankWindow(window map[string]float64, label string, schema Schema) (*domain.Insight, *domain.Skip) {
	if !schema.Has(domain.MetricNewCases) {
		return nil, &domain.Skip{Query: label, Reason: domain.MetricNewCases + " column missing"}
	}
	if len(window) == 0 {
		return nil, &domain.Skip{Query: label, Reason: "no eligible records in the trailing window"}
	}

	locations := make([]string, 0, len(window))
	for location := range window {
		locations = append(locations, location)
	}
	sort.Strings(locations)

	var best *domain.Insight
	for _, location := range locations {
		value := window[location]
		if best == nil || value > best.Value {
			best = &domain.Insight{Label: label, Location: location, Value: value}
		}
	}
	return best, nil
}

func sortedLocations(snapshot domain.Snapshot) []string {
	locations := make([]string, 0, len(snapshot))
	for location := range snapshot {
		locations = append(locations, location)
	}
	sort.Strings(locations)
	return locations
}

func joinMissing(schema Schema, cols []string) string {
	var out string
	for _, col := range cols {
		if schema.Has(col) {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += col
	}
	return out
}
