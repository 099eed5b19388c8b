package analysis

import (
	"time"

	"CovidTracker/internal/domain"
)

// safeRate implements the safe-division policy: numerator/denominator as
// a percentage, resolving to 0 whenever the denominator is missing, zero
// or negative. A missing numerator counts as 0. The result is never
// negative, NaN or infinite.
func safeRate(num float64, numOK bool, den float64, denOK bool) float64 {
	if !denOK || den <= 0 {
		return 0
	}
	if !numOK || num <= 0 {
		return 0
	}
	return num / den * 100
}

// DeriveRates attaches death and vaccination rates to every snapshot
// entry. It returns a new snapshot; the extractor's output is never
// mutated, so stage order cannot leak state. A rate whose columns are
// absent from the schema stays at its zero value and the corresponding
// insight query reports the gap.
func DeriveRates(snapshot domain.Snapshot, schema Schema) domain.Snapshot {
	derived := make(domain.Snapshot, len(snapshot))

	for location, entry := range snapshot {
		out := domain.SnapshotEntry{Record: entry.Record.Clone()}

		if schema.Has(domain.MetricTotalDeaths, domain.MetricTotalCases) {
			deaths, deathsOK := out.Value(domain.MetricTotalDeaths)
			cases, casesOK := out.Value(domain.MetricTotalCases)
			out.DeathRate = safeRate(deaths, deathsOK, cases, casesOK)
		}

		if schema.Has(domain.MetricPeopleVaccinated, domain.MetricPopulation) {
			vaccinated, vaccinatedOK := out.Value(domain.MetricPeopleVaccinated)
			population, populationOK := out.Value(domain.MetricPopulation)
			out.VaccinationRate = safeRate(vaccinated, vaccinatedOK, population, populationOK)
		}

		derived[location] = out
	}

	return derived
}

// WindowAverages computes the per-location mean of a metric over records
// whose date falls within [maxDate-window, maxDate]. The boundary comes
// from the single maximum date across all locations, not per location. A
// location with no record carrying the metric inside the window is
// absent from the result, not zero.
func WindowAverages(grouped map[string]domain.Series, metric string, window time.Duration) map[string]float64 {
	var maxDate time.Time
	for _, series := range grouped {
		for _, rec := range series {
			if rec.Date.After(maxDate) {
				maxDate = rec.Date
			}
		}
	}
	if maxDate.IsZero() {
		return map[string]float64{}
	}
	cutoff := maxDate.Add(-window)

	averages := map[string]float64{}
	for location, series := range grouped {
		var sum float64
		var count int
		for _, rec := range series {
			if rec.Date.Before(cutoff) {
				continue
			}
			if v, ok := rec.Value(metric); ok {
				sum += v
				count++
			}
		}
		if count > 0 {
			averages[location] = sum / float64(count)
		}
	}

	return averages
}
