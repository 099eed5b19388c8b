package analysis

import (
	"sort"

	"CovidTracker/internal/domain"
)

// GroupByLocation splits records into per-location series. Records are
// stably sorted by date ascending, so equal dates keep their input order.
func GroupByLocation(records []domain.Record) map[string]domain.Series {
	grouped := map[string]domain.Series{}
	for _, rec := range records {
		grouped[rec.Location] = append(grouped[rec.Location], rec)
	}
	for _, series := range grouped {
		sort.SliceStable(series, func(i, j int) bool {
			return series[i].Date.Before(series[j].Date)
		})
	}
	return grouped
}

// ForwardFill substitutes each missing metric value with the most recent
// prior value of the same metric within the same location. A metric
// missing at the start of a series stays missing: the fill never looks
// backward in time and never crosses locations. The input is left
// untouched; re-running on already filled series is a no-op.
func ForwardFill(grouped map[string]domain.Series, metrics []string) map[string]domain.Series {
	filled := make(map[string]domain.Series, len(grouped))

	for location, series := range grouped {
		out := make(domain.Series, len(series))
		lastSeen := make(map[string]float64, len(metrics))

		for i, rec := range series {
			clone := rec.Clone()
			for _, metric := range metrics {
				if v, ok := clone.Value(metric); ok {
					lastSeen[metric] = v
					continue
				}
				if v, ok := lastSeen[metric]; ok {
					clone.Metrics[metric] = v
				}
			}
			out[i] = clone
		}

		filled[location] = out
	}

	return filled
}
