package analysis

import "CovidTracker/internal/domain"

// FilterLocations keeps only records belonging to the configured
// locations, preserving input order. The second result lists configured
// locations with zero matching records; callers report those, they are
// never an error. Zero matches overall is legal and yields an empty slice.
func FilterLocations(records []domain.Record, locations []string) ([]domain.Record, []string) {
	wanted := make(map[string]bool, len(locations))
	for _, loc := range locations {
		wanted[loc] = false
	}

	filtered := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if _, ok := wanted[rec.Location]; !ok {
			continue
		}
		wanted[rec.Location] = true
		filtered = append(filtered, rec)
	}

	var missing []string
	for _, loc := range locations {
		if !wanted[loc] {
			missing = append(missing, loc)
		}
	}

	return filtered, missing
}

// MissingCounts tallies, per requested metric, how many of the records
// lack a value. Exploration data for the run report.
func MissingCounts(records []domain.Record, metrics []string) map[string]int {
	counts := make(map[string]int, len(metrics))
	for _, metric := range metrics {
		counts[metric] = 0
	}
	for _, rec := range records {
		for _, metric := range metrics {
			if _, ok := rec.Value(metric); !ok {
				counts[metric]++
			}
		}
	}
	return counts
}
