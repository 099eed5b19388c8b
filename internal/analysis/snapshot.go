package analysis

import "CovidTracker/internal/domain"

// LatestSnapshot selects, per location, the record with the maximum date.
// Dates are unique per location on clean input; should they collide, the
// last occurrence in series order wins, which is deterministic for a
// given input. Locations with an empty series get no entry, never a
// zero-filled placeholder. An empty input yields an empty snapshot and
// downstream snapshot consumers skip rather than fail.
func LatestSnapshot(grouped map[string]domain.Series) domain.Snapshot {
	snapshot := domain.Snapshot{}

	for location, series := range grouped {
		if len(series) == 0 {
			continue
		}
		latest := series[0]
		for _, rec := range series[1:] {
			if !rec.Date.Before(latest.Date) {
				latest = rec
			}
		}
		snapshot[location] = domain.SnapshotEntry{Record: latest.Clone()}
	}

	return snapshot
}
