package analysis

import (
	"reflect"
	"testing"
	"time"

	"CovidTracker/internal/domain"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse date %s: %v", value, err)
	}
	return parsed
}

func rec(t *testing.T, location, date string, metrics map[string]float64) domain.Record {
	t.Helper()
	return domain.Record{Location: location, Date: day(t, date), Metrics: metrics}
}

func TestForwardFillSubstitutesPriorValue(t *testing.T) {
	t.Parallel()

	grouped := GroupByLocation([]domain.Record{
		rec(t, "A", "2021-01-01", map[string]float64{domain.MetricTotalCases: 100}),
		rec(t, "A", "2021-01-02", map[string]float64{}),
		rec(t, "A", "2021-01-03", map[string]float64{domain.MetricTotalCases: 300}),
	})

	filled := ForwardFill(grouped, []string{domain.MetricTotalCases})

	want := []float64{100, 100, 300}
	for i, rec := range filled["A"] {
		v, ok := rec.Value(domain.MetricTotalCases)
		if !ok {
			t.Fatalf("record %d: value missing after fill", i)
		}
		if v != want[i] {
			t.Fatalf("record %d: want %v, got %v", i, want[i], v)
		}
	}
}

func TestForwardFillLeadingGapStaysMissing(t *testing.T) {
	t.Parallel()

	grouped := GroupByLocation([]domain.Record{
		rec(t, "A", "2021-01-01", map[string]float64{}),
		rec(t, "A", "2021-01-02", map[string]float64{domain.MetricNewCases: 5}),
	})

	filled := ForwardFill(grouped, []string{domain.MetricNewCases})

	if _, ok := filled["A"][0].Value(domain.MetricNewCases); ok {
		t.Fatalf("leading gap was back-filled")
	}
	if v, ok := filled["A"][1].Value(domain.MetricNewCases); !ok || v != 5 {
		t.Fatalf("present value changed by fill: %v %v", v, ok)
	}
}

func TestForwardFillNeverCrossesLocations(t *testing.T) {
	t.Parallel()

	grouped := GroupByLocation([]domain.Record{
		rec(t, "A", "2021-01-01", map[string]float64{domain.MetricTotalDeaths: 7}),
		rec(t, "B", "2021-01-02", map[string]float64{}),
	})

	filled := ForwardFill(grouped, []string{domain.MetricTotalDeaths})

	if _, ok := filled["B"][0].Value(domain.MetricTotalDeaths); ok {
		t.Fatalf("fill leaked across locations")
	}
}

func TestForwardFillIdempotent(t *testing.T) {
	t.Parallel()

	grouped := GroupByLocation([]domain.Record{
		rec(t, "A", "2021-01-01", map[string]float64{domain.MetricTotalCases: 1}),
		rec(t, "A", "2021-01-02", map[string]float64{}),
		rec(t, "A", "2021-01-03", map[string]float64{domain.MetricTotalCases: 3, domain.MetricNewDeaths: 2}),
	})
	metrics := []string{domain.MetricTotalCases, domain.MetricNewDeaths}

	once := ForwardFill(grouped, metrics)
	twice := ForwardFill(once, metrics)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second fill changed the series:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestForwardFillDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	grouped := GroupByLocation([]domain.Record{
		rec(t, "A", "2021-01-01", map[string]float64{domain.MetricTotalCases: 1}),
		rec(t, "A", "2021-01-02", map[string]float64{}),
	})

	_ = ForwardFill(grouped, []string{domain.MetricTotalCases})

	if _, ok := grouped["A"][1].Value(domain.MetricTotalCases); ok {
		t.Fatalf("input series mutated by fill")
	}
}

func TestGroupByLocationSortsByDate(t *testing.T) {
	t.Parallel()

	grouped := GroupByLocation([]domain.Record{
		rec(t, "A", "2021-01-03", nil),
		rec(t, "A", "2021-01-01", nil),
		rec(t, "A", "2021-01-02", nil),
	})

	series := grouped["A"]
	for i := 1; i < len(series); i++ {
		if series[i].Date.Before(series[i-1].Date) {
			t.Fatalf("series not sorted ascending at index %d", i)
		}
	}
}
