package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"

	"CovidTracker/internal/domain"
)

const (
	locationColumn = "location"
	dateColumn     = "date"
	dateLayout     = "2006-01-02"
)

// frameToDataset converts a string-typed dataframe into domain records.
// Empty cells, "NaN" markers and unparseable numbers become gaps; rows
// without a parseable date are dropped, since the analysis core assumes
// normalized calendar values.
func frameToDataset(df dataframe.DataFrame) (domain.Dataset, error) {
	rows := df.Records()
	if len(rows) == 0 {
		return domain.Dataset{}, fmt.Errorf("dataset has no header row")
	}

	header := rows[0]
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	locIdx, ok := index[locationColumn]
	if !ok {
		return domain.Dataset{}, fmt.Errorf("dataset is missing the %s column", locationColumn)
	}
	dateIdx, ok := index[dateColumn]
	if !ok {
		return domain.Dataset{}, fmt.Errorf("dataset is missing the %s column", dateColumn)
	}

	var metricCols []string
	for _, name := range metricColumns() {
		if _, ok := index[name]; ok {
			metricCols = append(metricCols, name)
		}
	}

	records := make([]domain.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		date, err := time.Parse(dateLayout, strings.TrimSpace(row[dateIdx]))
		if err != nil {
			continue
		}

		metrics := map[string]float64{}
		for _, name := range metricCols {
			if v, ok := parseCell(row[index[name]]); ok {
				metrics[name] = v
			}
		}

		records = append(records, domain.Record{
			Location: strings.TrimSpace(row[locIdx]),
			Date:     date,
			Metrics:  metrics,
		})
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	return domain.Dataset{Records: records, Columns: columns}, nil
}

func parseCell(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func metricColumns() []string {
	return append(domain.KeyMetrics(),
		domain.MetricPopulation,
		domain.MetricDeathsPerMillion,
	)
}
