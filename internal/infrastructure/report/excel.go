package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"CovidTracker/internal/domain"
	"CovidTracker/internal/ports"
)

const (
	snapshotSheet = "Snapshot"
	insightsSheet = "Insights"
	skipsSheet    = "Skips"

	dateLayout = "2006-01-02"
)

// ExcelWriter renders a report into an xlsx workbook: the latest
// snapshot with derived rates and windowed averages, the ranked
// insights, and the skipped queries.
type ExcelWriter struct {
	path string
}

var _ ports.ReportSink = (*ExcelWriter)(nil)

// NewExcelWriter registers the output path.
func NewExcelWriter(path string) *ExcelWriter {
	return &ExcelWriter{path: path}
}

// Publish writes the workbook. The report itself is never modified.
func (w *ExcelWriter) Publish(ctx context.Context, report *domain.Report) error {
	if w.path == "" {
		return fmt.Errorf("excel writer misconfigured")
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), snapshotSheet)
	if err := w.writeSnapshot(f, report); err != nil {
		return err
	}
	if err := w.writeInsights(f, report); err != nil {
		return err
	}
	if err := w.writeSkips(f, report); err != nil {
		return err
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", w.path, err)
	}

	return nil
}

func (w *ExcelWriter) writeSnapshot(f *excelize.File, report *domain.Report) error {
	metrics := append(domain.KeyMetrics(),
		domain.MetricPopulation,
		domain.MetricDeathsPerMillion,
	)

	header := []interface{}{"location", "date"}
	for _, metric := range metrics {
		header = append(header, metric)
	}
	header = append(header, "death_rate", "vaccination_rate", "avg_new_cases_window")

	if err := f.SetSheetRow(snapshotSheet, "A1", &header); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}

	locations := make([]string, 0, len(report.Snapshot))
	for location := range report.Snapshot {
		locations = append(locations, location)
	}
	sort.Strings(locations)

	for i, location := range locations {
		entry := report.Snapshot[location]

		row := []interface{}{location, entry.Date.Format(dateLayout)}
		for _, metric := range metrics {
			if v, ok := entry.Value(metric); ok {
				row = append(row, v)
			} else {
				row = append(row, "")
			}
		}
		row = append(row, entry.DeathRate, entry.VaccinationRate)
		if avg, ok := report.WindowAverages[location]; ok {
			row = append(row, avg)
		} else {
			row = append(row, "")
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("snapshot row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(snapshotSheet, cell, &row); err != nil {
			return fmt.Errorf("write snapshot row %s: %w", location, err)
		}
	}

	return nil
}

func (w *ExcelWriter) writeInsights(f *excelize.File, report *domain.Report) error {
	if _, err := f.NewSheet(insightsSheet); err != nil {
		return fmt.Errorf("create insights sheet: %w", err)
	}

	header := []interface{}{"label", "location", "value"}
	if err := f.SetSheetRow(insightsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write insights header: %w", err)
	}

	for i, insight := range report.Insights {
		row := []interface{}{insight.Label, insight.Location, insight.Value}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("insight row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(insightsSheet, cell, &row); err != nil {
			return fmt.Errorf("write insight %s: %w", insight.Label, err)
		}
	}

	return nil
}

func (w *ExcelWriter) writeSkips(f *excelize.File, report *domain.Report) error {
	if _, err := f.NewSheet(skipsSheet); err != nil {
		return fmt.Errorf("create skips sheet: %w", err)
	}

	header := []interface{}{"query", "reason"}
	if err := f.SetSheetRow(skipsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write skips header: %w", err)
	}

	for i, skip := range report.Skips {
		row := []interface{}{skip.Query, skip.Reason}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("skip row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(skipsSheet, cell, &row); err != nil {
			return fmt.Errorf("write skip %s: %w", skip.Query, err)
		}
	}

	return nil
}
