package loader

import (
	"context"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"CovidTracker/internal/dataset"
	"CovidTracker/internal/domain"
)

// XLSXReader parses a workbook sheet into a Dataset. Rows shorter than
// the header (trailing empty cells are not stored in xlsx) are padded so
// the dataframe stays rectangular.
type XLSXReader struct{}

var _ dataset.Reader = (*XLSXReader)(nil)

// NewXLSXReader builds the XLSX format strategy.
func NewXLSXReader() *XLSXReader {
	return &XLSXReader{}
}

// Name identifies the strategy inside the registry.
func (r *XLSXReader) Name() string {
	return "xlsx"
}

// Read loads req.Sheet (or the first sheet) from the workbook at req.Path.
func (r *XLSXReader) Read(ctx context.Context, req dataset.Request) (domain.Dataset, error) {
	f, err := excelize.OpenFile(req.Path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := req.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return domain.Dataset{}, fmt.Errorf("sheet %s is empty", sheet)
	}

	width := len(rows[0])
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row[:width]
	}

	df := dataframe.LoadRecords(rows,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Error() != nil {
		return domain.Dataset{}, fmt.Errorf("load sheet %s: %w", sheet, df.Error())
	}

	return frameToDataset(df)
}
