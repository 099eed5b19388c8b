package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"CovidTracker/internal/dataset"
	"CovidTracker/internal/domain"
)

// CSVReader parses a local CSV dataset through a gota dataframe. Cells
// are loaded as strings so that missing-value detection stays in one
// place instead of depending on the frame's type sniffing.
type CSVReader struct{}

var _ dataset.Reader = (*CSVReader)(nil)

// NewCSVReader builds the CSV format strategy.
func NewCSVReader() *CSVReader {
	return &CSVReader{}
}

// Name identifies the strategy inside the registry.
func (r *CSVReader) Name() string {
	return "csv"
}

// Read loads the file at req.Path into a Dataset.
func (r *CSVReader) Read(ctx context.Context, req dataset.Request) (domain.Dataset, error) {
	f, err := os.Open(req.Path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Error() != nil {
		return domain.Dataset{}, fmt.Errorf("read csv %s: %w", req.Path, df.Error())
	}

	return frameToDataset(df)
}
