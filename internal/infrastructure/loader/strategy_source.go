package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"CovidTracker/internal/config"
	"CovidTracker/internal/dataset"
	"CovidTracker/internal/domain"
	"CovidTracker/internal/ports"
)

// StrategySource implements DatasetSource via registered format readers.
// When the configured file is absent and a fetcher is wired, the dataset
// is downloaded first.
type StrategySource struct {
	registry *dataset.Registry
	cfg      config.DatasetConfig
	fetcher  ports.Fetcher
	logger   *slog.Logger
}

var _ ports.DatasetSource = (*StrategySource)(nil)

// NewStrategySource wires the reader registry with the dataset config.
func NewStrategySource(reg *dataset.Registry, cfg config.DatasetConfig, fetcher ports.Fetcher, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		cfg:      cfg,
		fetcher:  fetcher,
		logger:   log,
	}
}

// Load resolves the format strategy and reads the dataset file.
func (s *StrategySource) Load(ctx context.Context) (domain.Dataset, error) {
	if s.registry == nil {
		return domain.Dataset{}, fmt.Errorf("dataset registry is not configured")
	}

	format := s.cfg.Format
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(s.cfg.Path)), ".")
	}

	reader, err := s.registry.Resolve(format)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("dataset %s: %w", s.cfg.Path, err)
	}

	if _, statErr := os.Stat(s.cfg.Path); errors.Is(statErr, os.ErrNotExist) {
		if s.fetcher == nil {
			return domain.Dataset{}, fmt.Errorf("dataset %s not found and no catalog configured", s.cfg.Path)
		}
		s.debug("dataset not present, fetching", "path", s.cfg.Path)
		if err := s.fetcher.Fetch(ctx, s.cfg.Path); err != nil {
			return domain.Dataset{}, fmt.Errorf("fetch dataset: %w", err)
		}
	}

	ds, err := reader.Read(ctx, dataset.Request{Path: s.cfg.Path, Sheet: s.cfg.Sheet})
	if err != nil {
		return domain.Dataset{}, err
	}

	s.debug("dataset read", "format", format, "rows", len(ds.Records))
	return ds, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
