package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	configPathEnv  = "COVID_TRACKER_CONFIG"
	databaseDSNEnv = "DATABASE_DSN"
	datasetPathEnv = "DATASET_PATH"
	catalogURLEnv  = "DATASET_CATALOG_URL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Report    ReportConfig    `yaml:"report"`
}

// LoggingConfig controls console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN
// disables persistence.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines whether and when recurring runs execute.
type SchedulerConfig struct {
	Enabled        bool           `yaml:"enabled"`
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// DatasetConfig points at the source dataset file.
type DatasetConfig struct {
	Path    string        `yaml:"path"`
	Format  string        `yaml:"format"`
	Sheet   string        `yaml:"sheet"`
	Catalog CatalogConfig `yaml:"catalog"`
}

// CatalogConfig describes the HTML index page used to download the
// dataset when no local copy exists.
type CatalogConfig struct {
	IndexURL string `yaml:"indexUrl"`
	Keyword  string `yaml:"keyword"`
}

// AnalysisConfig selects the locations and metrics under analysis.
type AnalysisConfig struct {
	Locations  []string `yaml:"locations"`
	Metrics    []string `yaml:"metrics"`
	WindowDays int      `yaml:"windowDays"`
}

// ReportConfig describes where the workbook report is written. An empty
// path disables the sink.
type ReportConfig struct {
	WorkbookPath string `yaml:"workbookPath"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Analysis.Locations) == 0 {
		cfg.Analysis.Locations = defaultConfig().Analysis.Locations
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(datasetPathEnv); v != "" {
		c.Dataset.Path = v
	}

	if v := os.Getenv(catalogURLEnv); v != "" {
		c.Dataset.Catalog.IndexURL = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Dataset.Path != "" {
		base.Dataset.Path = override.Dataset.Path
	}
	if override.Dataset.Format != "" {
		base.Dataset.Format = override.Dataset.Format
	}
	if override.Dataset.Sheet != "" {
		base.Dataset.Sheet = override.Dataset.Sheet
	}
	if override.Dataset.Catalog.IndexURL != "" {
		base.Dataset.Catalog.IndexURL = override.Dataset.Catalog.IndexURL
	}
	if override.Dataset.Catalog.Keyword != "" {
		base.Dataset.Catalog.Keyword = override.Dataset.Catalog.Keyword
	}

	if len(override.Analysis.Locations) > 0 {
		base.Analysis.Locations = override.Analysis.Locations
	}
	if len(override.Analysis.Metrics) > 0 {
		base.Analysis.Metrics = override.Analysis.Metrics
	}
	if override.Analysis.WindowDays > 0 {
		base.Analysis.WindowDays = override.Analysis.WindowDays
	}

	if override.Report.WorkbookPath != "" {
		base.Report.WorkbookPath = override.Report.WorkbookPath
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{DSN: ""},
		Scheduler: SchedulerConfig{
			Enabled:        false,
			CronExpression: "0 6 * * *",
			Timezone:       defaultTimezone,
			location:       tz,
		},
		Dataset: DatasetConfig{
			Path:   "owid-covid-data.csv",
			Format: "",
			Sheet:  "",
			Catalog: CatalogConfig{
				IndexURL: "",
				Keyword:  "covid",
			},
		},
		Analysis: AnalysisConfig{
			Locations: []string{
				"United States",
				"India",
				"Brazil",
				"Kenya",
				"United Kingdom",
				"Germany",
			},
			WindowDays: 30,
		},
		Report: ReportConfig{WorkbookPath: "covid-report.xlsx"},
	}
}
