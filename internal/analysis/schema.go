package analysis

import "CovidTracker/internal/domain"

// Schema records which columns the input dataset carried. It is computed
// once up front so every derivation can declare its requirements instead
// of re-checking columns ad hoc.
type Schema map[string]bool

// DetectSchema builds the capability set from the dataset's column list.
// When the loader did not report columns (e.g. hand-built datasets in
// tests) it falls back to scanning record metric keys.
func DetectSchema(ds domain.Dataset) Schema {
	schema := Schema{}
	if len(ds.Columns) > 0 {
		for _, col := range ds.Columns {
			schema[col] = true
		}
		return schema
	}

	for _, rec := range ds.Records {
		for name := range rec.Metrics {
			schema[name] = true
		}
	}
	return schema
}

// Has reports whether every named column is available.
func (s Schema) Has(cols ...string) bool {
	for _, col := range cols {
		if !s[col] {
			return false
		}
	}
	return true
}
