package model

import "fmt"

// DataLoadError reports a gazetteer source that could not be read or
// produced no entries. It is fatal at startup.
type DataLoadError struct {
	Source string
	Err    error
}

func (e *DataLoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to load gazetteer from '%s'", e.Source)
	}
	return fmt.Sprintf("failed to load gazetteer from '%s': %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// ConfigurationError reports an invalid setting such as an out-of-range
// threshold or a requested entity type with an empty pool.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Field, e.Reason)
}
