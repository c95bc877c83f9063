package config

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError describes one invalid configuration value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error returns the formatted validation message.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors aggregates every problem found in one Validate pass.
type ValidationErrors []ValidationError

// Error joins the individual messages.
func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, c.validateLog()...)
	errs = append(errs, c.validateReport()...)
	return errs
}

func (c *Config) validateLog() []ValidationError {
	var errs []ValidationError

	if c.Log.Path == "" {
		errs = append(errs, ValidationError{
			Field:   "log.path",
			Value:   c.Log.Path,
			Message: "must not be empty",
		})
	}
	if c.Log.MaxSizeKB <= 0 {
		errs = append(errs, ValidationError{
			Field:   "log.max_size_kb",
			Value:   c.Log.MaxSizeKB,
			Message: "must be positive",
		})
	}
	if c.Log.TrimBatchKB <= 0 {
		errs = append(errs, ValidationError{
			Field:   "log.trim_batch_kb",
			Value:   c.Log.TrimBatchKB,
			Message: "must be positive",
		})
	} else if c.Log.MaxSizeKB > 0 && c.Log.TrimBatchKB >= c.Log.MaxSizeKB {
		errs = append(errs, ValidationError{
			Field:   "log.trim_batch_kb",
			Value:   c.Log.TrimBatchKB,
			Message: "must be smaller than log.max_size_kb",
		})
	}
	if c.Log.DiskFloorMB < 0 {
		errs = append(errs, ValidationError{
			Field:   "log.disk_floor_mb",
			Value:   c.Log.DiskFloorMB,
			Message: "must not be negative",
		})
	}

	return errs
}

func (c *Config) validateReport() []ValidationError {
	var errs []ValidationError

	if c.Report.OutputDir == "" {
		errs = append(errs, ValidationError{
			Field:   "report.output_dir",
			Value:   c.Report.OutputDir,
			Message: "must not be empty",
		})
	}
	for _, pattern := range c.Report.Redact {
		if _, err := regexp.Compile(pattern); err != nil {
			errs = append(errs, ValidationError{
				Field:   "report.redact",
				Value:   pattern,
				Message: "must be a valid regular expression",
			})
		}
	}

	return errs
}
