package config

import (
	"fmt"
	"strings"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidatePort validates a TCP port number
func (v *Validator) ValidatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", port)
	}
	return nil
}

// ValidateExpirySchedule validates an object store expiry schedule. The full
// cron syntax check happens when the monitor parses it; this rejects the
// obviously broken values early.
func (v *Validator) ValidateExpirySchedule(schedule string) error {
	if strings.TrimSpace(schedule) == "" {
		return fmt.Errorf("store expiry schedule cannot be empty")
	}
	if !strings.HasPrefix(schedule, "@") && len(strings.Fields(schedule)) != 5 {
		return fmt.Errorf("invalid expiry schedule %q (expected 5 cron fields or a @descriptor)", schedule)
	}
	return nil
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}

	if cfg.Server.Enabled {
		if err := v.ValidatePort(cfg.Server.Port); err != nil {
			errors = append(errors, fmt.Errorf("server: %w", err))
		}
	}

	if cfg.Watcher.Enabled && cfg.Watcher.DebounceMs < 0 {
		errors = append(errors, fmt.Errorf("watcher debounce_ms must be >= 0"))
	}

	if err := v.ValidateExpirySchedule(cfg.Store.ExpirySchedule); err != nil {
		errors = append(errors, err)
	}
	if cfg.Store.MaxAgeHours < 0 {
		errors = append(errors, fmt.Errorf("store max_age_hours must be >= 0"))
	}
	if cfg.Store.MaxEntries < 0 {
		errors = append(errors, fmt.Errorf("store max_entries must be >= 0"))
	}

	return errors
}
