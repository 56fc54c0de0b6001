// Package validator provides configuration validation
package validator

import (
	"fmt"
	"strings"

	"resource-base/internal/config/schema"
	coreerrors "resource-base/internal/core/errors"
	corelog "resource-base/internal/core/log"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string // Field path (e.g., "resources[0].search_field")
	Value   string // Current value (masked for secrets)
	Message string // Error message
	Hint    string // Fix suggestion
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult contains all validation errors
type ValidationResult struct {
	Errors []ValidationError
}

// IsValid returns true if there are no validation errors
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Error returns a formatted error message
func (r *ValidationResult) Error() string {
	if r.IsValid() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Configuration validation failed:\n\n")

	for i, err := range r.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Field))
		if err.Value != "" {
			sb.WriteString(fmt.Sprintf("     Current value: %s\n", err.Value))
		}
		sb.WriteString(fmt.Sprintf("     Error: %s\n", err.Message))
		if err.Hint != "" {
			sb.WriteString(fmt.Sprintf("     Hint: %s\n", err.Hint))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Err converts the result into a CONFIG_ERROR, or nil when valid
func (r *ValidationResult) Err() error {
	if r.IsValid() {
		return nil
	}
	return coreerrors.New(coreerrors.CodeConfigError, r.Error()).
		WithDetail("field", r.Errors[0].Field)
}

// AddError adds a validation error
func (r *ValidationResult) AddError(field, value, message, hint string) {
	r.Errors = append(r.Errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
		Hint:    hint,
	})
}

// Validator validates configuration
type Validator struct {
	rules []ValidationRule
}

// ValidationRule is a function that validates configuration
type ValidationRule func(cfg *schema.Root, result *ValidationResult)

// NewValidator creates a new Validator with default rules
func NewValidator() *Validator {
	v := &Validator{
		rules: make([]ValidationRule, 0),
	}

	// Add default rules
	v.AddRule(validateStorage)
	v.AddRule(validateLog)
	v.AddRule(validateResources)
	v.AddRule(validateKeyCollisions)

	return v
}

// AddRule adds a validation rule
func (v *Validator) AddRule(rule ValidationRule) {
	v.rules = append(v.rules, rule)
}

// Validate validates the configuration
func (v *Validator) Validate(cfg *schema.Root) *ValidationResult {
	result := &ValidationResult{
		Errors: make([]ValidationError, 0),
	}

	for _, rule := range v.rules {
		rule(cfg, result)
	}

	return result
}

// ValidateConfig is a convenience function that creates a validator and validates
func ValidateConfig(cfg *schema.Root) *ValidationResult {
	return NewValidator().Validate(cfg)
}

// ============================================================================
// Validation Rules
// ============================================================================

func validateStorage(cfg *schema.Root, result *ValidationResult) {
	validTypes := map[string]bool{
		schema.StorageTypeMemory:   true,
		schema.StorageTypeRedis:    true,
		schema.StorageTypeEmbedded: true,
	}
	if !validTypes[cfg.Storage.Type] && cfg.Storage.Type != "" {
		result.AddError("storage.type",
			cfg.Storage.Type,
			"invalid storage type",
			"Use one of: redis, embedded, memory")
	}

	if cfg.Storage.Type != schema.StorageTypeRedis {
		return
	}
	if cfg.Storage.Redis.Addr == "" {
		result.AddError("storage.redis.addr",
			"",
			"redis.addr is required when storage type is redis",
			"Set redis address, e.g., localhost:6379")
	}
	if cfg.Storage.Redis.DB < 0 || cfg.Storage.Redis.DB > 15 {
		result.AddError("storage.redis.db",
			fmt.Sprintf("%d", cfg.Storage.Redis.DB),
			"redis.db must be between 0 and 15",
			"Set a value between 0 and 15")
	}
	if cfg.Storage.Redis.PoolSize < 0 {
		result.AddError("storage.redis.pool_size",
			fmt.Sprintf("%d", cfg.Storage.Redis.PoolSize),
			"pool_size must not be negative",
			"Set a value >= 0 (0 uses the default)")
	}
}

func validateLog(cfg *schema.Root, result *ValidationResult) {
	validateOneOf("log.level", cfg.Log.Level, []string{"debug", "info", "warn", "error"}, "invalid log level", result)
	validateOneOf("log.format", cfg.Log.Format, []string{corelog.FormatText, corelog.FormatJSON}, "invalid log format", result)
	validateOneOf("log.output", cfg.Log.Output,
		[]string{corelog.OutputStdout, corelog.OutputStderr, corelog.OutputFile}, "invalid log output", result)

	if cfg.Log.Output == corelog.OutputFile && cfg.Log.File == "" {
		result.AddError("log.file",
			"",
			"log.file is required when output is file",
			"Set a file path, e.g., /var/log/resctl.log")
	}
}

func validateResources(cfg *schema.Root, result *ValidationResult) {
	seen := make(map[string]int)
	for i, res := range cfg.Resources {
		path := fmt.Sprintf("resources[%d]", i)

		if res.Name == "" {
			result.AddError(path+".name", "", "resource name is required", "Give every resource a unique name")
			continue
		}
		if prev, dup := seen[res.Name]; dup {
			result.AddError(path+".name",
				res.Name,
				fmt.Sprintf("duplicate resource name (also resources[%d])", prev),
				"Resource names must be unique")
			continue
		}
		seen[res.Name] = i

		fields := make(map[string]bool, len(res.Fields))
		for _, f := range res.Fields {
			if fields[f] {
				result.AddError(path+".fields", f, "duplicate field", "List each field once")
			}
			fields[f] = true
		}
		for f := range res.FieldKeys {
			if !fields[f] {
				result.AddError(path+".field_keys."+f, f, "key template for undeclared field", "Add the field to fields or remove the template")
			}
		}

		if err := res.ToResourceConfig().Validate(); err != nil {
			var e *coreerrors.Error
			field := path
			if coreerrors.As(err, &e) && e.Detail("field") != "" {
				field = path + "." + e.Detail("field")
			}
			msg := err.Error()
			if e != nil {
				msg = e.Message
			}
			result.AddError(field, "", msg, resourceHint(e))
		}
	}
}

// validateKeyCollisions rejects resources that would share counters or membership sets
func validateKeyCollisions(cfg *schema.Root, result *ValidationResult) {
	owners := make(map[string]string)
	for i, res := range cfg.Resources {
		if res.Name == "" {
			continue
		}
		rc := res.ToResourceConfig()
		for _, key := range []string{rc.NextIDKey, rc.SetKey} {
			if owner, ok := owners[key]; ok && owner != res.Name {
				result.AddError(fmt.Sprintf("resources[%d]", i),
					key,
					fmt.Sprintf("key is already used by resource %q", owner),
					"Give each resource its own next_id_key and set_key")
				continue
			}
			owners[key] = res.Name
		}
	}
}

// ============================================================================
// Helper Functions
// ============================================================================

func validateOneOf(field, value string, allowed []string, message string, result *ValidationResult) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	result.AddError(field, value, message, "Use one of: "+strings.Join(allowed, ", "))
}

func resourceHint(e *coreerrors.Error) string {
	if e == nil {
		return ""
	}
	field := e.Detail("field")
	switch {
	case field == "search_field":
		return "search_field must be one of the declared fields"
	case field == "field_keys":
		return "Declare at least one field"
	case strings.HasPrefix(field, "field_keys."), strings.HasPrefix(field, "member_sets."):
		return "Templates need exactly one %s placeholder for the id"
	default:
		return ""
	}
}
