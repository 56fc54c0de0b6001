package validator

import (
	"strings"
	"testing"

	"resource-base/internal/config/schema"
	"resource-base/internal/config/source"
	coreerrors "resource-base/internal/core/errors"
)

func validConfig(t *testing.T) *schema.Root {
	t.Helper()
	cfg := &schema.Root{}
	if err := source.NewDefaultSource().LoadInto(cfg); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	cfg.Resources = []schema.ResourceSpec{
		{Name: "article", Fields: []string{"title", "slug"}, SearchField: "slug", MemberSets: []string{"tags"}},
		{Name: "user", Fields: []string{"name"}},
	}
	return cfg
}

func hasError(result *ValidationResult, field string) bool {
	for _, e := range result.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidationResult_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		errors []ValidationError
		want   bool
	}{
		{"no errors", nil, true},
		{"empty errors", []ValidationError{}, true},
		{"has errors", []ValidationError{{Field: "test", Message: "error"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &ValidationResult{Errors: tt.errors}
			if got := r.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidationResult_Err(t *testing.T) {
	r := &ValidationResult{}
	if r.Err() != nil {
		t.Error("Err() should be nil for a valid result")
	}

	r.AddError("storage.type", "etcd", "invalid storage type", "Use one of: redis, embedded, memory")
	err := r.Err()
	if !coreerrors.IsCode(err, coreerrors.CodeConfigError) {
		t.Fatalf("expected CONFIG_ERROR, got %v", err)
	}
	msg := r.Error()
	for _, want := range []string{"storage.type", "Current value: etcd", "Hint: Use one of"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() missing %q:\n%s", want, msg)
		}
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	result := ValidateConfig(validConfig(t))
	if !result.IsValid() {
		t.Errorf("expected valid config, got:\n%s", result.Error())
	}
}

func TestValidateConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *schema.Root)
		field  string
	}{
		{"storage type", func(c *schema.Root) { c.Storage.Type = "etcd" }, "storage.type"},
		{"redis addr", func(c *schema.Root) {
			c.Storage.Type = schema.StorageTypeRedis
			c.Storage.Redis.Addr = ""
		}, "storage.redis.addr"},
		{"redis db", func(c *schema.Root) {
			c.Storage.Type = schema.StorageTypeRedis
			c.Storage.Redis.DB = 16
		}, "storage.redis.db"},
		{"log level", func(c *schema.Root) { c.Log.Level = "verbose" }, "log.level"},
		{"log format", func(c *schema.Root) { c.Log.Format = "xml" }, "log.format"},
		{"log file", func(c *schema.Root) { c.Log.Output = "file" }, "log.file"},
		{"resource name", func(c *schema.Root) { c.Resources[1].Name = "" }, "resources[1].name"},
		{"duplicate resource", func(c *schema.Root) { c.Resources[1].Name = "article" }, "resources[1].name"},
		{"no fields", func(c *schema.Root) { c.Resources[1].Fields = nil }, "resources[1].field_keys"},
		{"duplicate field", func(c *schema.Root) { c.Resources[1].Fields = []string{"name", "name"} }, "resources[1].fields"},
		{"search field", func(c *schema.Root) { c.Resources[0].SearchField = "body" }, "resources[0].search_field"},
		{"bad template", func(c *schema.Root) {
			c.Resources[0].FieldKeys = map[string]string{"title": "article:title"}
		}, "resources[0].field_keys.title"},
		{"template for undeclared field", func(c *schema.Root) {
			c.Resources[0].FieldKeys = map[string]string{"body": "article:%s:body"}
		}, "resources[0].field_keys.body"},
		{"shared counter", func(c *schema.Root) { c.Resources[1].NextIDKey = "article:id" }, "resources[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			result := ValidateConfig(cfg)
			if !hasError(result, tt.field) {
				t.Errorf("expected error on %s, got:\n%s", tt.field, result.Error())
			}
		})
	}
}

func TestValidator_AddRule(t *testing.T) {
	v := NewValidator()
	v.AddRule(func(cfg *schema.Root, result *ValidationResult) {
		if len(cfg.Resources) == 0 {
			result.AddError("resources", "", "at least one resource is required", "")
		}
	})

	cfg := validConfig(t)
	cfg.Resources = nil
	if !hasError(v.Validate(cfg), "resources") {
		t.Error("custom rule was not applied")
	}
}
