// config.go - Startup configuration validation.
//
// Validates environment variables at boot to fail fast with clear messages
// rather than at the first request.
package server

import (
	"fmt"
	"os"
	"strings"
)

// ConfigValidationError represents a single configuration problem.
type ConfigValidationError struct {
	Field   string
	Message string
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// ConfigValidator accumulates configuration errors so the operator sees all
// of them in one pass.
type ConfigValidator struct {
	errors []ConfigValidationError
}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

func (v *ConfigValidator) AddError(field, message string) {
	v.errors = append(v.errors, ConfigValidationError{Field: field, Message: message})
}

func (v *ConfigValidator) HasErrors() bool {
	return len(v.errors) > 0
}

func (v *ConfigValidator) ErrorString() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d error(s):\n", len(v.errors)))
	for i, err := range v.errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidateRequired records an error when a required variable is unset.
func (v *ConfigValidator) ValidateRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		v.AddError(key, "required environment variable not set")
	}
	return value
}

// ValidateStartupConfig checks everything the process needs before it binds
// a port: store DSN, signing secret, and a coherent object-storage group
// (all four variables or none).
func ValidateStartupConfig() error {
	v := NewConfigValidator()

	v.ValidateRequired("DATABASE_URL")
	v.ValidateRequired("CAREERS_JWT_SECRET")

	s3Keys := []string{
		"CAREERS_S3_ENDPOINT",
		"CAREERS_S3_ACCESS_KEY",
		"CAREERS_S3_SECRET_KEY",
		"CAREERS_S3_BUCKET",
	}
	set := 0
	for _, k := range s3Keys {
		if os.Getenv(k) != "" {
			set++
		}
	}
	if set > 0 && set < len(s3Keys) {
		for _, k := range s3Keys {
			if os.Getenv(k) == "" {
				v.AddError(k, "object storage is partially configured; set all S3 variables or none")
			}
		}
	}

	if v.HasErrors() {
		return fmt.Errorf("%s", v.ErrorString())
	}
	return nil
}

// ObjectStorageConfigured reports whether the S3 backend should be used
// instead of the local disk directory.
func ObjectStorageConfigured() bool {
	return os.Getenv("CAREERS_S3_ENDPOINT") != ""
}
