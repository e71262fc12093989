package middleware

import (
	"fmt"
	"regexp"
	"strings"

	analysis "github.com/bryanwahyu/docwiki/internal/domain/analysis"
)

// Input validation and sanitization utilities

// ValidateComplexity checks the unit complexity enum.
func ValidateComplexity(c analysis.Complexity) error {
	switch c {
	case analysis.ComplexityLow, analysis.ComplexityMedium, analysis.ComplexityHigh, "":
		return nil
	}
	return fmt.Errorf("invalid complexity: %s (allowed: low, medium, high)", c)
}

var unitIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._/-]{1,128}$`)

// ValidateUnitID checks a unit identifier format.
func ValidateUnitID(id string) error {
	if id == "" {
		return fmt.Errorf("unit id cannot be empty")
	}
	if !unitIDPattern.MatchString(id) {
		return fmt.Errorf("invalid unit id format: %s", id)
	}
	return nil
}

// ValidateUnits checks a whole batch: non-empty, well-formed ids without
// duplicates, known complexity values.
func ValidateUnits(units []analysis.Unit) error {
	if len(units) == 0 {
		return fmt.Errorf("units cannot be empty")
	}
	seen := make(map[string]bool, len(units))
	for _, u := range units {
		if err := ValidateUnitID(u.ID); err != nil {
			return err
		}
		if seen[u.ID] {
			return fmt.Errorf("duplicate unit id: %s", u.ID)
		}
		seen[u.ID] = true
		if err := ValidateComplexity(u.Complexity); err != nil {
			return err
		}
	}
	return nil
}

// SanitizeString removes null bytes and control characters from strings.
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

var tenantPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}
	if !tenantPattern.MatchString(tenant) {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

var runIDPattern = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`)

// ValidateRunID validates run ID format (UUID)
func ValidateRunID(runID string) error {
	if runID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}
	if !runIDPattern.MatchString(runID) {
		return fmt.Errorf("invalid run ID format")
	}
	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateDays validates days parameter
func ValidateDays(days int) int {
	if days <= 0 {
		return 7 // default
	}
	if days > 365 {
		return 365 // max 1 year
	}
	return days
}
