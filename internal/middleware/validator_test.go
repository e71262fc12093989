package middleware

import (
	"strings"
	"testing"

	analysis "github.com/bryanwahyu/docwiki/internal/domain/analysis"
)

func TestValidateComplexity(t *testing.T) {
	for _, c := range []analysis.Complexity{analysis.ComplexityLow, analysis.ComplexityMedium, analysis.ComplexityHigh, ""} {
		if err := ValidateComplexity(c); err != nil {
			t.Errorf("ValidateComplexity(%q) = %v, want nil", c, err)
		}
	}
	if err := ValidateComplexity("extreme"); err == nil {
		t.Error("expected error for unknown complexity")
	}
}

func TestValidateUnitID(t *testing.T) {
	valid := []string{"auth", "pkg/auth", "internal/db.mysql", "a-b_c.d", strings.Repeat("x", 128)}
	for _, id := range valid {
		if err := ValidateUnitID(id); err != nil {
			t.Errorf("ValidateUnitID(%q) = %v, want nil", id, err)
		}
	}
	invalid := []string{"", "has space", "semi;colon", strings.Repeat("x", 129)}
	for _, id := range invalid {
		if err := ValidateUnitID(id); err == nil {
			t.Errorf("ValidateUnitID(%q) = nil, want error", id)
		}
	}
}

func TestValidateUnits(t *testing.T) {
	if err := ValidateUnits(nil); err == nil {
		t.Error("expected error for empty batch")
	}
	if err := ValidateUnits([]analysis.Unit{{ID: "a"}, {ID: "a"}}); err == nil {
		t.Error("expected error for duplicate ids")
	}
	if err := ValidateUnits([]analysis.Unit{{ID: "a", Complexity: "extreme"}}); err == nil {
		t.Error("expected error for bad complexity")
	}
	units := []analysis.Unit{
		{ID: "pkg/auth", Complexity: analysis.ComplexityHigh},
		{ID: "pkg/db", Complexity: analysis.ComplexityLow},
	}
	if err := ValidateUnits(units); err != nil {
		t.Errorf("ValidateUnits(valid) = %v", err)
	}
}

func TestSanitizeString(t *testing.T) {
	cases := []struct{ in, want string }{
		{"clean text", "clean text"},
		{"null\x00byte", "nullbyte"},
		{"bell\x07char", "bellchar"},
		{"keep\ttabs\nand newlines", "keep\ttabs\nand newlines"},
		{"  trimmed  ", "trimmed"},
	}
	for _, tc := range cases {
		if got := SanitizeString(tc.in); got != tc.want {
			t.Errorf("SanitizeString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateTenantID(t *testing.T) {
	for _, tenant := range []string{"acme", "acme-corp_01"} {
		if err := ValidateTenantID(tenant); err != nil {
			t.Errorf("ValidateTenantID(%q) = %v", tenant, err)
		}
	}
	for _, tenant := range []string{"", "has space", "slash/y", strings.Repeat("t", 65)} {
		if err := ValidateTenantID(tenant); err == nil {
			t.Errorf("ValidateTenantID(%q) = nil, want error", tenant)
		}
	}
}

func TestValidateRunID(t *testing.T) {
	if err := ValidateRunID("1f0e047e-9f6f-4c4e-8f4a-2a77a1b2c3d4"); err != nil {
		t.Errorf("valid uuid rejected: %v", err)
	}
	for _, id := range []string{"", "not-a-uuid", "1F0E047E-9F6F-4C4E-8F4A-2A77A1B2C3D4"} {
		if err := ValidateRunID(id); err == nil {
			t.Errorf("ValidateRunID(%q) = nil, want error", id)
		}
	}
}

func TestValidateLimit(t *testing.T) {
	if got := ValidateLimit(0); got != 20 {
		t.Errorf("ValidateLimit(0) = %d, want 20", got)
	}
	if got := ValidateLimit(500); got != 100 {
		t.Errorf("ValidateLimit(500) = %d, want 100", got)
	}
	if got := ValidateLimit(42); got != 42 {
		t.Errorf("ValidateLimit(42) = %d, want 42", got)
	}
}

func TestValidateDays(t *testing.T) {
	if got := ValidateDays(-1); got != 7 {
		t.Errorf("ValidateDays(-1) = %d, want 7", got)
	}
	if got := ValidateDays(1000); got != 365 {
		t.Errorf("ValidateDays(1000) = %d, want 365", got)
	}
	if got := ValidateDays(30); got != 30 {
		t.Errorf("ValidateDays(30) = %d, want 30", got)
	}
}
