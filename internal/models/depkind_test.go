package models

import (
	"testing"
)

func TestParseDepKind(t *testing.T) {
	tests := []struct {
		input    string
		expected DepKind
		wantErr  bool
	}{
		{"", DepKindNormal, false},
		{"normal", DepKindNormal, false},
		{"dev", DepKindDev, false},
		{"build", DepKindBuild, false},
		{"optional", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseDepKind(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDepKind(%q) = %v, want error", tt.input, kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDepKind(%q) error: %v", tt.input, err)
			}
			if kind != tt.expected {
				t.Errorf("ParseDepKind(%q) = %v, want %v", tt.input, kind, tt.expected)
			}
		})
	}
}

func TestDepKind_TableName(t *testing.T) {
	tests := []struct {
		kind     DepKind
		expected string
	}{
		{DepKindNormal, "dependencies"},
		{DepKindDev, "dev-dependencies"},
		{DepKindBuild, "build-dependencies"},
	}

	for _, tt := range tests {
		if got := tt.kind.TableName(); got != tt.expected {
			t.Errorf("TableName(%v) = %q, want %q", tt.kind, got, tt.expected)
		}
	}
}
