package models

import (
	"strings"
	"testing"
)

func TestBuildAction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		action  BuildAction
		wantErr bool
	}{
		{"run debug", BuildAction{Command: CommandRun, Profile: ProfileDebug}, false},
		{"build release", BuildAction{Command: CommandBuild, Profile: ProfileRelease}, false},
		{"check empty profile", BuildAction{Command: CommandCheck}, false},
		{"test", BuildAction{Command: CommandTest, Profile: ProfileDebug}, false},
		{"unknown command", BuildAction{Command: "bench"}, true},
		{"empty command", BuildAction{}, true},
		{"unknown profile", BuildAction{Command: CommandBuild, Profile: "fast"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.action.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("Validate() = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() error: %v", err)
			}
		})
	}
}

func TestFeatureSettings_Args(t *testing.T) {
	tests := []struct {
		name     string
		settings FeatureSettings
		expected string
	}{
		{"defaults only", FeatureSettings{DefaultFeatures: true}, ""},
		{"no defaults", FeatureSettings{DefaultFeatures: false}, "--no-default-features"},
		{"one feature", FeatureSettings{Enabled: []string{"tls"}, DefaultFeatures: true}, "--features tls"},
		{"several features", FeatureSettings{Enabled: []string{"tls", "http2"}, DefaultFeatures: true}, "--features tls,http2"},
		{"no defaults plus features", FeatureSettings{Enabled: []string{"tls"}, DefaultFeatures: false}, "--no-default-features --features tls"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(tt.settings.Args(), " ")
			if got != tt.expected {
				t.Errorf("Args() = %q, want %q", got, tt.expected)
			}
		})
	}
}
