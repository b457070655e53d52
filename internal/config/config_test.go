package config

import (
	"testing"
	"time"

	"go.yaml.in/yaml/v4"
)

func TestDurationUnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"seconds", `interval: 10s`, 10 * time.Second, false},
		{"compound", `interval: 1m30s`, 90 * time.Second, false},
		{"millis", `interval: 250ms`, 250 * time.Millisecond, false},
		{"bare number", `interval: 10`, 0, true},
		{"garbage", `interval: soon`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg struct {
				Interval Duration `yaml:"interval"`
			}
			err := yaml.Unmarshal([]byte(tt.input), &cfg)

			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg.Interval.Duration() != tt.want {
				t.Errorf("got %v, want %v", cfg.Interval.Duration(), tt.want)
			}
		})
	}
}

func TestAPICredsUnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantSet bool
		wantErr bool
	}{
		{"complete", "auth:\n  key: k\n  secret: s\n  passphrase: p", true, false},
		{"absent", "auth: {}", false, false},
		{"missing secret", "auth:\n  key: k\n  passphrase: p", false, true},
		{"missing key", "auth:\n  secret: s\n  passphrase: p", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg struct {
				Auth APICreds `yaml:"auth"`
			}
			err := yaml.Unmarshal([]byte(tt.input), &cfg)

			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg.Auth.IsSet() != tt.wantSet {
				t.Errorf("IsSet() = %v, want %v", cfg.Auth.IsSet(), tt.wantSet)
			}
		})
	}
}
