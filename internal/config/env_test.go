package config

import (
	"os"
	"testing"
	"time"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		envSet       bool
		want         string
	}{
		{
			name:         "environment variable set",
			key:          "TEST_STRING",
			defaultValue: "default",
			envValue:     "from-env",
			envSet:       true,
			want:         "from-env",
		},
		{
			name:         "environment variable not set",
			key:          "TEST_STRING_UNSET",
			defaultValue: "default",
			envSet:       false,
			want:         "default",
		},
		{
			name:         "environment variable empty string",
			key:          "TEST_STRING_EMPTY",
			defaultValue: "default",
			envValue:     "",
			envSet:       true,
			want:         "default",
		},
		{
			name:         "sensitive variable (password)",
			key:          "TEST_PASSWORD",
			defaultValue: "default",
			envValue:     "secret123",
			envSet:       true,
			want:         "secret123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSet {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := ParseString(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("ParseString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		envSet       bool
		want         int
	}{
		{
			name:         "valid integer",
			key:          "TEST_INT",
			defaultValue: 42,
			envValue:     "100",
			envSet:       true,
			want:         100,
		},
		{
			name:         "invalid integer",
			key:          "TEST_INT_INVALID",
			defaultValue: 42,
			envValue:     "not-a-number",
			envSet:       true,
			want:         42, // falls back to default
		},
		{
			name:         "empty string",
			key:          "TEST_INT_EMPTY",
			defaultValue: 42,
			envValue:     "",
			envSet:       true,
			want:         42,
		},
		{
			name:         "not set",
			key:          "TEST_INT_UNSET",
			defaultValue: 42,
			envSet:       false,
			want:         42,
		},
		{
			name:         "negative integer",
			key:          "TEST_INT_NEG",
			defaultValue: 42,
			envValue:     "-7",
			envSet:       true,
			want:         -7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSet {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := ParseInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("ParseInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue time.Duration
		envValue     string
		envSet       bool
		want         time.Duration
	}{
		{
			name:         "valid duration",
			key:          "TEST_DUR",
			defaultValue: 5 * time.Second,
			envValue:     "30s",
			envSet:       true,
			want:         30 * time.Second,
		},
		{
			name:         "complex duration",
			key:          "TEST_DUR_COMPLEX",
			defaultValue: time.Minute,
			envValue:     "1h30m",
			envSet:       true,
			want:         90 * time.Minute,
		},
		{
			name:         "invalid duration",
			key:          "TEST_DUR_INVALID",
			defaultValue: 5 * time.Second,
			envValue:     "soon",
			envSet:       true,
			want:         5 * time.Second,
		},
		{
			name:         "not set",
			key:          "TEST_DUR_UNSET",
			defaultValue: 5 * time.Second,
			envSet:       false,
			want:         5 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSet {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := ParseDuration(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("ParseDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue bool
		envValue     string
		envSet       bool
		want         bool
	}{
		{"true", "TEST_BOOL_T", false, "true", true, true},
		{"one", "TEST_BOOL_1", false, "1", true, true},
		{"yes", "TEST_BOOL_Y", false, "yes", true, true},
		{"false", "TEST_BOOL_F", true, "false", true, false},
		{"zero", "TEST_BOOL_0", true, "0", true, false},
		{"no", "TEST_BOOL_N", true, "no", true, false},
		{"mixed case", "TEST_BOOL_MC", false, "TRUE", true, true},
		{"invalid", "TEST_BOOL_INV", true, "maybe", true, true},
		{"not set", "TEST_BOOL_UNSET", true, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSet {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := ParseBool(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("ParseBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseStringSlice(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue []string
		envValue     string
		envSet       bool
		want         []string
	}{
		{
			name:         "comma separated",
			key:          "TEST_SLICE",
			defaultValue: nil,
			envValue:     "a,b,c",
			envSet:       true,
			want:         []string{"a", "b", "c"},
		},
		{
			name:         "whitespace trimmed",
			key:          "TEST_SLICE_WS",
			defaultValue: nil,
			envValue:     " a , b ,,c ",
			envSet:       true,
			want:         []string{"a", "b", "c"},
		},
		{
			name:         "not set uses default",
			key:          "TEST_SLICE_UNSET",
			defaultValue: []string{"x"},
			envSet:       false,
			want:         []string{"x"},
		},
		{
			name:         "only whitespace uses default",
			key:          "TEST_SLICE_BLANK",
			defaultValue: []string{"x"},
			envValue:     "   ",
			envSet:       true,
			want:         []string{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSet {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := ParseStringSlice(tt.key, tt.defaultValue)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseStringSlice() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseStringSlice()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
