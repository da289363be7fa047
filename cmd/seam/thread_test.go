// ABOUTME: Tests for CLI argument parsing helpers.
// ABOUTME: Covers 1-based positions and on/off switches.
package main

import "testing"

func TestParsePosition(t *testing.T) {
	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{"1", 0, false},
		{" 3 ", 2, false},
		{"0", 0, true},
		{"-2", 0, true},
		{"two", 0, true},
	}
	for _, tt := range tests {
		got, err := parsePosition(tt.arg)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePosition(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parsePosition(%q) = %d, want %d", tt.arg, got, tt.want)
		}
	}
}

func TestParseSwitch(t *testing.T) {
	for _, arg := range []string{"on", "ON", "true", "yes", "1"} {
		if on, err := parseSwitch(arg); err != nil || !on {
			t.Errorf("parseSwitch(%q) = %v, %v", arg, on, err)
		}
	}
	for _, arg := range []string{"off", "false", "no", "0"} {
		if on, err := parseSwitch(arg); err != nil || on {
			t.Errorf("parseSwitch(%q) = %v, %v", arg, on, err)
		}
	}
	if _, err := parseSwitch("maybe"); err == nil {
		t.Error("expected error for unknown value")
	}
}
