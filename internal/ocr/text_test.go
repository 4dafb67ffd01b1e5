package ocr

import (
	"testing"

	"github.com/flowforge/flowforge/internal/flowgraph"
)

func TestTrimOCRText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Start", "Start"},
		{"surrounding whitespace", "  Start \n", "Start"},
		{"internal newlines", "Read\nInput\nData", "Read Input Data"},
		{"tabs and runs", "Is \t valid?", "Is valid?"},
		{"empty", "", ""},
		{"whitespace only", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trimOCRText(tt.in); got != tt.want {
				t.Errorf("trimOCRText(%q): got %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBranchToken(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want flowgraph.BranchLabel
	}{
		{"yes", "YES", flowgraph.BranchYes},
		{"lowercase yes", "yes", flowgraph.BranchYes},
		{"no", "No", flowgraph.BranchNo},
		{"noisy yes", "| Yes.", flowgraph.BranchYes},
		{"yes beats no", "yes/no", flowgraph.BranchYes},
		{"unrelated", "maybe", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := branchToken(tt.in); got != tt.want {
				t.Errorf("branchToken(%q): got %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
