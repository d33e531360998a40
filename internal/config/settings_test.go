package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseSettings(t *testing.T) {
	src := `
search:
  max_depth: 6
diagnostics:
  color: never
`
	got, err := ParseSettings([]byte(src), "depc.yaml")
	if err != nil {
		t.Fatal(err)
	}
	want := Settings{
		Search:      SearchSettings{MaxDepth: 6, MaxSteps: DefaultMaxSearchSteps},
		Diagnostics: DiagnosticsSettings{Color: ColorNever},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSettingsErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"search:\n  max_depth: -1\n", "max_depth must not be negative"},
		{"diagnostics:\n  color: purple\n", "diagnostics.color must be one of"},
		{"search: [", "parsing depc.yaml"},
	}
	for _, tt := range tests {
		_, err := ParseSettings([]byte(tt.src), "depc.yaml")
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%q: expected error containing %q, got %v", tt.src, tt.want, err)
		}
	}
}

func TestFindSettingsWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if path, err := FindSettings(nested); err != nil || path != "" {
		t.Fatalf("expected no settings, got %q (%v)", path, err)
	}
	want := filepath.Join(root, SettingsFileName)
	if err := os.WriteFile(want, []byte("search:\n  max_steps: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path, err := FindSettings(nested)
	if err != nil || path != want {
		t.Fatalf("expected %q, got %q (%v)", want, path, err)
	}
	s, err := LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Search.MaxSteps != 10 || s.Search.MaxDepth != DefaultMaxSearchDepth {
		t.Errorf("unexpected settings %+v", s)
	}
}
