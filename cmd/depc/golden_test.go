package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/raffopazzo/depc-sub002/internal/config"
)

// TestFormatGolden formats every testdata/fmt/*.depc file and compares the
// output with the .want file next to it. Formatted output must be stable
// and must still typecheck.
func TestFormatGolden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "fmt", "*.depc"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Skip("No test files with .want found")
	}
	logger := (&commonFlags{}).logger()

	for _, file := range files {
		testName := strings.TrimSuffix(filepath.Base(file), ".depc")
		t.Run(testName, func(t *testing.T) {
			src, err := os.ReadFile(file)
			if err != nil {
				t.Fatal(err)
			}
			wantBytes, err := os.ReadFile(strings.TrimSuffix(file, ".depc") + ".want")
			if err != nil {
				t.Fatalf("Failed to read .want file: %v", err)
			}
			want := strings.ReplaceAll(string(wantBytes), "\r\n", "\n")

			got, errs := formatSource(string(src), file)
			if len(errs) > 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Output mismatch (-want +got):\n%s", diff)
			}

			again, _ := formatSource(got, file)
			if again != got {
				t.Errorf("formatting is not idempotent:\n%s", cmp.Diff(got, again))
			}

			ctx := checkSource(got, file, config.DefaultSettings(), logger)
			for _, e := range ctx.Errors {
				t.Errorf("formatted output does not check: %s", e.Error())
			}
		})
	}
}

func TestFormatSourceReportsParseErrors(t *testing.T) {
	out, errs := formatSource("auto f( -> {", "broken.depc")
	if out != "" || len(errs) == 0 {
		t.Fatalf("expected parse errors and no output, got %q and %v", out, errs)
	}
	if errs[0].File != "broken.depc" {
		t.Errorf("expected the error to carry the file name, got %q", errs[0].File)
	}
}
