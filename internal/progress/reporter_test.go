package progress

import (
	"strings"
	"testing"
)

func TestNewReporterInCI(t *testing.T) {
	t.Setenv("CI", "true")

	if _, ok := NewReporter("Ingesting").(*LineReporter); !ok {
		t.Error("expected a LineReporter under CI")
	}
}

func TestLineReporterOutput(t *testing.T) {
	var sb strings.Builder
	r := &LineReporter{Description: "Ingesting", Out: &sb}

	r.Start(2)
	r.Update(1, "calc.md")
	r.Update(2, "")
	r.Finish()

	got := sb.String()
	for _, want := range []string{"Ingesting: 0/2", "Ingesting: 1/2 calc.md", "Ingesting: 2/2", "Ingesting: done"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
