package queue_test

import (
	"path/filepath"
	"testing"

	"presswork/internal/queue"
)

func TestStem(t *testing.T) {
	cases := map[string]string{
		"report.html":            "report",
		"/tmp/q/in-flight/a.HTM": "a",
		"no-extension":           "no-extension",
		"dotted.name.html":       "dotted.name",
		"x/y.pdf":                "y",
	}
	for input, want := range cases {
		if got := queue.Stem(input); got != want {
			t.Errorf("Stem(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestIsIntakeName(t *testing.T) {
	accepted := []string{"a.html", "b.HTML", "c.htm", "d.HtM"}
	rejected := []string{"e.pdf", "f.txt", "g", "h.html.bak"}
	for _, name := range accepted {
		if !queue.IsIntakeName(name) {
			t.Errorf("IsIntakeName(%q) = false, want true", name)
		}
	}
	for _, name := range rejected {
		if queue.IsIntakeName(name) {
			t.Errorf("IsIntakeName(%q) = true, want false", name)
		}
	}
}

func TestLayoutOutputPath(t *testing.T) {
	layout := queue.NewLayout("/data")
	want := filepath.Join("/data", "output-store", "report.pdf")
	if got := layout.OutputPath("report"); got != want {
		t.Errorf("OutputPath = %q, want %q", got, want)
	}
}
