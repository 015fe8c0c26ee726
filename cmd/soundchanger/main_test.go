package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spicery/soundchanger/pkg/soundchange"
	"golang.org/x/text/language"
)

func TestReadWords(t *testing.T) {
	words, err := readWords(strings.NewReader("pitake\n\n  kato  \r\nsipe"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := strings.Join(words, ","); got != "pitake,kato,sipe" {
		t.Errorf("Expected 'pitake,kato,sipe', got '%s'", got)
	}
}

func TestLanguageTag(t *testing.T) {
	if tag := languageTag("de"); tag.String() != "de" {
		t.Errorf("Expected de, got %v", tag)
	}
	if tag := languageTag("not a tag!"); tag != language.Und {
		t.Errorf("Expected undetermined language, got %v", tag)
	}
}

func sampleResults() []soundchange.Result {
	return []soundchange.Result{
		{
			Input:  "pitake",
			Output: "pidag",
			Trace: []soundchange.TraceStep{
				{RuleID: "lenition", Rule: "%P → %Z / %V_%V", Word: "pidage"},
				{RuleID: "apocope", Rule: "%V →  / %C%V%C_#", Word: "pidag"},
			},
		},
		{Input: "ma", Output: "ma"},
	}
}

func TestWriteResultsPlain(t *testing.T) {
	var buf bytes.Buffer
	if err := writeResults(&buf, sampleResults(), false, false); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := buf.String(); got != "pidag\nma\n" {
		t.Errorf("Expected plain outputs, got %q", got)
	}
}

func TestWriteResultsTrace(t *testing.T) {
	var buf bytes.Buffer
	if err := writeResults(&buf, sampleResults(), false, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "pitake → pidag" {
		t.Errorf("Expected header 'pitake → pidag', got '%s'", lines[0])
	}
	if !strings.HasPrefix(lines[1], "    pidage  [") {
		t.Errorf("Expected indented trace step, got '%s'", lines[1])
	}
	if lines[3] != "ma → ma" {
		t.Errorf("Expected 'ma → ma', got '%s'", lines[3])
	}
}

func TestWriteResultsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeResults(&buf, sampleResults(), true, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 JSON lines, got %d", len(lines))
	}
	var first soundchange.Result
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if first.Output != "pidag" || len(first.Trace) != 2 || first.Trace[0].RuleID != "lenition" {
		t.Errorf("Expected pidag with two steps, got %+v", first)
	}
	if strings.Contains(lines[1], "trace") {
		t.Errorf("Expected empty trace to be omitted, got %s", lines[1])
	}
}

func TestUsageListsFlags(t *testing.T) {
	for _, name := range []string{"--input", "--output", "--rules", "--make-rules", "--trace",
		"--json", "--lowercase", "--lang", "--workers", "--legacy-negated", "--debug"} {
		if !strings.Contains(usage, name) {
			t.Errorf("Expected usage to mention %s", name)
		}
	}
	if !strings.Contains(usage, "%X") {
		t.Errorf("Expected usage to keep the %%X notation verbatim")
	}
}
