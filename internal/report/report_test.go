package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/domaindive/internal/model"
)

var testDate = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// createTestReport creates a report with one successful item, one failed
// item, and one dependency error.
func createTestReport() *model.AnalysisReport {
	items := []model.AnalysisResult{
		model.NewAnalysisResult("dns", map[string]model.DNSRecord{
			"A": {RType: "A", Values: []string{"192.0.2.1"}},
		}),
		model.NewFailedResult("whois", errors.New("whois server refused")),
	}
	errs := map[model.DependencyKey]error{
		"nameservers": errors.New("lookup timed out"),
	}
	return model.NewAnalysisReport("example.com", testDate, items, errs)
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header items and errors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"DOMAINDIVE REPORT",
			"Address:       example.com",
			"1 analyzer(s) failed",
			"[+] DNS",
			"A.values[0]: 192.0.2.1",
			"[!] WHOIS",
			"error: whois server refused",
			"DEPENDENCY ERRORS",
			"nameservers: lookup timed out",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
	})

	t.Run("items keep report order", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Index(output, "DNS") > strings.Index(output, "WHOIS") {
			t.Error("expected DNS before WHOIS")
		}
	})

	t.Run("complete report", func(t *testing.T) {
		t.Parallel()

		report := model.NewAnalysisReport("example.com", testDate,
			[]model.AnalysisResult{model.NewAnalysisResult("geolocation", "Tokyo")}, nil)

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Complete") {
			t.Error("expected complete status")
		}
		if strings.Contains(output, "DEPENDENCY ERRORS") {
			t.Error("unexpected dependency error section")
		}
		if !strings.Contains(output, "[+] Geolocation\n  Tokyo") {
			t.Errorf("expected scalar payload under its label\n%s", output)
		}
	})

	t.Run("limits fields unless verbose", func(t *testing.T) {
		t.Parallel()

		data := make(map[string]string)
		for _, k := range []string{"a", "b", "c", "d"} {
			data[k] = k
		}
		report := model.NewAnalysisReport("example.com", testDate,
			[]model.AnalysisResult{model.NewAnalysisResult("http", data)}, nil)

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithMaxFields(2)).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "... 2 more") {
			t.Errorf("expected truncation notice\n%s", buf.String())
		}

		buf.Reset()
		if _, err := NewSimpleWriter(&buf, WithMaxFields(2), WithVerbose(true)).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "more") || !strings.Contains(buf.String(), "d: d") {
			t.Errorf("expected all fields in verbose mode\n%s", buf.String())
		}
	})

	t.Run("color reaches a non terminal writer", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithColor(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\x1b[") {
			t.Errorf("expected ANSI escape codes in colored output\n%q", buf.String())
		}
	})

	t.Run("no escape codes without color", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "\x1b[") {
			t.Errorf("unexpected escape codes\n%q", buf.String())
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output is one line", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Count(output, "\n") != 1 || !strings.HasSuffix(output, "\n") {
			t.Errorf("expected a single line, got %q", output)
		}

		var decoded model.AnalysisReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not a report: %v", err)
		}
		if decoded.Address() != "example.com" || len(decoded.Items()) != 2 {
			t.Errorf("decoded = %s, %d items", decoded.Address(), len(decoded.Items()))
		}
		if err, ok := decoded.DependencyError("nameservers"); !ok || err.Error() != "lookup timed out" {
			t.Errorf("DependencyError() = %v, %v", err, ok)
		}
	})

	t.Run("pretty print with version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint(), WithVersion("v1.2.3"))
		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n  \"version\": \"v1.2.3\"") {
			t.Errorf("expected indented version field\n%s", buf.String())
		}

		var envelope struct {
			Version string          `json:"version"`
			Report  json.RawMessage `json:"report"`
		}
		if err := json.Unmarshal(buf.Bytes(), &envelope); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(envelope.Report) == 0 {
			t.Error("expected report field")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"# domaindive Report",
		"`example.com`",
		"## Results",
		"### DNS",
		"### WHOIS",
		"whois server refused",
		"## Dependency Errors",
		"`nameservers`",
		"mermaid",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected markdown to contain %q\n%s", want, output)
		}
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	w := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

	n, err := w.Write(createTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != text.Len()+js.Len() {
		t.Errorf("n = %d, want %d", n, text.Len()+js.Len())
	}
	if text.Len() == 0 || js.Len() == 0 {
		t.Error("expected both writers to receive output")
	}
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data any
		want []string
	}{
		{name: "string", data: "hello", want: []string{"hello"}},
		{name: "nil", data: nil, want: []string{"null"}},
		{
			name: "map sorted",
			data: map[string]string{"b": "2", "a": "1"},
			want: []string{"a: 1", "b: 2"},
		},
		{
			name: "nested",
			data: map[string]any{"ns": []any{map[string]any{"hostname": "ns1"}}},
			want: []string{"ns[0].hostname: ns1"},
		},
		{name: "empty slice", data: []string{}, want: []string{"[]"}},
		{name: "number", data: map[string]int{"days": 30}, want: []string{"days: 30"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fields := Flatten(tt.data)
			got := make([]string, len(fields))
			for i, f := range fields {
				got[i] = f.String()
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Flatten() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalyzerLabel(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"dns":         "DNS",
		"whois":       "WHOIS",
		"geolocation": "Geolocation",
		"nameservers": "Nameservers",
		"custom_name": "Custom Name",
		"":            "Unknown",
	}
	for in, want := range tests {
		if got := analyzerLabel(in); got != want {
			t.Errorf("analyzerLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	t.Parallel()

	if got := formatDelta(2); got != "+2" {
		t.Errorf("formatDelta(2) = %q", got)
	}
	if got := formatDelta(-1); got != "-1" {
		t.Errorf("formatDelta(-1) = %q", got)
	}
	if got := formatDelta(0); got != "0" {
		t.Errorf("formatDelta(0) = %q", got)
	}
	if got := formatCountChange(1, 3); got != "1 -> 3 (+2)" {
		t.Errorf("formatCountChange(1, 3) = %q", got)
	}
	if got := truncateString("abcdef", 5); got != "ab..." {
		t.Errorf("truncateString() = %q", got)
	}
}
