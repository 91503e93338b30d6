package output

import (
	"io"
	"os"
	"strings"
	"testing"
)

func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = old

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read pipe: %v", err)
	}
	if fnErr != nil {
		t.Fatalf("print: %v", fnErr)
	}
	return string(data)
}

type sample struct {
	OK     bool   `yaml:"ok" json:"ok"`
	Action string `yaml:"action" json:"action"`
}

func TestPrintYAML(t *testing.T) {
	OutputFormat = FormatYAML
	out := captureStdout(t, func() error {
		return Print(sample{OK: true, Action: "click"})
	})
	if !strings.Contains(out, "ok: true") {
		t.Errorf("missing ok field in %q", out)
	}
	if !strings.Contains(out, "action: click") {
		t.Errorf("missing action field in %q", out)
	}
}

func TestPrintJSON(t *testing.T) {
	OutputFormat = FormatJSON
	PrettyOutput = false
	defer func() { OutputFormat = FormatYAML }()

	out := captureStdout(t, func() error {
		return Print(sample{OK: true, Action: "hover"})
	})
	if strings.TrimSpace(out) != `{"ok":true,"action":"hover"}` {
		t.Errorf("unexpected JSON output: %q", out)
	}
}

func TestPrintPrettyJSON(t *testing.T) {
	OutputFormat = FormatJSON
	PrettyOutput = true
	defer func() {
		OutputFormat = FormatYAML
		PrettyOutput = false
	}()

	out := captureStdout(t, func() error {
		return Print(sample{OK: false, Action: "scroll"})
	})
	if !strings.Contains(out, "\n  \"ok\": false") {
		t.Errorf("expected indented output, got %q", out)
	}
}

func TestPrintJSONNoHTMLEscape(t *testing.T) {
	OutputFormat = FormatJSON
	PrettyOutput = false
	defer func() { OutputFormat = FormatYAML }()

	out := captureStdout(t, func() error {
		return Print(map[string]string{"text": "a<b>&c"})
	})
	if !strings.Contains(out, "a<b>&c") {
		t.Errorf("HTML characters should not be escaped: %q", out)
	}
}
