package cmd

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseFieldSpec(t *testing.T) {
	f, err := parseFieldSpec("login-user=goose")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Template != "login-user" || f.Value != "goose" {
		t.Errorf("expected login-user=goose, got %q=%q", f.Template, f.Value)
	}

	// Values may contain = signs; only the first one splits.
	f, err = parseFieldSpec("token=a=b=c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Value != "a=b=c" {
		t.Errorf("expected value a=b=c, got %q", f.Value)
	}

	if _, err := parseFieldSpec("no-equals-sign"); err == nil {
		t.Error("expected error for a spec without =")
	}
	if _, err := parseFieldSpec("=value"); err == nil {
		t.Error("expected error for an empty template name")
	}
}

func TestFillInputDecode(t *testing.T) {
	doc := `
fields:
  - template: login-user
    value: goose
  - template: login-pass
    value: hunter2
    paste: true
submit: login-button
`
	var in fillInput
	if err := yaml.Unmarshal([]byte(doc), &in); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(in.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(in.Fields))
	}
	if in.Fields[0].Template != "login-user" || in.Fields[0].Paste {
		t.Errorf("unexpected first field: %+v", in.Fields[0])
	}
	if !in.Fields[1].Paste {
		t.Error("expected second field to request paste")
	}
	if in.Submit != "login-button" {
		t.Errorf("expected submit login-button, got %q", in.Submit)
	}
}

func TestFillCommand_HasExpectedFlags(t *testing.T) {
	expectedFlags := []string{"field", "paste", "submit"}
	for _, name := range expectedFlags {
		if fillCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected flag --%s to exist on fill command", name)
		}
	}
}
