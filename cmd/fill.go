package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/honk-lang/honk/internal/engine"
	"github.com/honk-lang/honk/internal/output"
)

// FillResult is the output of the fill command.
type FillResult struct {
	OK        bool              `yaml:"ok" json:"ok"`
	Action    string            `yaml:"action" json:"action"`
	FieldsSet int               `yaml:"fields_set" json:"fields_set"`
	Results   []FillFieldResult `yaml:"results" json:"results"`
	Submitted *VerbOutput       `yaml:"submitted,omitempty" json:"submitted,omitempty"`
	Error     string            `yaml:"error,omitempty" json:"error,omitempty"`
}

// FillFieldResult reports one field of a fill.
type FillFieldResult struct {
	Template string         `yaml:"template" json:"template"`
	OK       bool           `yaml:"ok" json:"ok"`
	Outcome  engine.Outcome `yaml:"outcome,omitempty" json:"outcome,omitempty"`
	Error    string         `yaml:"error,omitempty" json:"error,omitempty"`
}

type fillField struct {
	Template string `yaml:"template"`
	Value    string `yaml:"value"`
	Paste    bool   `yaml:"paste,omitempty"`
}

type fillInput struct {
	Fields []fillField `yaml:"fields"`
	Submit string      `yaml:"submit,omitempty"`
}

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill a form field by field",
	Long: `Run an input verb per field, stopping at the first failure. Fields
come from repeated --field template=value flags or, when none are given,
a YAML document on stdin:

  fields:
    - template: login-user
      value: goose
    - template: login-pass
      value: hunter2
      paste: true
  submit: login-button

With --submit (or a submit key in the YAML) the submit template is
clicked after every field lands.`,
	RunE: runFill,
}

func init() {
	rootCmd.AddCommand(fillCmd)
	fillCmd.Flags().StringArray("field", nil, `Field as "template=value" (repeatable)`)
	fillCmd.Flags().Bool("paste", false, "Paste values through the clipboard instead of typing")
	fillCmd.Flags().String("submit", "", "Template to click after all fields are set")
}

func parseFieldSpec(s string) (fillField, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fillField{}, fmt.Errorf("field %q: want template=value", s)
	}
	return fillField{Template: name, Value: value}, nil
}

func runFill(cmd *cobra.Command, args []string) error {
	tk, err := newToolkit()
	if err != nil {
		return err
	}

	var in fillInput
	fieldSpecs, _ := cmd.Flags().GetStringArray("field")
	if len(fieldSpecs) > 0 {
		for _, s := range fieldSpecs {
			f, err := parseFieldSpec(s)
			if err != nil {
				return err
			}
			in.Fields = append(in.Fields, f)
		}
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return errors.New("no fields given: use --field or pipe a YAML document on stdin")
		}
		if err := yaml.Unmarshal(data, &in); err != nil {
			return fmt.Errorf("parsing fill input: %w", err)
		}
	}
	if len(in.Fields) == 0 {
		return errors.New("no fields to fill")
	}

	pasteAll, _ := cmd.Flags().GetBool("paste")
	if submit, _ := cmd.Flags().GetString("submit"); submit != "" {
		in.Submit = submit
	}

	ctx := cmd.Context()
	res := FillResult{OK: true, Action: "fill"}
	for _, f := range in.Fields {
		vr, err := tk.engine.ExecuteVerb(ctx, engine.VerbRequest{
			Kind:   engine.Input,
			Target: f.Template,
			Text:   f.Value,
			Paste:  f.Paste || pasteAll,
		})
		if err != nil {
			res.OK = false
			res.Error = err.Error()
			res.Results = append(res.Results, FillFieldResult{Template: f.Template, Error: err.Error()})
			break
		}
		fr := FillFieldResult{Template: f.Template, OK: !vr.Outcome.Failed(), Outcome: vr.Outcome}
		res.Results = append(res.Results, fr)
		if !fr.OK {
			res.OK = false
			res.Error = fmt.Sprintf("field %q: %s", f.Template, vr.Outcome)
			break
		}
		res.FieldsSet++
	}

	if res.OK && in.Submit != "" {
		vr, err := tk.engine.ExecuteVerb(ctx, engine.VerbRequest{
			Kind:   engine.Click,
			Target: in.Submit,
		})
		if err != nil {
			res.OK = false
			res.Error = err.Error()
		} else {
			out := verbOutput(vr)
			res.Submitted = &out
			if vr.Outcome.Failed() {
				res.OK = false
				res.Error = fmt.Sprintf("submit %q: %s", in.Submit, vr.Outcome)
			}
		}
	}

	if err := output.Print(res); err != nil {
		return err
	}
	if !res.OK {
		return errors.New(res.Error)
	}
	return nil
}
