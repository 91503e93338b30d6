package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/honk-lang/honk/internal/engine"
	"github.com/honk-lang/honk/internal/output"
	"github.com/honk-lang/honk/internal/platform"
)

// RunResult is the output of the run command.
type RunResult struct {
	OK        bool         `yaml:"ok" json:"ok"`
	Action    string       `yaml:"action" json:"action"`
	Steps     int          `yaml:"steps" json:"steps"`
	Completed int          `yaml:"completed" json:"completed"`
	Error     string       `yaml:"error,omitempty" json:"error,omitempty"`
	Results   []StepResult `yaml:"results" json:"results"`
}

// StepResult reports one step of a run.
type StepResult struct {
	Step    int         `yaml:"step" json:"step"`
	OK      bool        `yaml:"ok" json:"ok"`
	Action  string      `yaml:"action" json:"action"`
	Error   string      `yaml:"error,omitempty" json:"error,omitempty"`
	Verb    *VerbOutput `yaml:"result,omitempty" json:"result,omitempty"`
	Elapsed string      `yaml:"elapsed,omitempty" json:"elapsed,omitempty"`
}

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a YAML list of steps",
	Long: `Execute steps from a YAML file (or stdin when no file is given).
Each step is a single-key map naming the action, with its parameters
nested underneath:

  - click:
      template: login-button
  - wait:
      quiet: true
      zone: "0,0,800,200"
  - input:
      template: search-field
      text: goose
      submit: true
  - check:
      zone: "10,10,200,40"
      that: "contains:1 result"

Supported actions: click, scroll, input, hover, check, wait, focus,
sleep. A failed step aborts the run unless --stop-on-error=false.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("stop-on-error", true, "Abort the run at the first failed step")
}

func runRun(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return err
		}
	} else {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return errors.New("no steps given: pass a file or pipe a YAML list of steps")
		}
	}

	var rawSteps []map[string]map[string]interface{}
	if err := yaml.Unmarshal(data, &rawSteps); err != nil {
		return fmt.Errorf("parsing steps: %w", err)
	}
	if len(rawSteps) == 0 {
		return errors.New("no steps to run")
	}

	tk, err := newToolkit()
	if err != nil {
		return err
	}
	stopOnError, _ := cmd.Flags().GetBool("stop-on-error")

	res := runSteps(cmd.Context(), tk, rawSteps, stopOnError)
	if err := output.Print(res); err != nil {
		return err
	}
	if !res.OK {
		return errors.New(res.Error)
	}
	return nil
}

// runSteps executes each step in order and accumulates per-step
// results. The run is not OK if any step failed, even when
// stopOnError kept it going.
func runSteps(ctx context.Context, tk *toolkit, rawSteps []map[string]map[string]interface{}, stopOnError bool) RunResult {
	res := RunResult{OK: true, Action: "run", Steps: len(rawSteps)}

steps:
	for i, step := range rawSteps {
		if len(step) != 1 {
			sr := StepResult{Step: i + 1, Error: fmt.Sprintf("step %d: want exactly one action key, got %d", i+1, len(step))}
			res.Results = append(res.Results, sr)
			res.OK = false
			res.Error = sr.Error
			if stopOnError {
				break steps
			}
			continue
		}

		for action, params := range step {
			sr, err := executeStep(ctx, tk, action, params)
			sr.Step = i + 1
			sr.OK = err == nil
			if err != nil {
				sr.Error = err.Error()
				res.OK = false
				res.Error = fmt.Sprintf("step %d (%s): %s", i+1, action, err)
			} else {
				res.Completed++
			}
			res.Results = append(res.Results, sr)
			if err != nil && stopOnError {
				break steps
			}
		}
	}
	return res
}

// executeStep dispatches one step. The returned StepResult carries
// whatever detail the action produced even when the error is non-nil.
func executeStep(ctx context.Context, tk *toolkit, action string, params map[string]interface{}) (StepResult, error) {
	switch action {
	case "click", "scroll", "input", "hover", "check":
		kind, err := engine.ParseKind(action)
		if err != nil {
			return StepResult{Action: action}, err
		}
		req, err := verbRequestFromParams(kind, params)
		if err != nil {
			return StepResult{Action: action}, err
		}
		vr, err := tk.engine.ExecuteVerb(ctx, req)
		if err != nil {
			return StepResult{Action: action}, err
		}
		out := verbOutput(vr)
		sr := StepResult{Action: action, Verb: &out, Elapsed: vr.Elapsed}
		if vr.Outcome.Failed() {
			return sr, fmt.Errorf("%s %s", action, vr.Outcome)
		}
		if vr.Verdict != nil && !*vr.Verdict {
			out.OK = false
			return sr, fmt.Errorf("condition %q is false", req.Condition)
		}
		return sr, nil

	case "wait":
		spec := waitSpec{
			quiet:    boolParam(params, "quiet", false),
			template: stringParam(params, "for-template", ""),
			gone:     boolParam(params, "gone", false),
			stable:   intParam(params, "stable", 0),
		}
		if spec.quiet == (spec.template != "") {
			return StepResult{Action: action}, errors.New("exactly one of quiet or for-template is required")
		}
		if z := stringParam(params, "zone", ""); z != "" {
			zone, err := parseZoneParam(z)
			if err != nil {
				return StepResult{Action: action}, err
			}
			spec.zone = zone
		}
		timeout, err := durationParam(params, "timeout")
		if err != nil {
			return StepResult{Action: action}, err
		}
		spec.timeout = timeout
		interval, err := durationParam(params, "interval")
		if err != nil {
			return StepResult{Action: action}, err
		}
		spec.interval = interval

		wr, err := tk.waitFor(ctx, spec)
		sr := StepResult{Action: action, Elapsed: wr.Elapsed}
		if err != nil {
			return sr, err
		}
		if wr.TimedOut {
			return sr, fmt.Errorf("condition %q not met", wr.Condition)
		}
		return sr, nil

	case "focus":
		app := stringParam(params, "app", "")
		pid := intParam(params, "pid", 0)
		if app == "" && pid == 0 {
			return StepResult{Action: action}, errors.New("focus needs app or pid")
		}
		if err := tk.provider.Focuser.FocusWindow(platform.FocusOptions{App: app, PID: pid}); err != nil {
			return StepResult{Action: action}, err
		}
		return StepResult{Action: action}, nil

	case "sleep":
		ms := intParam(params, "ms", 0)
		if ms <= 0 {
			return StepResult{Action: action}, errors.New("sleep needs ms > 0")
		}
		select {
		case <-ctx.Done():
			return StepResult{Action: action}, ctx.Err()
		case <-time.After(time.Duration(ms) * time.Millisecond):
		}
		return StepResult{Action: action, Elapsed: fmt.Sprintf("%dms", ms)}, nil

	default:
		return StepResult{Action: action}, fmt.Errorf("unknown step %q (expected click, scroll, input, hover, check, wait, focus, or sleep)", action)
	}
}
