package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/honk-lang/honk/internal/geom"
	"github.com/honk-lang/honk/internal/output"
	"github.com/honk-lang/honk/internal/vision"
)

// WaitResult is the output of the wait command.
type WaitResult struct {
	OK        bool   `yaml:"ok" json:"ok"`
	Action    string `yaml:"action" json:"action"`
	Condition string `yaml:"condition" json:"condition"`
	Elapsed   string `yaml:"elapsed" json:"elapsed"`
	TimedOut  bool   `yaml:"timed_out,omitempty" json:"timed_out,omitempty"`
}

// waitSpec describes a wait condition independent of flag parsing so
// run steps can build one too.
type waitSpec struct {
	quiet    bool
	template string
	gone     bool
	zone     *geom.Zone
	timeout  time.Duration
	interval time.Duration
	stable   int
}

func (s waitSpec) condition() string {
	if s.quiet {
		return "quiet"
	}
	c := fmt.Sprintf("template %q visible", s.template)
	if s.gone {
		c += " (gone)"
	}
	return c
}

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Block until a screen condition holds",
	Long: `Wait for the screen to settle (--quiet) or for a template to appear
(--for-template, or disappear with --gone). Exits non-zero on timeout so
scripts can branch on it.`,
	RunE: runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().Bool("quiet", false, "Wait for the zone to stop changing")
	waitCmd.Flags().String("for-template", "", "Wait for this template to be visible")
	waitCmd.Flags().Bool("gone", false, "Invert --for-template: wait for it to disappear")
	waitCmd.Flags().String("zone", "", `Watch zone "x,y,w,h" (default: full screen)`)
	waitCmd.Flags().Duration("timeout", 30*time.Second, "Give up after this long")
	waitCmd.Flags().Duration("interval", 0, "Poll interval (default: engine poll interval)")
	waitCmd.Flags().Int("stable", 0, "Consecutive quiet reads required (default: engine stable reads)")
}

func runWait(cmd *cobra.Command, args []string) error {
	tk, err := newToolkit()
	if err != nil {
		return err
	}

	spec := waitSpec{}
	spec.quiet, _ = cmd.Flags().GetBool("quiet")
	spec.template, _ = cmd.Flags().GetString("for-template")
	spec.gone, _ = cmd.Flags().GetBool("gone")
	spec.timeout, _ = cmd.Flags().GetDuration("timeout")
	spec.interval, _ = cmd.Flags().GetDuration("interval")
	spec.stable, _ = cmd.Flags().GetInt("stable")
	if z, _ := cmd.Flags().GetString("zone"); z != "" {
		parsed, err := geom.ParseZone(z)
		if err != nil {
			return err
		}
		spec.zone = &parsed
	}

	if spec.quiet == (spec.template != "") {
		return errors.New("wait: exactly one of --quiet or --for-template is required")
	}
	if spec.gone && spec.template == "" {
		return errors.New("wait: --gone requires --for-template")
	}

	res, err := tk.waitFor(cmd.Context(), spec)
	if err != nil {
		return err
	}
	if res.TimedOut {
		if err := output.Print(res); err != nil {
			return err
		}
		return fmt.Errorf("wait: condition %q not met within %s", res.Condition, spec.timeout)
	}
	return output.Print(res)
}

// waitFor polls until the condition holds or the timeout elapses. The
// returned error covers infrastructure failures only; a timeout comes
// back as a result with TimedOut set.
func (tk *toolkit) waitFor(ctx context.Context, spec waitSpec) (WaitResult, error) {
	if spec.interval <= 0 {
		spec.interval = tk.cfg.Engine.PollInterval
	}
	if spec.stable <= 0 {
		spec.stable = tk.cfg.Engine.StableReads
	}
	if spec.timeout <= 0 {
		spec.timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, spec.timeout)
	defer cancel()

	res := WaitResult{Action: "wait", Condition: spec.condition()}
	start := time.Now()

	var tpl vision.Template
	if spec.template != "" {
		resolved, err := tk.library.Resolve(spec.template)
		if err != nil {
			return res, err
		}
		tpl = resolved.ForScale(tk.scale)
	}

	prev, err := tk.sampler.Capture(spec.zone)
	if err != nil {
		return res, err
	}

	quietReads := 0
	for {
		if spec.template != "" {
			_, err := tk.matcher.Find(prev, tpl)
			visible := err == nil
			if err != nil && !errors.Is(err, vision.ErrNoMatch) {
				return res, err
			}
			if visible != spec.gone {
				res.OK = true
				res.Elapsed = time.Since(start).Round(time.Millisecond).String()
				return res, nil
			}
		}

		select {
		case <-ctx.Done():
			res.TimedOut = true
			res.Elapsed = time.Since(start).Round(time.Millisecond).String()
			return res, nil
		case <-time.After(spec.interval):
		}

		tk.sampler.Invalidate()
		curr, err := tk.sampler.Capture(spec.zone)
		if err != nil {
			return res, err
		}

		if spec.quiet {
			d, err := tk.differ.Diff(prev, curr)
			if err != nil {
				return res, err
			}
			if d.Changed {
				quietReads = 0
			} else {
				quietReads++
				if quietReads >= spec.stable {
					res.OK = true
					res.Elapsed = time.Since(start).Round(time.Millisecond).String()
					return res, nil
				}
			}
		}
		prev = curr
	}
}
