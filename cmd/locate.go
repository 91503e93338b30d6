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

// LocateResult is the output of the locate command.
type LocateResult struct {
	OK       bool          `yaml:"ok" json:"ok"`
	Action   string        `yaml:"action" json:"action"`
	Template string        `yaml:"template" json:"template"`
	Found    bool          `yaml:"found" json:"found"`
	Match    *vision.Match `yaml:"match,omitempty" json:"match,omitempty"`
	Zone     geom.Zone     `yaml:"zone" json:"zone"`
	Elapsed  string        `yaml:"elapsed" json:"elapsed"`
}

var locateCmd = &cobra.Command{
	Use:   "locate <template>",
	Short: "Find a template on screen without acting on it",
	Long: `Capture the screen (or a --zone) and report where the template matches.
A dry run for click and hover targeting: same matcher, same thresholds,
no input injected.`,
	Args: cobra.ExactArgs(1),
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)
	locateCmd.Flags().String("zone", "", `Search zone "x,y,w,h" (default: full screen)`)
	locateCmd.Flags().Duration("timeout", 0, "Keep retrying until the deadline instead of a single shot")
}

func runLocate(cmd *cobra.Command, args []string) error {
	tk, err := newToolkit()
	if err != nil {
		return err
	}

	var zone *geom.Zone
	if z, _ := cmd.Flags().GetString("zone"); z != "" {
		parsed, err := geom.ParseZone(z)
		if err != nil {
			return err
		}
		zone = &parsed
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")

	res, err := tk.locate(cmd.Context(), args[0], zone, timeout)
	if err != nil {
		return err
	}
	if !res.Found {
		_ = output.Print(res)
		return fmt.Errorf("template %q not found", res.Template)
	}
	return output.Print(res)
}

// locate polls for the template until it matches or the timeout
// elapses. A zero timeout means a single capture. Not finding the
// template is a result, not an error.
func (tk *toolkit) locate(ctx context.Context, name string, zone *geom.Zone, timeout time.Duration) (LocateResult, error) {
	tpl, err := tk.library.Resolve(name)
	if err != nil {
		return LocateResult{}, err
	}
	scaled := tpl.ForScale(tk.scale)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res := LocateResult{Action: "locate", Template: tpl.Name}
	start := time.Now()
	for {
		snap, err := tk.sampler.Capture(zone)
		if err != nil {
			return res, err
		}
		res.Zone = snap.Zone

		m, err := tk.matcher.Find(snap, scaled)
		if err == nil {
			res.OK = true
			res.Found = true
			res.Match = &m
			res.Elapsed = time.Since(start).Round(time.Millisecond).String()
			return res, nil
		}
		if !errors.Is(err, vision.ErrNoMatch) {
			return res, err
		}

		if timeout == 0 || ctx.Err() != nil {
			res.Elapsed = time.Since(start).Round(time.Millisecond).String()
			return res, nil
		}

		tk.sampler.Invalidate()
		time.Sleep(tk.cfg.Engine.PollInterval)
	}
}
