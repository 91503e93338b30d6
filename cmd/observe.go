package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/honk-lang/honk/internal/geom"
)

// observeEvent is one line of the observe command's JSONL stream.
type observeEvent struct {
	Type      string     `json:"type"`
	TS        int64      `json:"ts"`
	Zone      *geom.Zone `json:"zone,omitempty"`
	Magnitude float64    `json:"magnitude,omitempty"`
	Bounds    *geom.Zone `json:"bounds,omitempty"`
	Elapsed   string     `json:"elapsed,omitempty"`
	Events    int        `json:"events,omitempty"`
	Error     string     `json:"error,omitempty"`
}

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Stream screen change events as JSONL",
	Long: `Watch the screen (or a --zone) and emit one JSON object per line:
a snapshot event on start, a change event for every diff above the noise
threshold, and a done event on exit. Output is always JSONL regardless
of --format. Use Ctrl+C or --duration to stop observing.`,
	RunE: runObserve,
}

func init() {
	rootCmd.AddCommand(observeCmd)
	observeCmd.Flags().String("zone", "", `Watch zone "x,y,w,h" (default: full screen)`)
	observeCmd.Flags().Duration("interval", 0, "Poll interval (default: engine poll interval)")
	observeCmd.Flags().Int("duration", 0, "Stop after this many seconds (default: run until interrupted)")
	observeCmd.Flags().Float64("noise", 0, "Override the change noise threshold (0..1)")
}

func runObserve(cmd *cobra.Command, args []string) error {
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
	interval, _ := cmd.Flags().GetDuration("interval")
	if interval <= 0 {
		interval = tk.cfg.Engine.PollInterval
	}
	durationSec, _ := cmd.Flags().GetInt("duration")
	if cmd.Flags().Changed("noise") {
		noise, _ := cmd.Flags().GetFloat64("noise")
		tk.differ.NoiseThreshold = noise
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)

	prev, err := tk.sampler.Capture(zone)
	if err != nil {
		return err
	}
	if err := enc.Encode(observeEvent{Type: "snapshot", TS: time.Now().UnixMilli(), Zone: &prev.Zone}); err != nil {
		return err
	}

	start := time.Now()
	var deadline time.Time
	if durationSec > 0 {
		deadline = start.Add(time.Duration(durationSec) * time.Second)
	}

	events := 0
	for {
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		select {
		case <-cmd.Context().Done():
			return enc.Encode(observeEvent{
				Type:    "done",
				TS:      time.Now().UnixMilli(),
				Elapsed: fmt.Sprintf("%.1fs", time.Since(start).Seconds()),
				Events:  events,
			})
		case <-time.After(interval):
		}

		tk.sampler.Invalidate()
		curr, err := tk.sampler.Capture(zone)
		if err != nil {
			if encErr := enc.Encode(observeEvent{Type: "error", TS: time.Now().UnixMilli(), Error: err.Error()}); encErr != nil {
				return encErr
			}
			continue
		}

		d, err := tk.differ.Diff(prev, curr)
		if err != nil {
			return err
		}
		if d.Changed {
			events++
			if err := enc.Encode(observeEvent{
				Type:      "change",
				TS:        time.Now().UnixMilli(),
				Magnitude: d.Magnitude,
				Bounds:    d.Bounds,
			}); err != nil {
				return err
			}
		}
		prev = curr
	}

	return enc.Encode(observeEvent{
		Type:    "done",
		TS:      time.Now().UnixMilli(),
		Elapsed: fmt.Sprintf("%.1fs", time.Since(start).Seconds()),
		Events:  events,
	})
}
