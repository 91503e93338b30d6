package cmd

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/honk-lang/honk/internal/geom"
	"github.com/honk-lang/honk/internal/output"
	"github.com/honk-lang/honk/internal/vision"
)

// CaptureResult is the output of the capture command when writing to a file.
type CaptureResult struct {
	OK     bool      `yaml:"ok" json:"ok"`
	Action string    `yaml:"action" json:"action"`
	Zone   geom.Zone `yaml:"zone" json:"zone"`
	Output string    `yaml:"output,omitempty" json:"output,omitempty"`
	Marks  int       `yaml:"marks,omitempty" json:"marks,omitempty"`
}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture the screen as a PNG",
	Long: `Capture the full screen or a --zone. Without --output the PNG is
written to stdout as base64. Marks overlay labelled rectangles onto the
image before encoding, for debugging template positions.`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.Flags().String("zone", "", `Capture zone "x,y,w,h" (default: full screen)`)
	captureCmd.Flags().StringP("output", "o", "", "Write the PNG to this path instead of stdout")
	captureCmd.Flags().StringArray("mark-template", nil, "Outline where this template matches (repeatable)")
	captureCmd.Flags().StringArray("mark-zone", nil, `Outline this "x,y,w,h" zone (repeatable)`)
}

func runCapture(cmd *cobra.Command, args []string) error {
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

	snap, err := tk.sampler.Capture(zone)
	if err != nil {
		return err
	}

	var marks []vision.Mark
	markTemplates, _ := cmd.Flags().GetStringArray("mark-template")
	for _, name := range markTemplates {
		tpl, err := tk.library.Resolve(name)
		if err != nil {
			return err
		}
		m, err := tk.matcher.Find(snap, tpl.ForScale(tk.scale))
		if err != nil {
			return fmt.Errorf("mark template %q: %w", name, err)
		}
		marks = append(marks, vision.Mark{Zone: m.Bounds, Label: tpl.Name})
	}
	markZones, _ := cmd.Flags().GetStringArray("mark-zone")
	for _, spec := range markZones {
		z, err := geom.ParseZone(spec)
		if err != nil {
			return err
		}
		marks = append(marks, vision.Mark{Zone: z})
	}

	var img image.Image = snap.Img
	if len(marks) > 0 {
		img = vision.Annotate(snap, marks)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("output")
	if outPath != "" {
		if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
			return err
		}
		return output.Print(CaptureResult{
			OK:     true,
			Action: "capture",
			Zone:   snap.Zone,
			Output: outPath,
			Marks:  len(marks),
		})
	}

	enc := base64.NewEncoder(base64.StdEncoding, os.Stdout)
	if _, err := enc.Write(buf.Bytes()); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	fmt.Println()
	return nil
}
