package cmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/honk-lang/honk/internal/engine"
	"github.com/honk-lang/honk/internal/geom"
	"github.com/honk-lang/honk/internal/version"
	"github.com/honk-lang/honk/internal/vision"
)

// mcpServer exposes the verb engine over the Model Context Protocol so
// LLM agents can drive the screen through the same code path as the
// CLI. The engine serializes verbs itself, so handlers need no lock.
type mcpServer struct {
	tk  *toolkit
	mcp *mcpserver.MCPServer
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the verbs as MCP tools",
	Long: `Start a Model Context Protocol server exposing click, scroll, input,
hover, check, locate, capture, templates, wait, and run as tools. By
default it speaks stdio for direct agent attachment; --transport
streamable-http serves over HTTP instead.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport: stdio or streamable-http")
	mcpCmd.Flags().Int("port", 8080, "Port for the streamable-http transport")
}

func runMCP(cmd *cobra.Command, args []string) error {
	tk, err := newToolkit()
	if err != nil {
		return err
	}
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")

	s := newMCPServer(tk)
	return s.serve(cmd.Context(), transport, port)
}

func newMCPServer(tk *toolkit) *mcpServer {
	s := &mcpServer{
		tk:  tk,
		mcp: mcpserver.NewMCPServer("honk", version.Version),
	}
	s.registerTools()
	return s
}

func (s *mcpServer) serve(ctx context.Context, transport string, port int) error {
	switch transport {
	case "stdio":
		// ServeStdio installs its own SIGINT/SIGTERM handling.
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		serverErr := make(chan error, 1)
		go func() {
			serverErr <- httpServer.Start(fmt.Sprintf(":%d", port))
		}()
		select {
		case err := <-serverErr:
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		}
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", transport)
	}
}

func (s *mcpServer) registerTools() {
	// click
	s.mcp.AddTool(
		mcp.NewTool("click",
			mcp.WithDescription("Click a template on screen and wait for the UI to react. Reports whether anything changed."),
			mcp.WithString("template", mcp.Description("Template name from the library")),
			mcp.WithString("at", mcp.Description(`Point target "x,y" instead of a template`)),
			mcp.WithString("zone", mcp.Description(`Restrict the template search to "x,y,w,h"`)),
			mcp.WithString("check-zone", mcp.Description(`Observe this "x,y,w,h" zone for the reaction`)),
			mcp.WithString("anchor", mcp.Description("Zone anchor for point targets: center, top-left, top-right, bottom-left, bottom-right")),
			mcp.WithString("button", mcp.Description("Mouse button: left, right, middle")),
			mcp.WithBoolean("double", mcp.Description("Double-click")),
			mcp.WithString("timeout", mcp.Description(`Deadline, e.g. "5s" (a bare number counts as seconds)`)),
			mcp.WithNumber("noise", mcp.Description("Change detection noise threshold override (0..1)")),
		),
		s.handleVerb(engine.Click),
	)

	// scroll
	s.mcp.AddTool(
		mcp.NewTool("scroll",
			mcp.WithDescription("Scroll inside a viewport until the content stops moving, a step budget runs out, or a sought template appears."),
			mcp.WithString("template", mcp.Description("Template marking the viewport to scroll in")),
			mcp.WithString("at", mcp.Description(`Point target "x,y" instead of a template`)),
			mcp.WithString("zone", mcp.Description(`Restrict the template search to "x,y,w,h"`)),
			mcp.WithString("direction", mcp.Description("Scroll direction: down, up, left, right (default: down)")),
			mcp.WithNumber("steps", mcp.Description("Stop after this many wheel steps (0 = until converged)")),
			mcp.WithString("until", mcp.Description("Stop as soon as this template becomes visible")),
			mcp.WithString("timeout", mcp.Description(`Deadline, e.g. "10s"`)),
			mcp.WithNumber("noise", mcp.Description("Change detection noise threshold override (0..1)")),
		),
		s.handleVerb(engine.Scroll),
	)

	// input
	s.mcp.AddTool(
		mcp.NewTool("input",
			mcp.WithDescription("Click a field, type or paste text into it, and optionally submit with Enter."),
			mcp.WithString("template", mcp.Description("Template of the field to fill")),
			mcp.WithString("at", mcp.Description(`Point target "x,y" instead of a template`)),
			mcp.WithString("text", mcp.Description("Text to enter")),
			mcp.WithBoolean("submit", mcp.Description("Press Enter after the text")),
			mcp.WithBoolean("paste", mcp.Description("Paste through the clipboard instead of typing")),
			mcp.WithString("check-zone", mcp.Description(`Observe this "x,y,w,h" zone for the reaction`)),
			mcp.WithString("timeout", mcp.Description(`Deadline, e.g. "5s"`)),
		),
		s.handleVerb(engine.Input),
	)

	// hover
	s.mcp.AddTool(
		mcp.NewTool("hover",
			mcp.WithDescription("Move the pointer over a template and wait for a tooltip or highlight to appear."),
			mcp.WithString("template", mcp.Description("Template to hover over")),
			mcp.WithString("at", mcp.Description(`Point target "x,y" instead of a template`)),
			mcp.WithString("check-zone", mcp.Description(`Observe this "x,y,w,h" zone for the reaction`)),
			mcp.WithString("timeout", mcp.Description(`Deadline, e.g. "3s"`)),
		),
		s.handleVerb(engine.Hover),
	)

	// check
	s.mcp.AddTool(
		mcp.NewTool("check",
			mcp.WithDescription("Extract text from a screen zone and test a condition against it. The verdict is in the result; a false verdict is not an error."),
			mcp.WithString("template", mcp.Description("Template whose surroundings to read")),
			mcp.WithString("zone", mcp.Description(`Read this "x,y,w,h" zone directly`)),
			mcp.WithString("that", mcp.Description("Condition: equals:X, contains:X, matches:REGEX, gt:N, lt:N, empty, not-empty"), mcp.Required()),
			mcp.WithString("timeout", mcp.Description(`Deadline, e.g. "5s"`)),
		),
		s.handleVerb(engine.Check),
	)

	// locate
	s.mcp.AddTool(
		mcp.NewTool("locate",
			mcp.WithDescription("Find where a template matches on screen without acting on it."),
			mcp.WithString("template", mcp.Description("Template name from the library"), mcp.Required()),
			mcp.WithString("zone", mcp.Description(`Search zone "x,y,w,h" (default: full screen)`)),
			mcp.WithString("timeout", mcp.Description("Keep retrying until the deadline instead of a single shot")),
		),
		s.handleLocate,
	)

	// capture
	s.mcp.AddTool(
		mcp.NewTool("capture",
			mcp.WithDescription("Capture the screen (or a zone) and return it as a PNG image."),
			mcp.WithString("zone", mcp.Description(`Capture zone "x,y,w,h" (default: full screen)`)),
		),
		s.handleCapture,
	)

	// templates
	s.mcp.AddTool(
		mcp.NewTool("templates",
			mcp.WithDescription("List the template library: names, sizes, and per-template match thresholds."),
		),
		s.handleTemplates,
	)

	// wait
	s.mcp.AddTool(
		mcp.NewTool("wait",
			mcp.WithDescription("Block until the screen settles or a template appears or disappears."),
			mcp.WithBoolean("quiet", mcp.Description("Wait for the zone to stop changing")),
			mcp.WithString("for-template", mcp.Description("Wait for this template to be visible")),
			mcp.WithBoolean("gone", mcp.Description("Invert for-template: wait for it to disappear")),
			mcp.WithString("zone", mcp.Description(`Watch zone "x,y,w,h" (default: full screen)`)),
			mcp.WithString("timeout", mcp.Description(`Give up after this long (default: "30s")`)),
			mcp.WithString("interval", mcp.Description("Poll interval (default: engine poll interval)")),
			mcp.WithNumber("stable", mcp.Description("Consecutive quiet reads required")),
		),
		s.handleWait,
	)

	// run
	s.mcp.AddTool(
		mcp.NewTool("run",
			mcp.WithDescription("Run a list of steps in order. Each step is an object with one key naming the action (click, scroll, input, hover, check, wait, focus, sleep) and its parameters as the value."),
			mcp.WithArray("steps", mcp.Description("Array of single-key step objects"), mcp.Required()),
			mcp.WithBoolean("stop-on-error", mcp.Description("Abort at the first failed step (default: true)")),
		),
		s.handleRun,
	)
}

// handleVerb adapts one engine verb into an MCP tool handler. Failed
// outcomes come back as tool errors carrying the full serialized
// result; a false check verdict stays a normal result with ok: false.
func (s *mcpServer) handleVerb(kind engine.Kind) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := verbRequestFromParams(kind, request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res, err := s.tk.engine.ExecuteVerb(ctx, req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		out := verbOutput(res)
		if res.Verdict != nil && !*res.Verdict {
			out.OK = false
		}
		b, _ := yaml.Marshal(out)
		if res.Outcome.Failed() {
			return mcp.NewToolResultError(string(b)), nil
		}
		return mcp.NewToolResultText(string(b)), nil
	}
}

func (s *mcpServer) handleLocate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	template := stringParam(params, "template", "")
	if template == "" {
		return mcp.NewToolResultError("template parameter is required"), nil
	}

	var zone *geom.Zone
	if z := stringParam(params, "zone", ""); z != "" {
		parsed, err := parseZoneParam(z)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		zone = parsed
	}
	timeout, err := durationParam(params, "timeout")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.tk.locate(ctx, template, zone, timeout)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, _ := yaml.Marshal(res)
	if !res.Found {
		return mcp.NewToolResultError(string(b)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *mcpServer) handleCapture(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	var zone *geom.Zone
	if z := stringParam(params, "zone", ""); z != "" {
		parsed, err := parseZoneParam(z)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		zone = parsed
	}

	snap, err := s.tk.sampler.Capture(zone)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, snap.Img); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b64 := base64.StdEncoding.EncodeToString(buf.Bytes())

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.ImageContent{
				Type:     "image",
				Data:     b64,
				MIMEType: "image/png",
			},
		},
	}, nil
}

func (s *mcpServer) handleTemplates(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	library := vision.NewLibrary(s.tk.cfg.Library.Dir)
	infos, err := library.List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, _ := yaml.Marshal(TemplatesResult{
		OK:        true,
		Action:    "templates",
		Dir:       library.Dir(),
		Count:     len(infos),
		Templates: infos,
	})
	return mcp.NewToolResultText(string(b)), nil
}

func (s *mcpServer) handleWait(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	spec := waitSpec{
		quiet:    boolParam(params, "quiet", false),
		template: stringParam(params, "for-template", ""),
		gone:     boolParam(params, "gone", false),
		stable:   intParam(params, "stable", 0),
	}
	if spec.quiet == (spec.template != "") {
		return mcp.NewToolResultError("exactly one of quiet or for-template is required"), nil
	}
	if z := stringParam(params, "zone", ""); z != "" {
		zone, err := parseZoneParam(z)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		spec.zone = zone
	}

	var err error
	if spec.timeout, err = durationParam(params, "timeout"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if spec.interval, err = durationParam(params, "interval"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.tk.waitFor(ctx, spec)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, _ := yaml.Marshal(res)
	if res.TimedOut {
		return mcp.NewToolResultError(string(b)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *mcpServer) handleRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	stopOnError := boolParam(params, "stop-on-error", true)

	stepsRaw, ok := params["steps"]
	if !ok {
		return mcp.NewToolResultError("steps parameter is required"), nil
	}
	arr, ok := stepsRaw.([]interface{})
	if !ok {
		return mcp.NewToolResultError("steps must be an array"), nil
	}

	rawSteps := make([]map[string]map[string]interface{}, 0, len(arr))
	for i, item := range arr {
		m, ok := item.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("step %d must be an object", i+1)), nil
		}
		step := make(map[string]map[string]interface{}, len(m))
		for action, v := range m {
			stepParams, ok := v.(map[string]interface{})
			if !ok {
				if v == nil {
					stepParams = map[string]interface{}{}
				} else {
					return mcp.NewToolResultError(fmt.Sprintf("step %d (%s): parameters must be an object", i+1, action)), nil
				}
			}
			step[action] = stepParams
		}
		rawSteps = append(rawSteps, step)
	}

	res := runSteps(ctx, s.tk, rawSteps, stopOnError)
	b, _ := yaml.Marshal(res)
	if !res.OK {
		return mcp.NewToolResultError(string(b)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
