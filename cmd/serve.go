package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"simctl-mcp/internal/app"

	"github.com/spf13/cobra"
)

// serveStdio selects the single-channel transport on stdin/stdout.
var serveStdio bool

// serveDebug enables verbose logging across the application.
var serveDebug bool

// servePort overrides PORT and the configured port when positive.
var servePort int

// serveHost overrides the configured bind address.
var serveHost string

// serveConfigPath points at a configuration directory to use instead of the
// layered user and project lookup.
var serveConfigPath string

// serveCmd defines the serve command structure.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simctl MCP server over stdio or HTTP",
	Long: `Starts the MCP server exposing the simulator tools.
It can run in two modes:

1. HTTP Mode (default):
   - Listens on port 8081 unless --port, PORT or the config file say otherwise.
   - Clients open an event stream with GET /sse and receive the message
     endpoint to POST their requests to.
   - Every stream is an independent session. Runs until interrupted (Ctrl+C).

2. Stdio Mode (using --stdio flag):
   - Reads newline-delimited JSON-RPC messages from stdin and writes responses
     to stdout. Logs go to stderr.
   - Exits when stdin is closed.

Configuration:
  simctl-mcp loads ~/.config/simctl-mcp/config.yaml and then
  .simctl-mcp/config.yaml in the current directory. Use --config to load a
  single directory instead.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(serveStdio, serveDebug, servePort, serveHost, serveConfigPath, rootCmd.Version)

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}

// init registers the serve command and its flags with the root command.
func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveStdio, "stdio", false, "Serve a single client over stdin/stdout instead of HTTP")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP listen port (overrides PORT and config, default 8081)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "HTTP bind address (default all interfaces)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Configuration directory containing config.yaml")
}
