package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "simctl-mcp",
	Short: "Expose iOS Simulator control as MCP tools",
	Long: `simctl-mcp wraps xcrun simctl as a set of Model Context Protocol tools
so AI assistants can create, boot and drive iOS simulators, install and
launch apps, grant permissions and capture screenshots.

Run 'simctl-mcp serve --stdio' to attach to a single client over stdin/stdout,
or 'simctl-mcp serve' to accept clients over HTTP with server-sent events.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. invalid arguments, failed connections)
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "simctl-mcp version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
