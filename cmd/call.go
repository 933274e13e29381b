package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"simctl-mcp/internal/caller"
	"simctl-mcp/internal/color"

	"github.com/spf13/cobra"
)

// callArgs holds the repeated --arg key=value pairs.
var callArgs []string

// callJSONArgs holds the repeated --json-arg key=<json> pairs.
var callJSONArgs []string

// callEndpoint is the stream endpoint of the server to call.
var callEndpoint string

// callTimeout bounds connection, handshake and the call itself.
var callTimeout time.Duration

// errToolFailed marks a call whose result envelope carried isError.
var errToolFailed = errors.New("tool call failed")

var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Invoke a tool on a running simctl-mcp server",
	Long: `Connects to a running 'simctl-mcp serve' instance over HTTP, invokes one
tool and prints its text result.

Arguments are passed as repeated --arg key=value flags and are always sent
as strings. Use --json-arg key=<json> for parameters that take an array,
number or boolean.

Examples:
  simctl-mcp call list_devices
  simctl-mcp call boot_device --arg udid=8C2F1C4E-0F4B-4E38-9B0C-5B6B1C6B2A11
  simctl-mcp call open_url --arg udid=booted --arg url=https://example.com
  simctl-mcp call push_notification --arg udid=booted --arg bundleId=com.example.app \
    --arg payload='{"aps":{"alert":"Hello"}}'`,
	Args: cobra.ExactArgs(1),
	RunE: runCall,
}

func runCall(cmd *cobra.Command, args []string) error {
	toolArgs, err := caller.ParseArgs(callArgs)
	if err != nil {
		return err
	}
	if err := caller.ParseJSONArgs(toolArgs, callJSONArgs); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, callTimeout)
		defer cancel()
	}

	result, err := caller.New(callEndpoint, rootCmd.Version).CallTool(ctx, args[0], toolArgs)
	if err != nil {
		return err
	}

	text := caller.ResultText(result)
	if result.IsError {
		fmt.Fprintln(cmd.ErrOrStderr(), color.ErrorStyle.Render(text))
		return fmt.Errorf("%w: %s", errToolFailed, args[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().StringArrayVar(&callArgs, "arg", nil, "Tool argument as key=value, sent as a string (repeatable)")
	callCmd.Flags().StringArrayVar(&callJSONArgs, "json-arg", nil, "Tool argument as key=<json>, decoded before sending (repeatable)")
	callCmd.Flags().StringVar(&callEndpoint, "endpoint", caller.DefaultEndpoint, "Stream endpoint of the running server")
	callCmd.Flags().DurationVar(&callTimeout, "timeout", 60*time.Second, "Overall timeout for the call (0 disables)")
}
