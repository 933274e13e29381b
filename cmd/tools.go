package cmd

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"simctl-mcp/internal/caller"
	"simctl-mcp/internal/color"
	"simctl-mcp/internal/config"
	"simctl-mcp/internal/devicetools"
	"simctl-mcp/internal/tools"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
)

// toolsEndpoint lists the tools of a running server instead of the built-in catalog.
var toolsEndpoint string

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the simulator tools",
	Long: `Prints every tool with its parameters and description.
Required parameters are marked with '*'.

Without --endpoint the built-in catalog is printed. With --endpoint the
tools advertised by a running server are listed.`,
	Args: cobra.NoArgs,
	RunE: runTools,
}

func runTools(cmd *cobra.Command, args []string) error {
	color.InitializeFromEnv(config.Environ())

	var list []mcp.Tool
	if toolsEndpoint == "" {
		catalog := tools.NewCatalog()
		if err := devicetools.Register(catalog, nil); err != nil {
			return err
		}
		list = catalog.Tools()
	} else {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		remote, err := caller.New(toolsEndpoint, rootCmd.Version).ListTools(ctx)
		if err != nil {
			return err
		}
		list = remote
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderToolTable(list))
	return nil
}

// renderToolTable formats tools as a bordered table.
func renderToolTable(list []mcp.Tool) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(color.BorderStyle).
		Headers("TOOL", "PARAMETERS", "DESCRIPTION").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return color.HeaderStyle
			case col == 0:
				return color.ToolNameStyle
			default:
				return color.CellStyle
			}
		})

	for _, tool := range list {
		t.Row(tool.Name, formatParams(tool.InputSchema), tool.Description)
	}
	return t.Render()
}

// formatParams lists parameter names alphabetically, marking required ones.
func formatParams(schema mcp.ToolInputSchema) string {
	if len(schema.Properties) == 0 {
		return "-"
	}
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		if slices.Contains(schema.Required, name) {
			names[i] = name + "*"
		}
	}
	return strings.Join(names, ", ")
}

func init() {
	rootCmd.AddCommand(toolsCmd)

	toolsCmd.Flags().StringVar(&toolsEndpoint, "endpoint", "", "Stream endpoint of a running server (e.g. "+caller.DefaultEndpoint+")")
}
