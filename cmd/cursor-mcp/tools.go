package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/cursor-mcp/internal/formatter"
	"github.com/boshu2/cursor-mcp/internal/tools"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the available tools",
	Long: `List the named tools that batch files and the invocation commands map
onto cursor-agent requests.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := tools.NewCatalog()
		w := cmd.OutOrStdout()

		if output == "json" {
			type entry struct {
				Name        string `json:"name"`
				Description string `json:"description"`
			}
			var entries []entry
			for _, name := range catalog.Names() {
				t, _ := catalog.Lookup(name)
				entries = append(entries, entry{Name: t.Name, Description: t.Description})
			}
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal tools: %w", err)
			}
			fmt.Fprintln(w, string(data))
			return nil
		}

		table := formatter.NewTable(w, "TOOL", "DESCRIPTION")
		for _, name := range catalog.Names() {
			t, _ := catalog.Lookup(name)
			table.AddRow(t.Name, t.Description)
		}
		return table.Render()
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
