package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var databasesCmd = &cobra.Command{
	Use:   "databases",
	Short: "List databases accessible with the configured credentials",
	RunE:  runDatabases,
}

func init() {
	rootCmd.AddCommand(databasesCmd)
}

func runDatabases(cmd *cobra.Command, args []string) error {
	client, cleanup, err := buildClient()
	if err != nil {
		return err
	}
	defer cleanup()

	rows, err := client.ListDatabases(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing databases: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Databases (%d):\n", len(rows))
	for _, row := range rows {
		fmt.Fprintf(out, "  - %s\n", showName(row))
	}
	return nil
}

// showName reads the name column of a SHOW command row, tolerating
// drivers that report it upper-cased.
func showName(row map[string]any) string {
	for _, key := range []string{"name", "NAME"} {
		if v, ok := row[key]; ok && v != nil {
			return fmt.Sprintf("%v", v)
		}
	}
	return "Unknown"
}
