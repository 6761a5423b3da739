package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var testConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Probe the Snowflake connection and exit",
	RunE:  runTestConnection,
}

func init() {
	rootCmd.AddCommand(testConnectionCmd)
}

func runTestConnection(cmd *cobra.Command, args []string) error {
	client, cleanup, err := buildClient()
	if err != nil {
		return err
	}
	defer cleanup()

	if !client.TestConnection(cmd.Context()) {
		return fmt.Errorf("connection test failed")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Connection test successful")
	return nil
}
