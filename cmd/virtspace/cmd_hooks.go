package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Inspect the hook registry",
}

var hooksLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List installed hooks",
	RunE:    runHooksLs,
}

func init() {
	hooksCmd.AddCommand(hooksLsCmd)
	rootCmd.AddCommand(hooksCmd)
}

func runHooksLs(cmd *cobra.Command, args []string) error {
	c, err := startCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TARGET\tPRIORITY\tSTATUS\tERROR")
	for _, rec := range c.Hooks() {
		errText := "-"
		if rec.LastErr != "" {
			errText = rec.LastErr
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", rec.Target, rec.Priority, rec.Status, errText)
	}
	w.Flush()
	return nil
}
