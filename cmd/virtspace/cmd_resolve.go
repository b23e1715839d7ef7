package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <path>",
	Short: "Map a real path through the active redirection rules",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	c, err := startCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	fmt.Println(c.ResolvePath(args[0]))
	return nil
}
