package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var nsCmd = &cobra.Command{
	Use:   "ns",
	Short: "Manage per-application isolation namespaces",
}

var nsCreateCmd = &cobra.Command{
	Use:   "create <owner>",
	Short: "Create the isolation namespace for an application",
	Args:  cobra.ExactArgs(1),
	RunE:  runNsCreate,
}

var nsDestroyCmd = &cobra.Command{
	Use:     "destroy <owner>",
	Aliases: []string{"rm"},
	Short:   "Destroy an isolation namespace and free its storage",
	Args:    cobra.ExactArgs(1),
	RunE:    runNsDestroy,
}

var nsBackupCmd = &cobra.Command{
	Use:   "backup <owner>",
	Short: "Snapshot a namespace into a backup directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runNsBackup,
}

var nsRestoreCmd = &cobra.Command{
	Use:   "restore <owner>",
	Short: "Restore a namespace from a backup directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runNsRestore,
}

var nsLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List isolation namespaces",
	RunE:    runNsLs,
}

func init() {
	nsBackupCmd.Flags().String("dest", "", "Backup destination directory")
	nsBackupCmd.MarkFlagRequired("dest")
	viper.BindPFlag("ns.backup.dest", nsBackupCmd.Flags().Lookup("dest"))

	nsRestoreCmd.Flags().String("src", "", "Backup source directory")
	nsRestoreCmd.MarkFlagRequired("src")
	viper.BindPFlag("ns.restore.src", nsRestoreCmd.Flags().Lookup("src"))

	nsCmd.AddCommand(nsCreateCmd)
	nsCmd.AddCommand(nsDestroyCmd)
	nsCmd.AddCommand(nsBackupCmd)
	nsCmd.AddCommand(nsRestoreCmd)
	nsCmd.AddCommand(nsLsCmd)
	rootCmd.AddCommand(nsCmd)
}

func runNsCreate(cmd *cobra.Command, args []string) error {
	c, err := startCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	owner := args[0]
	if err := c.CreateNamespace(owner); err != nil {
		return err
	}
	fmt.Printf("Created namespace %s\n", owner)
	fmt.Printf("Root: %s\n", c.Config().VirtualRoot)
	return nil
}

func runNsDestroy(cmd *cobra.Command, args []string) error {
	c, err := startCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	owner := args[0]
	freed, err := c.DestroyNamespace(owner)
	if err != nil {
		return err
	}
	fmt.Printf("Destroyed namespace %s (%d bytes freed)\n", owner, freed)
	return nil
}

func runNsBackup(cmd *cobra.Command, args []string) error {
	c, err := startCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	dest, _ := cmd.Flags().GetString("dest")
	snap, err := c.BackupNamespace(args[0], dest)
	if err != nil {
		return err
	}
	fmt.Printf("Backed up %s to %s\n", snap.Owner, dest)
	fmt.Printf("Snapshot: %s (%d bytes)\n", snap.ID, snap.TotalBytes)
	return nil
}

func runNsRestore(cmd *cobra.Command, args []string) error {
	c, err := startCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	src, _ := cmd.Flags().GetString("src")
	report, err := c.RestoreNamespace(args[0], src)
	if err != nil {
		return err
	}
	fmt.Printf("Restored %s from %s\n", report.Owner, src)
	fmt.Printf("Roots: %s\n", strings.Join(report.Restored, ", "))
	if len(report.Missing) > 0 {
		fmt.Printf("Missing from backup: %s\n", strings.Join(report.Missing, ", "))
	}
	return nil
}

func runNsLs(cmd *cobra.Command, args []string) error {
	c, err := startCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	nss, err := c.Namespaces()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OWNER\tCREATED\tFILESYSTEM ROOT")
	for _, ns := range nss {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ns.Owner, ns.CreatedAt.Format("2006-01-02 15:04"), ns.FilesystemRoot)
	}
	w.Flush()
	return nil
}
