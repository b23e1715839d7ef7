package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/virtualspace/virtspace/pkg/api"
	"github.com/virtualspace/virtspace/pkg/core"
)

var rootCmd = &cobra.Command{
	Use:           "virtspace",
	Short:         "Per-application virtualization: hooks, path redirection and isolation namespaces",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("root", "", "Virtual root directory (default: $VIRTSPACE_ROOT or ~/.local/share/virtspace)")
	rootCmd.PersistentFlags().String("event-log", "", "JSONL lifecycle event log path")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringSlice("disable-catalog", nil, "Hook catalog to skip at startup (can be repeated)")

	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("event-log", rootCmd.PersistentFlags().Lookup("event-log"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("disable-catalog", rootCmd.PersistentFlags().Lookup("disable-catalog"))

	viper.SetEnvPrefix("VIRTSPACE")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	var level slog.Level
	switch viper.GetString("log-level") {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// startCore builds and starts a core from the persistent flags. The
// caller shuts it down when done.
func startCore() (*core.Core, error) {
	cfg := &api.Config{
		VirtualRoot:      viper.GetString("root"),
		EventLogPath:     viper.GetString("event-log"),
		DisabledCatalogs: viper.GetStringSlice("disable-catalog"),
	}
	c, err := core.New(cfg, newLogger())
	if err != nil {
		return nil, err
	}
	if _, err := c.Startup(); err != nil {
		return nil, err
	}
	return c, nil
}
