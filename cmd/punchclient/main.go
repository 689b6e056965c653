package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	root := &cobra.Command{
		Use:           "punchclient",
		Short:         "Record punches and replay them when the server is reachable",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newPunchCmd(),
		newQueueCmd(),
		newSyncCmd(),
		newAgentCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
