package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "aspace-reorder",
		Short: "Reorder and reparent ArchivesSpace archival objects from a spreadsheet",
		Long: `aspace-reorder places archival objects under a target parent record in the
order given by a spreadsheet. It validates the parent and a sample of the
children against the live API, asks for confirmation, then issues
accept_children calls one by one or as a rate-limited bulk run.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}
