package main

import (
	"os"

	"github.com/spf13/cobra"

	"bulkhead-sim/internal/dashboard"
)

var dashboardOut string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render the Grafana dashboard for the GreptimeDB sample table",
	Long:  "dashboard writes grafana-dashboard.json to the output directory. GREPTIMEDB_DATASOURCE_UID must be set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboard.RenderTable(dashboardOut, os.Getenv("GREPTIMEDB_TABLE"))
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardOut, "out", "build", "Output directory")
}
