package main

import "github.com/spf13/cobra"

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "timetable-board",
	Short: "Weekly timetable board service",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", ".env", "dotenv configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
