/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"github.com/spf13/cobra"

	"github.com/suparena/estatesync"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		info := estatesync.GetVersionInfo()
		cmd.Printf("estatectl version %s\n", info.Version)
		cmd.Printf("Git commit: %s\n", info.GitCommit)
		cmd.Printf("Build date: %s\n", info.BuildDate)
		cmd.Printf("Go version: %s\n", info.GoVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
