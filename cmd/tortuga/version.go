package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/tortuga"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tortuga",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tortuga version %s\n", strings.TrimSpace(tortuga.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
