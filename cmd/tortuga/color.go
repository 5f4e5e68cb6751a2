package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/tortuga/pkg/colors"
	"github.com/spf13/cobra"
)

var colorCmd = &cobra.Command{
	Use:   "color [name-or-hex]",
	Short: "Resolve a colour name, or list the known names",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, name := range colors.Names() {
				fmt.Fprintln(out, name)
			}
			return nil
		}

		c, err := colors.Parse(args[0])
		if err != nil {
			return err
		}
		if c.IsCurrent() {
			return fmt.Errorf("unknown colour %q", args[0])
		}
		fmt.Fprintf(out, "%s %s\n", strings.TrimSpace(args[0]), c.Hex())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(colorCmd)
}
