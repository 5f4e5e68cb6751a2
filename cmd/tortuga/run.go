package main

import (
	"os"

	"github.com/aretw0/tortuga/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <script>...",
	Short: "Play turtle scripts",
	Long: `Plays each script on its own turtle, all on one canvas, until every script
finishes. Scripts are YAML or JSON files with a list of steps.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		configPath, _ := cmd.Flags().GetString("config")
		fps, _ := cmd.Flags().GetInt("fps")
		keepOpen, _ := cmd.Flags().GetBool("keep-open")
		noColor, _ := cmd.Flags().GetBool("no-color")
		quiet, _ := cmd.Flags().GetBool("quiet")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

		_, err := cli.Run(cmd.Context(), cli.RunOptions{
			LogOptions:    logOptions(cmd),
			Scripts:       args,
			Output:        output,
			ConfigPath:    configPath,
			FPS:           fps,
			KeepOpen:      keepOpen,
			NoColor:       noColor || os.Getenv("NO_COLOR") != "",
			Quiet:         quiet,
			MetricsAddr:   metricsAddr,
			HandleSignals: true,
			Stdin:         os.Stdin,
			Stdout:        os.Stdout,
			Stderr:        os.Stderr,
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("output", "o", cli.OutputTerminal, "Output: terminal or jsonl (NDJSON events, answers read from stdin)")
	runCmd.Flags().Int("fps", 0, "Engine tick rate (overrides the config file)")
	runCmd.Flags().Bool("keep-open", false, "Keep running after the scripts finish, until a script says bye or Ctrl+C")
	runCmd.Flags().Bool("no-color", false, "Disable colours")
	runCmd.Flags().BoolP("quiet", "q", false, "Skip the banner and the summary")
	runCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address while running")
}
