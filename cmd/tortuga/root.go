package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/tortuga/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tortuga",
	Short: "Tortuga is a turtle graphics runtime",
	Long: `Tortuga plays turtle scripts: each script drives its own turtle on a shared
canvas, drawn in the terminal or streamed as JSON lines. It can also host
remote drawing sessions over HTTP or MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")
	rootCmd.PersistentFlags().String("config", "", "Canvas config file (YAML or JSON)")
}

func logOptions(cmd *cobra.Command) cli.LogOptions {
	level, _ := cmd.Flags().GetString("log-level")
	asJSON, _ := cmd.Flags().GetBool("log-json")
	return cli.LogOptions{LogLevel: level, LogJSON: asJSON}
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

// addStoreFlags registers the session store flags shared by serve and mcp.
func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("store-dir", "", "Keep session checkpoints as JSON files in this directory")
	cmd.Flags().String("redis", "", "Redis address for session checkpoints and locks (host:port)")
	cmd.Flags().String("redis-password", "", "Redis password")
	cmd.Flags().Int("redis-db", 0, "Redis database")
	cmd.Flags().Duration("session-ttl", 0, "Expire idle sessions after this long (Redis only, 0 keeps them)")
}

func storeOptions(cmd *cobra.Command) cli.StoreOptions {
	dir, _ := cmd.Flags().GetString("store-dir")
	addr, _ := cmd.Flags().GetString("redis")
	if addr == "" {
		addr = os.Getenv("TORTUGA_REDIS_ADDR")
	}
	password, _ := cmd.Flags().GetString("redis-password")
	db, _ := cmd.Flags().GetInt("redis-db")
	ttl, _ := cmd.Flags().GetDuration("session-ttl")
	return cli.StoreOptions{
		StoreDir:      dir,
		RedisAddr:     addr,
		RedisPassword: password,
		RedisDB:       db,
		SessionTTL:    ttl,
		SessionKey:    os.Getenv("TORTUGA_SESSION_KEY"),
	}
}
