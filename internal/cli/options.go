package cli

import (
	"io"
	"net"
	"time"
)

// StoreOptions selects where session checkpoints live: Redis when RedisAddr
// is set, a directory when StoreDir is set, memory otherwise.
type StoreOptions struct {
	StoreDir      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration
	// SessionKey, when set, seals every checkpoint with AES-256-GCM. It is
	// 64 hex digits or base64 for 32 bytes.
	SessionKey string
}

// LogOptions configures the application logger.
type LogOptions struct {
	LogLevel string
	LogJSON  bool
}

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	LogOptions

	Scripts    []string
	Output     string // "terminal" or "jsonl"
	ConfigPath string
	FPS        int
	KeepOpen   bool
	NoColor    bool
	Quiet      bool
	// MetricsAddr, when set, serves /metrics for the length of the run.
	MetricsAddr   string
	HandleSignals bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// ServeOptions contains the configuration for the serve command.
type ServeOptions struct {
	LogOptions
	StoreOptions

	Addr       string
	ConfigPath string
	Metrics    bool
	// Listener overrides Addr, mainly for tests.
	Listener net.Listener

	Stderr io.Writer
}

// MCPOptions contains the configuration for the mcp command.
type MCPOptions struct {
	LogOptions
	StoreOptions

	Transport  string // "stdio" or "sse"
	Port       int
	ConfigPath string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Output modes for RunOptions.Output.
const (
	OutputTerminal = "terminal"
	OutputJSONL    = "jsonl"
)
