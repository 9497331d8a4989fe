package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"cucm-service-cli/internal/config"
	"cucm-service-cli/internal/reconcile"
)

// Exit statuses returned by ExitCode.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitUsage        = 2
	ExitNotConverged = 3
)

// Global flags.
var (
	configFile     string
	serversFile    string
	port           int
	pollInterval   time.Duration
	maxWait        time.Duration
	timeout        time.Duration
	insecure       bool
	caFile         string
	debug          bool
	noColor        bool
	logFormat      string
	terminalStatus string
)

// UsageError means the command line was incomplete or malformed.
type UsageError struct {
	msg string
}

func (e *UsageError) Error() string { return e.msg }

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsage
	}
	var runErr *reconcile.RunError
	if errors.As(err, &runErr) && runErr.Outcome == reconcile.NotConverged {
		return ExitNotConverged
	}
	return ExitFailure
}

// Execute runs the CLI until it finishes or is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cucm-service <axl_username> <axl_password> <service_name> [Start|Stop|Restart]",
		Short: "Start, stop or restart a CUCM service on every server in a list",
		Long: `cucm-service sends a control command for one Unified CM service to each
server listed in the servers file (one address per line), then polls the
server until the service reaches the expected state before moving on.

The action is case-insensitive and defaults to Restart. The first blank line
in the servers file ends the list. A SOAP fault from any server stops the run.`,
		Example: "  cucm-service admin 'Cisc0123' 'Cisco Tftp' Restart",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(4)(cmd, args); err != nil {
				return &UsageError{msg: err.Error()}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("loading .env: %w", err)
			}
			if noColor {
				color.NoColor = true
			}
			return nil
		},
		RunE: runControl,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{msg: err.Error()}
	})

	defaults := config.Default()
	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", config.DefaultFile, "YAML configuration file")
	pf.StringVar(&serversFile, "servers", defaults.ServersFile, "File listing one server address per line")
	pf.IntVar(&port, "port", defaults.Port, "HTTPS port of the ControlCenterServices API")
	pf.DurationVar(&pollInterval, "poll-interval", defaults.PollInterval, "Pause between two status queries")
	pf.DurationVar(&maxWait, "max-wait", defaults.MaxWait, "Give up on a server after this long (0 waits forever)")
	pf.DurationVar(&timeout, "timeout", defaults.Timeout, "Timeout of a single SOAP call")
	pf.BoolVar(&insecure, "insecure", defaults.InsecureSkipVerify, "Skip TLS certificate verification")
	pf.StringVar(&caFile, "ca-file", defaults.CAFile, "PEM file with the Tomcat certificate(s) to trust")
	pf.BoolVar(&debug, "debug", false, "Log SOAP requests and responses")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")
	pf.StringVar(&logFormat, "log-format", "text", "Log format on stderr: text or json")
	pf.StringVar(&terminalStatus, "terminal-status", defaults.TerminalStatus,
		"Status that ends polling: per-action (Stop waits for Stopped) or started")

	root.AddCommand(newStatusCmd())
	root.AddCommand(newValidateConfigCmd())
	return root
}

// loadSettings merges the config file, the environment and explicit flags,
// in increasing order of precedence. The default config file may be absent.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		if cmd.Flags().Changed("config") || !errors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
		cfg = config.Default()
	}
	cfg.ApplyEnv(os.Getenv)

	flags := cmd.Flags()
	if flags.Changed("servers") {
		cfg.ServersFile = serversFile
	}
	if flags.Changed("port") {
		cfg.Port = port
	}
	if flags.Changed("poll-interval") {
		cfg.PollInterval = pollInterval
	}
	if flags.Changed("max-wait") {
		cfg.MaxWait = maxWait
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("insecure") {
		cfg.InsecureSkipVerify = insecure
	}
	if flags.Changed("ca-file") {
		cfg.CAFile = caFile
	}
	if flags.Changed("debug") {
		cfg.Debug = debug
	}
	if flags.Changed("terminal-status") {
		cfg.TerminalStatus = terminalStatus
	}

	switch cfg.TerminalStatus {
	case config.TerminalPerAction, config.TerminalStarted:
	default:
		return cfg, &UsageError{msg: fmt.Sprintf("--terminal-status must be %s or %s", config.TerminalPerAction, config.TerminalStarted)}
	}
	if cfg.PollInterval <= 0 {
		return cfg, &UsageError{msg: "--poll-interval must be positive"}
	}
	return cfg, nil
}
