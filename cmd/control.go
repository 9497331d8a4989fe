package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cucm-service-cli/internal/action"
	"cucm-service-cli/internal/reconcile"
	"cucm-service-cli/internal/report"
)

// runControl is the root command: it sends the action to every server in
// turn and waits for the service to settle on each one.
func runControl(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) < 3 {
		printSyntax(out, serversFile)
		return &UsageError{msg: "expected <axl_username> <axl_password> <service_name> [action]"}
	}
	username, password, service := args[0], args[1], args[2]

	token := ""
	if len(args) == 4 {
		token = args[3]
	}
	act, err := action.Parse(token)
	if err != nil {
		return err
	}

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg, username, password)

	services := []string{service}
	console := report.NewConsole(out, act, services)
	list, err := openServers(cfg, console)
	if err != nil {
		return err
	}

	rec := &reconcile.Reconciler{
		Action:         act,
		Services:       services,
		TerminalStatus: cfg.TerminalStatusFor(act),
		PollInterval:   cfg.PollInterval,
		MaxWait:        cfg.MaxWait,
		Dial:           dialer(cfg, username, password, logger),
		Reporter:       console,
		Logger:         logger,
	}

	logger.Debug("run starting", "action", act.String(), "service", service, "servers", list.Path())
	console.Beginning()
	summary, err := rec.Run(cmd.Context(), list.Endpoints())
	if err != nil {
		return fmt.Errorf("%s %s: %w", act, service, err)
	}
	console.Finished(summary.Elapsed)
	return nil
}
