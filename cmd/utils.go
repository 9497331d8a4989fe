package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"cucm-service-cli/internal/config"
	"cucm-service-cli/internal/logging"
	"cucm-service-cli/internal/reconcile"
	"cucm-service-cli/internal/report"
	"cucm-service-cli/internal/soap"
	"cucm-service-cli/internal/targets"
)

// newLogger returns the stderr logger of one run. Credentials never reach
// the output, even in debug dumps.
func newLogger(w io.Writer, cfg config.Config, username, password string) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := logging.New(w, logFormat, level, logging.BasicAuthSecrets(username, password)...)
	return logger.With(slog.String("run_id", uuid.NewString()))
}

// dialer builds a SOAP client per server from the resolved settings.
func dialer(cfg config.Config, username, password string, logger *slog.Logger) reconcile.DialFunc {
	return func(endpoint string) (reconcile.Controller, error) {
		client, err := soap.New(endpoint, soap.Options{
			Username:           username,
			Password:           password,
			Port:               cfg.Port,
			Path:               cfg.Path,
			Timeout:            cfg.Timeout,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			CAFile:             cfg.CAFile,
			Debug:              cfg.Debug,
			Logger:             logger,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// openServers opens the servers file and routes the blank-line warning to
// the console.
func openServers(cfg config.Config, console *report.Console) (*targets.List, error) {
	list, err := targets.Open(cfg.ServersFile)
	if err != nil {
		return nil, err
	}
	list.OnBlankLine = func(line int) { console.BlankLine(list.Path(), line) }
	return list, nil
}

const syntax = `
Syntax: cucm-service <axl_username> <axl_password> <service_name> [Start|Stop|Restart]

  service_name   Exact name of the service, for example "Cisco Tftp".
                 Quote names that contain spaces.
  action         Start, Stop or Restart (case-insensitive). Defaults to Restart.

The servers are read from %s, one address per line.
Note: an unknown service name is not rejected by the server; its status is
always reported as Stopped.
`

func printSyntax(w io.Writer, serversFile string) {
	fmt.Fprintf(w, syntax, serversFile)
}
