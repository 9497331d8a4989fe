package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"cucm-service-cli/internal/reconcile"
	"cucm-service-cli/internal/report"
)

var (
	watch         bool
	watchInterval time.Duration
)

func newStatusCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "status <axl_username> <axl_password> <service_name>...",
		Short: "Show the status of services on every server without changing them",
		Long: `status queries each server in the servers file for the given services and
prints one status block per server. Nothing is started or stopped.

With --watch the query is repeated every --interval and whenever the servers
file changes, until interrupted.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 {
				return &UsageError{msg: "expected <axl_username> <axl_password> <service_name>..."}
			}
			return nil
		},
		RunE: runStatus,
	}
	c.Flags().BoolVar(&watch, "watch", false, "Keep querying on a timer and when the servers file changes")
	c.Flags().DurationVar(&watchInterval, "interval", 30*time.Second, "Pause between two passes in --watch mode")
	return c
}

func runStatus(cmd *cobra.Command, args []string) error {
	username, password, services := args[0], args[1], args[2:]
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if watch && watchInterval <= 0 {
		return &UsageError{msg: "--interval must be positive"}
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg, username, password)

	out := cmd.OutOrStdout()
	console := report.NewConsole(out, "", services)
	list, err := openServers(cfg, console)
	if err != nil {
		return err
	}
	rec := &reconcile.Reconciler{
		Services: services,
		Dial:     dialer(cfg, username, password, logger),
		Reporter: console,
		Logger:   logger,
	}
	pass := func() error {
		_, err := rec.Observe(cmd.Context(), list.Endpoints())
		return err
	}

	if !watch {
		return pass()
	}
	return watchStatus(cmd.Context(), out, list.Path(), watchInterval, pass)
}

// watchStatus runs an initial pass, then one more on every change to path
// and on every tick, until ctx is done. A failed pass ends the watch.
func watchStatus(ctx context.Context, out io.Writer, path string, interval time.Duration, pass func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	if err := pass(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) ||
				!ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			color.New(color.FgCyan).Fprintf(out, "\n📄 %s changed; checking again…\n", filepath.Base(path))
			if err := pass(); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching %s: %w", path, err)
		case <-ticker.C:
			color.New(color.FgCyan).Fprintln(out, "\n⏱️  Periodic check…")
			if err := pass(); err != nil {
				return err
			}
		case <-ctx.Done():
			color.New(color.FgYellow).Fprintln(out, "\n🛑 Watch stopped.")
			return nil
		}
	}
}
