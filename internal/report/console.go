// Package report prints the operator-facing progress of a run.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"cucm-service-cli/internal/action"
	"cucm-service-cli/internal/soap"
)

const (
	// NameWidth is the column the service name is padded or truncated to.
	NameWidth = 50
	// SeparatorWidth is the length of the line under the status header.
	SeparatorWidth = 57
)

var (
	header  = color.New(color.FgHiMagenta, color.Bold)
	ok      = color.New(color.FgGreen)
	okBold  = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow)
	fail    = color.New(color.FgRed)
	summary = color.New(color.Bold)
)

// Row formats one observation: the name left-justified in NameWidth
// columns, followed directly by the status.
func Row(name, status string) string {
	return fmt.Sprintf("%-*.*s%s", NameWidth, NameWidth, name, status)
}

// Separator is the line printed under the status header.
func Separator() string { return strings.Repeat("=", SeparatorWidth) }

// Clock formats t as HH:MM:SS.
func Clock(t time.Time) string { return t.Format("15:04:05") }

// Elapsed formats d as HH:MM:SS.
func Elapsed(d time.Duration) string {
	s := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}

// Console writes the run report to Out.
type Console struct {
	Out     io.Writer
	Action  action.Action
	Service string
	Now     func() time.Time
}

// NewConsole returns a console report for a run of act on services.
func NewConsole(out io.Writer, act action.Action, services []string) *Console {
	return &Console{
		Out:     out,
		Action:  act,
		Service: strings.Join(services, ", "),
		Now:     time.Now,
	}
}

// Beginning prints the banner shown before the first endpoint.
func (c *Console) Beginning() {
	header.Fprintf(c.Out, "\nBeginning %s %s\n", c.Action, Clock(c.Now()))
}

// Endpoint prints the line that introduces one server. A console without
// an action reports a status query.
func (c *Console) Endpoint(endpoint string) {
	verb := c.Action.String()
	if c.Action == "" {
		verb = "Status of"
	}
	ok.Fprintf(c.Out, "\n%s %s at %s for server ", verb, c.Service, Clock(c.Now()))
	okBold.Fprintln(c.Out, endpoint)
}

// StatusHeader prints the title and separator of a status block.
func (c *Console) StatusHeader() {
	fmt.Fprintln(c.Out, "Service Status")
	fmt.Fprintln(c.Out, Separator())
	fmt.Fprintln(c.Out)
}

// Observation prints one status row.
func (c *Console) Observation(info soap.ServiceInfo) {
	fmt.Fprintln(c.Out, Row(info.Name, info.Status))
}

// Failure prints why an endpoint stopped the run.
func (c *Console) Failure(endpoint string, err error) {
	if soap.IsFault(err) {
		fail.Fprintf(c.Out, "SOAP error: %v\n", err)
		return
	}
	fail.Fprintf(c.Out, "❌ %s: %v\n", endpoint, err)
}

// BlankLine prints the warning for a blank line that ended the servers file.
func (c *Console) BlankLine(file string, line int) {
	warn.Fprintf(c.Out, "\nWarning: Empty line in %s (line %d)\n\n", file, line)
}

// Finished prints the closing line with the total run time.
func (c *Console) Finished(elapsed time.Duration) {
	summary.Fprintf(c.Out, "\nFinished %s. Elapsed time H:M:S: %s\n\n", c.Action, Elapsed(elapsed))
}
