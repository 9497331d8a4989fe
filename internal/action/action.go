package action

import (
	"errors"
	"fmt"
	"strings"
)

// Action is the control command sent to every server in a run.
type Action string

const (
	Start   Action = "Start"
	Stop    Action = "Stop"
	Restart Action = "Restart"
)

// Default is used when no action token is given on the command line.
const Default = Restart

// ErrInvalid is returned for any token that is not start, stop or restart.
var ErrInvalid = errors.New("invalid action: choices are Start, Stop, or Restart (default)")

// Parse maps a raw token to an Action, ignoring letter case.
// An empty token yields Default.
func Parse(token string) (Action, error) {
	if token == "" {
		return Default, nil
	}
	switch strings.ToLower(token) {
	case "start":
		return Start, nil
	case "stop":
		return Stop, nil
	case "restart":
		return Restart, nil
	}
	return "", fmt.Errorf("%w: got %q", ErrInvalid, token)
}

// TerminalStatus is the service status that means the action has taken effect.
// Start and Restart end in "Started", Stop ends in "Stopped".
func (a Action) TerminalStatus() string {
	if a == Stop {
		return "Stopped"
	}
	return "Started"
}

func (a Action) String() string { return string(a) }
