package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"cucm-service-cli/internal/action"
	"cucm-service-cli/internal/soap"
)

func init() {
	color.NoColor = true
}

func TestRow(t *testing.T) {
	testCases := []struct {
		name     string
		status   string
		expected string
	}{
		{name: "Cisco Tftp", status: "Started", expected: "Cisco Tftp" + strings.Repeat(" ", 40) + "Started"},
		{name: strings.Repeat("x", 60), status: "Stopped", expected: strings.Repeat("x", 50) + "Stopped"},
		{name: strings.Repeat("y", 50), status: "", expected: strings.Repeat("y", 50)},
		{name: "", status: "Started", expected: strings.Repeat(" ", 50) + "Started"},
	}
	for _, tc := range testCases {
		if got := Row(tc.name, tc.status); got != tc.expected {
			t.Fatalf("Row(%q, %q) = %q, expected %q", tc.name, tc.status, got, tc.expected)
		}
	}
}

func TestSeparator(t *testing.T) {
	if got := Separator(); got != strings.Repeat("=", 57) {
		t.Fatalf("unexpected separator %q", got)
	}
}

func TestElapsed(t *testing.T) {
	testCases := map[time.Duration]string{
		0:                                 "00:00:00",
		1500 * time.Millisecond:           "00:00:02",
		65 * time.Second:                  "00:01:05",
		2*time.Hour + 3*time.Minute + 4e9: "02:03:04",
	}
	for d, expected := range testCases {
		if got := Elapsed(d); got != expected {
			t.Fatalf("Elapsed(%s) = %q, expected %q", d, got, expected)
		}
	}
}

func TestConsoleEndpointBlock(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, action.Restart, []string{"Cisco Tftp"})
	c.Now = func() time.Time { return time.Date(2026, 10, 19, 14, 5, 9, 0, time.UTC) }

	c.Endpoint("10.0.0.1")
	c.StatusHeader()
	c.Observation(soap.ServiceInfo{Name: "Cisco Tftp", Status: "Stopped"})

	expected := "\nRestart Cisco Tftp at 14:05:09 for server 10.0.0.1\n" +
		"Service Status\n" +
		strings.Repeat("=", 57) + "\n\n" +
		Row("Cisco Tftp", "Stopped") + "\n"
	if buf.String() != expected {
		t.Fatalf("unexpected output:\n%q\nexpected:\n%q", buf.String(), expected)
	}
}

func TestConsoleFailure(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, action.Start, []string{"Cisco Tftp"})

	c.Failure("10.0.0.1", &soap.Fault{Operation: "soapGetServiceStatus", Message: "nope"})
	if got := buf.String(); got != "SOAP error: soapGetServiceStatus: nope\n" {
		t.Fatalf("unexpected fault output %q", got)
	}

	buf.Reset()
	c.Failure("10.0.0.1", errors.New("connection refused"))
	if got := buf.String(); !strings.Contains(got, "10.0.0.1: connection refused") {
		t.Fatalf("unexpected failure output %q", got)
	}
}

func TestConsoleBannerAndFooter(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, action.Stop, []string{"Cisco Tftp"})
	c.Now = func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC) }

	c.Beginning()
	c.BlankLine("./ucmlist.txt", 3)
	c.Finished(75 * time.Second)

	out := buf.String()
	for _, want := range []string{
		"Beginning Stop 08:00:00",
		"Warning: Empty line in ./ucmlist.txt (line 3)",
		"Finished Stop. Elapsed time H:M:S: 00:01:15",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleStatusEndpointLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, "", []string{"Cisco Tftp", "Cisco CallManager"})
	c.Now = func() time.Time { return time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC) }

	c.Endpoint("cucm-pub")

	expected := "\nStatus of Cisco Tftp, Cisco CallManager at 09:30:00 for server cucm-pub\n"
	if buf.String() != expected {
		t.Fatalf("unexpected output:\n%q\nexpected:\n%q", buf.String(), expected)
	}
}
