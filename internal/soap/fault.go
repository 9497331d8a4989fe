package soap

import (
	"errors"
	"fmt"
	"strings"
)

// Fault is a SOAP fault returned by the server. It means the server
// rejected the request, as opposed to a network or HTTP failure.
type Fault struct {
	Operation string
	Code      string
	Message   string
	Detail    string
}

func (f *Fault) Error() string {
	msg := f.Message
	if msg == "" {
		msg = f.Code
	}
	return fmt.Sprintf("%s: %s", f.Operation, msg)
}

// IsFault reports whether err is, or wraps, a *Fault.
func IsFault(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}

func newFault(operation string, el *faultElement) *Fault {
	return &Fault{
		Operation: operation,
		Code:      strings.TrimSpace(el.Code),
		Message:   strings.TrimSpace(el.String),
		Detail:    strings.TrimSpace(el.Detail.Inner),
	}
}
