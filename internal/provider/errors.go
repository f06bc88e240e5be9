package provider

import (
	"fmt"
	"strings"
)

// SendError wraps an SMTP delivery failure with the recipient it concerned.
type SendError struct {
	Recipient string
	Cause     error
}

func (e *SendError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 3)
	parts = append(parts, "send error")
	if addr := strings.TrimSpace(e.Recipient); addr != "" {
		parts = append(parts, fmt.Sprintf("to=%s", addr))
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *SendError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
