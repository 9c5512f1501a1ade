package entities

import "fmt"

// AuthError indicates a credential rejected by a device or bastion
type AuthError struct {
	Host string
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %s: %v", e.Host, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// SessionTimeoutError indicates an interactive session that stopped responding
type SessionTimeoutError struct {
	Host string
	Wait string
}

func (e *SessionTimeoutError) Error() string {
	return fmt.Sprintf("session to %s timed out waiting for %s", e.Host, e.Wait)
}

// MalformedOutputError indicates command output missing the expected
// address family sections
type MalformedOutputError struct {
	NOS      string
	Expected int
	Found    int
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed %s output: expected %d address family sections, found %d",
		e.NOS, e.Expected, e.Found)
}
