package creds

import "fmt"

// Provider supplies the SMTP password for a run. Implementations include a
// static value read from the environment and the interactive prompt in the
// wizard. The password is requested once and reused for every send.
type Provider interface {
	Password() (string, error)
}

// Static is a password known up front, typically from SMTP_PASSWORD.
type Static string

func (s Static) Password() (string, error) {
	if s == "" {
		return "", fmt.Errorf("no password configured")
	}
	return string(s), nil
}

// Func adapts a function to a Provider, used by the interactive prompt.
type Func func() (string, error)

func (f Func) Password() (string, error) {
	return f()
}
