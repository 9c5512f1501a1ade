package transport

import (
	"time"

	"github.com/carlosrabelo/mirante/core/domain/entities"
	"github.com/carlosrabelo/mirante/core/platform"
)

const (
	BufferSize     = 4096
	DefaultSSHPort = 22
)

// TerminalSession is one authenticated interactive session to a device or
// bastion. Sessions are never reused across requests; every request dials
// its own and tears it down on completion or failure.
type TerminalSession interface {
	// WriteChannel writes raw data into the session input channel
	WriteChannel(data string) error

	// ReadChannel drains output accumulated on the channel. It polls every
	// poll interval and returns once no new data arrived for one interval
	// or max elapsed, whichever comes first.
	ReadChannel(poll, max time.Duration) (string, error)

	// SendCommand submits one command and reads the complete synchronous
	// output up to the session's prompt
	SendCommand(cmd string) (string, error)

	// Redispatch reclassifies the session's command dialect to another NOS
	// profile and re-runs its terminal preparation, so paging and prompt
	// handling match the device actually on the other end
	Redispatch(profile *platform.Profile) error

	Close()
}

// SessionTarget carries the endpoint and login for one dial
type SessionTarget struct {
	Host       string
	Port       int
	Credential entities.Credential

	// Transport selects ssh or telnet; empty means ssh
	Transport string
}

// Dialer opens an authenticated session prepared for the given NOS profile
type Dialer func(target SessionTarget, profile *platform.Profile, timeout time.Duration) (TerminalSession, error)

// Dial is the production dialer, switching on the configured transport
func Dial(target SessionTarget, profile *platform.Profile, timeout time.Duration) (TerminalSession, error) {
	if target.Transport == "telnet" {
		return DialTelnet(target, profile, timeout)
	}
	return DialSSH(target, profile, timeout)
}
